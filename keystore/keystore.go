// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package keystore loads the ed25519 keypair used to sign instructions.
//
// A keypair file holds the 64-byte secret key (seed followed by public key)
// as a JSON array of integers. The engine never generates keys on its own.
package keystore

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blinklabs-io/volya/address"
)

const (
	// DefaultEnvVar names the environment variable that may carry the keypair
	DefaultEnvVar = "VOLYA_KEYPAIR"

	maxKeypairFileSize = 4096
)

var (
	ErrInsecureFileMode = errors.New("insecure file permissions")
	ErrInvalidKeypair   = errors.New("invalid keypair")
	ErrNoKeypair        = errors.New("no keypair configured")
)

// Keypair is an ed25519 signing identity. Its public key is its address
type Keypair struct {
	private ed25519.PrivateKey
}

// FromSeed derives a keypair from a 32-byte seed
func FromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf(
			"%w: seed is %d bytes, expected %d",
			ErrInvalidKeypair,
			len(seed),
			ed25519.SeedSize,
		)
	}
	return &Keypair{private: ed25519.NewKeyFromSeed(seed)}, nil
}

// Parse decodes the JSON integer array form. The trailing public key must
// match the one derived from the seed
func Parse(data []byte) (*Keypair, error) {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeypair, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf(
			"%w: %d bytes, expected %d",
			ErrInvalidKeypair,
			len(raw),
			ed25519.PrivateKeySize,
		)
	}
	secret := make([]byte, len(raw))
	for i, v := range raw {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: byte %d out of range: %d", ErrInvalidKeypair, i, v)
		}
		secret[i] = byte(v)
	}
	kp, err := FromSeed(secret[:ed25519.SeedSize])
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(kp.PublicKey(), secret[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("%w: public key does not match seed", ErrInvalidKeypair)
	}
	return kp, nil
}

// Load reads a keypair file. Files readable by group or others are rejected
func Load(path string) (*Keypair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keypair file %q: %w", path, err)
	}
	defer f.Close()
	if err := checkOpenFilePermissions(f); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(f, maxKeypairFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file %q: %w", path, err)
	}
	kp, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse keypair file %q: %w", path, err)
	}
	return kp, nil
}

// LoadEnv reads a keypair from the named environment variable
func LoadEnv(name string) (*Keypair, error) {
	val, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(val) == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrNoKeypair, name)
	}
	kp, err := Parse([]byte(val))
	if err != nil {
		return nil, fmt.Errorf("failed to parse keypair from %s: %w", name, err)
	}
	return kp, nil
}

// Resolve loads the keypair from path when set, else from the environment
// variable
func Resolve(path string, envVar string) (*Keypair, error) {
	if path != "" {
		return Load(path)
	}
	if envVar == "" {
		envVar = DefaultEnvVar
	}
	return LoadEnv(envVar)
}

func (k *Keypair) PublicKey() ed25519.PublicKey {
	return k.private.Public().(ed25519.PublicKey)
}

func (k *Keypair) Address() address.Address {
	var ret address.Address
	copy(ret[:], k.PublicKey())
	return ret
}

func (k *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(k.private, message)
}

// MarshalJSON encodes the keypair in the same integer array form Parse reads
func (k *Keypair) MarshalJSON() ([]byte, error) {
	raw := make([]int, len(k.private))
	for i, b := range k.private {
		raw[i] = int(b)
	}
	return json.Marshal(raw)
}

// Save writes the keypair to path with owner-only permissions
func (k *Keypair) Save(path string) error {
	data, err := k.MarshalJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write keypair file %q: %w", path, err)
	}
	return nil
}

// Verify reports whether sig is signer's signature over message
func Verify(signer address.Address, message []byte, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(signer.Bytes()), message, sig)
}
