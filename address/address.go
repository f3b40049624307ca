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

// Package address implements account addressing: 32-byte addresses with a
// base58 text form, and program-derived addresses computed from a seed tuple
// and a program ID. A program-derived address is guaranteed not to lie on the
// ed25519 curve, so no private key exists for it.
package address

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/binary"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const (
	Size          = 32
	MaxSeeds      = 16
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrInvalidAddress        = errors.New("invalid address")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrInvalidSeeds          = errors.New("seeds do not result in a valid program address")
	ErrNoViableBump          = errors.New("unable to find a viable program address bump seed")
)

type Address [Size]byte

// Zero is the all-zero address
var Zero Address

// Parse decodes a base58 address string
func Parse(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	return FromBytes(raw)
}

// MustParse is like Parse but panics on error. It is intended for constants.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromBytes copies a 32-byte slice into an Address
func FromBytes(b []byte) (Address, error) {
	var ret Address
	if len(b) != Size {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidAddress,
			Size,
			len(b),
		)
	}
	copy(ret[:], b)
	return ret, nil
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes returns a copy of the address bytes
func (a Address) Bytes() []byte {
	ret := make([]byte, Size)
	copy(ret, a[:])
	return ret
}

func (a Address) IsZero() bool {
	return a == Zero
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	tmp, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// Value stores the address as raw bytes
func (a Address) Value() (driver.Value, error) {
	return a.Bytes(), nil
}

func (a *Address) Scan(val any) error {
	v, ok := val.([]byte)
	if !ok {
		return fmt.Errorf(
			"value was not expected type, wanted []byte, got %T",
			val,
		)
	}
	tmp, err := FromBytes(v)
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// IsOnCurve reports whether the bytes decode to a point on the ed25519 curve
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// Uint64Seed encodes a counter for use as a seed (little-endian)
func Uint64Seed(v uint64) []byte {
	ret := make([]byte, 8)
	binary.LittleEndian.PutUint64(ret, v)
	return ret
}

// CreateProgramAddress computes the address for the exact seeds given. It
// returns ErrInvalidSeeds when the resulting hash lies on the curve.
func CreateProgramAddress(seeds [][]byte, programID Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Address{}, ErrTooManySeeds
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return Address{}, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))
	var ret Address
	copy(ret[:], h.Sum(nil))
	if IsOnCurve(ret[:]) {
		return Address{}, ErrInvalidSeeds
	}
	return ret, nil
}

// Derive finds the program address for the seeds, searching bump seeds from
// 255 downward. It returns the address and the bump that produced it.
func Derive(seeds [][]byte, programID Address) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Address{}, 0, ErrTooManySeeds
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrInvalidSeeds) {
			return Address{}, 0, err
		}
	}
	return Address{}, 0, ErrNoViableBump
}

// Verify checks that addr is the program address for seeds and bump
func Verify(
	addr Address,
	seeds [][]byte,
	bump uint8,
	programID Address,
) bool {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	withBump[len(seeds)] = []byte{bump}
	derived, err := CreateProgramAddress(withBump, programID)
	if err != nil {
		return false
	}
	return derived == addr
}
