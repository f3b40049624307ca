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

package processor

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/program"
)

// Instruction kinds
const (
	KindCreateMint uint8 = iota
	KindCreateTokenAccount
	KindMintTo
	KindTransfer
	KindInitializePool
	KindFundVault
	KindSetPoolPaused
	KindUpdateRewardRate
	KindStake
	KindUnstake
	KindClaimRewards
	KindInitializeGovernance
	KindUpdateGovernance
	KindCreateProposal
	KindVoteOnProposal
	KindFinalizeProposal
)

var kindNames = map[uint8]string{
	KindCreateMint:           "create_mint",
	KindCreateTokenAccount:   "create_token_account",
	KindMintTo:               "mint_to",
	KindTransfer:             "transfer",
	KindInitializePool:       "initialize_pool",
	KindFundVault:            "fund_vault",
	KindSetPoolPaused:        "set_pool_paused",
	KindUpdateRewardRate:     "update_reward_rate",
	KindStake:                "stake",
	KindUnstake:              "unstake",
	KindClaimRewards:         "claim_rewards",
	KindInitializeGovernance: "initialize_governance",
	KindUpdateGovernance:     "update_governance",
	KindCreateProposal:       "create_proposal",
	KindVoteOnProposal:       "vote_on_proposal",
	KindFinalizeProposal:     "finalize_proposal",
}

// KindName returns the name of an instruction kind
func KindName(kind uint8) string {
	if name, ok := kindNames[kind]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", kind)
}

var ErrUnknownInstruction = errors.New("unknown instruction kind")

// Signer produces ed25519 signatures for an address. keystore.Keypair
// satisfies it
type Signer interface {
	Address() address.Address
	Sign(message []byte) []byte
}

// Instruction is the signed part of a request. Nonce distinguishes otherwise
// identical instructions, whose signatures would collide
type Instruction struct {
	cbor.StructAsArray
	Kind  uint8
	Nonce uint64
	Data  []byte
}

// SignedInstruction is the envelope submitted for execution. Payload is the
// CBOR encoding of an Instruction and Signature covers exactly those bytes
type SignedInstruction struct {
	cbor.StructAsArray
	Signer    address.Address
	Payload   []byte
	Signature []byte
}

// NewSignedInstruction encodes args as an instruction of the given kind and
// signs it
func NewSignedInstruction(
	signer Signer,
	kind uint8,
	nonce uint64,
	args any,
) (*SignedInstruction, error) {
	if _, ok := kindNames[kind]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownInstruction, kind)
	}
	data, err := cbor.Encode(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s arguments: %w", KindName(kind), err)
	}
	payload, err := cbor.Encode(&Instruction{Kind: kind, Nonce: nonce, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode instruction: %w", err)
	}
	return &SignedInstruction{
		Signer:    signer.Address(),
		Payload:   payload,
		Signature: signer.Sign(payload),
	}, nil
}

// Encode returns the CBOR wire form of the envelope
func (s *SignedInstruction) Encode() ([]byte, error) {
	return cbor.Encode(s)
}

// DecodeSignedInstruction parses the CBOR wire form of an envelope
func DecodeSignedInstruction(data []byte) (*SignedInstruction, error) {
	var ret SignedInstruction
	if _, err := cbor.Decode(data, &ret); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %w", program.ErrInvalidParameter, err)
	}
	return &ret, nil
}

// Open verifies the signature and decodes the instruction
func (s *SignedInstruction) Open() (*Instruction, error) {
	if len(s.Signature) != ed25519.SignatureSize ||
		!ed25519.Verify(ed25519.PublicKey(s.Signer.Bytes()), s.Payload, s.Signature) {
		return nil, fmt.Errorf("%w: signer %s", program.ErrInvalidSignature, s.Signer)
	}
	var ret Instruction
	if _, err := cbor.Decode(s.Payload, &ret); err != nil {
		return nil, fmt.Errorf("%w: decode instruction: %w", program.ErrInvalidParameter, err)
	}
	if _, ok := kindNames[ret.Kind]; !ok {
		return nil, fmt.Errorf("%w: %w: %d", program.ErrInvalidParameter, ErrUnknownInstruction, ret.Kind)
	}
	return &ret, nil
}

func decodeArgs(instr *Instruction, dest any) error {
	if _, err := cbor.Decode(instr.Data, dest); err != nil {
		return fmt.Errorf(
			"%w: decode %s arguments: %w",
			program.ErrInvalidParameter,
			KindName(instr.Kind),
			err,
		)
	}
	return nil
}
