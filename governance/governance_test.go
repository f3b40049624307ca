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

package governance_test

import (
	"strings"
	"testing"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database"
	"github.com/blinklabs-io/volya/database/models"
	"github.com/blinklabs-io/volya/governance"
	"github.com/blinklabs-io/volya/program"
	"github.com/blinklabs-io/volya/token"
	"github.com/blinklabs-io/volya/tokenomics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	day       = int64(86400)
	startTime = int64(1700000000)
)

var (
	tokenProgramID      = address.Address{0x06, 0xdd, 0xf6, 0xe1}
	governanceProgramID = address.Address{0x60, 0x7e, 0x12, 0x4a}
	mintAddr            = testAddress(0x10)
	authority           = testAddress(0x11)
	alice               = testAddress(0x20)
	bob                 = testAddress(0x21)
	carol               = testAddress(0x22)
	dave                = testAddress(0x23)
)

func testAddress(b byte) address.Address {
	var ret address.Address
	for i := range ret {
		ret[i] = b
	}
	return ret
}

func testParams() governance.Params {
	return governance.Params{
		ProposalThreshold: 50_000,
		CirculatingSupply: 10_000_000,
		QuorumPercent:     10,
	}
}

func testMetadata() governance.Metadata {
	return governance.Metadata{
		Title:       "Raise Premium APR",
		Description: "Raise the Premium tier APR target from 20% to 22%",
		Type:        models.ProposalTypeParameterChange,
	}
}

type testEnv struct {
	ctx    *program.Context
	ledger *token.Ledger
	engine *governance.Engine
	config *models.GovernanceConfig
}

// newTestEnv sets up a zero-decimal mint with alice holding 800,000, bob
// 100,000 and carol 40,000, and initializes governance over it
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	txn := db.Transaction(true)
	t.Cleanup(func() {
		txn.Release()
		require.NoError(t, db.Close())
	})
	ctx := program.NewContext(txn, startTime, nil)
	ledger := token.New(tokenProgramID)
	_, err = ledger.CreateMint(ctx, mintAddr, authority, 0)
	require.NoError(t, err)
	holdings := map[address.Address]uint64{
		alice: 800_000,
		bob:   100_000,
		carol: 40_000,
	}
	for owner, amount := range holdings {
		account, err := ledger.CreateAccount(ctx, mintAddr, owner)
		require.NoError(t, err)
		require.NoError(t, ledger.MintTo(ctx, authority, mintAddr, account.Address, amount))
	}
	engine := governance.New(governanceProgramID, ledger)
	config, err := engine.InitializeGovernance(ctx, authority, mintAddr, testParams())
	require.NoError(t, err)
	return &testEnv{
		ctx:    ctx,
		ledger: ledger,
		engine: engine,
		config: config,
	}
}

func (e *testEnv) propose(t *testing.T) *models.Proposal {
	t.Helper()
	proposal, err := e.engine.CreateProposal(e.ctx, alice, e.config.Address, testMetadata(), 0)
	require.NoError(t, err)
	return proposal
}

func TestInitializeGovernance(t *testing.T) {
	env := newTestEnv(t)
	expected, bump, err := env.engine.GovernanceAddress(mintAddr)
	require.NoError(t, err)
	assert.Equal(t, expected, env.config.Address)
	assert.Equal(t, bump, env.config.Bump)
	assert.Equal(t, governance.DefaultVotingPeriod, env.config.VotingPeriod)
	assert.Equal(t, uint8(10), env.config.QuorumPercent)
	assert.Zero(t, env.config.ProposalCount)

	_, err = env.engine.InitializeGovernance(env.ctx, authority, mintAddr, testParams())
	require.ErrorIs(t, err, program.ErrAlreadyInitialized)

	_, err = env.engine.InitializeGovernance(env.ctx, authority, testAddress(0x99), testParams())
	require.ErrorIs(t, err, program.ErrInvalidParameter)
}

func TestInitializeGovernanceRequiresMintAuthority(t *testing.T) {
	env := newTestEnv(t)
	otherMint := testAddress(0x30)
	_, err := env.ledger.CreateMint(env.ctx, otherMint, authority, 0)
	require.NoError(t, err)

	squat := testParams()
	squat.CirculatingSupply = 1
	_, err = env.engine.InitializeGovernance(env.ctx, bob, otherMint, squat)
	require.ErrorIs(t, err, program.ErrUnauthorized)

	config, err := env.engine.InitializeGovernance(env.ctx, authority, otherMint, testParams())
	require.NoError(t, err)
	assert.Equal(t, authority, config.Authority)
	assert.Equal(t, uint64(10_000_000), uint64(config.CirculatingSupply))
}

func TestParamsValidation(t *testing.T) {
	env := newTestEnv(t)
	testDefs := []struct {
		name   string
		mutate func(*governance.Params)
	}{
		{"zero quorum", func(p *governance.Params) { p.QuorumPercent = 0 }},
		{"quorum over 100", func(p *governance.Params) { p.QuorumPercent = 101 }},
		{"negative period", func(p *governance.Params) { p.VotingPeriod = -1 }},
		{"zero supply", func(p *governance.Params) { p.CirculatingSupply = 0 }},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			params := testParams()
			testDef.mutate(&params)
			_, err := env.engine.UpdateGovernance(env.ctx, authority, env.config.Address, params)
			require.ErrorIs(t, err, program.ErrInvalidParameter)
		})
	}
}

func TestParamsFromTokenomics(t *testing.T) {
	record := tokenomics.Default()
	params, err := governance.ParamsFromTokenomics(record)
	require.NoError(t, err)
	assert.Equal(t, uint64(50_000_000_000_000), params.ProposalThreshold)
	assert.Equal(t, uint64(10_000_000_000_000_000), params.CirculatingSupply)
	assert.Equal(t, governance.DefaultVotingPeriod, params.VotingPeriod)
	assert.Equal(t, uint8(10), params.QuorumPercent)
}

func TestUpdateGovernance(t *testing.T) {
	env := newTestEnv(t)
	params := testParams()
	params.QuorumPercent = 25
	params.VotingPeriod = 3 * day

	_, err := env.engine.UpdateGovernance(env.ctx, alice, env.config.Address, params)
	require.ErrorIs(t, err, program.ErrUnauthorized)

	config, err := env.engine.UpdateGovernance(env.ctx, authority, env.config.Address, params)
	require.NoError(t, err)
	assert.Equal(t, uint8(25), config.QuorumPercent)
	assert.Equal(t, 3*day, config.VotingPeriod)
}

func TestCreateProposal(t *testing.T) {
	env := newTestEnv(t)
	first := env.propose(t)
	expected, _, err := env.engine.ProposalAddress(env.config.Address, 0)
	require.NoError(t, err)
	assert.Equal(t, expected, first.Address)
	assert.Equal(t, uint64(0), first.Number)
	assert.Equal(t, uint8(models.ProposalStateActive), first.State)
	assert.Equal(t, startTime+governance.DefaultVotingPeriod, first.Deadline)
	assert.Equal(t, testMetadata().Hash(), first.MetadataHash)
	assert.Zero(t, uint64(first.YesWeight))
	assert.Zero(t, uint64(first.NoWeight))
	assert.Nil(t, first.FinalizedAt)

	second, err := env.engine.CreateProposal(env.ctx, bob, env.config.Address, testMetadata(), 2*day)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), second.Number)
	assert.NotEqual(t, first.Address, second.Address)
	assert.Equal(t, startTime+2*day, second.Deadline)

	config, err := env.engine.GetConfig(env.ctx, env.config.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), config.ProposalCount)

	proposals, err := env.engine.Proposals(env.ctx, env.config.Address)
	require.NoError(t, err)
	require.Len(t, proposals, 2)
	assert.Equal(t, first.Address, proposals[0].Address)
	assert.Equal(t, second.Address, proposals[1].Address)
}

// 40,000 held against a 50,000 threshold
func TestCreateProposalBelowThreshold(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.CreateProposal(env.ctx, carol, env.config.Address, testMetadata(), 0)
	require.ErrorIs(t, err, program.ErrInsufficientStake)

	_, err = env.engine.CreateProposal(env.ctx, dave, env.config.Address, testMetadata(), 0)
	require.ErrorIs(t, err, program.ErrInsufficientStake)

	config, err := env.engine.GetConfig(env.ctx, env.config.Address)
	require.NoError(t, err)
	assert.Zero(t, config.ProposalCount)
}

func TestCreateProposalMetadata(t *testing.T) {
	env := newTestEnv(t)
	testDefs := []struct {
		name     string
		metadata governance.Metadata
		valid    bool
	}{
		{"title at limit", governance.Metadata{Title: strings.Repeat("t", 64)}, true},
		{"title over limit", governance.Metadata{Title: strings.Repeat("t", 65)}, false},
		{"empty title", governance.Metadata{}, false},
		{
			"description at limit",
			governance.Metadata{Title: "t", Description: strings.Repeat("d", 512)},
			true,
		},
		{
			"description over limit",
			governance.Metadata{Title: "t", Description: strings.Repeat("d", 513)},
			false,
		},
		{"unknown type", governance.Metadata{Title: "t", Type: 9}, false},
		{"general", governance.Metadata{Title: "t", Type: models.ProposalTypeGeneral}, true},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := env.engine.CreateProposal(env.ctx, alice, env.config.Address, testDef.metadata, 0)
			if testDef.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, program.ErrInvalidParameter)
			}
		})
	}

	_, err := env.engine.CreateProposal(env.ctx, alice, env.config.Address, testMetadata(), -1)
	require.ErrorIs(t, err, program.ErrInvalidParameter)
}

func TestVoteOnProposal(t *testing.T) {
	env := newTestEnv(t)
	proposal := env.propose(t)

	record, err := env.engine.VoteOnProposal(env.ctx, alice, proposal.Address, models.VoteYes)
	require.NoError(t, err)
	assert.Equal(t, uint64(800_000), uint64(record.Weight))
	expected, _, err := env.engine.VoteRecordAddress(proposal.Address, alice)
	require.NoError(t, err)
	assert.Equal(t, expected, record.Address)

	_, err = env.engine.VoteOnProposal(env.ctx, bob, proposal.Address, models.VoteNo)
	require.NoError(t, err)

	_, err = env.engine.VoteOnProposal(env.ctx, alice, proposal.Address, models.VoteNo)
	require.ErrorIs(t, err, program.ErrDuplicateVote)

	_, err = env.engine.VoteOnProposal(env.ctx, dave, proposal.Address, models.VoteYes)
	require.ErrorIs(t, err, program.ErrInsufficientStake)

	_, err = env.engine.VoteOnProposal(env.ctx, carol, proposal.Address, 2)
	require.ErrorIs(t, err, program.ErrInvalidParameter)

	updated, err := env.engine.GetProposal(env.ctx, proposal.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(800_000), uint64(updated.YesWeight))
	assert.Equal(t, uint64(100_000), uint64(updated.NoWeight))

	votes, err := env.engine.Votes(env.ctx, proposal.Address)
	require.NoError(t, err)
	assert.Len(t, votes, 2)
}

func TestVoteAfterDeadline(t *testing.T) {
	env := newTestEnv(t)
	proposal := env.propose(t)
	env.ctx.Now = proposal.Deadline
	_, err := env.engine.VoteOnProposal(env.ctx, alice, proposal.Address, models.VoteYes)
	require.ErrorIs(t, err, program.ErrVotingClosed)
}

func TestVoteUnknownProposal(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.VoteOnProposal(env.ctx, alice, testAddress(0x77), models.VoteYes)
	require.ErrorIs(t, err, program.ErrAccountNotFound)
}

// 800,000 yes and 100,000 no against a 10% quorum of 10,000,000
func TestFinalizeWithoutQuorum(t *testing.T) {
	env := newTestEnv(t)
	proposal := env.propose(t)
	_, err := env.engine.VoteOnProposal(env.ctx, alice, proposal.Address, models.VoteYes)
	require.NoError(t, err)
	_, err = env.engine.VoteOnProposal(env.ctx, bob, proposal.Address, models.VoteNo)
	require.NoError(t, err)

	env.ctx.Now = proposal.Deadline
	final, err := env.engine.FinalizeProposal(env.ctx, carol, proposal.Address)
	require.NoError(t, err)
	assert.Equal(t, uint8(models.ProposalStateExpired), final.State)
	require.NotNil(t, final.FinalizedAt)
	assert.Equal(t, proposal.Deadline, *final.FinalizedAt)
}

func TestFinalizeOutcomes(t *testing.T) {
	testDefs := []struct {
		name     string
		yes      []address.Address
		no       []address.Address
		expected uint8
	}{
		{"passed", []address.Address{alice, bob}, []address.Address{carol}, models.ProposalStatePassed},
		{"rejected", []address.Address{carol}, []address.Address{alice, bob}, models.ProposalStateRejected},
		{"no votes", nil, nil, models.ProposalStateExpired},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			env := newTestEnv(t)
			params := testParams()
			params.CirculatingSupply = 1_000_000
			_, err := env.engine.UpdateGovernance(env.ctx, authority, env.config.Address, params)
			require.NoError(t, err)
			proposal := env.propose(t)
			for _, voter := range testDef.yes {
				_, err := env.engine.VoteOnProposal(env.ctx, voter, proposal.Address, models.VoteYes)
				require.NoError(t, err)
			}
			for _, voter := range testDef.no {
				_, err := env.engine.VoteOnProposal(env.ctx, voter, proposal.Address, models.VoteNo)
				require.NoError(t, err)
			}
			env.ctx.Now = proposal.Deadline + day
			final, err := env.engine.FinalizeProposal(env.ctx, dave, proposal.Address)
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, final.State)
		})
	}
}

func TestFinalizePreconditions(t *testing.T) {
	env := newTestEnv(t)
	proposal := env.propose(t)

	env.ctx.Now = proposal.Deadline - 1
	_, err := env.engine.FinalizeProposal(env.ctx, alice, proposal.Address)
	require.ErrorIs(t, err, program.ErrNotReady)

	env.ctx.Now = proposal.Deadline
	_, err = env.engine.FinalizeProposal(env.ctx, alice, proposal.Address)
	require.NoError(t, err)

	_, err = env.engine.FinalizeProposal(env.ctx, alice, proposal.Address)
	require.ErrorIs(t, err, program.ErrAlreadyFinalized)

	_, err = env.engine.VoteOnProposal(env.ctx, bob, proposal.Address, models.VoteYes)
	require.ErrorIs(t, err, program.ErrVotingClosed)
}

func TestQuorumMet(t *testing.T) {
	testDefs := []struct {
		yes, no  uint64
		quorum   uint8
		supply   uint64
		expected bool
	}{
		{800_000, 100_000, 10, 10_000_000, false},
		{900_000, 100_000, 10, 10_000_000, true},
		{0, 0, 1, 1, false},
		{1, 0, 100, 1, true},
		{0, 1, 100, 2, false},
		{^uint64(0), ^uint64(0), 100, ^uint64(0), true},
		{^uint64(0) / 2, 0, 100, ^uint64(0), false},
	}
	for _, testDef := range testDefs {
		assert.Equal(
			t,
			testDef.expected,
			governance.QuorumMet(testDef.yes, testDef.no, testDef.quorum, testDef.supply),
			"yes=%d no=%d quorum=%d supply=%d",
			testDef.yes,
			testDef.no,
			testDef.quorum,
			testDef.supply,
		)
	}
}

func TestProposalTypeNames(t *testing.T) {
	for _, name := range []string{"parameter-change", "treasury-spend", "protocol-upgrade", "general"} {
		typ, err := governance.ParseProposalType(name)
		require.NoError(t, err)
		assert.Equal(t, name, governance.ProposalTypeName(typ))
	}
	_, err := governance.ParseProposalType("bogus")
	require.ErrorIs(t, err, program.ErrInvalidParameter)
	assert.Equal(t, "expired", governance.ProposalStateName(models.ProposalStateExpired))
}
