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

package volya

import (
	"context"
	"testing"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/connection"
	"github.com/blinklabs-io/volya/keystore"
	"github.com/blinklabs-io/volya/processor"
	"github.com/blinklabs-io/volya/tokenomics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testTokenProgram      = address.Address{0x01}
	testStakingProgram    = address.Address{0x02}
	testGovernanceProgram = address.Address{0x03}
)

func testConfig(opts ...ConfigOptionFunc) Config {
	base := []ConfigOptionFunc{
		WithProgramIDs(
			testTokenProgram,
			testStakingProgram,
			testGovernanceProgram,
		),
		WithClock(func() int64 { return 1_700_000_000 }),
	}
	return NewConfig(append(base, opts...)...)
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, connection.NetworkLocal, cfg.network)
	assert.NotNil(t, cfg.logger)
	assert.Empty(t, cfg.dataDir)
}

func TestNewValidation(t *testing.T) {
	testDefs := []struct {
		name string
		cfg  Config
		err  string
	}{
		{
			name: "unknown network",
			cfg:  testConfig(WithNetwork("testnet")),
			err:  "unknown network name",
		},
		{
			name: "missing program IDs",
			cfg:  NewConfig(),
			err:  "is not set",
		},
		{
			name: "duplicate program IDs",
			cfg: NewConfig(WithProgramIDs(
				testTokenProgram,
				testStakingProgram,
				testTokenProgram,
			)),
			err: "used more than once",
		},
		{
			name: "invalid tokenomics",
			cfg:  testConfig(WithTokenomics(&tokenomics.Record{Name: "broken"})),
			err:  "invalid tokenomics",
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := New(testDef.cfg)
			require.ErrorContains(t, err, testDef.err)
		})
	}
}

func TestNodeStartStop(t *testing.T) {
	node, err := New(testConfig(
		WithPrometheusRegistry(prometheus.NewRegistry()),
	))
	require.NoError(t, err)
	require.NoError(t, node.Start())
	require.Error(t, node.Start())
	assert.Equal(t, tokenomics.Default(), node.Tokenomics())

	conn := node.Connection()
	require.NotNil(t, conn)
	assert.Equal(t, connection.NetworkLocal, conn.Network().Name)

	kp, err := keystore.FromSeed(make([]byte, 32))
	require.NoError(t, err)
	signed, err := processor.NewSignedInstruction(
		kp,
		processor.KindCreateMint,
		1,
		&processor.CreateMintArgs{Mint: address.Address{0x4d}, Decimals: 9},
	)
	require.NoError(t, err)
	receipt, err := conn.SendAndConfirm(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Sequence)
	assert.Same(t, node.Processor(), node.Processor())
	assert.NotNil(t, node.EventBus())

	require.NoError(t, node.Stop())
	require.NoError(t, node.Stop())
}

func TestNodeRemoteNetwork(t *testing.T) {
	node, err := New(testConfig(WithNetwork(connection.NetworkStaging)))
	require.NoError(t, err)
	require.ErrorIs(t, node.Start(), connection.ErrRemoteUnsupported)
	require.NoError(t, node.Stop())
}
