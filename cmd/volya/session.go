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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/blinklabs-io/volya"
	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/connection"
	"github.com/blinklabs-io/volya/internal/config"
	"github.com/blinklabs-io/volya/keystore"
	"github.com/blinklabs-io/volya/processor"
	"github.com/blinklabs-io/volya/tokenomics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// session holds everything a single command invocation needs
type session struct {
	ctx           context.Context
	cfg           *config.Config
	logger        *slog.Logger
	node          *volya.Node
	conn          connection.Connection
	signer        *keystore.Keypair
	tokenomics    *tokenomics.Record
	metricsServer *http.Server
}

func openSession(cmd *cobra.Command, needSigner bool) *session {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		slog.Error("no config found in context")
		os.Exit(1)
	}
	logger := commonRun()
	s := &session{
		ctx:    cmd.Context(),
		cfg:    cfg,
		logger: logger,
	}
	if needSigner {
		signer, err := keystore.Resolve(cfg.KeypairPath, keystore.DefaultEnvVar)
		if err != nil {
			s.fail("failed to load keypair", err)
		}
		s.signer = signer
	}
	s.tokenomics = tokenomics.Default()
	if cfg.TokenomicsPath != "" {
		rec, err := tokenomics.Load(cfg.TokenomicsPath)
		if err != nil {
			s.fail("failed to load tokenomics", err)
		}
		s.tokenomics = rec
	}
	ids, err := cfg.ResolveProgramIDs()
	if err != nil {
		s.fail("invalid program ID", err)
	}
	if cfg.MetricsPort > 0 {
		s.startMetrics()
	}
	node, err := volya.New(
		volya.NewConfig(
			volya.WithLogger(logger),
			volya.WithDatabasePath(cfg.DatabasePath),
			volya.WithNetwork(cfg.Network),
			volya.WithNetworkURL(cfg.NetworkURL),
			volya.WithTokenomics(s.tokenomics),
			volya.WithProgramIDs(ids.Token, ids.Staking, ids.Governance),
			volya.WithPrometheusRegistry(prometheus.DefaultRegisterer),
			volya.WithTracing(cfg.Tracing),
			volya.WithTracingStdout(cfg.TracingStdout),
		),
	)
	if err != nil {
		s.fail("failed to configure node", err)
	}
	s.node = node
	if err := node.Start(); err != nil {
		s.fail("failed to start node", err)
	}
	s.conn = node.Connection()
	return s
}

func (s *session) startMetrics() {
	listenAddr := fmt.Sprintf("%s:%d", s.cfg.MetricsBindAddr, s.cfg.MetricsPort)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s.metricsServer = &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info(
		"serving prometheus metrics on "+listenAddr,
		"component", programName,
	)
	go func() {
		if err := s.metricsServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(
				fmt.Sprintf("failed to start metrics listener: %s", err),
				"component", programName,
			)
		}
	}()
}

func (s *session) close() {
	if s.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.metricsServer.Shutdown(ctx)
	}
	if s.node != nil {
		if err := s.node.Stop(); err != nil {
			s.logger.Error(
				"failed to stop node",
				"component", programName,
				"error", err,
			)
		}
	}
}

// fail logs err, releases the session and exits
func (s *session) fail(msg string, err error) {
	s.logger.Error(msg, "component", programName, "error", err)
	s.close()
	os.Exit(1)
}

// submit signs an instruction with the session keypair and executes it
func (s *session) submit(kind uint8, args any) *processor.Receipt {
	// The nonce keeps repeated identical instructions distinct
	nonce := uint64(time.Now().UnixNano()) // #nosec G115
	signed, err := processor.NewSignedInstruction(s.signer, kind, nonce, args)
	if err != nil {
		s.fail("failed to build instruction", err)
	}
	receipt, err := s.conn.SendAndConfirm(s.ctx, signed)
	if err != nil {
		s.fail(processor.KindName(kind)+" failed", err)
	}
	s.logger.Info(
		"instruction committed",
		"component", programName,
		"kind", processor.KindName(kind),
		"sequence", receipt.Sequence,
	)
	return receipt
}

func (s *session) output(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.fail("failed to write output", err)
	}
}

// mint returns the --mint flag, falling back to the mint in the tokenomics file
func (s *session) mint(cmd *cobra.Command) address.Address {
	value, _ := cmd.Flags().GetString("mint")
	if value == "" {
		value = s.tokenomics.Mint
	}
	if value == "" {
		s.fail("no mint", errors.New("pass --mint or set mint in the tokenomics file"))
	}
	addr, err := address.Parse(value)
	if err != nil {
		s.fail("invalid mint", err)
	}
	return addr
}

func (s *session) addressFlag(cmd *cobra.Command, name string) address.Address {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		s.fail("missing flag", fmt.Errorf("--%s is required", name))
	}
	addr, err := address.Parse(value)
	if err != nil {
		s.fail("invalid --"+name, err)
	}
	return addr
}

// amount returns the --amount flag in base units
func (s *session) amount(cmd *cobra.Command) uint64 {
	value, _ := cmd.Flags().GetString("amount")
	whole, _ := cmd.Flags().GetBool("whole")
	ret, err := parseAmount(value, whole, s.tokenomics)
	if err != nil {
		s.fail("invalid --amount", err)
	}
	return ret
}

func parseAmount(value string, whole bool, rec *tokenomics.Record) (uint64, error) {
	ret, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	if ret == 0 {
		return 0, errors.New("amount must be positive")
	}
	if whole {
		units, ok := rec.BaseUnits(ret)
		if !ok {
			return 0, fmt.Errorf("%d %s overflows base units", ret, rec.Symbol)
		}
		return units, nil
	}
	return ret, nil
}

// tier returns the index of the tier named by the --tier flag
func (s *session) tier(cmd *cobra.Command) uint8 {
	name, _ := cmd.Flags().GetString("tier")
	index, _, ok := s.tokenomics.TierByName(name)
	if !ok {
		s.fail("invalid --tier", fmt.Errorf("unknown tier %q", name))
	}
	return index
}

func (s *session) pool(mint address.Address) address.Address {
	pool, _, err := s.node.Processor().Staking().PoolAddress(mint)
	if err != nil {
		s.fail("failed to derive pool address", err)
	}
	return pool
}

func (s *session) governance(mint address.Address) address.Address {
	gov, _, err := s.node.Processor().Governance().GovernanceAddress(mint)
	if err != nil {
		s.fail("failed to derive governance address", err)
	}
	return gov
}

func (s *session) showAccount(addr address.Address) {
	info, err := s.conn.GetAccount(s.ctx, addr)
	if err != nil {
		s.fail("failed to load account", err)
	}
	s.output(info)
}

func addMintFlag(cmd *cobra.Command) {
	cmd.Flags().String("mint", "", "token mint address (defaults to the tokenomics file)")
}

func addAmountFlags(cmd *cobra.Command) {
	cmd.Flags().String("amount", "", "amount in base units")
	cmd.Flags().Bool("whole", false, "treat --amount as whole tokens")
	_ = cmd.MarkFlagRequired("amount")
}

func addTierFlag(cmd *cobra.Command) {
	cmd.Flags().String("tier", "Flex", "staking tier name")
}
