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

package config

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/connection"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "volya.config"

const envPrefix = "volya"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	DatabasePath        string `yaml:"databasePath"        split_words:"true"`
	Network             string `yaml:"network"`
	NetworkURL          string `yaml:"networkUrl"          envconfig:"NETWORK_URL"`
	TokenomicsPath      string `yaml:"tokenomics"          envconfig:"TOKENOMICS"`
	KeypairPath         string `yaml:"keypair"             envconfig:"KEYPAIR_PATH"`
	TokenProgramID      string `yaml:"tokenProgramId"      envconfig:"TOKEN_PROGRAM_ID"`
	StakingProgramID    string `yaml:"stakingProgramId"    envconfig:"STAKING_PROGRAM_ID"`
	GovernanceProgramID string `yaml:"governanceProgramId" envconfig:"GOVERNANCE_PROGRAM_ID"`
	MetricsBindAddr     string `yaml:"metricsBindAddr"     split_words:"true"`
	MetricsPort         uint   `yaml:"metricsPort"         split_words:"true"`
	Tracing             bool   `yaml:"tracing"`
	TracingStdout       bool   `yaml:"tracingStdout"       split_words:"true"`
}

var globalConfig = defaultConfig()

func defaultConfig() *Config {
	return &Config{
		DatabasePath:    ".volya",
		Network:         connection.NetworkLocal,
		MetricsBindAddr: "127.0.0.1",
		MetricsPort:     0,
	}
}

// LoadConfig reads configFile, or ~/.volya/volya.yaml or /etc/volya/volya.yaml
// when it is empty, and applies VOLYA_* environment overrides on top
func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".volya", "volya.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		if configFile == "" {
			systemPath := "/etc/volya/volya.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := envconfig.Process(envPrefix, globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if _, ok := connection.NetworkByName(globalConfig.Network); !ok {
		return nil, fmt.Errorf(
			"unknown network %q, expected one of %v",
			globalConfig.Network,
			connection.NetworkNames(),
		)
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}

// ResolveNetwork returns the configured network with any URL override applied
func (c *Config) ResolveNetwork() (connection.Network, error) {
	network, ok := connection.NetworkByName(c.Network)
	if !ok {
		return connection.Network{}, fmt.Errorf("unknown network %q", c.Network)
	}
	return network.WithURL(c.NetworkURL), nil
}

// ProgramIDs are the addresses the engines derive their accounts under
type ProgramIDs struct {
	Token      address.Address
	Staking    address.Address
	Governance address.Address
}

// DefaultProgramID is the program ID used when none is configured, the
// SHA-256 digest of "volya:" followed by the program name
func DefaultProgramID(name string) address.Address {
	return address.Address(sha256.Sum256([]byte("volya:" + name)))
}

// ResolveProgramIDs parses the configured program IDs, using
// DefaultProgramID for any left empty
func (c *Config) ResolveProgramIDs() (ProgramIDs, error) {
	var ret ProgramIDs
	for _, item := range []struct {
		name  string
		value string
		dest  *address.Address
	}{
		{"token", c.TokenProgramID, &ret.Token},
		{"staking", c.StakingProgramID, &ret.Staking},
		{"governance", c.GovernanceProgramID, &ret.Governance},
	} {
		if item.value == "" {
			*item.dest = DefaultProgramID(item.name)
			continue
		}
		addr, err := address.Parse(item.value)
		if err != nil {
			return ProgramIDs{}, fmt.Errorf("invalid %s program ID: %w", item.name, err)
		}
		*item.dest = addr
	}
	return ret, nil
}
