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
	"fmt"

	"github.com/blinklabs-io/volya/address"
	"github.com/spf13/cobra"
)

type derivedAddress struct {
	Name    string          `json:"name"`
	Address address.Address `json:"address"`
	Bump    uint8           `json:"bump"`
}

func deriveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Show the program derived addresses of a mint and owner",
		Long:  "Show the program derived addresses of a mint and owner. The owner defaults to the configured keypair",
		Run: func(cmd *cobra.Command, args []string) {
			owner, _ := cmd.Flags().GetString("owner")
			s := openSession(cmd, owner == "")
			defer s.close()
			ownerAddr := s.signerOrFlag(cmd, "owner")
			mint := s.mint(cmd)
			number, _ := cmd.Flags().GetUint64("proposal")
			proc := s.node.Processor()
			pool := s.pool(mint)
			gov := s.governance(mint)
			var ret []derivedAddress
			add := func(name string, addr address.Address, bump uint8, err error) {
				if err != nil {
					s.fail("failed to derive "+name, err)
				}
				ret = append(ret, derivedAddress{Name: name, Address: addr, Bump: bump})
			}
			addr, bump, err := proc.Ledger().AccountAddress(mint, ownerAddr)
			add("token_account", addr, bump, err)
			addr, bump, err = proc.Staking().PoolAddress(mint)
			add("staking_pool", addr, bump, err)
			addr, bump, err = proc.Staking().VaultAddress(pool)
			add("vault", addr, bump, err)
			addr, bump, err = proc.Staking().VaultAuthorityAddress(pool)
			add("vault_authority", addr, bump, err)
			for i, tier := range proc.Staking().Tiers() {
				addr, bump, err = proc.Staking().StakeAccountAddress(pool, ownerAddr, uint8(i)) // #nosec G115
				add("stake_account_"+tier.Name, addr, bump, err)
			}
			addr, bump, err = proc.Governance().GovernanceAddress(mint)
			add("governance", addr, bump, err)
			proposal, bump, err := proc.Governance().ProposalAddress(gov, number)
			add(fmt.Sprintf("proposal_%d", number), proposal, bump, err)
			addr, bump, err = proc.Governance().VoteRecordAddress(proposal, ownerAddr)
			add(fmt.Sprintf("vote_record_%d", number), addr, bump, err)
			s.output(ret)
		},
	}
	addMintFlag(cmd)
	cmd.Flags().String("owner", "", "owner address (defaults to the configured keypair)")
	cmd.Flags().Uint64("proposal", 0, "proposal number for the proposal and vote record addresses")
	return cmd
}

// signerOrFlag returns the address in the named flag, or the session signer when it is unset
func (s *session) signerOrFlag(cmd *cobra.Command, name string) address.Address {
	if value, _ := cmd.Flags().GetString(name); value != "" {
		return s.addressFlag(cmd, name)
	}
	return s.signer.Address()
}
