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
	"crypto/rand"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/processor"
	"github.com/spf13/cobra"
)

func tokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage token mints and accounts",
	}
	cmd.AddCommand(
		tokenCreateMintCommand(),
		tokenCreateAccountCommand(),
		tokenMintToCommand(),
		tokenTransferCommand(),
		tokenBalanceCommand(),
	)
	return cmd
}

func tokenCreateMintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-mint",
		Short: "Create a token mint with the configured keypair as mint authority",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			var mint address.Address
			if value, _ := cmd.Flags().GetString("mint"); value != "" || s.tokenomics.Mint != "" {
				mint = s.mint(cmd)
			} else if _, err := rand.Read(mint[:]); err != nil {
				s.fail("failed to generate mint address", err)
			}
			decimals, _ := cmd.Flags().GetUint8("decimals")
			if !cmd.Flags().Changed("decimals") {
				decimals = s.tokenomics.Decimals
			}
			receipt := s.submit(processor.KindCreateMint, &processor.CreateMintArgs{
				Mint:     mint,
				Decimals: decimals,
			})
			s.output(receipt.Result)
		},
	}
	cmd.Flags().String("mint", "", "mint address (defaults to the tokenomics file, then a random address)")
	cmd.Flags().Uint8("decimals", 0, "decimal places (defaults to the tokenomics file)")
	return cmd
}

func tokenCreateAccountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Create the token account of an owner",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			owner := s.signer.Address()
			if value, _ := cmd.Flags().GetString("owner"); value != "" {
				owner = s.addressFlag(cmd, "owner")
			}
			receipt := s.submit(processor.KindCreateTokenAccount, &processor.CreateTokenAccountArgs{
				Mint:  s.mint(cmd),
				Owner: owner,
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	cmd.Flags().String("owner", "", "account owner (defaults to the configured keypair)")
	return cmd
}

func tokenMintToCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint-to",
		Short: "Mint tokens into a token account",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			receipt := s.submit(processor.KindMintTo, &processor.MintToArgs{
				Mint:        s.mint(cmd),
				Destination: s.addressFlag(cmd, "to"),
				Amount:      s.amount(cmd),
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	addAmountFlags(cmd)
	cmd.Flags().String("to", "", "destination token account")
	return cmd
}

func tokenTransferCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer tokens from the token account of the configured keypair",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, true)
			defer s.close()
			mint := s.mint(cmd)
			source, _, err := s.node.Processor().Ledger().AccountAddress(mint, s.signer.Address())
			if err != nil {
				s.fail("failed to derive source account", err)
			}
			receipt := s.submit(processor.KindTransfer, &processor.TransferArgs{
				Source:      source,
				Destination: s.addressFlag(cmd, "to"),
				Amount:      s.amount(cmd),
			})
			s.output(receipt.Result)
		},
	}
	addMintFlag(cmd)
	addAmountFlags(cmd)
	cmd.Flags().String("to", "", "destination token account")
	return cmd
}

func tokenBalanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance [token-account]",
		Short: "Show the balance of a token account",
		Long:  "Show the balance of a token account. Without an argument, the account of the configured keypair for the mint is used",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, len(args) == 0)
			defer s.close()
			var account address.Address
			if len(args) == 1 {
				var err error
				account, err = address.Parse(args[0])
				if err != nil {
					s.fail("invalid token account", err)
				}
			} else {
				var err error
				account, _, err = s.node.Processor().Ledger().AccountAddress(s.mint(cmd), s.signer.Address())
				if err != nil {
					s.fail("failed to derive token account", err)
				}
			}
			balance, err := s.conn.GetBalance(s.ctx, account)
			if err != nil {
				s.fail("failed to load balance", err)
			}
			s.output(map[string]any{
				"account": account,
				"amount":  balance,
				"symbol":  s.tokenomics.Symbol,
			})
		},
	}
	addMintFlag(cmd)
	return cmd
}
