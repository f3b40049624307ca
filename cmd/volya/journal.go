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
	"encoding/hex"

	"github.com/blinklabs-io/volya/address"
	"github.com/blinklabs-io/volya/database"
	"github.com/blinklabs-io/volya/processor"
	"github.com/spf13/cobra"
)

type journalView struct {
	Sequence  uint64          `json:"sequence"`
	Kind      string          `json:"kind"`
	Signer    address.Address `json:"signer"`
	Signature string          `json:"signature"`
	Timestamp int64           `json:"timestamp"`
}

func newJournalView(entry database.JournalEntry) journalView {
	ret := journalView{
		Sequence:  entry.Sequence,
		Kind:      processor.KindName(entry.Kind),
		Signature: hex.EncodeToString(entry.Signature),
		Timestamp: entry.Timestamp,
	}
	if signer, err := address.FromBytes(entry.Signer); err == nil {
		ret.Signer = signer
	}
	return ret
}

func journalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List committed instructions",
		Run: func(cmd *cobra.Command, args []string) {
			s := openSession(cmd, false)
			defer s.close()
			from, _ := cmd.Flags().GetUint64("from")
			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := s.node.Processor().Journal(from, limit)
			if err != nil {
				s.fail("failed to read journal", err)
			}
			ret := make([]journalView, 0, len(entries))
			for _, entry := range entries {
				ret = append(ret, newJournalView(entry))
			}
			s.output(ret)
		},
	}
	cmd.Flags().Uint64("from", 1, "first sequence number")
	cmd.Flags().Int("limit", 100, "maximum number of entries")
	return cmd
}
