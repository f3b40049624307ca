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

package types

import (
	"encoding/binary"
)

const (
	JournalBlobKeyPrefix  = "jx"
	JournalSequenceKey    = "jseq"
	JournalSigKeyPrefix   = "js"
	JournalSequenceLength = 8
)

func JournalBlobKeyUint64ToBytes(input uint64) []byte {
	ret := make([]byte, JournalSequenceLength)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

// JournalBlobKey returns the key for a journal entry. Sequence numbers are
// big-endian so that keys sort in commit order
func JournalBlobKey(seq uint64) []byte {
	key := []byte(JournalBlobKeyPrefix)
	key = append(key, JournalBlobKeyUint64ToBytes(seq)...)
	return key
}

// JournalSigKey indexes a journal entry by its instruction signature
func JournalSigKey(signature []byte) []byte {
	key := []byte(JournalSigKeyPrefix)
	key = append(key, signature...)
	return key
}

// JournalSequenceFromKey extracts the sequence number from a journal entry key
func JournalSequenceFromKey(key []byte) (uint64, bool) {
	if len(key) != len(JournalBlobKeyPrefix)+JournalSequenceLength {
		return 0, false
	}
	if string(key[:len(JournalBlobKeyPrefix)]) != JournalBlobKeyPrefix {
		return 0, false
	}
	return binary.BigEndian.Uint64(key[len(JournalBlobKeyPrefix):]), true
}
