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

package keystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSDDL(t *testing.T) {
	testDefs := []struct {
		sddl    string
		trustee string
	}{
		{sddl: "O:BAD:P(A;;GA;;;S-1-5-21-1-2-3-1001)"},
		{sddl: "D:(D;;GA;;;WD)(A;;GA;;;SY)"},
		{sddl: "D:(A;;GR;;;WD)", trustee: "Everyone"},
		{sddl: "D:(A;;GR;;;BU)", trustee: "BUILTIN\\Users"},
		{sddl: "D:P(A;;GA;;;SY)(A;;GR;;;S-1-5-11)", trustee: "Authenticated Users"},
		{sddl: "O:BA", trustee: "no DACL"},
	}
	for _, testDef := range testDefs {
		err := checkSDDL("keypair.json", testDef.sddl)
		if testDef.trustee == "" {
			assert.NoError(t, err, testDef.sddl)
			continue
		}
		require.ErrorIs(t, err, ErrInsecureFileMode, testDef.sddl)
		if testDef.trustee != "no DACL" {
			assert.Contains(t, err.Error(), testDef.trustee)
		}
	}
}
