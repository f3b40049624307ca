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
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

// Trustees that must not be granted access to a keypair file, by SDDL
// abbreviation and by SID
var insecureTrustees = map[string]string{
	"WD":           "Everyone",
	"S-1-1-0":      "Everyone",
	"BU":           "BUILTIN\\Users",
	"S-1-5-32-545": "BUILTIN\\Users",
	"AU":           "Authenticated Users",
	"S-1-5-11":     "Authenticated Users",
}

// checkOpenFilePermissions inspects the DACL of the open keypair file. NTFS
// will not replace a file held open, so checking by name is safe here
func checkOpenFilePermissions(f *os.File) error {
	path := f.Name()
	sd, err := windows.GetNamedSecurityInfo(
		path,
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION,
	)
	if err != nil {
		return fmt.Errorf("failed to get security info for %q: %w", path, err)
	}
	sddl := sd.String()
	if sddl == "" {
		return fmt.Errorf("failed to read security descriptor for %q", path)
	}
	return checkSDDL(path, sddl)
}

// checkSDDL rejects a DACL with an allow entry for any insecure trustee. A
// missing DACL grants everyone access
func checkSDDL(path, sddl string) error {
	daclIdx := strings.Index(sddl, "D:")
	if daclIdx < 0 {
		return fmt.Errorf(
			"keypair file %q has no DACL: %w",
			path,
			ErrInsecureFileMode,
		)
	}
	dacl := sddl[daclIdx+2:]
	if idx := strings.Index(dacl, "S:"); idx >= 0 {
		dacl = dacl[:idx]
	}
	for {
		start := strings.IndexByte(dacl, '(')
		if start < 0 {
			return nil
		}
		end := strings.IndexByte(dacl[start:], ')')
		if end < 0 {
			return nil
		}
		ace := dacl[start+1 : start+end]
		dacl = dacl[start+end+1:]
		// type;flags;rights;object;inherit;trustee
		fields := strings.Split(ace, ";")
		if len(fields) < 6 || fields[0] != "A" {
			continue
		}
		if name, ok := insecureTrustees[fields[5]]; ok {
			return fmt.Errorf(
				"keypair file %q grants access to %s: %w",
				path,
				name,
				ErrInsecureFileMode,
			)
		}
	}
}
