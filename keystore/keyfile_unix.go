//go:build !windows

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
	"syscall"

	"golang.org/x/sys/unix"
)

// checkOpenFilePermissions requires the keypair to be a regular file owned by
// the current user with no group or other permission bits. The open handle
// is inspected, so the file checked is the file read
func checkOpenFilePermissions(f *os.File) error {
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat keypair file %q: %w", f.Name(), err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("keypair file %q is not a regular file: %w", f.Name(), ErrInsecureFileMode)
	}
	if perm := fi.Mode().Perm(); perm&0o077 != 0 {
		return fmt.Errorf(
			"keypair file %q is accessible by group or others (mode %04o): %w",
			f.Name(),
			perm,
			ErrInsecureFileMode,
		)
	}
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		euid := unix.Geteuid()
		if euid != 0 && int(st.Uid) != euid {
			return fmt.Errorf(
				"keypair file %q is owned by uid %d, not %d: %w",
				f.Name(),
				st.Uid,
				euid,
				ErrInsecureFileMode,
			)
		}
	}
	return nil
}
