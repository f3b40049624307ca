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

package connection

import (
	"fmt"
	"sort"
	"strings"
)

const (
	NetworkLocal      = "local"
	NetworkStaging    = "staging"
	NetworkProduction = "production"
)

type Network struct {
	Name string
	URL  string
}

var networks = map[string]Network{
	NetworkLocal: {
		Name: NetworkLocal,
		URL:  "http://localhost:8899",
	},
	NetworkStaging: {
		Name: NetworkStaging,
		URL:  "https://api.devnet.solana.com",
	},
	NetworkProduction: {
		Name: NetworkProduction,
		URL:  "https://api.mainnet-beta.solana.com",
	},
}

// NetworkByName returns a known network. Names are case-insensitive
func NetworkByName(name string) (Network, bool) {
	ret, ok := networks[strings.ToLower(name)]
	return ret, ok
}

// NetworkNames returns the known network names in sorted order
func NetworkNames() []string {
	ret := make([]string, 0, len(networks))
	for name := range networks {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// WithURL returns a copy of the network pointing at url
func (n Network) WithURL(url string) Network {
	if url != "" {
		n.URL = url
	}
	return n
}

func (n Network) String() string {
	return fmt.Sprintf("%s (%s)", n.Name, n.URL)
}
