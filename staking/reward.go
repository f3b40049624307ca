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

package staking

import (
	"github.com/blinklabs-io/volya/database/models"
	"github.com/holiman/uint256"
)

const (
	SecondsPerYear = 365 * 86400

	// APRs are whole percentages
	aprDenominator = SecondsPerYear * 100
)

var rewardDivisor = uint256.NewInt(aprDenominator)

// Reward returns floor(amount * aprPercent * elapsed / (SecondsPerYear * 100)).
// The product is computed in 256 bits so it cannot overflow. The second
// return value is false if the result does not fit in 64 bits
func Reward(amount uint64, aprPercent uint32, elapsed int64) (uint64, bool) {
	if amount == 0 || aprPercent == 0 || elapsed <= 0 {
		return 0, true
	}
	product := new(uint256.Int).Mul(
		uint256.NewInt(amount),
		uint256.NewInt(uint64(aprPercent)),
	)
	product.Mul(product, uint256.NewInt(uint64(elapsed)))
	product.Div(product, rewardDivisor)
	if !product.IsUint64() {
		return 0, false
	}
	return product.Uint64(), true
}

// UnlockedAmount returns the principal in lots whose lockup has ended at now
func UnlockedAmount(account *models.StakeAccount, now int64) uint64 {
	var ret uint64
	for _, lot := range account.Deposits {
		if lot.UnlockTime <= now {
			ret += uint64(lot.Amount)
		}
	}
	return ret
}

// NextUnlockTime returns the earliest unlock time of a lot still locked at
// now, or 0 if every lot is unlocked
func NextUnlockTime(account *models.StakeAccount, now int64) int64 {
	var ret int64
	for _, lot := range account.Deposits {
		if lot.UnlockTime > now && (ret == 0 || lot.UnlockTime < ret) {
			ret = lot.UnlockTime
		}
	}
	return ret
}
