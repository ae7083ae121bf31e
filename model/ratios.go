// Copyright 2025 The Ratio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"
	"math/big"
)

// Ratios are the multiplicative factors applied when a single cell or
// output bit flips. They are read only once derived.
type Ratios struct {
	StayOverSwitch    *big.Rat
	SwitchOverStay    *big.Rat
	MismatchOverMatch *big.Rat
	MatchOverMismatch *big.Rat
}

// Derive computes the ratio table for a parameter set
func Derive(p *Params) (*Ratios, error) {
	stay, sw := p.Stay, p.Switch()
	match, mismatch := p.Match, p.Mismatch()
	for _, rate := range []*big.Rat{stay, sw, match, mismatch} {
		if rate.Sign() == 0 {
			return nil, fmt.Errorf("%w: %s", ErrDegenerateRate, p)
		}
	}
	stayOverSwitch := new(big.Rat).Quo(stay, sw)
	matchOverMismatch := new(big.Rat).Quo(match, mismatch)
	return &Ratios{
		StayOverSwitch:    stayOverSwitch,
		SwitchOverStay:    new(big.Rat).Inv(stayOverSwitch),
		MismatchOverMatch: new(big.Rat).Inv(matchOverMismatch),
		MatchOverMismatch: matchOverMismatch,
	}, nil
}
