// Copyright 2025 The Ratio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model holds the parameters of the noisy cell chain and the
// likelihood ratios derived from them.
package model

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
	"strings"
)

// MaxBits is the largest supported cell count
const MaxBits = bits.UintSize - 1

var (
	// ErrInvalidParameter is returned when a parameter set fails validation
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDegenerateRate is returned when a rate is exactly 0 or 1
	ErrDegenerateRate = errors.New("degenerate rate")
)

// ParameterError describes which parameter failed validation
type ParameterError struct {
	Field   string
	Message string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Message)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// Params is a validated parameter set
type Params struct {
	// Bits is the number of cells n
	Bits uint
	// Stay is the probability a cell equals its neighbor
	Stay *big.Rat
	// Match is the probability an observed bit equals its cell
	Match *big.Rat
	// Buckets is the histogram resolution
	Buckets int
}

// NewParams validates and copies the parameters
func NewParams(n uint, stay, match *big.Rat, buckets int) (*Params, error) {
	if n < 1 || n > MaxBits {
		return nil, &ParameterError{Field: "bits", Message: fmt.Sprintf("%d not in [1, %d]", n, MaxBits)}
	}
	if err := checkRate("stay", stay); err != nil {
		return nil, err
	}
	if err := checkRate("match", match); err != nil {
		return nil, err
	}
	if buckets < 1 {
		return nil, &ParameterError{Field: "buckets", Message: fmt.Sprintf("%d is not positive", buckets)}
	}
	return &Params{
		Bits:    n,
		Stay:    new(big.Rat).Set(stay),
		Match:   new(big.Rat).Set(match),
		Buckets: buckets,
	}, nil
}

func checkRate(field string, rate *big.Rat) error {
	if rate == nil {
		return &ParameterError{Field: field, Message: "missing"}
	}
	if rate.Sign() <= 0 || rate.Cmp(big.NewRat(1, 1)) >= 0 {
		return &ParameterError{Field: field, Message: fmt.Sprintf("%s not strictly between 0 and 1", rate.RatString())}
	}
	return nil
}

// Reference returns the reference configuration: 12 cells, a stay rate
// of 2/3, a match rate of 1 - 1/1000 and 32 buckets
func Reference() *Params {
	match := new(big.Rat).Sub(big.NewRat(1, 1), big.NewRat(1, 1000))
	p, err := NewParams(12, big.NewRat(2, 3), match, 32)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseRate parses a rate written as a fraction ("2/3") or a decimal ("0.75")
func ParseRate(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	rate, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, &ParameterError{Field: "rate", Message: fmt.Sprintf("cannot parse %q", s)}
	}
	return rate, nil
}

// Size is the number of n-bit words, 2^n
func (p *Params) Size() uint64 {
	return uint64(1) << p.Bits
}

// Switch is the probability a cell differs from its neighbor
func (p *Params) Switch() *big.Rat {
	return new(big.Rat).Sub(big.NewRat(1, 1), p.Stay)
}

// Mismatch is the probability an observed bit differs from its cell
func (p *Params) Mismatch() *big.Rat {
	return new(big.Rat).Sub(big.NewRat(1, 1), p.Match)
}

func (p *Params) String() string {
	return fmt.Sprintf("n=%d stay=%s match=%s buckets=%d",
		p.Bits, p.Stay.RatString(), p.Match.RatString(), p.Buckets)
}
