// Copyright 2025 The Ratio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stats derives distribution statistics from a probability table.
package stats

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ALTree/bigfloat"

	"github.com/pointlander/linechain/gray"
	"github.com/pointlander/linechain/model"
)

// DefaultPrecision is the mantissa size used for the entropy
const DefaultPrecision = 256

// ErrIncompleteTable is returned when the table does not cover all 2^n words
var ErrIncompleteTable = errors.New("incomplete table")

// Histogram is a set of equal width bins spanning [Min, Max]
type Histogram struct {
	Min    *big.Rat
	Max    *big.Rat
	Width  *big.Rat
	Counts []int
}

// Multiplicity is the number of times an exact value occurs
type Multiplicity struct {
	Value *big.Rat
	Count int
}

// Summary holds everything derived from one table
type Summary struct {
	Total          *big.Rat
	Entropy        *big.Float
	Rate           *big.Float
	RateDefined    bool
	Pairs          []*big.Rat
	Histogram      Histogram
	Multiplicities []Multiplicity
}

type options struct {
	precision uint
}

// Option configures Analyze
type Option func(*options)

// WithPrecision sets the mantissa size used for the entropy
func WithPrecision(prec uint) Option {
	return func(o *options) {
		o.precision = prec
	}
}

// Analyze computes the statistics of a complete table
func Analyze(p *model.Params, table []gray.Entry, opts ...Option) (*Summary, error) {
	o := options{precision: DefaultPrecision}
	for _, opt := range opts {
		opt(&o)
	}
	if uint64(len(table)) != p.Size() {
		return nil, fmt.Errorf("%w: %d entries for %d words", ErrIncompleteTable, len(table), p.Size())
	}

	probabilities := make([]*big.Rat, len(table))
	for i, entry := range table {
		probabilities[i] = entry.P
	}

	s := &Summary{
		Total:   Total(probabilities),
		Entropy: Entropy(probabilities, o.precision),
		Pairs:   Pairs(probabilities),
	}
	if p.Bits > 1 {
		s.Rate = Rate(s.Entropy, p.Bits)
		s.RateDefined = true
	}
	s.Histogram = Bin(s.Pairs, p.Buckets)
	s.Multiplicities = Count(s.Pairs)
	return s, nil
}

// Total is the exact sum of the probabilities
func Total(probabilities []*big.Rat) *big.Rat {
	total := new(big.Rat)
	for _, value := range probabilities {
		total.Add(total, value)
	}
	return total
}

// Log2 is the base 2 logarithm of a positive x; powers of two are exact
func Log2(x *big.Float) *big.Float {
	prec := x.Prec()
	mant := new(big.Float).SetPrec(prec)
	exp := x.MantExp(mant)
	result := new(big.Float).SetPrec(prec).SetInt64(int64(exp))
	if mant.Cmp(big.NewFloat(.5)) == 0 {
		return result.Sub(result, big.NewFloat(1))
	}
	ln2 := bigfloat.Log(new(big.Float).SetPrec(prec).SetInt64(2))
	lg := bigfloat.Log(mant)
	lg.Quo(lg, ln2)
	return result.Add(result, lg)
}

// Entropy is the Shannon entropy in bits, -Σ p log2 p
func Entropy(probabilities []*big.Rat, prec uint) *big.Float {
	sum := new(big.Float).SetPrec(prec)
	for _, value := range probabilities {
		if value.Sign() <= 0 {
			continue
		}
		p := new(big.Float).SetPrec(prec).SetRat(value)
		term := new(big.Float).SetPrec(prec).Mul(p, Log2(p))
		sum.Add(sum, term)
	}
	return sum.Neg(sum)
}

// Rate is the entropy per cell after removing the uniform first cell
func Rate(entropy *big.Float, n uint) *big.Float {
	prec := entropy.Prec()
	rate := new(big.Float).SetPrec(prec).Sub(entropy, big.NewFloat(1))
	return rate.Quo(rate, new(big.Float).SetPrec(prec).SetUint64(uint64(n-1)))
}

// Pair is the share of the less likely of two probabilities, min(a,b)/(a+b)
func Pair(a, b *big.Rat) *big.Rat {
	sum := new(big.Rat).Add(a, b)
	if sum.Sign() == 0 {
		return new(big.Rat)
	}
	least := a
	if b.Cmp(a) < 0 {
		least = b
	}
	return new(big.Rat).Quo(least, sum)
}

// Pairs normalizes the table positions (2i, 2i+1)
func Pairs(probabilities []*big.Rat) []*big.Rat {
	pairs := make([]*big.Rat, 0, len(probabilities)/2)
	for i := 0; i+1 < len(probabilities); i += 2 {
		pairs = append(pairs, Pair(probabilities[i], probabilities[i+1]))
	}
	return pairs
}

func sorted(values []*big.Rat) []*big.Rat {
	s := make([]*big.Rat, len(values))
	copy(s, values)
	sort.Slice(s, func(i, j int) bool {
		return s[i].Cmp(s[j]) < 0
	})
	return s
}

// Bin sorts the values and counts them into equal width buckets over [min, max]
func Bin(values []*big.Rat, buckets int) Histogram {
	h := Histogram{
		Min:    new(big.Rat),
		Max:    new(big.Rat),
		Width:  new(big.Rat),
		Counts: make([]int, buckets),
	}
	if len(values) == 0 || buckets < 1 {
		return h
	}
	s := sorted(values)
	h.Min.Set(s[0])
	h.Max.Set(s[len(s)-1])
	span := new(big.Rat).Sub(h.Max, h.Min)
	h.Width.Quo(span, big.NewRat(int64(buckets), 1))
	if span.Sign() == 0 {
		h.Counts[0] = len(s)
		return h
	}

	last := big.NewInt(int64(buckets - 1))
	offset, index := new(big.Rat), new(big.Int)
	for _, value := range s {
		offset.Sub(value, h.Min)
		offset.Quo(offset, h.Width)
		index.Quo(offset.Num(), offset.Denom())
		if index.Cmp(last) > 0 {
			index.Set(last)
		}
		h.Counts[index.Int64()]++
	}
	return h
}

// Count maps each exact value to its number of occurrences, ascending by value
func Count(values []*big.Rat) []Multiplicity {
	var counts []Multiplicity
	for _, value := range sorted(values) {
		if n := len(counts); n > 0 && counts[n-1].Value.Cmp(value) == 0 {
			counts[n-1].Count++
			continue
		}
		counts = append(counts, Multiplicity{Value: value, Count: 1})
	}
	return counts
}
