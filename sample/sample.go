// Copyright 2025 The Ratio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sample draws output words from the cell chain as a Markov process.
package sample

import (
	"math"
	"math/rand"

	"github.com/pointlander/linechain/gray"
	"github.com/pointlander/linechain/model"
)

// Sampler draws hidden chains and observes them through the match channel
type Sampler struct {
	bits  uint
	stay  float64
	match float64
	rng   *rand.Rand
}

// New creates a sampler with a fixed seed
func New(p *model.Params, seed int64) *Sampler {
	stay, _ := p.Stay.Float64()
	match, _ := p.Match.Float64()
	return &Sampler{
		bits:  p.Bits,
		stay:  stay,
		match: match,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Iterate advances the chain by one cell
func (s *Sampler) Iterate(cell bool) bool {
	if s.rng.Float64() < s.stay {
		return cell
	}
	return !cell
}

// Draw samples one hidden chain and returns the observed word
func (s *Sampler) Draw() uint64 {
	var word uint64
	cell := s.rng.Float64() < .5
	for i := range s.bits {
		if i > 0 {
			cell = s.Iterate(cell)
		}
		observed := cell
		if s.rng.Float64() >= s.match {
			observed = !observed
		}
		if observed {
			word |= 1 << i
		}
	}
	return word
}

// Counts is a count vector indexed by output word
type Counts []uint32

// Counts draws samples words and tallies them
func (s *Sampler) Counts(samples int) Counts {
	counts := make(Counts, uint64(1)<<s.bits)
	for range samples {
		counts[s.Draw()]++
	}
	return counts
}

// Frequencies normalizes the count vector
func (c Counts) Frequencies() []float64 {
	sum := 0.0
	for _, value := range c {
		sum += float64(value)
	}
	result := make([]float64, len(c))
	if sum == 0 {
		return result
	}
	for i, value := range c {
		result[i] = float64(value) / sum
	}
	return result
}

// Deviation is the largest absolute difference between the exact table and
// the sampled frequencies, which are indexed by word
func Deviation(table []gray.Entry, frequencies []float64) float64 {
	worst := 0.0
	for _, entry := range table {
		value, _ := entry.P.Float64()
		worst = math.Max(worst, math.Abs(value-frequencies[entry.Word]))
	}
	return worst
}
