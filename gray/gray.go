// Copyright 2025 The Ratio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gray computes the exact marginal probability of each output word
// of the cell chain. Both the hidden states and the output words are walked
// in reflected binary Gray code order so that every step flips one bit and
// the joint weight is updated with one to three ratio multiplications.
package gray

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/zeebo/blake3"

	"github.com/pointlander/linechain/model"
)

var (
	// ErrInvalidRange is returned when the requested words do not fit in 2^n
	ErrInvalidRange = errors.New("invalid range")
	// ErrStateInvariant is the panic value when the hidden walk does not return to zero
	ErrStateInvariant = errors.New("hidden state did not return to zero")
)

// Entry is the marginal probability of one output word
type Entry struct {
	Index uint64
	Word  uint64
	P     *big.Rat
}

// Code is the reflected binary Gray code of i
func Code(i uint64) uint64 {
	return i ^ i>>1
}

// flip is the bit changed between Code(k-1) and Code(k), clamped to the last cell
func flip(k uint64, last uint) uint {
	return min(uint(bits.TrailingZeros64(k)), last)
}

func set(x uint64, i uint) bool {
	return x&(1<<i) != 0
}

// pow raises a rational to a non negative integer power
func pow(x *big.Rat, k uint) *big.Rat {
	e := new(big.Int).SetUint64(uint64(k))
	num := new(big.Int).Exp(x.Num(), e, nil)
	den := new(big.Int).Exp(x.Denom(), e, nil)
	return new(big.Rat).SetFrac(num, den)
}

// Compute returns the marginal probabilities of the output words with
// indexes start through start+distance-1
func Compute(start, distance uint64, p *model.Params, r *model.Ratios) ([]Entry, error) {
	size := p.Size()
	if start > size || distance > size-start {
		return nil, fmt.Errorf("%w: [%d, %d) exceeds %d words", ErrInvalidRange, start, start+distance, size)
	}

	n, last := p.Bits, p.Bits-1
	output := Code(start)
	discrepancies := uint(bits.OnesCount64(output))

	current := big.NewRat(1, 2)
	current.Mul(current, pow(p.Stay, n-1))
	current.Mul(current, pow(p.Match, n-discrepancies))
	current.Mul(current, pow(p.Mismatch(), discrepancies))

	var state uint64
	entries := make([]Entry, 0, distance)
	for i := range distance {
		total := new(big.Rat)
		for k := uint64(1); k <= size; k++ {
			f := flip(k, last)
			bit := set(state, f)
			if f > 0 {
				if bit == set(state, f-1) {
					current.Mul(current, r.SwitchOverStay)
				} else {
					current.Mul(current, r.StayOverSwitch)
				}
			}
			if f < last {
				if bit == set(state, f+1) {
					current.Mul(current, r.SwitchOverStay)
				} else {
					current.Mul(current, r.StayOverSwitch)
				}
			}
			if bit == set(output, f) {
				current.Mul(current, r.MismatchOverMatch)
			} else {
				current.Mul(current, r.MatchOverMismatch)
			}
			state ^= 1 << f
			total.Add(total, current)
		}
		if state != 0 {
			panic(fmt.Errorf("%w: state %#x after word %#x", ErrStateInvariant, state, output))
		}
		entries = append(entries, Entry{Index: start + i, Word: output, P: total})

		step := start + i + 1
		f := flip(step, last)
		if set(output, f) {
			current.Mul(current, r.MatchOverMismatch)
		} else {
			current.Mul(current, r.MismatchOverMatch)
		}
		output ^= 1 << f
	}
	return entries, nil
}

// Table computes the probabilities of all 2^n output words
func Table(p *model.Params, r *model.Ratios) ([]Entry, error) {
	return Compute(0, p.Size(), p, r)
}

// Digest is the BLAKE3 fingerprint of a table; equal tables have equal digests
func Digest(entries []Entry) string {
	buffer := make([]byte, 0, 64*len(entries))
	for _, entry := range entries {
		buffer = binary.LittleEndian.AppendUint64(buffer, entry.Word)
		buffer = append(buffer, entry.P.RatString()...)
		buffer = append(buffer, 0)
	}
	sum := blake3.Sum256(buffer)
	return hex.EncodeToString(sum[:])
}
