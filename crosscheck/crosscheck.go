// Copyright 2025 The Ratio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crosscheck compares an exact table against a brute force float64
// enumeration of every hidden state and output word.
package crosscheck

import (
	"github.com/pointlander/gradient/tf64"

	"github.com/pointlander/linechain/gray"
	"github.com/pointlander/linechain/model"
)

// Marginals enumerates the joint distribution directly and returns the
// output word marginals in Gray code order
func Marginals(p *model.Params) []float64 {
	stay, _ := p.Stay.Float64()
	match, _ := p.Match.Float64()
	n, size := p.Bits, p.Size()

	prior := make([]float64, size)
	for hidden := range size {
		weight := .5
		for i := uint(1); i < n; i++ {
			if hidden>>i&1 == hidden>>(i-1)&1 {
				weight *= stay
			} else {
				weight *= 1 - stay
			}
		}
		prior[hidden] = weight
	}

	marginals := make([]float64, size)
	for index := range size {
		output := gray.Code(index)
		sum := 0.0
		for hidden, weight := range prior {
			for i := range n {
				if (uint64(hidden)^output)>>i&1 == 0 {
					weight *= match
				} else {
					weight *= 1 - match
				}
			}
			sum += weight
		}
		marginals[index] = sum
	}
	return marginals
}

// MeanSquaredError is the quadratic cost between the exact table and the
// brute force marginals
func MeanSquaredError(table []gray.Entry, marginals []float64) float64 {
	set := tf64.NewSet()
	set.Add("exact", len(table), 1)
	set.Add("brute", len(table), 1)
	exact, brute := set.ByName["exact"], set.ByName["brute"]
	for i, entry := range table {
		value, _ := entry.P.Float64()
		exact.X = append(exact.X, value)
		brute.X = append(brute.X, marginals[i])
	}

	loss := tf64.Avg(tf64.Quadratic(set.Get("exact"), set.Get("brute")))
	set.Zero()
	return tf64.Gradient(loss).X[0]
}
