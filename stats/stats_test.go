// Copyright 2025 The Ratio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointlander/linechain/gray"
	"github.com/pointlander/linechain/model"
)

func table(t *testing.T, n uint, stay, match *big.Rat, buckets int) (*model.Params, []gray.Entry) {
	t.Helper()
	p, err := model.NewParams(n, stay, match, buckets)
	require.NoError(t, err)
	r, err := model.Derive(p)
	require.NoError(t, err)
	entries, err := gray.Table(p, r)
	require.NoError(t, err)
	return p, entries
}

func TestLog2(t *testing.T) {
	eight := new(big.Float).SetPrec(DefaultPrecision).SetInt64(8)
	assert.Equal(t, 0, Log2(eight).Cmp(big.NewFloat(3)))

	quarter := new(big.Float).SetPrec(DefaultPrecision).SetRat(big.NewRat(1, 4))
	assert.Equal(t, 0, Log2(quarter).Cmp(big.NewFloat(-2)))

	three := new(big.Float).SetPrec(DefaultPrecision).SetInt64(3)
	f, _ := Log2(three).Float64()
	assert.InDelta(t, math.Log2(3), f, 1e-15)

	tenth := new(big.Float).SetPrec(DefaultPrecision).SetRat(big.NewRat(1, 10))
	f, _ = Log2(tenth).Float64()
	assert.InDelta(t, math.Log2(.1), f, 1e-15)
}

func TestUniformEntropyIsExact(t *testing.T) {
	half := big.NewRat(1, 2)
	for n := uint(2); n <= 6; n++ {
		p, entries := table(t, n, half, half, 8)
		s, err := Analyze(p, entries)
		require.NoError(t, err)
		assert.Equal(t, 0, s.Entropy.Cmp(new(big.Float).SetUint64(uint64(n))), "n=%d entropy %s", n, s.Entropy.String())
		require.True(t, s.RateDefined)
		assert.Equal(t, 0, s.Rate.Cmp(big.NewFloat(1)))
		assert.Equal(t, "1", s.Total.RatString())

		require.Len(t, s.Multiplicities, 1)
		assert.Equal(t, "1/2", s.Multiplicities[0].Value.RatString())
		assert.Equal(t, 1<<(n-1), s.Multiplicities[0].Count)
		assert.Equal(t, 1<<(n-1), s.Histogram.Counts[0])
		assert.Equal(t, 0, s.Histogram.Width.Sign())
	}
}

func TestCorrelatedPair(t *testing.T) {
	p, entries := table(t, 2, big.NewRat(2, 3), big.NewRat(3, 4), 4)
	s, err := Analyze(p, entries)
	require.NoError(t, err)

	a, b := 13.0/48, 11.0/48
	expected := -2 * (a*math.Log2(a) + b*math.Log2(b))
	entropy, _ := s.Entropy.Float64()
	assert.InDelta(t, expected, entropy, 1e-12)
	rate, _ := s.Rate.Float64()
	assert.InDelta(t, expected-1, rate, 1e-12)

	require.Len(t, s.Pairs, 2)
	assert.Equal(t, "11/24", s.Pairs[0].RatString())
	assert.Equal(t, "11/24", s.Pairs[1].RatString())
	require.Len(t, s.Multiplicities, 1)
	assert.Equal(t, 2, s.Multiplicities[0].Count)
}

func TestSingleCellRateUndefined(t *testing.T) {
	p, entries := table(t, 1, big.NewRat(2, 3), big.NewRat(3, 4), 2)
	s, err := Analyze(p, entries)
	require.NoError(t, err)
	assert.False(t, s.RateDefined)
	assert.Nil(t, s.Rate)
	assert.Equal(t, 0, s.Entropy.Cmp(big.NewFloat(1)))
}

func TestHistogramCountsEveryPair(t *testing.T) {
	for _, buckets := range []int{1, 3, 32} {
		p, entries := table(t, 6, big.NewRat(2, 3), big.NewRat(999, 1000), buckets)
		s, err := Analyze(p, entries)
		require.NoError(t, err)
		require.Len(t, s.Histogram.Counts, buckets)
		sum := 0
		for _, count := range s.Histogram.Counts {
			sum += count
		}
		assert.Equal(t, 32, sum)

		sum = 0
		for i, m := range s.Multiplicities {
			sum += m.Count
			if i > 0 {
				assert.Equal(t, 1, m.Value.Cmp(s.Multiplicities[i-1].Value))
			}
		}
		assert.Equal(t, 32, sum)
		assert.True(t, s.Histogram.Min.Sign() > 0)
		assert.True(t, s.Histogram.Max.Cmp(big.NewRat(1, 2)) <= 0)
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	p, entries := table(t, 5, big.NewRat(3, 5), big.NewRat(9, 10), 8)
	a, err := Analyze(p, entries)
	require.NoError(t, err)
	b, err := Analyze(p, entries)
	require.NoError(t, err)

	assert.Equal(t, 0, a.Entropy.Cmp(b.Entropy))
	assert.Equal(t, 0, a.Rate.Cmp(b.Rate))
	assert.Equal(t, a.Histogram.Counts, b.Histogram.Counts)
	require.Len(t, b.Multiplicities, len(a.Multiplicities))
	for i := range a.Multiplicities {
		assert.Equal(t, 0, a.Multiplicities[i].Value.Cmp(b.Multiplicities[i].Value))
		assert.Equal(t, a.Multiplicities[i].Count, b.Multiplicities[i].Count)
	}
}

func TestAnalyzeIncompleteTable(t *testing.T) {
	p, entries := table(t, 3, big.NewRat(1, 2), big.NewRat(3, 4), 2)
	_, err := Analyze(p, entries[:5])
	assert.ErrorIs(t, err, ErrIncompleteTable)
}

func TestBin(t *testing.T) {
	values := []*big.Rat{
		big.NewRat(1, 1), big.NewRat(0, 1), big.NewRat(3, 4), big.NewRat(1, 4), big.NewRat(1, 2),
	}
	h := Bin(values, 4)
	assert.Equal(t, []int{1, 1, 1, 2}, h.Counts)
	assert.Equal(t, "0", h.Min.RatString())
	assert.Equal(t, "1", h.Max.RatString())
	assert.Equal(t, "1/4", h.Width.RatString())
}

func TestCount(t *testing.T) {
	values := []*big.Rat{
		big.NewRat(1, 3), big.NewRat(1, 4), big.NewRat(2, 6), big.NewRat(1, 4), big.NewRat(1, 3),
	}
	counts := Count(values)
	require.Len(t, counts, 2)
	assert.Equal(t, "1/4", counts[0].Value.RatString())
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, "1/3", counts[1].Value.RatString())
	assert.Equal(t, 3, counts[1].Count)
}

func TestPair(t *testing.T) {
	assert.Equal(t, "1/4", Pair(big.NewRat(3, 8), big.NewRat(1, 8)).RatString())
	assert.Equal(t, "1/2", Pair(big.NewRat(1, 8), big.NewRat(1, 8)).RatString())
	assert.Equal(t, "0", Pair(new(big.Rat), new(big.Rat)).RatString())
}
