// Copyright 2025 The Ratio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report prints the statistics of a run.
package report

import (
	"fmt"
	"io"
	"math/big"

	"github.com/dustin/go-humanize"

	"github.com/pointlander/linechain/model"
	"github.com/pointlander/linechain/stats"
)

// Digits is the number of significant digits printed for floating values
const Digits = 12

// Extra holds optional lines appended to a report
type Extra struct {
	Digest     string
	Crosscheck *float64
	Deviation  *float64
	Samples    int
}

func float(x *big.Rat) string {
	return new(big.Float).SetPrec(stats.DefaultPrecision).SetRat(x).Text('g', Digits)
}

// Write prints the parameters and statistics
func Write(w io.Writer, p *model.Params, s *stats.Summary, extra Extra) error {
	pw := &printer{w: w}
	pw.printf("bits: %d\n", p.Bits)
	pw.printf("stay rate: %s\n", p.Stay.RatString())
	pw.printf("state match: %s\n", p.Match.RatString())
	pw.printf("entries: %s\n", humanize.Comma(int64(p.Size())))
	pw.printf("entropy: %s bits\n", s.Entropy.Text('g', Digits))
	if s.RateDefined {
		pw.printf("entropy rate: %s bits/cell\n", s.Rate.Text('g', Digits))
	} else {
		pw.printf("entropy rate: undefined for a single cell\n")
	}
	pw.printf("total probability: %s\n", s.Total.RatString())
	if extra.Digest != "" {
		pw.printf("digest: %s\n", extra.Digest)
	}
	if extra.Crosscheck != nil {
		pw.printf("crosscheck mse: %g\n", *extra.Crosscheck)
	}
	if extra.Deviation != nil {
		pw.printf("sampled %s words, worst deviation: %g\n", humanize.Comma(int64(extra.Samples)), *extra.Deviation)
	}

	h := s.Histogram
	pw.printf("range: [%s, %s]\n", float(h.Min), float(h.Max))
	pw.printf("bucket width: %s\n", float(h.Width))
	for i, count := range h.Counts {
		pw.printf("%d -> %d\n", i, count)
	}
	for _, m := range s.Multiplicities {
		pw.printf("%dx of %s\n", m.Count, m.Value.RatString())
	}
	return pw.err
}

// printer remembers the first write error
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
