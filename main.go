// Copyright 2025 The Ratio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/pointlander/linechain/crosscheck"
	"github.com/pointlander/linechain/gray"
	"github.com/pointlander/linechain/logging"
	"github.com/pointlander/linechain/model"
	"github.com/pointlander/linechain/report"
	"github.com/pointlander/linechain/sample"
	"github.com/pointlander/linechain/stats"
)

// MaxCrosscheckBits bounds the brute force float64 enumeration
const MaxCrosscheckBits = 16

// CLI is the command line of linechain; defaults are the reference configuration
type CLI struct {
	Bits      uint   `short:"n" default:"12" env:"LINECHAIN_BITS" help:"Number of cells"`
	Stay      string `short:"s" default:"2/3" env:"LINECHAIN_STAY" help:"Probability a cell equals its neighbor"`
	Match     string `short:"m" default:"999/1000" env:"LINECHAIN_MATCH" help:"Probability an observed bit equals its cell"`
	Buckets   int    `short:"b" default:"32" env:"LINECHAIN_BUCKETS" help:"Histogram buckets"`
	Start     uint64 `default:"0" help:"First output word index when printing a partial table"`
	Distance  uint64 `default:"0" help:"Number of output words to print; 0 computes the full table and its statistics"`
	Precision uint   `default:"256" env:"LINECHAIN_PRECISION" help:"Mantissa bits used for the entropy"`
	Check     bool   `name:"crosscheck" help:"Compare against a brute force float64 enumeration"`
	Samples   int    `default:"0" help:"Number of Monte Carlo words to draw for comparison"`
	Seed      int64  `default:"1" help:"Sampler seed"`
	LogLevel  string `default:"info" env:"LINECHAIN_LOG_LEVEL" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `default:"text" env:"LINECHAIN_LOG_FORMAT" enum:"text,json" help:"Log format"`
}

// Params converts the flags into a validated parameter set
func (c *CLI) Params() (*model.Params, error) {
	stay, err := model.ParseRate(c.Stay)
	if err != nil {
		return nil, fmt.Errorf("stay: %w", err)
	}
	match, err := model.ParseRate(c.Match)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}
	return model.NewParams(c.Bits, stay, match, c.Buckets)
}

// Run computes the table and writes the report to w
func (c *CLI) Run(ctx context.Context, w io.Writer) error {
	p, err := c.Params()
	if err != nil {
		return err
	}
	if c.Precision < 64 {
		return &model.ParameterError{Field: "precision", Message: fmt.Sprintf("%d is below 64 bits", c.Precision)}
	}
	r, err := model.Derive(p)
	if err != nil {
		return err
	}
	logger := logging.FromContext(ctx)
	logger.Info("parameters", "bits", p.Bits, "stay", p.Stay.RatString(), "match", p.Match.RatString(), "buckets", p.Buckets)

	if c.Distance > 0 {
		done := logging.Timed(ctx, "range", "start", c.Start, "distance", c.Distance)
		entries, err := gray.Compute(c.Start, c.Distance, p, r)
		if err != nil {
			return err
		}
		done()
		for _, entry := range entries {
			if _, err := fmt.Fprintf(w, "%d %0*b %s\n", entry.Index, int(p.Bits), entry.Word, entry.P.RatString()); err != nil {
				return err
			}
		}
		return nil
	}

	done := logging.Timed(ctx, "table", "bits", p.Bits)
	table, err := gray.Table(p, r)
	if err != nil {
		return err
	}
	done()

	done = logging.Timed(ctx, "statistics")
	s, err := stats.Analyze(p, table, stats.WithPrecision(c.Precision))
	if err != nil {
		return err
	}
	done()
	if s.Total.Cmp(big.NewRat(1, 1)) != 0 {
		logger.Error("probabilities do not sum to one", "total", s.Total.RatString())
	}

	extra := report.Extra{Digest: gray.Digest(table)}
	if c.Check {
		if p.Bits > MaxCrosscheckBits {
			logger.Warn("skipping crosscheck", "bits", p.Bits, "max", MaxCrosscheckBits)
		} else {
			done = logging.Timed(ctx, "crosscheck")
			mse := crosscheck.MeanSquaredError(table, crosscheck.Marginals(p))
			done()
			extra.Crosscheck = &mse
		}
	}
	if c.Samples > 0 {
		done = logging.Timed(ctx, "sample", "samples", c.Samples, "seed", c.Seed)
		counts := sample.New(p, c.Seed).Counts(c.Samples)
		deviation := sample.Deviation(table, counts.Frequencies())
		done()
		extra.Deviation, extra.Samples = &deviation, c.Samples
	}
	return report.Write(w, p, s, extra)
}

func main() {
	_ = godotenv.Load(".env")

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("linechain"),
		kong.Description("Exact output word distribution of a noisy binary cell chain"),
		kong.UsageOnError(),
	)
	logging.Init(os.Stderr, logging.ParseLevel(cli.LogLevel), logging.ParseFormat(cli.LogFormat))
	ctx.FatalIfErrorf(cli.Run(logging.WithRunID(context.Background()), os.Stdout))
}
