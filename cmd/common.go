// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cardinalhq/nitronav/config"
	"github.com/cardinalhq/nitronav/internal/filereader"
	"github.com/cardinalhq/nitronav/internal/record"
	"github.com/cardinalhq/nitronav/internal/report"
	"github.com/cardinalhq/nitronav/internal/sorting"
	"github.com/cardinalhq/nitronav/internal/sortrunner"
)

// settings are the parsed, validated forms of the enumerated config values.
type settings struct {
	cfg       *config.Config
	algorithm sorting.Algorithm
	key       record.SortKey
	format    report.Format
}

func loadSettings(flags *pflag.FlagSet) (*settings, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	return newSettings(cfg)
}

func newSettings(cfg *config.Config) (*settings, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	s := &settings{cfg: cfg}
	// Validate has already checked these.
	s.algorithm, _ = sorting.ParseAlgorithm(cfg.Sort.Algorithm)
	s.key, _ = record.ParseSortKey(cfg.Sort.Key)
	s.format, _ = report.ParseFormat(cfg.Report.Format)
	return s, nil
}

func (s *settings) readerOptions() filereader.Options {
	return filereader.Options{
		Strict:    !s.cfg.Input.Lenient,
		MaxErrors: s.cfg.Input.MaxErrors,
		BatchSize: s.cfg.Input.BatchSize,
		Logger:    slog.Default(),
	}
}

func (s *settings) runner() *sortrunner.Runner {
	return sortrunner.NewRunner(
		sortrunner.WithLogger(slog.Default()),
		sortrunner.WithVerify(s.cfg.Sort.Verify),
		sortrunner.WithStats(s.cfg.Sort.Stats),
	)
}

func (s *settings) readInput(ctx context.Context) ([]record.Record, error) {
	records, err := filereader.ReadFile(ctx, s.cfg.Input.Path, s.readerOptions())
	if err != nil {
		return nil, err
	}
	slog.Debug("Loaded measurements",
		slog.String("path", s.cfg.Input.Path),
		slog.Int("records", len(records)))
	return records, nil
}

// addInputFlags registers the flags shared by every command that reads a
// measurement file and prints a report.
func addInputFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Measurement file to read (.csv, .csv.gz or .parquet)")
	flags.StringP("key", "k", def.Sort.Key, "Sort key: year or nitrogen")
	flags.StringP("format", "f", def.Report.Format, "Report format: text, json or yaml")
	flags.Int("preview", def.Report.Preview, "Number of sorted records to include in the report")
	flags.Bool("verify", def.Sort.Verify, "Check that each result is sorted and is a permutation of the input")
	flags.Bool("stats", def.Sort.Stats, "Include descriptive statistics in the report")
	flags.Bool("lenient", def.Input.Lenient, "Drop malformed rows instead of failing")
	flags.Int("max-errors", def.Input.MaxErrors, "Stop reading after this many malformed rows (0 for no limit)")
	flags.Int("batch-size", def.Input.BatchSize, "Number of rows read per batch")
}
