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
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cardinalhq/nitronav/config"
	"github.com/cardinalhq/nitronav/internal/recordwriter"
	"github.com/cardinalhq/nitronav/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort a measurement file with one algorithm",
		Example: `  nitronav sort --input NTN_data.csv --key nitrogen
  nitronav sort -i NTN_data.parquet --algorithm shell --key year --output sorted.csv`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			s, err := loadSettings(c.Flags())
			if err != nil {
				return err
			}

			servicename := "nitronav-sort"
			doneCtx, doneFx, err := setupTelemetry(servicename)
			if err != nil {
				return fmt.Errorf("failed to setup telemetry: %w", err)
			}
			defer func() {
				if err := doneFx(); err != nil {
					slog.Error("Error shutting down telemetry", slog.Any("error", err))
				}
			}()

			start := time.Now()
			err = runSort(doneCtx, s, c.OutOrStdout())
			recordCommand(doneCtx, "sort", start, err)
			return err
		},
	}

	def := config.DefaultConfig()
	addInputFlags(cmd)
	cmd.Flags().StringP("algorithm", "a", def.Sort.Algorithm, "Sorting algorithm: merge or shell")
	cmd.Flags().StringP("output", "o", "", "Write the sorted records to this file (.csv, .csv.gz or .parquet)")

	rootCmd.AddCommand(cmd)
}

func runSort(ctx context.Context, s *settings, w io.Writer) error {
	ctx, span := tracer.Start(ctx, "nitronav.sort", trace.WithAttributes(
		attribute.String("input", s.cfg.Input.Path),
		attribute.String("algorithm", s.algorithm.String()),
		attribute.String("key", s.key.String()),
	))
	defer span.End()

	records, err := s.readInput(ctx)
	if err != nil {
		return err
	}

	res, err := s.runner().Run(ctx, records, s.algorithm, s.key)
	if err != nil {
		return err
	}

	if out := s.cfg.Output.Path; out != "" {
		if err := recordwriter.WriteFile(out, res.Records); err != nil {
			return err
		}
		slog.Info("Wrote sorted records", slog.String("path", out), slog.Int("records", len(res.Records)))
	}

	return report.WriteResult(w, s.format, res, s.cfg.Report.Preview)
}
