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

	"github.com/cardinalhq/nitronav/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:     "compare",
		Aliases: []string{"both"},
		Short:   "Sort a measurement file with every algorithm and compare timings",
		Long: `Run merge sort and shell sort over independent copies of the same input,
then report the time each took and which was faster.`,
		Example: "  nitronav compare --input NTN_data.csv --key year",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			s, err := loadSettings(c.Flags())
			if err != nil {
				return err
			}

			servicename := "nitronav-compare"
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
			err = runCompare(doneCtx, s, c.OutOrStdout())
			recordCommand(doneCtx, "compare", start, err)
			return err
		},
	}

	addInputFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func runCompare(ctx context.Context, s *settings, w io.Writer) error {
	ctx, span := tracer.Start(ctx, "nitronav.compare", trace.WithAttributes(
		attribute.String("input", s.cfg.Input.Path),
		attribute.String("key", s.key.String()),
	))
	defer span.End()

	records, err := s.readInput(ctx)
	if err != nil {
		return err
	}

	cmp, err := s.runner().Compare(ctx, records, s.key)
	if err != nil {
		return err
	}
	return report.WriteComparison(w, s.format, cmp, s.cfg.Report.Preview)
}
