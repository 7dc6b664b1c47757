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

package sortrunner

import (
	"fmt"

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("github.com/cardinalhq/nitronav/internal/sortrunner")

	sortDurationHistogram otelmetric.Float64Histogram
	recordsSortedCounter  otelmetric.Int64Counter
	verifyFailedCounter   otelmetric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/nitronav/internal/sortrunner")

	var err error
	sortDurationHistogram, err = meter.Float64Histogram(
		"nitronav.sort.duration",
		otelmetric.WithUnit("s"),
		otelmetric.WithDescription("Wall clock time spent inside a single sort call"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create sort.duration histogram: %w", err))
	}

	recordsSortedCounter, err = meter.Int64Counter(
		"nitronav.sort.records",
		otelmetric.WithDescription("Number of records passed through a sorter"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create sort.records counter: %w", err))
	}

	verifyFailedCounter, err = meter.Int64Counter(
		"nitronav.sort.verify.failed",
		otelmetric.WithDescription("Number of sort runs whose output failed verification"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create sort.verify.failed counter: %w", err))
	}
}
