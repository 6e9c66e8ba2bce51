package digest

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	digestMeter   = otel.Meter("emailsummary/digest")
	emailsSent, _ = digestMeter.Int64Counter("digest.emails.sent",
		metric.WithDescription("Digest emails handed to the mail transport"),
	)
	emailsFailed, _ = digestMeter.Int64Counter("digest.emails.failed",
		metric.WithDescription("Recipients whose digest could not be built or sent"),
	)
	upstreamCalls, _ = digestMeter.Int64Counter("digest.upstream.calls",
		metric.WithDescription("Calls made to the aggregation provider during digest runs"),
	)
	runDuration, _ = digestMeter.Float64Histogram("digest.run.duration",
		metric.WithDescription("Wall-clock duration of a digest dispatch in seconds"),
		metric.WithUnit("s"),
	)
)
