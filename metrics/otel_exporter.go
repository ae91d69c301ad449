package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector

	// OTel meters and instruments
	meter              metric.Meter
	queueDepthGauge    metric.Int64ObservableGauge
	backlogGauge       metric.Int64ObservableGauge
	statusCountGauge   metric.Int64ObservableGauge
	throughputGauge    metric.Int64ObservableGauge
	activeWorkersGauge metric.Int64ObservableGauge

	attemptCounter metric.Int64Counter
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	// Create Prometheus exporter
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	// Create meter provider
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	// Create meter with service info
	meter := meterProvider.Meter(
		"webhook-notify",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		meter:         meter,
	}

	// Register metrics instruments
	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	// Queue depth gauge
	oe.queueDepthGauge, err = oe.meter.Int64ObservableGauge(
		"delivery.queue.depth",
		metric.WithDescription("Number of entries waiting in the delivery schedule"),
		metric.WithUnit("{entries}"),
		metric.WithInt64Callback(oe.observeQueueDepth),
	)
	if err != nil {
		return fmt.Errorf("creating queue depth gauge: %w", err)
	}

	// Partner backlog gauge (per partner)
	oe.backlogGauge, err = oe.meter.Int64ObservableGauge(
		"delivery.partner.backlog",
		metric.WithDescription("Number of delivery entries recorded per partner"),
		metric.WithUnit("{entries}"),
		metric.WithInt64Callback(oe.observePartnerBacklogs),
	)
	if err != nil {
		return fmt.Errorf("creating partner backlog gauge: %w", err)
	}

	// Status count gauge (per status)
	oe.statusCountGauge, err = oe.meter.Int64ObservableGauge(
		"delivery.status.count",
		metric.WithDescription("Number of delivery entries by status"),
		metric.WithUnit("{entries}"),
		metric.WithInt64Callback(oe.observeStatusCounts),
	)
	if err != nil {
		return fmt.Errorf("creating status count gauge: %w", err)
	}

	// Throughput gauge (delivered entries over time windows)
	oe.throughputGauge, err = oe.meter.Int64ObservableGauge(
		"delivery.throughput",
		metric.WithDescription("Number of entries delivered over time window"),
		metric.WithUnit("{entries}"),
		metric.WithInt64Callback(oe.observeThroughput),
	)
	if err != nil {
		return fmt.Errorf("creating throughput gauge: %w", err)
	}

	// Active workers gauge
	oe.activeWorkersGauge, err = oe.meter.Int64ObservableGauge(
		"delivery.workers.active",
		metric.WithDescription("Number of scheduler workers with a live heartbeat"),
		metric.WithUnit("{workers}"),
		metric.WithInt64Callback(oe.observeActiveWorkers),
	)
	if err != nil {
		return fmt.Errorf("creating active workers gauge: %w", err)
	}

	// Attempt counter, incremented by the delivery executor
	oe.attemptCounter, err = oe.meter.Int64Counter(
		"delivery.attempts",
		metric.WithDescription("Number of delivery attempts by partner and outcome"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		return fmt.Errorf("creating attempt counter: %w", err)
	}

	return nil
}

// RecordAttempt counts one delivery attempt for a partner.
// Implements the executor's outcome recorder.
func (oe *OTelExporter) RecordAttempt(ctx context.Context, partnerID string, delivered bool) {
	outcome := "failure"
	if delivered {
		outcome = "success"
	}

	oe.attemptCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("partner.id", partnerID),
		attribute.String("outcome", outcome),
	))
}

// observeQueueDepth is a callback that reports the schedule depth
func (oe *OTelExporter) observeQueueDepth(ctx context.Context, observer metric.Int64Observer) error {
	depth, err := oe.collector.GetQueueDepth(ctx)
	if err != nil {
		return err
	}

	observer.Observe(depth)

	return nil
}

// observePartnerBacklogs is a callback that reports per-partner backlogs
func (oe *OTelExporter) observePartnerBacklogs(ctx context.Context, observer metric.Int64Observer) error {
	backlogs, err := oe.collector.GetPartnerBacklogs(ctx)
	if err != nil {
		return err
	}

	for partnerID, count := range backlogs {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("partner.id", partnerID),
		))
	}

	return nil
}

// observeStatusCounts is a callback that reports entry counts by status
func (oe *OTelExporter) observeStatusCounts(ctx context.Context, observer metric.Int64Observer) error {
	statusCounts, err := oe.collector.GetStatusCounts(ctx)
	if err != nil {
		return err
	}

	for status, count := range statusCounts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("delivery.status", status),
		))
	}

	return nil
}

// observeThroughput is a callback that reports throughput metrics
func (oe *OTelExporter) observeThroughput(ctx context.Context, observer metric.Int64Observer) error {
	throughput, err := oe.collector.GetThroughput(ctx)
	if err != nil {
		return err
	}

	observer.Observe(throughput.LastMinute, metric.WithAttributes(
		attribute.String("time.window", "1m"),
	))
	observer.Observe(throughput.LastFiveMinutes, metric.WithAttributes(
		attribute.String("time.window", "5m"),
	))
	observer.Observe(throughput.LastFifteenMinutes, metric.WithAttributes(
		attribute.String("time.window", "15m"),
	))

	return nil
}

// observeActiveWorkers is a callback that reports active worker counts
func (oe *OTelExporter) observeActiveWorkers(ctx context.Context, observer metric.Int64Observer) error {
	workers, err := oe.collector.GetActiveWorkers(ctx)
	if err != nil {
		return err
	}

	observer.Observe(int64(len(workers)))

	return nil
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.Handler()
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
