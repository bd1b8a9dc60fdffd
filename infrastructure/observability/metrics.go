package observability

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"guildkeeper/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider owns the OpenTelemetry meter and every instrument the
// service records. All Record methods are safe on a nil or disabled provider.
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	messagesReadCounter   metric.Int64Counter
	activityAwardsCounter metric.Int64Counter
	voiceSessionsCounter  metric.Int64Counter
	jobRunsCounter        metric.Int64Counter
	jobDurationHist       metric.Float64Histogram
	ticksSkippedCounter   metric.Int64Counter
	economyTxCounter      metric.Int64Counter
	compensationsCounter  metric.Int64Counter
	enforcementCounter    metric.Int64Counter
	natsPublishedCounter  metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the exporter configured by OTEL_EXPORTER_TYPE
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := newResource(ctx, mp.config)
	if err != nil {
		return err
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			),
		),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("guildkeeper")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized")
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.messagesReadCounter, MessagesReadTotal, "Guild messages counted toward the ledger"},
		{&mp.activityAwardsCounter, ActivityAwardsTotal, "Activity awards applied to member ledgers"},
		{&mp.voiceSessionsCounter, VoiceSessionsClosed, "Voice leave events processed"},
		{&mp.jobRunsCounter, SchedulerJobRunsTotal, "Scheduler job runs by outcome"},
		{&mp.ticksSkippedCounter, SchedulerTicksSkipped, "Scheduler ticks skipped because the previous run was still active"},
		{&mp.economyTxCounter, EconomyTransactionsTotal, "Currency transactions by type"},
		{&mp.compensationsCounter, CompensationsTotal, "Compensating refunds issued after a failed role grant"},
		{&mp.enforcementCounter, EnforcementActionsTotal, "Moderation actions carried out against members"},
		{&mp.natsPublishedCounter, NATSMessagesPublishedTotal, "Events published to NATS"},
	}

	for _, c := range counters {
		counter, err := mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.target = counter
	}

	hist, err := mp.meter.Float64Histogram(
		SchedulerJobDuration,
		metric.WithDescription("Duration of scheduler job runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300),
	)
	if err != nil {
		return fmt.Errorf("failed to create job duration histogram: %w", err)
	}
	mp.jobDurationHist = hist

	return nil
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

func (mp *MetricsProvider) RecordMessageRead() {
	if !mp.isEnabled() {
		return
	}
	mp.messagesReadCounter.Add(context.Background(), 1)
}

// RecordActivityAward records a ledger award by source (message or voice)
func (mp *MetricsProvider) RecordActivityAward(source string) {
	if !mp.isEnabled() {
		return
	}
	mp.activityAwardsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelType, source)),
	)
}

func (mp *MetricsProvider) RecordVoiceSessionClosed() {
	if !mp.isEnabled() {
		return
	}
	mp.voiceSessionsCounter.Add(context.Background(), 1)
}

// RecordJobRun records a finished scheduler run and its duration
func (mp *MetricsProvider) RecordJobRun(job, outcome string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelJob, job),
		attribute.String(LabelOutcome, outcome),
	)
	mp.jobRunsCounter.Add(context.Background(), 1, attrs)
	mp.jobDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

func (mp *MetricsProvider) RecordTickSkipped(job string) {
	if !mp.isEnabled() {
		return
	}
	mp.ticksSkippedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelJob, job)),
	)
}

// RecordEconomyTransaction records a currency movement by transaction type
func (mp *MetricsProvider) RecordEconomyTransaction(transactionType string) {
	if !mp.isEnabled() {
		return
	}
	mp.economyTxCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelType, transactionType)),
	)
}

func (mp *MetricsProvider) RecordCompensation(outcome string) {
	if !mp.isEnabled() {
		return
	}
	mp.compensationsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelOutcome, outcome)),
	)
}

// RecordEnforcementAction records a kick, ban or unban and whether it worked
func (mp *MetricsProvider) RecordEnforcementAction(action, outcome string) {
	if !mp.isEnabled() {
		return
	}
	mp.enforcementCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelAction, action),
			attribute.String(LabelOutcome, outcome),
		),
	)
}

func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}
	mp.natsPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// isEnabled reports whether instruments exist. The "none" exporter
// initializes without a meter, so it counts as disabled here.
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
}

var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider. It is nil until
// InitializeGlobalMetrics runs, which every Record method tolerates.
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}

// newResource describes this process. The schema URL matches the semconv
// version the SDK detectors emit, so merging them never conflicts.
func newResource(ctx context.Context, cfg *config.Config) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithTelemetrySDK(),
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTelServiceName),
			attribute.String("environment", cfg.Environment),
		),
	)
	if errors.Is(err, resource.ErrPartialResource) {
		// Malformed OTEL_RESOURCE_ATTRIBUTES only loses those attributes
		log.WithError(err).Warn("Some resource attributes could not be detected")
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
