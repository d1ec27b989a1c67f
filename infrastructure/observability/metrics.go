package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pointsbot/config"
	"pointsbot/events"

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

// MetricsProvider manages OpenTelemetry metrics for the bot. Every Record method
// is safe on a nil or disabled provider.
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	commandsCounter              metric.Int64Counter
	commandDurationHist          metric.Float64Histogram
	ledgerTransactionsCounter    metric.Int64Counter
	ledgerPointsMovedCounter     metric.Int64Counter
	guildResetsCounter           metric.Int64Counter
	thresholdChangesCounter      metric.Int64Counter
	roleChangesCounter           metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
	databaseQueriesCounter       metric.Int64Counter
	databaseQueryDurationHist    metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var reader sdkmetric.Reader
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		reader = mp.periodicReader(exporter)
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		reader = mp.periodicReader(exporter)
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	return mp.initializeWithReader(reader)
}

// InitializeWithReader sets the provider up on an explicit reader, e.g. a manual reader in tests
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.initializeWithReader(reader)
}

func (mp *MetricsProvider) periodicReader(exporter sdkmetric.Exporter) sdkmetric.Reader {
	return sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
}

func (mp *MetricsProvider) initializeWithReader(reader sdkmetric.Reader) error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("pointsbot")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.commandsCounter, CommandsTotal, "Total number of slash commands and components handled"},
		{&mp.ledgerTransactionsCounter, LedgerTransactionsTotal, "Total number of committed ledger transactions"},
		{&mp.ledgerPointsMovedCounter, LedgerPointsMoved, "Absolute points moved by committed ledger transactions"},
		{&mp.guildResetsCounter, GuildResetsTotal, "Total number of guild ledger resets"},
		{&mp.thresholdChangesCounter, ThresholdChangesTotal, "Total number of role threshold edits"},
		{&mp.roleChangesCounter, RoleChangesTotal, "Total number of tier role grants, revokes and failures"},
		{&mp.natsMessagesPublishedCounter, NATSMessagesPublishedTotal, "Total number of NATS messages published"},
		{&mp.databaseQueriesCounter, DatabaseQueriesTotal, "Total number of database transactions committed"},
	}
	for _, c := range counters {
		*c.target, err = mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("1"),
		)
		if err != nil {
			return fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
	}

	mp.commandDurationHist, err = mp.meter.Float64Histogram(
		CommandDuration,
		metric.WithDescription("Duration of command handling in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create command duration histogram: %w", err)
	}

	mp.databaseQueryDurationHist, err = mp.meter.Float64Histogram(
		DatabaseQueryDuration,
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create database query duration histogram: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp == nil {
		return nil
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RegisterEventMetrics counts committed ledger events from the bus
func (mp *MetricsProvider) RegisterEventMetrics(bus *events.Bus) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		switch e := event.(type) {
		case events.BalanceChangeEvent:
			mp.RecordLedgerTransaction(e.TransactionType.String(), e.ChangeAmount)
		case events.GuildResetEvent:
			mp.RecordGuildReset()
		case events.ThresholdsChangedEvent:
			mp.RecordThresholdChange(e.Removed)
		}
	})
}

// RecordCommand records a handled command with its outcome and duration
func (mp *MetricsProvider) RecordCommand(command, outcome string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelCommand, command),
		attribute.String(LabelOutcome, outcome),
	)
	mp.commandsCounter.Add(context.Background(), 1, attrs)
	mp.commandDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// RecordLedgerTransaction records a committed balance change
func (mp *MetricsProvider) RecordLedgerTransaction(transactionType string, amount int64) {
	if !mp.isEnabled() {
		return
	}

	if amount < 0 {
		amount = -amount
	}
	attrs := metric.WithAttributes(attribute.String(LabelType, transactionType))
	mp.ledgerTransactionsCounter.Add(context.Background(), 1, attrs)
	mp.ledgerPointsMovedCounter.Add(context.Background(), amount, attrs)
}

// RecordGuildReset records a guild ledger reset
func (mp *MetricsProvider) RecordGuildReset() {
	if !mp.isEnabled() {
		return
	}
	mp.guildResetsCounter.Add(context.Background(), 1)
}

// RecordThresholdChange records a tier table edit
func (mp *MetricsProvider) RecordThresholdChange(removed bool) {
	if !mp.isEnabled() {
		return
	}

	action := "set"
	if removed {
		action = "remove"
	}
	mp.thresholdChangesCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelAction, action)),
	)
}

// RecordRoleChange records a tier role grant, revoke or failure
func (mp *MetricsProvider) RecordRoleChange(action string) {
	if !mp.isEnabled() {
		return
	}

	mp.roleChangesCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelAction, action)),
	)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// RecordDatabaseQuery records a database query with duration
func (mp *MetricsProvider) RecordDatabaseQuery(repository, method string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelRepository, repository),
		attribute.String(LabelMethod, method),
	)

	mp.databaseQueriesCounter.Add(context.Background(), 1, attrs)
	mp.databaseQueryDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// MeasureDatabaseQuery returns a function to measure database query duration
// Usage:
//
//	defer mp.MeasureDatabaseQuery("unit_of_work", "Commit")()
func (mp *MetricsProvider) MeasureDatabaseQuery(repository, method string) func() {
	start := time.Now()
	return func() {
		mp.RecordDatabaseQuery(repository, method, time.Since(start))
	}
}

// isEnabled checks if instruments exist
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meterProvider != nil
}

// Global metrics provider instance
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

// GetMetrics returns the global metrics provider, nil before InitializeGlobalMetrics
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	return globalMetrics.Shutdown(ctx)
}
