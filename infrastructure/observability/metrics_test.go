package observability

import (
	"context"
	"testing"
	"time"

	"guildkeeper/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

func TestMetricsProvider_NilIsSafe(t *testing.T) {
	var mp *MetricsProvider

	assert.NotPanics(t, func() {
		mp.RecordMessageRead()
		mp.RecordActivityAward(AwardSourceVoice)
		mp.RecordJobRun("voice_scan", OutcomeSuccess, time.Second)
		mp.RecordTickSkipped("voice_scan")
		mp.RecordCompensation(OutcomeSuccess)
		mp.RecordEnforcementAction("ban", OutcomeFailure)
	})
}

func TestMetricsProvider_NoneExporterIsDisabled(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "none"

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))

	assert.False(t, mp.isEnabled())
	assert.NotPanics(t, func() {
		mp.RecordEconomyTransaction("bet_win")
		mp.RecordNATSMessagePublished("balance_change")
	})
	require.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_ConsoleExporterCreatesInstruments(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "console"

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	defer mp.Shutdown(context.Background())

	assert.True(t, mp.isEnabled())
	assert.NotNil(t, mp.jobDurationHist)
	assert.NotNil(t, mp.compensationsCounter)

	mp.RecordJobRun("ban_sweep", OutcomeSuccess, 10*time.Millisecond)
}

func TestNewResource_MatchesSDKSchema(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelServiceName = "guildkeeper-test"

	res, err := newResource(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, semconv.SchemaURL, res.SchemaURL())

	name, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "guildkeeper-test", name.AsString())

	// The SDK default resource carries the same schema, so merging succeeds
	_, err = resource.Merge(resource.Default(), res)
	require.NoError(t, err)
}
