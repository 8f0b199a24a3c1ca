package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore/oteladapters"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore/sqlengine"
	. "github.com/AntonStoeckl/stream-tables-eventstore-go/testutil/helper" //nolint:revive
	"github.com/AntonStoeckl/stream-tables-eventstore-go/testutil/helper/storewrapper"
)

func Test_StreamStore_Should_Report_ThroughTheOTelAdapters(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reader, metrics := givenMetricsCollector()
	exporter, tracing := givenTracingCollector()
	var logs bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&logs, nil))

	es := storewrapper.SQLiteWrapper().CreateStreamStore(
		t,
		sqlengine.WithMetrics(metrics),
		sqlengine.WithTracing(tracing),
		sqlengine.WithContextualLogger(logger),
	)

	// arrange
	userID := GivenUniqueID(t)
	metadata := FixtureUserMetadata("person", "a@example.com")

	// act
	GivenStreamWasCreated(
		t,
		ctxWithTimeout,
		es,
		"Model.User",
		FixtureUserCreated(t, userID, 1, FakeClock(), metadata),
		FixtureUsernameChanged(t, userID, "x", 2, FakeClock(), metadata),
	)
	_, loadErr := es.Load(ctxWithTimeout, "Model.User", eventstore.NoMinVersion)
	_, missingErr := es.Load(ctxWithTimeout, "Model.Missing", eventstore.NoMinVersion)

	// assert
	require.NoError(t, loadErr)
	require.Error(t, missingErr)

	resourceMetrics := collectMetrics(t, reader)
	appended := findFloat64Sum(t, resourceMetrics, "streamstore_events_appended_total")
	require.Len(t, appended.DataPoints, 1)
	assert.InDelta(t, 2.0, appended.DataPoints[0].Value, 0.0001)
	assert.NotEmpty(t, findHistogram(t, resourceMetrics, "streamstore_load_duration_seconds").DataPoints)
	assert.NotEmpty(t, findInt64Sum(t, resourceMetrics, "streamstore_database_errors_total").DataPoints)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	lastSpan := spans[len(spans)-1]
	assert.Equal(t, "streamstore.load", lastSpan.Name)
	assert.Equal(t, codes.Error, lastSpan.Status.Code)
	assert.Equal(t, "missing_table", lastSpan.Status.Description)

	assert.Contains(t, logs.String(), "streamstore operation: events appended")
}
