package helper

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore/sqlengine"
)

func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

// GivenUniqueStreamName returns a namespaced stream name whose derived table name is unique,
// so that tests sharing a PostgreSQL database don't see each other's tables.
func GivenUniqueStreamName(t testing.TB, namespace string) eventstore.StreamName {
	suffix := strings.ReplaceAll(GivenUniqueID(t).String(), "-", "")

	return eventstore.StreamName(namespace + "\\User" + suffix)
}

// GivenStreamTableIsDroppedAfterTest drops the stream's table when the test ends, ignoring errors.
func GivenStreamTableIsDroppedAfterTest(t testing.TB, es *sqlengine.StreamStore, streamName eventstore.StreamName) {
	t.Cleanup(func() {
		_ = es.DropSchemaFor(context.Background(), streamName)
	})
}

// GivenStreamWasCreated creates the stream with the given events.
func GivenStreamWasCreated(
	t testing.TB,
	ctx context.Context,
	es *sqlengine.StreamStore,
	streamName eventstore.StreamName,
	events ...eventstore.Event,
) {

	err := es.Create(ctx, eventstore.BuildStream(streamName, events...))
	require.NoError(t, err, "error in arranging test data")
}

// GivenEventsWereAppended appends the events to an existing stream.
func GivenEventsWereAppended(
	t testing.TB,
	ctx context.Context,
	es *sqlengine.StreamStore,
	streamName eventstore.StreamName,
	events ...eventstore.Event,
) {

	err := es.AppendTo(ctx, streamName, events...)
	require.NoError(t, err, "error in arranging test data")
}

// FakeClock returns a fixed point in time for deterministic created_at values.
func FakeClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)
}
