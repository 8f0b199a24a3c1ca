package sqlengine_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore/sqlengine"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/testutil/config"
	. "github.com/AntonStoeckl/stream-tables-eventstore-go/testutil/helper" //nolint:revive
	"github.com/AntonStoeckl/stream-tables-eventstore-go/testutil/helper/storewrapper"
)

func forEachWrapper(t *testing.T, test func(t *testing.T, wrapper storewrapper.Wrapper)) {
	for _, wrapper := range storewrapper.Wrappers() {
		t.Run(wrapper.Name, func(t *testing.T) {
			test(t, wrapper)
		})
	}
}

func assertSameEvent(t *testing.T, expected eventstore.Event, actual eventstore.Event) {
	t.Helper()

	assert.Equal(t, expected.ID, actual.ID, "event id differs")
	assert.Equal(t, expected.Name, actual.Name, "event name differs")
	assert.Equal(t, expected.Version, actual.Version, "version differs")
	assert.True(t, expected.OccurredAt.Equal(actual.OccurredAt), "occurredAt differs: %s vs %s", expected.OccurredAt, actual.OccurredAt)
	assert.Equal(t, expected.Payload, actual.Payload, "payload differs")
	assert.Equal(t, expected.Metadata.Pairs(), actual.Metadata.Pairs(), "metadata differs")
}

func versionsOf(events eventstore.Events) []eventstore.Version {
	versions := make([]eventstore.Version, 0, len(events))
	for _, event := range events {
		versions = append(versions, event.Version)
	}

	return versions
}

func Test_Create_Then_Load_Should_RoundTrip_TheEvents(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		es := wrapper.CreateStreamStore(t, sqlengine.WithPayloadCodec(eventstore.NewJSONCodec(FixturePayloadRegistry(t))))
		streamName := GivenUniqueStreamName(t, "Test\\Model")
		GivenStreamTableIsDroppedAfterTest(t, es, streamName)

		// arrange
		userID := GivenUniqueID(t)
		userCreated := FixtureUserCreated(t, userID, 1, FakeClock(), FixtureUserMetadata("person", "jdoe@example.com"))
		usernameChanged := FixtureUsernameChanged(t, userID, "john", 2, FakeClock().Add(time.Second), FixtureUserMetadata("person", "jdoe@example.com"))

		// act
		createErr := es.Create(ctxWithTimeout, eventstore.BuildStream(streamName, userCreated, usernameChanged))
		stream, loadErr := es.Load(ctxWithTimeout, streamName, eventstore.NoMinVersion)

		// assert
		require.NoError(t, createErr)
		require.NoError(t, loadErr)
		assert.Equal(t, streamName, stream.Name)
		require.Len(t, stream.Events, 2)
		assertSameEvent(t, userCreated, stream.Events[0])
		assertSameEvent(t, usernameChanged, stream.Events[1])
		assert.IsType(t, UserCreated{}, stream.Events[0].Payload)
	})
}

func Test_Load_Should_Return_TheEvents_OrderedByVersion(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		es := wrapper.CreateStreamStore(t)
		streamName := GivenUniqueStreamName(t, "Test\\Model")
		GivenStreamTableIsDroppedAfterTest(t, es, streamName)

		// arrange
		userID := GivenUniqueID(t)
		metadata := FixtureUserMetadata("person", "jdoe@example.com")
		GivenStreamWasCreated(t, ctxWithTimeout, es, streamName, FixtureUsernameChanged(t, userID, "c", 3, FakeClock(), metadata))
		GivenEventsWereAppended(
			t,
			ctxWithTimeout,
			es,
			streamName,
			FixtureUserCreated(t, userID, 1, FakeClock(), metadata),
			FixtureUsernameChanged(t, userID, "b", 2, FakeClock(), metadata),
		)

		// act
		stream, err := es.Load(ctxWithTimeout, streamName, eventstore.NoMinVersion)

		// assert
		require.NoError(t, err)
		assert.Equal(t, []eventstore.Version{1, 2, 3}, versionsOf(stream.Events))
	})
}

func Test_Load_WithMinVersion_Should_Return_OnlyTheEvents_FromThatVersion(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		es := wrapper.CreateStreamStore(t)
		streamName := GivenUniqueStreamName(t, "Test\\Model")
		GivenStreamTableIsDroppedAfterTest(t, es, streamName)

		// arrange
		userID := GivenUniqueID(t)
		metadata := FixtureUserMetadata("person", "jdoe@example.com")
		GivenStreamWasCreated(
			t,
			ctxWithTimeout,
			es,
			streamName,
			FixtureUserCreated(t, userID, 1, FakeClock(), metadata),
			FixtureUsernameChanged(t, userID, "john", 2, FakeClock(), metadata),
		)

		// act
		stream, err := es.Load(ctxWithTimeout, streamName, 2)

		// assert
		require.NoError(t, err)
		require.Len(t, stream.Events, 1)
		assert.Equal(t, eventstore.Version(2), stream.Events[0].Version)
		assert.Equal(t, UsernameChangedEventName, stream.Events[0].Name)
	})
}

func Test_LoadEventsByMetadataFrom_Should_Combine_AllFilterEntries(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		es := wrapper.CreateStreamStore(t)
		streamName := GivenUniqueStreamName(t, "Test\\Model")
		GivenStreamTableIsDroppedAfterTest(t, es, streamName)

		// arrange
		userID := GivenUniqueID(t)
		GivenStreamWasCreated(
			t,
			ctxWithTimeout,
			es,
			streamName,
			FixtureUserCreated(t, userID, 1, FakeClock(), FixtureUserMetadata("person", "a@example.com")),
			FixtureUsernameChanged(t, userID, "x", 2, FakeClock(), FixtureUserMetadata("other", "a@example.com")),
			FixtureUsernameChanged(t, userID, "y", 3, FakeClock(), FixtureUserMetadata("person", "b@example.com")),
		)

		testCases := []struct {
			name             string
			filter           eventstore.Metadata
			minVersion       eventstore.Version
			expectedVersions []eventstore.Version
		}{
			{
				name:             "one filter entry",
				filter:           eventstore.BuildMetadata(eventstore.KV("tag", "person")),
				expectedVersions: []eventstore.Version{1, 3},
			},
			{
				name:             "the other tag",
				filter:           eventstore.BuildMetadata(eventstore.KV("tag", "other")),
				expectedVersions: []eventstore.Version{2},
			},
			{
				name:             "two filter entries",
				filter:           FixtureUserMetadata("person", "a@example.com"),
				expectedVersions: []eventstore.Version{1},
			},
			{
				name:             "filter entry and min version",
				filter:           eventstore.BuildMetadata(eventstore.KV("tag", "person")),
				minVersion:       2,
				expectedVersions: []eventstore.Version{3},
			},
			{
				name:             "nothing matches",
				filter:           eventstore.BuildMetadata(eventstore.KV("tag", "nobody")),
				expectedVersions: []eventstore.Version{},
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				// act
				events, err := es.LoadEventsByMetadataFrom(ctxWithTimeout, streamName, tc.filter, tc.minVersion)

				// assert
				require.NoError(t, err)
				assert.NotNil(t, events)
				assert.Equal(t, tc.expectedVersions, versionsOf(events))
			})
		}
	})
}

func Test_LoadEventsByMetadataFrom_Should_Seed_TheMetadata_WithTheFilter(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		es := wrapper.CreateStreamStore(t)
		streamName := GivenUniqueStreamName(t, "Test\\Model")
		GivenStreamTableIsDroppedAfterTest(t, es, streamName)

		// arrange
		userID := GivenUniqueID(t)
		GivenStreamWasCreated(
			t,
			ctxWithTimeout,
			es,
			streamName,
			FixtureUserCreated(t, userID, 1, FakeClock(), FixtureUserMetadata("person", "a@example.com")),
		)
		filter := eventstore.BuildMetadata(eventstore.KV("email", "a@example.com"))

		// act
		events, err := es.LoadEventsByMetadataFrom(ctxWithTimeout, streamName, filter, eventstore.NoMinVersion)

		// assert
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, []string{"email", "tag"}, events[0].Metadata.Keys(), "filter keys should come first")
		tag, _ := events[0].Metadata.Get("tag")
		assert.Equal(t, "person", tag)
	})
}

func Test_Load_Should_Skip_MetadataColumns_ThatAreNull(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		es := wrapper.CreateStreamStore(t)
		streamName := GivenUniqueStreamName(t, "Test\\Model")
		GivenStreamTableIsDroppedAfterTest(t, es, streamName)

		// arrange
		userID := GivenUniqueID(t)
		GivenStreamWasCreated(
			t,
			ctxWithTimeout,
			es,
			streamName,
			FixtureUserCreated(t, userID, 1, FakeClock(), FixtureUserMetadata("person", "a@example.com")),
		)
		GivenEventsWereAppended(
			t,
			ctxWithTimeout,
			es,
			streamName,
			FixtureUsernameChanged(t, userID, "x", 2, FakeClock(), eventstore.BuildMetadata(eventstore.KV("tag", "person"))),
		)

		// act
		stream, err := es.Load(ctxWithTimeout, streamName, 2)

		// assert
		require.NoError(t, err)
		require.Len(t, stream.Events, 1)
		assert.Equal(t, []string{"tag"}, stream.Events[0].Metadata.Keys())
	})
}

func Test_Create_Then_LoadByTag_For_ModelUser(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		es := wrapper.CreateStreamStore(t)
		streamName := eventstore.StreamName("Model.User")
		_ = es.DropSchemaFor(ctxWithTimeout, streamName) // leftovers of an aborted run
		GivenStreamTableIsDroppedAfterTest(t, es, streamName)

		// arrange
		event, err := eventstore.BuildEvent(
			"UserCreated",
			1,
			map[string]any{"email": "a@b.com"},
			eventstore.BuildMetadata(eventstore.KV("tag", "person")),
		)
		require.NoError(t, err)

		// act
		createErr := es.Create(ctxWithTimeout, eventstore.BuildStream(streamName, event))
		events, loadErr := es.LoadEventsByMetadataFrom(
			ctxWithTimeout,
			streamName,
			eventstore.BuildMetadata(eventstore.KV("tag", "person")),
			eventstore.NoMinVersion,
		)

		// assert
		require.NoError(t, createErr)
		require.NoError(t, loadErr)
		assert.Equal(t, "user_stream", es.TableFor(streamName))
		require.Len(t, events, 1)
		payload, ok := events[0].Payload.(map[string]any)
		require.True(t, ok, "payload of an unregistered event name should decode into a map")
		assert.Equal(t, "a@b.com", payload["email"])
	})
}

func Test_Create_Should_Reject_AnEmptyStream_WithoutSideEffects(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		es := wrapper.CreateStreamStore(t)
		streamName := GivenUniqueStreamName(t, "Test\\Model")

		// act
		createErr := es.Create(ctxWithTimeout, eventstore.BuildStream(streamName))
		_, loadErr := es.Load(ctxWithTimeout, streamName, eventstore.NoMinVersion)

		// assert
		assert.ErrorIs(t, createErr, eventstore.ErrCannotCreateEmptyStream)
		assert.Error(t, loadErr, "no table should have been created")
		assert.True(t, sqlengine.IsMissingTable(loadErr), "expected a missing table error, got: %v", loadErr)
	})
}

func Test_AppendTo_Should_Fail_When_TheTable_DoesNotExist(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		es := wrapper.CreateStreamStore(t)
		streamName := GivenUniqueStreamName(t, "Test\\Model")

		// act
		err := es.AppendTo(
			ctxWithTimeout,
			streamName,
			FixtureUserCreated(t, GivenUniqueID(t), 1, FakeClock(), FixtureUserMetadata("person", "a@example.com")),
		)

		// assert
		assert.ErrorIs(t, err, eventstore.ErrAppendingEventFailed)
		assert.True(t, sqlengine.IsMissingTable(err), "expected a missing table error, got: %v", err)
	})
}

func Test_AppendTo_Should_Accept_DuplicateVersions_ByDefault(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		es := wrapper.CreateStreamStore(t)
		streamName := GivenUniqueStreamName(t, "Test\\Model")
		GivenStreamTableIsDroppedAfterTest(t, es, streamName)

		// arrange
		userID := GivenUniqueID(t)
		metadata := FixtureUserMetadata("person", "a@example.com")
		GivenStreamWasCreated(t, ctxWithTimeout, es, streamName, FixtureUserCreated(t, userID, 1, FakeClock(), metadata))

		// act
		err := es.AppendTo(
			ctxWithTimeout,
			streamName,
			FixtureUsernameChanged(t, userID, "x", 2, FakeClock(), metadata),
			FixtureUsernameChanged(t, userID, "y", 2, FakeClock(), metadata),
		)
		stream, loadErr := es.Load(ctxWithTimeout, streamName, 2)

		// assert
		assert.NoError(t, err)
		require.NoError(t, loadErr)
		assert.Len(t, stream.Events, 2)
	})
}

func Test_AppendTo_Should_Reject_DuplicateVersions_WithUniqueVersions(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		es := wrapper.CreateStreamStore(t, sqlengine.WithUniqueVersions())
		streamName := GivenUniqueStreamName(t, "Test\\Model")
		GivenStreamTableIsDroppedAfterTest(t, es, streamName)

		// arrange
		userID := GivenUniqueID(t)
		metadata := FixtureUserMetadata("person", "a@example.com")
		GivenStreamWasCreated(t, ctxWithTimeout, es, streamName, FixtureUserCreated(t, userID, 1, FakeClock(), metadata))

		// act
		err := es.AppendTo(ctxWithTimeout, streamName, FixtureUsernameChanged(t, userID, "x", 1, FakeClock(), metadata))

		// assert
		assert.ErrorIs(t, err, eventstore.ErrAppendingEventFailed)
	})
}

func Test_AppendTo_Should_Keep_EarlierInserts_When_ALaterOneFails(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		es := wrapper.CreateStreamStore(t)
		streamName := GivenUniqueStreamName(t, "Test\\Model")
		GivenStreamTableIsDroppedAfterTest(t, es, streamName)

		// arrange
		userID := GivenUniqueID(t)
		metadata := FixtureUserMetadata("person", "a@example.com")
		userCreated := FixtureUserCreated(t, userID, 1, FakeClock(), metadata)
		GivenStreamWasCreated(t, ctxWithTimeout, es, streamName, userCreated)
		duplicateID := FixtureUsernameChanged(t, userID, "y", 3, FakeClock(), metadata)
		duplicateID.ID = userCreated.ID

		// act
		err := es.AppendTo(
			ctxWithTimeout,
			streamName,
			FixtureUsernameChanged(t, userID, "x", 2, FakeClock(), metadata),
			duplicateID,
		)
		stream, loadErr := es.Load(ctxWithTimeout, streamName, eventstore.NoMinVersion)

		// assert
		assert.ErrorIs(t, err, eventstore.ErrAppendingEventFailed)
		require.NoError(t, loadErr)
		assert.Equal(t, []eventstore.Version{1, 2}, versionsOf(stream.Events))
	})
}

func Test_AppendTo_Should_Reject_InvalidEvents(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	es := storewrapper.SQLiteWrapper().CreateStreamStore(t)
	streamName := GivenUniqueStreamName(t, "Test\\Model")

	// arrange
	validEvent := FixtureUserCreated(t, GivenUniqueID(t), 1, FakeClock(), eventstore.Metadata{})
	GivenStreamWasCreated(t, ctxWithTimeout, es, streamName, validEvent)

	withoutID := validEvent
	withoutID.ID = ""
	withoutVersion := validEvent
	withoutVersion.Version = 0
	withReservedKey := validEvent
	withReservedKey.Metadata = eventstore.BuildMetadata(eventstore.KV(eventstore.ColVersion, "7"))

	testCases := []struct {
		name        string
		event       eventstore.Event
		expectedErr error
	}{
		{name: "empty id", event: withoutID, expectedErr: eventstore.ErrEmptyEventID},
		{name: "zero version", event: withoutVersion, expectedErr: eventstore.ErrInvalidVersion},
		{name: "reserved metadata key", event: withReservedKey, expectedErr: eventstore.ErrReservedMetadataKey},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := es.AppendTo(ctxWithTimeout, streamName, tc.event)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_WithStreamTableMap_Should_Override_TheDerivedTableName(t *testing.T) {
	forEachWrapper(t, func(t *testing.T, wrapper storewrapper.Wrapper) {
		// setup
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		streamName := GivenUniqueStreamName(t, "Test\\Model")
		tableName := "custom_" + eventstore.DeriveTableName(streamName)
		es := wrapper.CreateStreamStore(t, sqlengine.WithStreamTableMap(eventstore.TableMap{streamName: tableName}))
		GivenStreamTableIsDroppedAfterTest(t, es, streamName)

		// arrange
		userCreated := FixtureUserCreated(t, GivenUniqueID(t), 1, FakeClock(), FixtureUserMetadata("person", "a@example.com"))

		// act
		createErr := es.Create(ctxWithTimeout, eventstore.BuildStream(streamName, userCreated))
		stream, loadErr := es.Load(ctxWithTimeout, streamName, eventstore.NoMinVersion)

		// assert
		require.NoError(t, createErr)
		require.NoError(t, loadErr)
		assert.Equal(t, tableName, es.TableFor(streamName))
		assert.Len(t, stream.Events, 1)
	})
}

func Test_WithTypeDiscriminator_Should_Store_ThePayloadType(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db := config.SQLiteSQLDB(t)
	es, err := sqlengine.NewStreamStoreFromSQLDB(
		db,
		sqlengine.WithDialect(sqlengine.DialectSQLite),
		sqlengine.WithTypeDiscriminator(),
		sqlengine.WithPayloadCodec(eventstore.NewJSONCodec(FixturePayloadRegistry(t))),
	)
	require.NoError(t, err)
	streamName := eventstore.StreamName("Model.User")

	// arrange
	userCreated := FixtureUserCreated(t, GivenUniqueID(t), 1, FakeClock(), FixtureUserMetadata("person", "a@example.com"))

	// act
	createErr := es.Create(ctxWithTimeout, eventstore.BuildStream(streamName, userCreated))
	stream, loadErr := es.Load(ctxWithTimeout, streamName, eventstore.NoMinVersion)

	// assert
	require.NoError(t, createErr)
	require.NoError(t, loadErr)
	require.Len(t, stream.Events, 1)
	assertSameEvent(t, userCreated, stream.Events[0])

	var eventClass string
	row := db.QueryRowContext(ctxWithTimeout, `SELECT event_class FROM user_stream`)
	require.NoError(t, row.Scan(&eventClass))
	assert.Equal(t, "helper.UserCreated", eventClass)
}

func Test_WithPayloadCodec_Snappy_Should_RoundTrip_ThePayload(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db := config.SQLiteSQLDB(t)
	es, err := sqlengine.NewStreamStoreFromSQLDB(
		db,
		sqlengine.WithDialect(sqlengine.DialectSQLite),
		sqlengine.WithPayloadCodec(eventstore.NewSnappyJSONCodec(FixturePayloadRegistry(t))),
	)
	require.NoError(t, err)
	streamName := eventstore.StreamName("Model.User")

	// arrange
	userCreated := FixtureUserCreated(t, GivenUniqueID(t), 1, FakeClock(), FixtureUserMetadata("person", "a@example.com"))

	// act
	createErr := es.Create(ctxWithTimeout, eventstore.BuildStream(streamName, userCreated))
	stream, loadErr := es.Load(ctxWithTimeout, streamName, eventstore.NoMinVersion)

	// assert
	require.NoError(t, createErr)
	require.NoError(t, loadErr)
	require.Len(t, stream.Events, 1)
	assertSameEvent(t, userCreated, stream.Events[0])

	var storedPayload string
	row := db.QueryRowContext(ctxWithTimeout, `SELECT payload FROM user_stream`)
	require.NoError(t, row.Scan(&storedPayload))
	assert.NotContains(t, storedPayload, "jdoe@example.com", "payload should be stored compressed")
}

func Test_Load_Should_Fail_When_ThePayload_CannotBeDecoded(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db := config.SQLiteSQLDB(t)
	writer, err := sqlengine.NewStreamStoreFromSQLDB(db, sqlengine.WithDialect(sqlengine.DialectSQLite))
	require.NoError(t, err)
	reader, err := sqlengine.NewStreamStoreFromSQLDB(
		db,
		sqlengine.WithDialect(sqlengine.DialectSQLite),
		sqlengine.WithPayloadCodec(eventstore.NewSnappyJSONCodec(nil)),
	)
	require.NoError(t, err)
	streamName := eventstore.StreamName("Model.User")

	// arrange
	GivenStreamWasCreated(t, ctxWithTimeout, writer, streamName, FixtureUserCreated(t, GivenUniqueID(t), 1, FakeClock(), eventstore.Metadata{}))

	// act
	stream, loadErr := reader.Load(ctxWithTimeout, streamName, eventstore.NoMinVersion)

	// assert
	assert.ErrorIs(t, loadErr, eventstore.ErrDecodingEventRowFailed)
	assert.ErrorIs(t, loadErr, eventstore.ErrDecodingPayloadFailed)
	assert.Empty(t, stream.Events)
}

func Test_Operations_Should_Reject_AnEmptyStreamName(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tracing := NewTracingCollectorSpy()
	es := storewrapper.SQLiteWrapper().CreateStreamStore(
		t,
		sqlengine.WithTracing(tracing),
		sqlengine.WithStreamTableMap(eventstore.TableMap{"Model.Shared": "_stream"}),
	)

	// arrange
	metadata := FixtureUserMetadata("person", "a@example.com")
	userCreated := FixtureUserCreated(t, GivenUniqueID(t), 1, FakeClock(), metadata)

	testCases := []struct {
		name      string
		operation func(streamName eventstore.StreamName) error
	}{
		{
			name: "Create",
			operation: func(streamName eventstore.StreamName) error {
				return es.Create(ctxWithTimeout, eventstore.BuildStream(streamName, userCreated))
			},
		},
		{
			name: "AppendTo",
			operation: func(streamName eventstore.StreamName) error {
				return es.AppendTo(ctxWithTimeout, streamName, userCreated)
			},
		},
		{
			name: "Load",
			operation: func(streamName eventstore.StreamName) error {
				_, err := es.Load(ctxWithTimeout, streamName, eventstore.NoMinVersion)
				return err
			},
		},
		{
			name: "LoadEventsByMetadataFrom",
			operation: func(streamName eventstore.StreamName) error {
				_, err := es.LoadEventsByMetadataFrom(ctxWithTimeout, streamName, metadata, eventstore.NoMinVersion)
				return err
			},
		},
		{
			name: "CreateSchemaSQL",
			operation: func(streamName eventstore.StreamName) error {
				_, err := es.CreateSchemaSQL(streamName, metadata)
				return err
			},
		},
		{
			name: "CreateSchemaFor",
			operation: func(streamName eventstore.StreamName) error {
				return es.CreateSchemaFor(ctxWithTimeout, streamName, metadata)
			},
		},
		{
			name: "DropSchemaFor",
			operation: func(streamName eventstore.StreamName) error {
				return es.DropSchemaFor(ctxWithTimeout, streamName)
			},
		},
	}

	for _, tc := range testCases {
		for _, streamName := range []eventstore.StreamName{"", "   "} {
			t.Run(tc.name+"/"+strconv.Quote(streamName.String()), func(t *testing.T) {
				// act
				err := tc.operation(streamName)

				// assert
				assert.ErrorIs(t, err, eventstore.ErrEmptyStreamName)
			})
		}
	}

	// assert
	_, loadErr := es.Load(ctxWithTimeout, "Model.Shared", eventstore.NoMinVersion)
	assert.True(t, sqlengine.IsMissingTable(loadErr), "no table should have been created, got: %v", loadErr)
	assert.Len(t, tracing.GetSpanRecords(), 1, "only the final load should have been observed")
}

func Test_LoadEventsByMetadataFrom_Should_Reject_InvalidFilterKeys(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	es := storewrapper.SQLiteWrapper().CreateStreamStore(t)
	streamName := GivenUniqueStreamName(t, "Test\\Model")

	// arrange
	GivenStreamWasCreated(
		t,
		ctxWithTimeout,
		es,
		streamName,
		FixtureUserCreated(t, GivenUniqueID(t), 1, FakeClock(), FixtureUserMetadata("person", "a@example.com")),
	)

	testCases := []struct {
		name        string
		filter      eventstore.Metadata
		expectedErr error
	}{
		{
			name:        "empty key",
			filter:      eventstore.BuildMetadata(eventstore.KV("", "person")),
			expectedErr: eventstore.ErrEmptyMetadataKey,
		},
		{
			name:        "payload column",
			filter:      eventstore.BuildMetadata(eventstore.KV("tag", "person"), eventstore.KV(eventstore.ColPayload, "x")),
			expectedErr: eventstore.ErrReservedMetadataKey,
		},
		{
			name:        "version column",
			filter:      eventstore.BuildMetadata(eventstore.KV(eventstore.ColVersion, "1")),
			expectedErr: eventstore.ErrReservedMetadataKey,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			events, err := es.LoadEventsByMetadataFrom(ctxWithTimeout, streamName, tc.filter, eventstore.NoMinVersion)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Empty(t, events)
		})
	}
}
