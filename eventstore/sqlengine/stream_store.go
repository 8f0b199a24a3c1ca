package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore/sqlengine/internal/adapters"
)

const (
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed during event append"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgDecodeRowFailed        = "failed to decode event from database row"
	logMsgInvalidEvent           = "refusing to append invalid event"
	logMsgEventsLoaded           = "events loaded"
	logMsgEventsAppended         = "events appended"
	logMsgSchemaCreated          = "stream schema created"
	logMsgSchemaDropped          = "stream schema dropped"
	logMsgSchemaFailed           = "stream schema statement failed"
	logMsgTransaction            = "transaction "
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "streamstore operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrStreamName            = "stream_name"
	logAttrTableName             = "table_name"
	logAttrEventID               = "event_id"
	logAttrEventName             = "event_name"
	logAttrEventCount            = "event_count"
	logAttrMinVersion            = "min_version"
	logAttrFilterKeys            = "filter_keys"
	logAttrDurationMS            = "duration_ms"
	logActionLoad                = "load"
	logActionAppend              = "append"
	logActionCreateSchema        = "create_schema"
	logActionDropSchema          = "drop_schema"
)

// tableHandle is the resolved table of one stream.
type tableHandle struct {
	name  string
	ident exp.IdentifierExpression
}

// StreamStore persists event streams with one table per stream.
//
// A StreamStore works on a single logical connection: while a transaction is active, every statement runs inside it.
// It is not safe for concurrent use, callers must serialize access or use one StreamStore per unit of work.
type StreamStore struct {
	db                adapters.DBAdapter
	closeDB           func() error
	dialect           Dialect
	tableNamer        eventstore.TableNamer
	payloadCodec      eventstore.PayloadCodec
	typeDiscriminator bool
	uniqueVersions    bool
	tables            map[eventstore.StreamName]tableHandle
	tx                txState
	logger            eventstore.Logger
	contextualLogger  eventstore.ContextualLogger
	metricsCollector  eventstore.MetricsCollector
	tracingCollector  eventstore.TracingCollector
}

// NewStreamStoreFromPGXPool creates a new StreamStore using a pgx Pool with optional configuration.
func NewStreamStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*StreamStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newStreamStore(adapters.NewPGXAdapter(db), DialectPostgres, options...)
}

// NewStreamStoreFromSQLDB creates a new StreamStore using a sql.DB with optional configuration.
//
// The dialect defaults to PostgreSQL, use WithDialect for other databases.
// For SQLite the sql.DB should be limited to one open connection.
func NewStreamStoreFromSQLDB(db *sql.DB, options ...Option) (*StreamStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newStreamStore(adapters.NewSQLAdapter(db), DialectPostgres, options...)
}

// NewStreamStoreFromSQLX creates a new StreamStore using a sqlx.DB with optional configuration.
// The dialect is chosen from the driver name of the sqlx.DB unless WithDialect is given.
func NewStreamStoreFromSQLX(db *sqlx.DB, options ...Option) (*StreamStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newStreamStore(adapters.NewSQLXAdapter(db), dialectForDriverName(db.DriverName()), options...)
}

func newStreamStore(db adapters.DBAdapter, dialect Dialect, options ...Option) (*StreamStore, error) {
	namer, _ := eventstore.NewTableNamer(nil) // an empty map can't fail

	es := &StreamStore{
		db:           db,
		dialect:      dialect,
		tableNamer:   namer,
		payloadCodec: eventstore.NewJSONCodec(nil),
		tables:       make(map[eventstore.StreamName]tableHandle),
		tx:           txIdle,
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

func dialectForDriverName(driverName string) Dialect {
	if strings.HasPrefix(driverName, "sqlite") {
		return DialectSQLite
	}

	return DialectPostgres
}

// Close releases a connection the StreamStore opened itself, see NewStreamStoreFromConfig.
// Connections handed in by the caller are left open.
func (es *StreamStore) Close() error {
	if es.closeDB == nil {
		return nil
	}

	closeDB := es.closeDB
	es.closeDB = nil

	return closeDB()
}

// TableFor returns the table name used for the stream.
func (es *StreamStore) TableFor(streamName eventstore.StreamName) string {
	return es.table(streamName).name
}

// table resolves the stream's table once and caches it for the lifetime of the StreamStore.
func (es *StreamStore) table(streamName eventstore.StreamName) tableHandle {
	if handle, ok := es.tables[streamName]; ok {
		return handle
	}

	tableName := es.tableNamer.TableFor(streamName)
	handle := tableHandle{name: tableName, ident: goqu.T(tableName)}
	es.tables[streamName] = handle

	return handle
}

// Create creates the table of a new stream and appends the stream's events.
//
// The table columns are derived from the metadata of the first event.
// A stream without events is rejected before anything is executed.
func (es *StreamStore) Create(ctx context.Context, stream eventstore.Stream) error {
	if err := stream.Name.Validate(); err != nil {
		return err
	}

	if stream.IsEmpty() {
		return fmt.Errorf(
			"%w %s: at least one event is required to derive the table columns from its metadata",
			eventstore.ErrCannotCreateEmptyStream,
			stream.Name,
		)
	}

	if err := es.CreateSchemaFor(ctx, stream.Name, stream.Events[0].Metadata); err != nil {
		return err
	}

	return es.AppendTo(ctx, stream.Name, stream.Events...)
}

// AppendTo inserts the events into the stream's table, one statement per event in the given order.
//
// The table must exist, a missing table surfaces as the driver's error (see IsMissingTable).
// Without an active transaction, events inserted before a failing one stay persisted.
func (es *StreamStore) AppendTo(ctx context.Context, streamName eventstore.StreamName, events ...eventstore.Event) error {
	if err := streamName.Validate(); err != nil {
		return err
	}

	handle := es.table(streamName)
	observer, ctx := es.startObservation(ctx, operationAppend, streamName, handle.name)

	start := time.Now()

	for _, event := range events {
		if err := es.appendEvent(ctx, handle, event); err != nil {
			observer.finishError(errorTypeFor(err), time.Since(start))
			return err
		}
	}

	duration := time.Since(start)
	observer.finishSuccess(len(events), duration)

	es.logOperation(
		ctx,
		logMsgEventsAppended,
		logAttrStreamName, streamName.String(),
		logAttrTableName, handle.name,
		logAttrEventCount, len(events),
		logAttrDurationMS, es.toMilliseconds(duration),
	)

	return nil
}

func (es *StreamStore) appendEvent(ctx context.Context, handle tableHandle, event eventstore.Event) error {
	record, encodeErr := es.encodeRow(event)
	if encodeErr != nil {
		es.logError(ctx, logMsgInvalidEvent, encodeErr, logAttrEventID, event.ID, logAttrEventName, event.Name)
		return encodeErr
	}

	sqlQuery, args, buildErr := es.buildInsertQuery(handle, record)
	if buildErr != nil {
		es.logError(ctx, logMsgBuildInsertQueryFailed, buildErr, logAttrEventID, event.ID)
		return buildErr
	}

	start := time.Now()
	_, execErr := es.db.Exec(ctx, sqlQuery, args...)
	es.logQueryWithDuration(ctx, sqlQuery, logActionAppend, time.Since(start))

	if execErr != nil {
		es.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery, logAttrEventID, event.ID)
		return errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	return nil
}

// Load loads all events of the stream with a version of at least minVersion, ordered by version.
// Pass eventstore.NoMinVersion to load the whole stream.
func (es *StreamStore) Load(
	ctx context.Context,
	streamName eventstore.StreamName,
	minVersion eventstore.Version,
) (eventstore.Stream, error) {

	events, err := es.LoadEventsByMetadataFrom(ctx, streamName, eventstore.Metadata{}, minVersion)
	if err != nil {
		return eventstore.Stream{}, err
	}

	return eventstore.BuildStream(streamName, events...), nil
}

// LoadEventsByMetadataFrom loads the events of the stream whose metadata columns equal all entries of the filter
// and whose version is at least minVersion, ordered by version ascending.
//
// The filter entries seed the metadata of every loaded event, the event's own metadata columns are merged on top.
// No matching events is not an error, the result is empty.
// Empty filter keys and keys naming a standard column are rejected before a query is built.
func (es *StreamStore) LoadEventsByMetadataFrom(
	ctx context.Context,
	streamName eventstore.StreamName,
	filter eventstore.Metadata,
	minVersion eventstore.Version,
) (eventstore.Events, error) {

	empty := make(eventstore.Events, 0)

	if err := streamName.Validate(); err != nil {
		return empty, err
	}

	if err := eventstore.ValidateMetadataKeys(filter); err != nil {
		return empty, err
	}

	handle := es.table(streamName)
	observer, ctx := es.startObservation(ctx, operationLoad, streamName, handle.name)

	sqlQuery, args, buildErr := es.buildSelectQuery(handle, filter, minVersion)
	if buildErr != nil {
		es.logError(ctx, logMsgBuildSelectQueryFailed, buildErr, logAttrStreamName, streamName.String())
		observer.finishError(errorTypeBuildQuery, 0)
		return empty, buildErr
	}

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery, args...)
	es.logQueryWithDuration(ctx, sqlQuery, logActionLoad, time.Since(start))

	if queryErr != nil {
		err := errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
		es.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		observer.finishError(errorTypeFor(err), time.Since(start))
		return empty, err
	}
	defer es.closeRows(ctx, rows)

	events, scanErr := es.processQueryResults(ctx, rows, filter)
	if scanErr != nil {
		observer.finishError(errorTypeFor(scanErr), time.Since(start))
		return empty, scanErr
	}

	duration := time.Since(start)
	observer.finishSuccess(len(events), duration)

	es.logOperation(
		ctx,
		logMsgEventsLoaded,
		logAttrStreamName, streamName.String(),
		logAttrEventCount, len(events),
		logAttrMinVersion, minVersion,
		logAttrFilterKeys, strings.Join(filter.Keys(), ","),
		logAttrDurationMS, es.toMilliseconds(duration),
	)

	return events, nil
}

// processQueryResults decodes all rows into events.
func (es *StreamStore) processQueryResults(
	ctx context.Context,
	rows adapters.DBRows,
	filter eventstore.Metadata,
) (eventstore.Events, error) {

	empty := make(eventstore.Events, 0)
	events := make(eventstore.Events, 0)

	columns, columnsErr := rows.Columns()
	if columnsErr != nil {
		es.logError(ctx, logMsgScanRowFailed, columnsErr)
		return empty, errors.Join(eventstore.ErrScanningDBRowFailed, columnsErr)
	}

	for rows.Next() {
		values, scanErr := rows.Values()
		if scanErr != nil {
			es.logError(ctx, logMsgScanRowFailed, scanErr)
			return empty, errors.Join(eventstore.ErrScanningDBRowFailed, scanErr)
		}

		event, decodeErr := es.decodeRow(columns, values, filter)
		if decodeErr != nil {
			es.logError(ctx, logMsgDecodeRowFailed, decodeErr)
			return empty, decodeErr
		}

		events = append(events, event)
	}

	if iterErr := rows.Err(); iterErr != nil {
		es.logError(ctx, logMsgScanRowFailed, iterErr)
		return empty, errors.Join(eventstore.ErrScanningDBRowFailed, iterErr)
	}

	return events, nil
}

// closeRows safely closes database rows and logs any errors.
func (es *StreamStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		es.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (es *StreamStore) buildInsertQuery(handle tableHandle, record goqu.Record) (string, []any, error) {
	insertStmt := goqu.Dialect(string(es.dialect)).
		Insert(handle.ident).
		Rows(record).
		Prepared(true)

	sqlQuery, args, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

func (es *StreamStore) buildSelectQuery(
	handle tableHandle,
	filter eventstore.Metadata,
	minVersion eventstore.Version,
) (string, []any, error) {

	conditions := make([]exp.Expression, 0, filter.Len()+1)

	if minVersion != eventstore.NoMinVersion {
		conditions = append(conditions, goqu.C(eventstore.ColVersion).Gte(int64(minVersion)))
	}

	for _, pair := range filter.Pairs() {
		conditions = append(conditions, goqu.C(pair.Key()).Eq(pair.Val()))
	}

	selectStmt := goqu.Dialect(string(es.dialect)).
		From(handle.ident).
		Where(conditions...).
		Order(goqu.C(eventstore.ColVersion).Asc()).
		Prepared(true)

	sqlQuery, args, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}
