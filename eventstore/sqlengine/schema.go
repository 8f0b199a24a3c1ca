package sqlengine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
)

const (
	typeEventID    = "VARCHAR(100)"
	typeVersion    = "INTEGER"
	typeEventName  = "VARCHAR(100)"
	typeEventClass = "VARCHAR(100)"
	typePayload    = "TEXT"
	typeCreatedAt  = "VARCHAR(50)"
	typeMetadata   = "VARCHAR(100)"
	notNull        = " NOT NULL"
)

// CreateSchemaSQL returns the DDL that creates the table of the stream without executing it.
//
// The table has the standard columns followed by one column per key of the metadata sample, in the sample's order.
// An empty sample gives a table with the standard columns only.
func (es *StreamStore) CreateSchemaSQL(streamName eventstore.StreamName, sample eventstore.Metadata) (string, error) {
	if err := streamName.Validate(); err != nil {
		return "", err
	}

	if err := eventstore.ValidateMetadataKeys(sample); err != nil {
		return "", err
	}

	return es.writeCreateTable(es.table(streamName).name, sample), nil
}

// CreateSchemaFor creates the table of the stream if it does not exist yet.
func (es *StreamStore) CreateSchemaFor(
	ctx context.Context,
	streamName eventstore.StreamName,
	sample eventstore.Metadata,
) error {

	if err := streamName.Validate(); err != nil {
		return err
	}

	tableName := es.table(streamName).name
	observer, ctx := es.startObservation(ctx, operationCreateSchema, streamName, tableName)

	ddl, ddlErr := es.CreateSchemaSQL(streamName, sample)
	if ddlErr != nil {
		es.logError(ctx, logMsgSchemaFailed, ddlErr, logAttrStreamName, streamName.String())
		observer.finishError(errorTypeFor(ddlErr), 0)
		return ddlErr
	}

	return es.executeSchemaStatement(ctx, observer, ddl, logActionCreateSchema, logMsgSchemaCreated,
		eventstore.ErrCreatingSchemaFailed, streamName, tableName)
}

// DropSchemaSQL returns the DDL that drops the table of the stream without executing it.
func (es *StreamStore) DropSchemaSQL(streamName eventstore.StreamName) string {
	return "DROP TABLE " + quoteIdentifier(es.table(streamName).name)
}

// DropSchemaFor drops the table of the stream. Dropping a table that does not exist is an error.
func (es *StreamStore) DropSchemaFor(ctx context.Context, streamName eventstore.StreamName) error {
	if err := streamName.Validate(); err != nil {
		return err
	}

	tableName := es.table(streamName).name
	observer, ctx := es.startObservation(ctx, operationDropSchema, streamName, tableName)

	return es.executeSchemaStatement(ctx, observer, es.DropSchemaSQL(streamName), logActionDropSchema,
		logMsgSchemaDropped, eventstore.ErrDroppingSchemaFailed, streamName, tableName)
}

func (es *StreamStore) executeSchemaStatement(
	ctx context.Context,
	observer *operationObserver,
	ddl string,
	action string,
	successMsg string,
	failure error,
	streamName eventstore.StreamName,
	tableName string,
) error {

	start := time.Now()
	_, execErr := es.db.Exec(ctx, ddl)
	duration := time.Since(start)
	es.logQueryWithDuration(ctx, ddl, action, duration)

	if execErr != nil {
		err := errors.Join(failure, execErr)
		es.logError(ctx, logMsgSchemaFailed, execErr, logAttrQuery, ddl, logAttrStreamName, streamName.String())
		observer.finishError(errorTypeFor(err), duration)
		return err
	}

	observer.finishSuccess(0, duration)

	es.logOperation(
		ctx,
		successMsg,
		logAttrStreamName, streamName.String(),
		logAttrTableName, tableName,
		logAttrDurationMS, es.toMilliseconds(duration),
	)

	return nil
}

// writeCreateTable renders the CREATE TABLE statement. Both supported dialects share the same DDL.
func (es *StreamStore) writeCreateTable(tableName string, sample eventstore.Metadata) string {
	var b strings.Builder

	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(quoteIdentifier(tableName))
	b.WriteString(" (\n")

	writeColumn(&b, eventstore.ColEventID, typeEventID+notNull)
	writeColumn(&b, eventstore.ColVersion, typeVersion+notNull)
	writeColumn(&b, eventstore.ColEventName, typeEventName+notNull)
	if es.typeDiscriminator {
		writeColumn(&b, eventstore.ColEventClass, typeEventClass+notNull)
	}
	writeColumn(&b, eventstore.ColPayload, typePayload+notNull)
	writeColumn(&b, eventstore.ColCreatedAt, typeCreatedAt+notNull)

	for _, key := range sample.Keys() {
		writeColumn(&b, key, typeMetadata)
	}

	b.WriteString("\tPRIMARY KEY (")
	b.WriteString(quoteIdentifier(eventstore.ColEventID))
	b.WriteString(")")

	if es.uniqueVersions {
		b.WriteString(",\n\tUNIQUE (")
		b.WriteString(quoteIdentifier(eventstore.ColVersion))
		b.WriteString(")")
	}

	b.WriteString("\n)")

	return b.String()
}

func writeColumn(b *strings.Builder, name string, definition string) {
	b.WriteByte('\t')
	b.WriteString(quoteIdentifier(name))
	b.WriteByte(' ')
	b.WriteString(definition)
	b.WriteString(",\n")
}

// quoteIdentifier quotes a table or column name, doubling embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
