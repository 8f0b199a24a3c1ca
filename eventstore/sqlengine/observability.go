package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
)

const (
	metricAppendDuration  = "streamstore_append_duration_seconds"
	metricLoadDuration    = "streamstore_load_duration_seconds"
	metricSchemaDuration  = "streamstore_schema_duration_seconds"
	metricEventsAppended  = "streamstore_events_appended_total"
	metricEventsLoaded    = "streamstore_events_loaded_total"
	metricDatabaseErrors  = "streamstore_database_errors_total"
	metricTransactions    = "streamstore_transactions_total"
	spanNameAppend        = "streamstore.append"
	spanNameLoad          = "streamstore.load"
	spanNameCreateSchema  = "streamstore.create_schema"
	spanNameDropSchema    = "streamstore.drop_schema"
	spanAttrOperation     = "operation"
	spanAttrStreamName    = "stream_name"
	spanAttrTableName     = "table_name"
	spanAttrEventCount    = "event_count"
	spanAttrDurationMS    = "duration_ms"
	spanAttrErrorType     = "error_type"
	labelStatus           = "status"
	labelAction           = "action"
	statusSuccess         = "success"
	statusError           = "error"
	operationAppend       = "append"
	operationLoad         = "load"
	operationCreateSchema = "create_schema"
	operationDropSchema   = "drop_schema"
	operationTransaction  = "transaction"
)

const (
	errorTypeBuildQuery     = "build_query"
	errorTypeDatabaseQuery  = "database_query"
	errorTypeDatabaseExec   = "database_exec"
	errorTypeMissingTable   = "missing_table"
	errorTypeRowScan        = "row_scan"
	errorTypeRowDecode      = "row_decode"
	errorTypePayloadEncode  = "payload_encode"
	errorTypeInvalidEvent   = "invalid_event"
	errorTypeInvalidSchema  = "invalid_schema"
	errorTypeSchemaExec     = "schema_exec"
	errorTypeTransactionErr = "transaction"
	errorTypeUnknown        = "unknown"
)

// errorTypeFor maps an operation error to the error_type label of metrics and spans.
func errorTypeFor(err error) string {
	switch {
	case IsMissingTable(err):
		return errorTypeMissingTable
	case errors.Is(err, eventstore.ErrBuildingQueryFailed):
		return errorTypeBuildQuery
	case errors.Is(err, eventstore.ErrAppendingEventFailed):
		return errorTypeDatabaseExec
	case errors.Is(err, eventstore.ErrQueryingEventsFailed):
		return errorTypeDatabaseQuery
	case errors.Is(err, eventstore.ErrScanningDBRowFailed):
		return errorTypeRowScan
	case errors.Is(err, eventstore.ErrDecodingEventRowFailed):
		return errorTypeRowDecode
	case errors.Is(err, eventstore.ErrEncodingPayloadFailed):
		return errorTypePayloadEncode
	case errors.Is(err, eventstore.ErrReservedMetadataKey), errors.Is(err, eventstore.ErrEmptyMetadataKey):
		return errorTypeInvalidSchema
	case errors.Is(err, eventstore.ErrEmptyEventID),
		errors.Is(err, eventstore.ErrEmptyEventName),
		errors.Is(err, eventstore.ErrInvalidVersion):
		return errorTypeInvalidEvent
	case errors.Is(err, eventstore.ErrCreatingSchemaFailed), errors.Is(err, eventstore.ErrDroppingSchemaFailed):
		return errorTypeSchemaExec
	default:
		return errorTypeUnknown
	}
}

// isDatabaseErrorType reports whether the error came back from the database.
// Validation, encoding and query building failures are not counted as database errors.
func isDatabaseErrorType(errorType string) bool {
	switch errorType {
	case errorTypeBuildQuery, errorTypeRowDecode, errorTypePayloadEncode, errorTypeInvalidEvent, errorTypeInvalidSchema:
		return false
	default:
		return true
	}
}

// === Logging ===
// Every message goes to the Logger and the ContextualLogger, whichever are configured.

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (es *StreamStore) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {
	args := []any{logAttrDurationMS, es.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if es.logger != nil {
		es.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if es.contextualLogger != nil {
		es.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (es *StreamStore) logOperation(ctx context.Context, action string, args ...any) {
	if es.logger != nil {
		es.logger.Info(logMsgOperation+action, args...)
	}

	if es.contextualLogger != nil {
		es.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level.
func (es *StreamStore) logWarn(ctx context.Context, message string, args ...any) {
	if es.logger != nil {
		es.logger.Warn(message, args...)
	}

	if es.contextualLogger != nil {
		es.contextualLogger.WarnContext(ctx, message, args...)
	}
}

// logError logs error information at error level.
func (es *StreamStore) logError(
	ctx context.Context,
	message string,
	err error,
	args ...any,
) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if es.logger != nil {
		es.logger.Error(message, allArgs...)
	}

	if es.contextualLogger != nil {
		es.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (es *StreamStore) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// === Metrics ===

// recordDurationMetrics records a duration, preferring the context-aware method if the collector supports it.
func (es *StreamStore) recordDurationMetrics(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	labels map[string]string,
) {
	if es.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
		return
	}

	es.metricsCollector.RecordDuration(metricName, duration, labels)
}

// recordValueMetrics records a value, preferring the context-aware method if the collector supports it.
func (es *StreamStore) recordValueMetrics(
	ctx context.Context,
	metricName string,
	value float64,
	labels map[string]string,
) {
	if es.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
		return
	}

	es.metricsCollector.RecordValue(metricName, value, labels)
}

// incrementCounter increments a counter, preferring the context-aware method if the collector supports it.
func (es *StreamStore) incrementCounter(ctx context.Context, metricName string, labels map[string]string) {
	if es.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricName, labels)
		return
	}

	es.metricsCollector.IncrementCounter(metricName, labels)
}

// === Operation Observer ===
// An operationObserver bundles the span and the metrics of one stream operation.

type operationObserver struct {
	es        *StreamStore
	ctx       context.Context
	operation string
	span      eventstore.SpanContext
}

var durationMetricByOperation = map[string]string{
	operationAppend:       metricAppendDuration,
	operationLoad:         metricLoadDuration,
	operationCreateSchema: metricSchemaDuration,
	operationDropSchema:   metricSchemaDuration,
}

var countMetricByOperation = map[string]string{
	operationAppend: metricEventsAppended,
	operationLoad:   metricEventsLoaded,
}

var spanNameByOperation = map[string]string{
	operationAppend:       spanNameAppend,
	operationLoad:         spanNameLoad,
	operationCreateSchema: spanNameCreateSchema,
	operationDropSchema:   spanNameDropSchema,
}

// startObservation starts the span of an operation, if a tracing collector is configured,
// and returns the observer together with the span's context.
func (es *StreamStore) startObservation(
	ctx context.Context,
	operation string,
	streamName eventstore.StreamName,
	tableName string,
) (*operationObserver, context.Context) {

	observer := &operationObserver{es: es, ctx: ctx, operation: operation}

	if es.tracingCollector != nil {
		spanAttrs := map[string]string{
			spanAttrOperation:  operation,
			spanAttrStreamName: streamName.String(),
			spanAttrTableName:  tableName,
		}

		observer.ctx, observer.span = es.tracingCollector.StartSpan(ctx, spanNameByOperation[operation], spanAttrs)
	}

	return observer, observer.ctx
}

// finishSuccess records the metrics of a successful operation and finishes its span.
// eventCount is ignored for schema operations.
func (o *operationObserver) finishSuccess(eventCount int, duration time.Duration) {
	labels := map[string]string{spanAttrOperation: o.operation, labelStatus: statusSuccess}

	o.es.recordDurationMetrics(o.ctx, durationMetricByOperation[o.operation], duration, labels)

	if metricName, ok := countMetricByOperation[o.operation]; ok {
		o.es.recordValueMetrics(o.ctx, metricName, float64(eventCount), labels)
	}

	if o.span == nil {
		return
	}

	attrs := map[string]string{spanAttrDurationMS: o.formatDuration(duration)}
	if _, ok := countMetricByOperation[o.operation]; ok {
		attrs[spanAttrEventCount] = fmt.Sprintf("%d", eventCount)
	}

	o.es.tracingCollector.FinishSpan(o.span, statusSuccess, attrs)
}

// finishError records the metrics of a failed operation and finishes its span with the error type.
func (o *operationObserver) finishError(errorType string, duration time.Duration) {
	labels := map[string]string{spanAttrOperation: o.operation, labelStatus: statusError}

	o.es.recordDurationMetrics(o.ctx, durationMetricByOperation[o.operation], duration, labels)

	if isDatabaseErrorType(errorType) {
		o.es.incrementCounter(o.ctx, metricDatabaseErrors, map[string]string{
			spanAttrOperation: o.operation,
			labelStatus:       statusError,
			spanAttrErrorType: errorType,
		})
	}

	if o.span == nil {
		return
	}

	attrs := map[string]string{spanAttrErrorType: errorType}
	if duration > 0 {
		attrs[spanAttrDurationMS] = o.formatDuration(duration)
	}

	o.es.tracingCollector.FinishSpan(o.span, statusError, attrs)
}

func (o *operationObserver) formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.2f", o.es.toMilliseconds(duration))
}

// recordTransaction counts a transaction state change by action and status.
func (es *StreamStore) recordTransaction(ctx context.Context, action string, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}

	es.incrementCounter(ctx, metricTransactions, map[string]string{labelAction: action, labelStatus: status})

	if err != nil {
		es.incrementCounter(ctx, metricDatabaseErrors, map[string]string{
			spanAttrOperation: operationTransaction,
			labelStatus:       statusError,
			spanAttrErrorType: errorTypeTransactionErr,
		})
	}
}
