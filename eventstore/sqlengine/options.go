package sqlengine

import (
	"fmt"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
)

// Dialect selects the SQL flavor the statements are built for.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

func (d Dialect) validate() error {
	switch d {
	case DialectPostgres, DialectSQLite:
		return nil
	default:
		return fmt.Errorf("%w: %q", eventstore.ErrUnsupportedDialect, string(d))
	}
}

// Option defines a functional option for configuring StreamStore.
type Option func(*StreamStore) error

// WithStreamTableMap sets explicit table names for some streams, overriding the derived names.
// The map is copied, later changes to it have no effect.
func WithStreamTableMap(tableMap eventstore.TableMap) Option {
	return func(es *StreamStore) error {
		namer, err := eventstore.NewTableNamer(tableMap)
		if err != nil {
			return err
		}

		es.tableNamer = namer

		return nil
	}
}

// WithPayloadCodec sets the codec used to store payloads. The default is a eventstore.JSONCodec without registry.
func WithPayloadCodec(codec eventstore.PayloadCodec) Option {
	return func(es *StreamStore) error {
		if codec == nil {
			return eventstore.ErrNilPayloadCodec
		}

		es.payloadCodec = codec

		return nil
	}
}

// WithDialect overrides the SQL dialect, which otherwise follows from the connection type.
func WithDialect(dialect Dialect) Option {
	return func(es *StreamStore) error {
		if err := dialect.validate(); err != nil {
			return err
		}

		es.dialect = dialect

		return nil
	}
}

// WithTypeDiscriminator adds the event_class column to new stream tables and fills it with the Go type of the payload.
// The column is informational, payloads are always decoded by event name.
func WithTypeDiscriminator() Option {
	return func(es *StreamStore) error {
		es.typeDiscriminator = true
		return nil
	}
}

// WithUniqueVersions adds a unique constraint on the version column to new stream tables,
// so that two appends with the same version cannot both succeed.
func WithUniqueVersions() Option {
	return func(es *StreamStore) error {
		es.uniqueVersions = true
		return nil
	}
}

// WithLogger sets the logger for the StreamStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Event counts, durations, schema and transaction changes (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *StreamStore) error {
		es.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the StreamStore.
// It receives the same messages as the Logger, with the operation's context for trace correlation.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *StreamStore) error {
		es.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the StreamStore.
// It receives durations of appends, loads and schema changes, event counts and database errors.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *StreamStore) error {
		es.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the StreamStore.
// Appends, loads and schema changes each get a span.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(es *StreamStore) error {
		es.tracingCollector = collector
		return nil
	}
}
