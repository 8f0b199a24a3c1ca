package eventstore

import (
	"errors"
)

// Configuration errors, returned when a StreamStore is constructed or a schema is derived.
var (
	ErrNilDatabaseConnection   = errors.New("database connection must not be nil")
	ErrMissingConnectionConfig = errors.New("db adapter configuration is missing")
	ErrUnsupportedDriver       = errors.New("unsupported database driver")
	ErrUnsupportedDialect      = errors.New("unsupported sql dialect")
	ErrNilPayloadCodec         = errors.New("payload codec must not be nil")
	ErrEmptyMappedTableName    = errors.New("stream table map contains an empty table name")
	ErrReservedMetadataKey     = errors.New("metadata key collides with a standard column")
	ErrEmptyMetadataKey        = errors.New("metadata key must not be empty")
)

// Runtime errors of the stream operations.
var (
	ErrCannotCreateEmptyStream = errors.New("cannot create empty stream")
	ErrCreatingSchemaFailed    = errors.New("creating stream schema failed")
	ErrDroppingSchemaFailed    = errors.New("dropping stream schema failed")
	ErrBuildingQueryFailed     = errors.New("building query failed")
	ErrAppendingEventFailed    = errors.New("appending event failed")
	ErrQueryingEventsFailed    = errors.New("querying events failed")
	ErrScanningDBRowFailed     = errors.New("scanning db row failed")
	ErrDecodingEventRowFailed  = errors.New("decoding event row failed")
)

// Transaction errors.
var (
	ErrTransactionAlreadyActive = errors.New("a transaction is already active")
	ErrNoActiveTransaction      = errors.New("no active transaction")
	ErrBeginTransactionFailed   = errors.New("beginning transaction failed")
	ErrCommitTransactionFailed  = errors.New("committing transaction failed")
	ErrRollbackFailed           = errors.New("rolling back transaction failed")
)

// Version is the position of an event within its stream. Versions start at 1.
type Version = uint

// NoMinVersion disables the lower version bound when loading a stream.
const NoMinVersion Version = 0
