package eventstore

import "fmt"

// Standard columns of every stream table. Metadata keys must not use these names.
const (
	ColEventID    = "event_id"
	ColVersion    = "version"
	ColEventName  = "event_name"
	ColEventClass = "event_class"
	ColPayload    = "payload"
	ColCreatedAt  = "created_at"
)

var standardColumns = []string{ColEventID, ColVersion, ColEventName, ColEventClass, ColPayload, ColCreatedAt}

// StandardColumns returns the names of the standard columns in table order.
func StandardColumns() []string {
	cols := make([]string, len(standardColumns))
	copy(cols, standardColumns)

	return cols
}

// IsStandardColumn reports whether the name is one of the standard column names.
func IsStandardColumn(name string) bool {
	for _, col := range standardColumns {
		if col == name {
			return true
		}
	}

	return false
}

// ValidateMetadataKeys rejects empty keys and keys that would be shadowed by a standard column.
func ValidateMetadataKeys(metadata Metadata) error {
	for _, key := range metadata.keys {
		if key == "" {
			return ErrEmptyMetadataKey
		}

		if IsStandardColumn(key) {
			return fmt.Errorf("%w: %s", ErrReservedMetadataKey, key)
		}
	}

	return nil
}
