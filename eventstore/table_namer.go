package eventstore

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spaolacci/murmur3"
)

const (
	streamTableSuffix = "_stream"

	// MaxTableNameLength is the identifier length limit of PostgreSQL, longer names would be truncated silently.
	MaxTableNameLength = 63
)

// namespaceSeparators split a stream name into path segments, the last segment names the table.
var namespaceSeparators = []rune{'\\', '.', '/'}

// TableMap maps stream names to explicit table names, overriding the derived names.
type TableMap map[StreamName]string

// TableNamer derives physical table names from stream names.
//
// The mapping is copied on construction and never changes afterward.
type TableNamer struct {
	tableMap TableMap
}

// NewTableNamer creates a TableNamer with the given explicit mapping, which may be nil.
func NewTableNamer(tableMap TableMap) (TableNamer, error) {
	copied := make(TableMap, len(tableMap))
	for streamName, tableName := range tableMap {
		if tableName == "" {
			return TableNamer{}, fmt.Errorf("%w: %s", ErrEmptyMappedTableName, streamName)
		}

		copied[streamName] = tableName
	}

	return TableNamer{tableMap: copied}, nil
}

// TableFor returns the table name for the stream.
//
// A mapped name is used verbatim. Otherwise the last namespace segment of the stream name is taken,
// hyphens become underscores, the result is lower-cased and gets the "_stream" suffix unless it already
// contains it. Derived names above MaxTableNameLength are shortened with a hash to stay unique.
func (tn TableNamer) TableFor(streamName StreamName) string {
	if tableName, ok := tn.tableMap[streamName]; ok {
		return tableName
	}

	return DeriveTableName(streamName)
}

// IsMapped reports whether an explicit mapping exists for the stream.
func (tn TableNamer) IsMapped(streamName StreamName) bool {
	_, ok := tn.tableMap[streamName]
	return ok
}

// DeriveTableName applies the naming convention without consulting any mapping.
func DeriveTableName(streamName StreamName) string {
	name := strings.ReplaceAll(streamName.String(), "-", "_")
	name = strings.ToLower(lastNamespaceSegment(name))

	if !strings.Contains(name, streamTableSuffix) {
		name += streamTableSuffix
	}

	if len(name) > MaxTableNameLength {
		name = shortenTableName(name, streamName)
	}

	return name
}

func lastNamespaceSegment(name string) string {
	isSeparator := func(r rune) bool {
		for _, sep := range namespaceSeparators {
			if r == sep {
				return true
			}
		}

		return false
	}

	trimmed := strings.TrimRightFunc(name, isSeparator)
	if trimmed == "" {
		return name
	}

	if idx := strings.LastIndexFunc(trimmed, isSeparator); idx >= 0 {
		return trimmed[idx+1:]
	}

	return trimmed
}

// shortenTableName keeps a prefix of the name and appends a hash of the full stream name and the suffix.
func shortenTableName(name string, streamName StreamName) string {
	hash := fmt.Sprintf("%08x", murmur3.Sum32([]byte(streamName)))
	prefixLen := MaxTableNameLength - len(streamTableSuffix) - len(hash) - 1

	for prefixLen > 0 && !utf8.RuneStart(name[prefixLen]) {
		prefixLen--
	}

	return name[:prefixLen] + "_" + hash + streamTableSuffix
}
