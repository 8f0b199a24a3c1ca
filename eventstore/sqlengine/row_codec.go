package sqlengine

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
)

// encodeRow builds the column values of one event: the standard columns followed by one column per metadata key.
func (es *StreamStore) encodeRow(event eventstore.Event) (goqu.Record, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := eventstore.ValidateMetadataKeys(event.Metadata); err != nil {
		return nil, err
	}

	payload, encodeErr := es.payloadCodec.Encode(event.Payload)
	if encodeErr != nil {
		return nil, encodeErr
	}

	record := goqu.Record{
		eventstore.ColEventID:   event.ID,
		eventstore.ColVersion:   int64(event.Version),
		eventstore.ColEventName: event.Name,
		eventstore.ColPayload:   payload,
		eventstore.ColCreatedAt: formatCreatedAt(event.OccurredAt),
	}

	if es.typeDiscriminator {
		record[eventstore.ColEventClass] = eventstore.PayloadTypeName(event.Payload)
	}

	for _, pair := range event.Metadata.Pairs() {
		record[pair.Key()] = pair.Val()
	}

	return record, nil
}

// decodeRow rebuilds an event from one row of a stream table.
//
// The filter seeds the event's metadata, every non-standard column that is not NULL is merged on top in column order.
func (es *StreamStore) decodeRow(columns []string, values []any, filter eventstore.Metadata) (eventstore.Event, error) {
	if len(columns) != len(values) {
		return eventstore.Event{}, fmt.Errorf(
			"%w: got %d values for %d columns",
			eventstore.ErrDecodingEventRowFailed,
			len(values),
			len(columns),
		)
	}

	var event eventstore.Event
	var payload string
	rowMetadata := make([]eventstore.MetadataPair, 0, len(columns))

	for i, column := range columns {
		value := values[i]

		switch column {
		case eventstore.ColEventID:
			event.ID, _ = columnString(value)

		case eventstore.ColVersion:
			version, err := columnVersion(value)
			if err != nil {
				return eventstore.Event{}, errors.Join(eventstore.ErrDecodingEventRowFailed, err)
			}
			event.Version = version

		case eventstore.ColEventName:
			event.Name, _ = columnString(value)

		case eventstore.ColEventClass:
			// informational only, payloads are decoded by event name

		case eventstore.ColPayload:
			payload, _ = columnString(value)

		case eventstore.ColCreatedAt:
			createdAt, _ := columnString(value)
			occurredAt, err := parseCreatedAt(createdAt)
			if err != nil {
				return eventstore.Event{}, errors.Join(eventstore.ErrDecodingEventRowFailed, err)
			}
			event.OccurredAt = occurredAt

		default:
			if str, ok := columnString(value); ok {
				rowMetadata = append(rowMetadata, eventstore.KV(column, str))
			}
		}
	}

	decoded, decodeErr := es.payloadCodec.Decode(event.Name, payload)
	if decodeErr != nil {
		return eventstore.Event{}, errors.Join(eventstore.ErrDecodingEventRowFailed, decodeErr)
	}

	event.Payload = decoded
	event.Metadata = filter.Merge(eventstore.BuildMetadata(rowMetadata...))

	return event, nil
}

func formatCreatedAt(occurredAt time.Time) string {
	return occurredAt.UTC().Format(time.RFC3339Nano)
}

func parseCreatedAt(createdAt string) (time.Time, error) {
	if createdAt == "" {
		return time.Time{}, nil
	}

	occurredAt, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return time.Time{}, err
	}

	return occurredAt.UTC(), nil
}

// columnString converts a scanned column value to its string form, reporting false for NULL.
// Drivers differ in what they return for text columns, so []byte and numbers are accepted as well.
func columnString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case time.Time:
		return formatCreatedAt(v), true
	default:
		return fmt.Sprint(v), true
	}
}

func columnVersion(value any) (eventstore.Version, error) {
	var version int64

	switch v := value.(type) {
	case int64:
		version = v
	case int32:
		version = int64(v)
	case int:
		version = int64(v)
	case string, []byte:
		str, _ := columnString(v)
		parsed, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("version column holds %q: %w", str, err)
		}
		version = parsed
	default:
		return 0, fmt.Errorf("version column holds unsupported type %T", value)
	}

	if version < 0 {
		return 0, fmt.Errorf("version column holds negative value %d", version)
	}

	return eventstore.Version(version), nil
}
