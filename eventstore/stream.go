package eventstore

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyStreamName = errors.New("stream name must not be empty")
var ErrEmptyEventID = errors.New("event id must not be empty")
var ErrEmptyEventName = errors.New("event name must not be empty")
var ErrInvalidVersion = errors.New("event version must be positive")
var ErrGeneratingEventIDFailed = errors.New("generating event id failed")

// StreamName identifies a logical stream, commonly a namespaced type path like "My\Model\User".
type StreamName string

// BuildStreamName is a factory method for StreamName, rejecting empty (or whitespace-only) names.
func BuildStreamName(name string) (StreamName, error) {
	streamName := StreamName(name)
	if err := streamName.Validate(); err != nil {
		return "", err
	}

	return streamName, nil
}

// Validate rejects empty (or whitespace-only) stream names.
func (n StreamName) Validate() error {
	if strings.TrimSpace(string(n)) == "" {
		return ErrEmptyStreamName
	}

	return nil
}

// String returns the stream name as given.
func (n StreamName) String() string {
	return string(n)
}

// Events is an alias type for a slice of Event.
type Events = []Event

// Event is the record the StreamStore appends and reconstitutes.
//
// It is a DTO (data transfer object) and agnostic of the client's domain event types.
// The Payload is handed to the configured PayloadCodec as is.
type Event struct {
	ID         string
	Name       string
	Version    Version
	OccurredAt time.Time
	Payload    any
	Metadata   Metadata
}

// BuildEvent is a factory method for Event.
//
// It generates a time-ordered (v7) UUID as id and uses the current UTC time as OccurredAt.
func BuildEvent(name string, version Version, payload any, metadata Metadata) (Event, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Event{}, errors.Join(ErrGeneratingEventIDFailed, err)
	}

	return BuildEventWithID(id.String(), name, version, time.Now().UTC(), payload, metadata)
}

// BuildEventWithID is a factory method for Event with all fields supplied by the caller.
func BuildEventWithID(
	id string,
	name string,
	version Version,
	occurredAt time.Time,
	payload any,
	metadata Metadata,
) (Event, error) {

	event := Event{
		ID:         id,
		Name:       name,
		Version:    version,
		OccurredAt: occurredAt,
		Payload:    payload,
		Metadata:   metadata,
	}

	if err := event.Validate(); err != nil {
		return Event{}, err
	}

	return event, nil
}

// Validate checks the invariants of an event record.
func (e Event) Validate() error {
	if e.ID == "" {
		return ErrEmptyEventID
	}

	if e.Name == "" {
		return ErrEmptyEventName
	}

	if e.Version < 1 {
		return ErrInvalidVersion
	}

	return nil
}

// Stream is a named, ordered sequence of events. It is built per read or write call and is not persisted itself.
type Stream struct {
	Name   StreamName
	Events Events
}

// BuildStream is a factory method for Stream.
func BuildStream(name StreamName, events ...Event) Stream {
	if events == nil {
		events = make(Events, 0)
	}

	return Stream{Name: name, Events: events}
}

// IsEmpty reports whether the stream has no events.
func (s Stream) IsEmpty() bool {
	return len(s.Events) == 0
}
