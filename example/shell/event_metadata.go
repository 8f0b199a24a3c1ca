package shell

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
)

// BookCopyStream is the stream all book copy events go to, its table is "bookcopy_stream".
const BookCopyStream eventstore.StreamName = `Library\BookCopy`

// Metadata keys, each one becomes a column of the stream table.
const (
	MetadataKeyBookID        = "book_id"
	MetadataKeyMessageID     = "message_id"
	MetadataKeyCausationID   = "causation_id"
	MetadataKeyCorrelationID = "correlation_id"
)

// EventMetadata contains event tracking information.
type EventMetadata struct {
	MessageID     string
	CausationID   string
	CorrelationID string
}

// BuildEventMetadata creates EventMetadata from UUID values.
func BuildEventMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID) EventMetadata {
	return EventMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
	}
}

// ToMetadata returns the stream store metadata of an event of the given book copy.
func (m EventMetadata) ToMetadata(bookID string) eventstore.Metadata {
	return eventstore.BuildMetadata(
		eventstore.KV(MetadataKeyBookID, bookID),
		eventstore.KV(MetadataKeyMessageID, m.MessageID),
		eventstore.KV(MetadataKeyCausationID, m.CausationID),
		eventstore.KV(MetadataKeyCorrelationID, m.CorrelationID),
	)
}

// EventMetadataFrom extracts EventMetadata from a stream store event, missing keys stay empty.
func EventMetadataFrom(event eventstore.Event) EventMetadata {
	messageID, _ := event.Metadata.Get(MetadataKeyMessageID)
	causationID, _ := event.Metadata.Get(MetadataKeyCausationID)
	correlationID, _ := event.Metadata.Get(MetadataKeyCorrelationID)

	return EventMetadata{
		MessageID:     messageID,
		CausationID:   causationID,
		CorrelationID: correlationID,
	}
}

// MetadataSample is the sample the book copy table is created from.
func MetadataSample() eventstore.Metadata {
	return EventMetadata{}.ToMetadata("")
}

// BookCopyFilter selects the events of one book copy.
func BookCopyFilter(bookID uuid.UUID) eventstore.Metadata {
	return eventstore.BuildMetadata(eventstore.KV(MetadataKeyBookID, bookID))
}
