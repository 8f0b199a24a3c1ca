package eventstore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"

	"github.com/golang/snappy"
	jsoniter "github.com/json-iterator/go"
)

var ErrEncodingPayloadFailed = errors.New("encoding payload failed")
var ErrDecodingPayloadFailed = errors.New("decoding payload failed")
var ErrDuplicatePayloadDecoder = errors.New("a payload decoder is already registered for this event name")
var ErrNilPayloadDecoder = errors.New("payload decoder must not be nil")

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// PayloadCodec converts event payloads to and from the text stored in the payload column.
type PayloadCodec interface {
	Encode(payload any) (string, error)
	Decode(eventName string, data string) (any, error)
}

// PayloadDecoder turns serialized JSON into the payload value of one event name.
type PayloadDecoder func(payloadJSON []byte) (any, error)

// PayloadRegistry maps event names to payload decoders.
//
// It replaces reflective type lookups: the reader never instantiates a type from a stored name,
// it only calls decoders that were registered explicitly. Payloads of unregistered event names
// decode into map[string]any.
//
// Register all decoders before the registry is used by a StreamStore, it is not safe for concurrent writes.
type PayloadRegistry struct {
	decoders map[string]PayloadDecoder
}

// NewPayloadRegistry creates an empty PayloadRegistry.
func NewPayloadRegistry() *PayloadRegistry {
	return &PayloadRegistry{decoders: make(map[string]PayloadDecoder)}
}

// Register adds a decoder for the event name.
func (r *PayloadRegistry) Register(eventName string, decoder PayloadDecoder) error {
	if eventName == "" {
		return ErrEmptyEventName
	}

	if decoder == nil {
		return ErrNilPayloadDecoder
	}

	if _, exists := r.decoders[eventName]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePayloadDecoder, eventName)
	}

	r.decoders[eventName] = decoder

	return nil
}

// RegisterPayload registers a decoder that unmarshals the payload of eventName into a T value.
func RegisterPayload[T any](r *PayloadRegistry, eventName string) error {
	return r.Register(eventName, func(payloadJSON []byte) (any, error) {
		var payload T
		if err := jsonAPI.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, err
		}

		return payload, nil
	})
}

// IsRegistered reports whether a decoder exists for the event name.
func (r *PayloadRegistry) IsRegistered(eventName string) bool {
	if r == nil {
		return false
	}

	_, ok := r.decoders[eventName]
	return ok
}

func (r *PayloadRegistry) decode(eventName string, payloadJSON []byte) (any, error) {
	if r != nil {
		if decoder, ok := r.decoders[eventName]; ok {
			return decoder(payloadJSON)
		}
	}

	var payload map[string]any
	if err := jsonAPI.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, err
	}

	return payload, nil
}

// JSONCodec stores payloads as JSON text. This is the default PayloadCodec.
type JSONCodec struct {
	registry *PayloadRegistry
}

// NewJSONCodec creates a JSONCodec, the registry may be nil.
func NewJSONCodec(registry *PayloadRegistry) JSONCodec {
	return JSONCodec{registry: registry}
}

// Encode marshals the payload to JSON.
func (c JSONCodec) Encode(payload any) (string, error) {
	payloadJSON, err := jsonAPI.Marshal(payload)
	if err != nil {
		return "", errors.Join(ErrEncodingPayloadFailed, err)
	}

	return string(payloadJSON), nil
}

// Decode unmarshals the JSON text with the decoder registered for the event name.
func (c JSONCodec) Decode(eventName string, data string) (any, error) {
	payload, err := c.registry.decode(eventName, []byte(data))
	if err != nil {
		return nil, errors.Join(ErrDecodingPayloadFailed, err)
	}

	return payload, nil
}

// SnappyJSONCodec stores payloads as snappy-compressed JSON, base64 encoded to fit a text column.
// It pays off for large payloads, small ones can grow.
type SnappyJSONCodec struct {
	json JSONCodec
}

// NewSnappyJSONCodec creates a SnappyJSONCodec, the registry may be nil.
func NewSnappyJSONCodec(registry *PayloadRegistry) SnappyJSONCodec {
	return SnappyJSONCodec{json: NewJSONCodec(registry)}
}

// Encode marshals, compresses and base64 encodes the payload.
func (c SnappyJSONCodec) Encode(payload any) (string, error) {
	payloadJSON, err := jsonAPI.Marshal(payload)
	if err != nil {
		return "", errors.Join(ErrEncodingPayloadFailed, err)
	}

	return base64.StdEncoding.EncodeToString(snappy.Encode(nil, payloadJSON)), nil
}

// Decode reverses Encode and unmarshals with the decoder registered for the event name.
func (c SnappyJSONCodec) Decode(eventName string, data string) (any, error) {
	compressed, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.Join(ErrDecodingPayloadFailed, err)
	}

	payloadJSON, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, errors.Join(ErrDecodingPayloadFailed, err)
	}

	payload, err := c.json.registry.decode(eventName, payloadJSON)
	if err != nil {
		return nil, errors.Join(ErrDecodingPayloadFailed, err)
	}

	return payload, nil
}

// PayloadTypeName returns the Go type of the payload, which is stored as type discriminator when enabled.
func PayloadTypeName(payload any) string {
	if payload == nil {
		return "<nil>"
	}

	return reflect.TypeOf(payload).String()
}
