// Package serializer provides the response codecs used for content negotiation.
// Each serializer converts Go values to and from byte slices and reports the
// media type it produces.
//
// JSON uses goccy/go-json, MessagePack uses shamaton/msgpack and CBOR uses
// ugorji/go/codec.
package serializer

import (
	"strings"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/numsvc/internal/sentinel"
)

// Serializer names.
const (
	JSON    = "json"
	MsgPack = "msgpack"
	CBOR    = "cbor"
)

// ISerializer is the interface that wraps the basic serializer methods.
type ISerializer interface {
	// Marshal serializes the given value into a byte slice.
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes the given byte slice into the given value.
	Unmarshal(data []byte, v any) error
	// ContentType is the media type of the encoded form.
	ContentType() string
}

// Registry manages serializer constructors.
type Registry struct {
	serializers map[string]func() ISerializer
	mediaTypes  map[string]string // media type -> serializer name
}

// getDefaultSerializers returns the default set of serializers.
func getDefaultSerializers() map[string]func() ISerializer {
	return map[string]func() ISerializer{
		JSON: func() ISerializer {
			return &DefaultJSONSerializer{}
		},
		MsgPack: func() ISerializer {
			return &MsgpackSerializer{}
		},
		CBOR: func() ISerializer {
			return &CBORSerializer{}
		},
	}
}

// NewSerializerRegistry creates a new serializer registry with default serializers pre-registered.
func NewSerializerRegistry() *Registry {
	registry := NewEmptySerializerRegistry()
	// Register the default serializers
	for name, createFunc := range getDefaultSerializers() {
		registry.Register(name, createFunc)
	}

	return registry
}

// NewEmptySerializerRegistry creates a new serializer registry without default serializers.
// This is useful for testing or when you want to register only specific serializers.
func NewEmptySerializerRegistry() *Registry {
	return &Registry{
		serializers: make(map[string]func() ISerializer),
		mediaTypes:  make(map[string]string),
	}
}

// Register registers a new serializer with the given name, indexing it by its media type.
func (r *Registry) Register(serializerType string, createFunc func() ISerializer) {
	r.serializers[serializerType] = createFunc
	r.mediaTypes[createFunc().ContentType()] = serializerType
}

// New returns a new serializer based on the serializerType.
func (r *Registry) New(serializerType string) (ISerializer, error) {
	if serializerType == "" {
		return nil, ewrap.Wrap(sentinel.ErrParamCannotBeEmpty, "serializerType")
	}

	createFunc, ok := r.serializers[serializerType]
	if !ok {
		return nil, ewrap.Wrap(sentinel.ErrSerializerNotFound, serializerType)
	}

	return createFunc(), nil
}

// Negotiate picks the serializer for an Accept header. Media types are matched in the
// order listed, parameters (";q=...") are ignored, and anything unknown falls back to JSON.
func (r *Registry) Negotiate(accept string) ISerializer {
	for part := range strings.SplitSeq(accept, ",") {
		mediaType, _, _ := strings.Cut(part, ";")
		mediaType = strings.ToLower(strings.TrimSpace(mediaType))

		if name, ok := r.mediaTypes[mediaType]; ok {
			return r.serializers[name]()
		}
	}

	if createFunc, ok := r.serializers[JSON]; ok {
		return createFunc()
	}

	return &DefaultJSONSerializer{}
}

// New returns a new serializer using a new registry instance with default serializers.
// The serializerType parameter is used to select the serializer from the default serializers.
func New(serializerType string) (ISerializer, error) {
	registry := NewSerializerRegistry()

	return registry.New(serializerType)
}
