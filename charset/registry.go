package charset

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"golang.org/x/text/encoding"
)

// Identifier bytes of the universal string types.
const (
	tagUTF8String      = 0x0c
	tagPrintableString = 0x13
	tagT61String       = 0x14
	tagIA5String       = 0x16
	tagVisibleString   = 0x1a
	tagGeneralString   = 0x1b
	tagUniversalString = 0x1c
	tagBMPString       = 0x1e
)

// A Registry maps DER tags to the codecs of their string types. A Registry is
// safe for concurrent use. Registrations cannot be removed or replaced.
//
// The zero value is an empty registry ready to use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[byte]encoding.Encoding
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[byte]encoding.Encoding)}
}

// Default returns a new registry populated with the codecs of the universal
// string types: PrintableString, IA5String, VisibleString, T61String,
// GeneralString, UniversalString, BMPString and UTF8String. Each call returns
// an independent instance.
func Default() *Registry {
	r := NewRegistry()
	r.codecs[tagPrintableString] = Printable
	r.codecs[tagIA5String] = IA5
	r.codecs[tagVisibleString] = Visible
	r.codecs[tagT61String] = T61
	r.codecs[tagGeneralString] = General
	r.codecs[tagUniversalString] = Universal
	r.codecs[tagBMPString] = BMP
	r.codecs[tagUTF8String] = UTF8
	return r
}

// Register associates tag with enc. Registering the same codec for a tag again
// has no effect. If a different codec is already registered for tag, Register
// returns an error matching [ErrDuplicateRegistration].
func (r *Registry) Register(tag byte, enc encoding.Encoding) error {
	if enc == nil {
		return fmt.Errorf("charset: nil codec for tag 0x%02x", tag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.codecs[tag]; ok {
		if sameCodec(existing, enc) {
			return nil
		}
		return fmt.Errorf("%w: tag 0x%02x is mapped to %v", ErrDuplicateRegistration, tag, existing)
	}
	if r.codecs == nil {
		r.codecs = make(map[byte]encoding.Encoding)
	}
	r.codecs[tag] = enc
	return nil
}

// sameCodec compares codecs without panicking on incomparable types.
func sameCodec(a, b encoding.Encoding) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Lookup returns the codec registered for tag.
func (r *Registry) Lookup(tag byte) (encoding.Encoding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	enc, ok := r.codecs[tag]
	return enc, ok
}

// Tags returns the registered tags in ascending order.
func (r *Registry) Tags() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.codecs))
}

// Decode converts the DER content b of a string value with the given tag into
// a Go string.
func (r *Registry) Decode(tag byte, b []byte) (string, error) {
	enc, ok := r.Lookup(tag)
	if !ok {
		return "", fmt.Errorf("%w for tag 0x%02x", ErrUnknownCharset, tag)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode converts s into the DER content of a string value with the given tag.
func (r *Registry) Encode(tag byte, s string) ([]byte, error) {
	enc, ok := r.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("%w for tag 0x%02x", ErrUnknownCharset, tag)
	}
	return enc.NewEncoder().Bytes([]byte(s))
}
