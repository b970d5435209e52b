// Package textcodec converts target files between their on-disk encoding and
// the UTF-8 strings the patcher works on.
package textcodec

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Default is the encoding used when a target does not name one
const Default = "utf-8"

// DecodeError reports bytes that are not valid in the expected encoding
type DecodeError struct {
	Encoding string
	Offset   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid %s byte sequence at offset %d", e.Encoding, e.Offset)
}

// Normalize lower-cases an encoding name and maps the empty name to UTF-8
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "utf8", "utf-8":
		return Default
	}
	return n
}

// Lookup resolves a WHATWG encoding label. UTF-8 resolves to a nil
// Encoding: it is handled natively and validated strictly.
func Lookup(name string) (encoding.Encoding, error) {
	n := Normalize(name)
	if n == Default {
		return nil, nil
	}
	enc, err := htmlindex.Get(n)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// Decode turns raw file bytes into text
func Decode(data []byte, name string) (string, error) {
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	if enc == nil {
		if off := invalidUTF8Offset(data); off >= 0 {
			return "", &DecodeError{Encoding: Default, Offset: off}
		}
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", Normalize(name), err)
	}
	// Decoders substitute U+FFFD for malformed input. A replacement rune is
	// only accepted when the text encodes back to the bytes it came from.
	if bytes.ContainsRune(out, utf8.RuneError) {
		back, err := enc.NewEncoder().Bytes(out)
		if err != nil || !bytes.Equal(back, data) {
			return "", &DecodeError{Encoding: Normalize(name), Offset: firstDiff(data, back)}
		}
	}
	return string(out), nil
}

// Encode turns text back into file bytes. Runes the encoding cannot
// represent are an error, never silently replaced.
func Encode(text string, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return []byte(text), nil
	}
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", Normalize(name), err)
	}
	return out, nil
}

func firstDiff(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
