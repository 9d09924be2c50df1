// Package codec turns opaque message payloads into newline-safe text lines
// and back, so the persistent log can stay a flat append-only file.
package codec

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrMalformedLine is returned by Decode when a line is not valid
// standard-alphabet base64.
var ErrMalformedLine = errors.New("codec: malformed line")

// Encode produces a base-64 string (standard alphabet, "=" padding) with no
// embedded newline. One payload maps to exactly one line.
func Encode(payload []byte) string {
	return base64.StdEncoding.EncodeToString(payload)
}

// Decode reverses Encode. line must not contain a trailing newline; callers
// are expected to strip line terminators before calling Decode.
func Decode(line string) ([]byte, error) {
	if strings.ContainsRune(line, '\n') {
		return nil, ErrMalformedLine
	}
	payload, err := base64.StdEncoding.DecodeString(line)
	if err != nil {
		return nil, ErrMalformedLine
	}
	return payload, nil
}
