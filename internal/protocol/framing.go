package protocol

import (
	"bytes"
	"errors"
	"io"

	"github.com/tidwall/gjson"
)

var (
	// ErrEmptyResponse is returned when the peer closes before sending a byte.
	ErrEmptyResponse = errors.New("connection closed before any data was received")
	// ErrIncompleteResponse is returned when the peer closes mid-document.
	ErrIncompleteResponse = errors.New("connection closed before a complete JSON document was received")
	// ErrResponseTooLarge is returned when a document exceeds the size cap.
	ErrResponseTooLarge = errors.New("JSON document exceeds maximum size")
)

// ReadDocument accumulates chunkSize reads from r until the buffer holds one
// valid JSON document. maxBytes <= 0 disables the size cap. On failure the
// bytes read so far are returned alongside the error.
func ReadDocument(r io.Reader, chunkSize, maxBytes int) ([]byte, error) {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	buf := make([]byte, 0, chunkSize)
	chunk := make([]byte, chunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if maxBytes > 0 && len(buf) > maxBytes {
				return buf, ErrResponseTooLarge
			}
			if gjson.ValidBytes(buf) {
				return buf, nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(bytes.TrimSpace(buf)) == 0 {
					return buf, ErrEmptyResponse
				}
				return buf, ErrIncompleteResponse
			}
			return buf, err
		}
	}
}

// ReadResponse reads and decodes one editor reply.
func ReadResponse(r io.Reader, chunkSize, maxBytes int) (*Response, error) {
	raw, err := ReadDocument(r, chunkSize, maxBytes)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// ReadCommand reads and decodes one command (server side).
func ReadCommand(r io.Reader, chunkSize, maxBytes int) (Command, error) {
	raw, err := ReadDocument(r, chunkSize, maxBytes)
	if err != nil {
		return Command{}, err
	}
	return DecodeCommand(raw)
}

// IsFramingError reports whether err came from document framing rather than
// the underlying connection.
func IsFramingError(err error) bool {
	return errors.Is(err, ErrEmptyResponse) || errors.Is(err, ErrIncompleteResponse) || errors.Is(err, ErrResponseTooLarge)
}
