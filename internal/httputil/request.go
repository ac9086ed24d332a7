package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes bounds request bodies. A full batch of 2x1000 updates fits comfortably.
const maxBodyBytes = 1 << 20

// ParseJSON decodes a JSON object from the request body into dest.
// Unknown fields, a non-object payload and trailing data are rejected.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("read request body: %w", err)
	}

	return DecodeStrict(body, dest)
}

// DecodeStrict decodes exactly one JSON object from data into dest.
func DecodeStrict(data []byte, dest interface{}) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("invalid JSON: request body must be a JSON object")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return errors.New("invalid JSON: unexpected data after object")
	}

	return nil
}
