package usecase

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"mime"
	"unicode/utf8"

	"TVRelay/internal/domain/models"
)

// NormalizationError reports a body that could not be turned into an Alert.
type NormalizationError struct {
	Reason string
}

func (e *NormalizationError) Error() string {
	return "normalize payload: " + e.Reason
}

// Normalize converts a raw request body into an Alert. JSON objects become
// TextAlert (when a "message" field is present) or StructuredAlert; anything
// else is treated as UTF-8 text and carried verbatim without a key.
func Normalize(contentType string, raw []byte) (alert models.Alert, err error) {
	defer func() {
		if r := recover(); r != nil {
			alert = nil
			err = &NormalizationError{Reason: fmt.Sprintf("unexpected failure: %v", r)}
		}
	}()

	if isJSON(contentType) {
		if fields, ok := decodeObject(raw); ok {
			return fromFields(fields), nil
		}
	}

	if !utf8.Valid(raw) {
		return nil, &NormalizationError{Reason: "body is not valid UTF-8"}
	}
	return models.TextAlert{Message: string(raw)}, nil
}

// Authorize compares the presented key with the configured secret in
// constant time. An empty secret authorizes nobody.
func Authorize(key, secret string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(secret)) == 1
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

func decodeObject(raw []byte) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func fromFields(fields map[string]json.RawMessage) models.Alert {
	key := stringValue(fields["key"])

	if msg, ok := fields["message"]; ok {
		return models.TextAlert{Key: key, Message: renderValue(msg)}
	}

	return models.StructuredAlert{
		Key:    key,
		Symbol: firstPresent(fields, models.DefaultSymbol, "symbol", "ticker"),
		Signal: firstPresent(fields, models.DefaultSignal, "signal", "action"),
		Price:  firstPresent(fields, models.DefaultPrice, "price", "close"),
	}
}

// firstPresent returns the first non-null field among names, rendered as text.
func firstPresent(fields map[string]json.RawMessage, def string, names ...string) string {
	for _, name := range names {
		if v, ok := fields[name]; ok && !isNull(v) {
			return renderValue(v)
		}
	}
	return def
}

// stringValue returns v only when it is a JSON string.
func stringValue(v json.RawMessage) string {
	var s string
	if len(v) == 0 || json.Unmarshal(v, &s) != nil {
		return ""
	}
	return s
}

// renderValue keeps strings unquoted and numbers in their literal spelling.
func renderValue(v json.RawMessage) string {
	if isNull(v) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(v))
}

func isNull(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
