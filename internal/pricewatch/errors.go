package pricewatch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is returned for any non-2xx response. Message carries the
// backend's own explanation when the error body had one: the "message"
// field, else a string "detail" field.
type APIError struct {
	Op      string
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: api %s %s returned status %d: %s", e.Op, e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: api %s %s returned status %d", e.Op, e.Method, e.Path, e.Status)
}

// errorBody is the structured error payload. FastAPI reports "detail", which
// is a string for HTTPException and a list for validation failures.
type errorBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

func (b *errorBody) text() string {
	if b == nil {
		return ""
	}
	if msg := strings.TrimSpace(b.Message); msg != "" {
		return msg
	}
	if len(b.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(b.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}
