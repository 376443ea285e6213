package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is a non-2xx answer from the service.
type Error struct {
	Op     string
	Status int
	// Detail is the service's own message, when it sent one.
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%s failed (%d)", e.Op, e.Status)
}

// responseError builds an *Error from resp, reading the JSON "detail" field
// the service uses for error messages.
func responseError(op string, resp *http.Response) error {
	e := &Error{Op: op, Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return e
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(data, &body) != nil || len(body.Detail) == 0 {
		return e
	}

	var msg string
	if json.Unmarshal(body.Detail, &msg) == nil {
		e.Detail = msg
		return e
	}
	// Validation errors arrive as a list of objects; keep them readable.
	e.Detail = fmt.Sprintf("%s failed (%d): %s", op, resp.StatusCode, strings.TrimSpace(string(body.Detail)))
	return e
}
