package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string // validation errors, by field
}

func newAPIError(code int, body string) *APIError {
	apiErr := &APIError{StatusCode: code}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		if msg, ok := payload["error"].(string); ok {
			apiErr.Message = msg
		} else {
			for field, v := range payload {
				if msg, ok := v.(string); ok {
					if apiErr.Fields == nil {
						apiErr.Fields = make(map[string]string)
					}
					apiErr.Fields[field] = msg
				}
			}
		}
	}
	if apiErr.Message == "" && len(apiErr.Fields) == 0 {
		apiErr.Message = strings.ToLower(http.StatusText(code))
	}
	return apiErr
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("backend: %d %s", e.StatusCode, e.Message)
	}
	fields := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		fields = append(fields, field+": "+msg)
	}
	sort.Strings(fields)
	return fmt.Sprintf("backend: %d %s", e.StatusCode, strings.Join(fields, "; "))
}

func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// AsAPIError returns the *APIError cause of err, if any.
func AsAPIError(err error) (*APIError, bool) {
	apiErr, ok := errors.Cause(err).(*APIError)
	return apiErr, ok
}

func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsUnauthorized()
}

func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsNotFound()
}
