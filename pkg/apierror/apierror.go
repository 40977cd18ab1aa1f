package apierror

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

type validationError struct {
	Msg string `json:"msg"`
}

// Message extracts a human-readable reason from a backend error response.
// It tries a {"message": ...} body first, then the first entry of a
// validation-error {"detail": [{"msg": ...}]} array, and falls back to the
// HTTP status text.
func Message(statusCode int, body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		var details []validationError
		if err := json.Unmarshal(parsed.Detail, &details); err == nil {
			if len(details) > 0 && details[0].Msg != "" {
				return details[0].Msg
			}
		}
	}
	return http.StatusText(statusCode)
}
