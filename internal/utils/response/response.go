// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Two body shapes are used for non-success outcomes:
//
//	{ "error": "raw error text" }   failures (500, 400, 409)
//	{ "message": "Not found" }      expected outcomes (404, auth, delete)
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error is the body for failed requests.
type Error struct {
	Error string `json:"error"`
}

// Message is the body for outcomes that carry only a human-readable note.
type Message struct {
	Message string `json:"message"`
}

const (
	MsgNotFound = "Not found"
	MsgDeleted  = "Deleted"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
// Header() → WriteHeader() → body, in that order.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error, message passed through verbatim.
func GeneralError(err error) Error {
	return Error{Error: err.Error()}
}

func Msg(text string) Message {
	return Message{Message: text}
}

// ValidationError converts validator field errors into one readable string:
//
//	{ "error": "field Name is required, field Email must be a valid email address" }
func ValidationError(errs validator.ValidationErrors) Error {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid email address", e.Field()))
		case "min":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at least %s characters", e.Field(), e.Param()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Error{Error: strings.Join(errMessages, ", ")}
}
