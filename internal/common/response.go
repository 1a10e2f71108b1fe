package common

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// Envelope is the failure shape every endpoint responds with. Success
// responses carry their payload at the top level next to "success"
// ({"success":true,"token":...}, {"success":true,"tasks":[...]}), which is
// the shape the frontend consumes; handlers build those per endpoint.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Envelope{Success: false, Message: message})
}

// RespondWithDomainError maps a service error to a status code and writes the
// failure envelope, including field detail for validation errors.
func RespondWithDomainError(w http.ResponseWriter, err error) {
	env := Envelope{Success: false, Message: err.Error()}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		env.Fields = vErr.Fields
	}

	code := HTTPStatusFromError(err)
	if code == http.StatusInternalServerError {
		// Logged server-side, generic message to the client.
		log.Printf("internal error: %v", err)
		env.Message = ErrInternalServer.Error()
		env.Fields = nil
	}
	RespondWithJSON(w, code, env)
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "message": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
