package httpx

import (
	"encoding/json"
	"net/http"
)

// Problem is the JSON body written for rejected requests.
type Problem struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a Problem whose error field is the status text for code.
func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, Problem{
		StatusCode: code,
		Error:      http.StatusText(code),
		Message:    msg,
	})
}
