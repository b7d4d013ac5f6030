package types

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// List wraps items together with their count.
func List[T any](items []T) APIResponse {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return APIResponse{Success: true, Data: items, Count: &n}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as a failure envelope with the status its code maps to.
func WriteError(w http.ResponseWriter, err error) {
	status, body := FromAppError(err)
	WriteJSON(w, status, body)
}
