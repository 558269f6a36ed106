// Package utils
package utils

import (
	"encoding/json"
	"net/http"
)

type Body = map[string]any

func ReplyJSON(w http.ResponseWriter, status int, body map[string]any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

func ReplyBadRequest(w http.ResponseWriter, detail string) {
	ReplyJSON(w, http.StatusBadRequest, Body{
		"detail": detail,
	})
}

func ReplyNotFound(w http.ResponseWriter, detail string) {
	ReplyJSON(w, http.StatusNotFound, Body{
		"detail": detail,
	})
}

func ReplyMethodNotAllowed(w http.ResponseWriter) {
	ReplyJSON(w, http.StatusMethodNotAllowed, Body{
		"detail": "method not allowed",
	})
}

func ReplyInternalServerError(w http.ResponseWriter, detail string) {
	ReplyJSON(w, http.StatusInternalServerError, Body{
		"detail": detail,
	})
}
