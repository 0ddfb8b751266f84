package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// Fields is the payload shape every endpoint responds with. The client
// discriminates success on the boolean field, so it is always present.
type Fields map[string]interface{}

// JSON writes a success envelope merged with the given fields.
func JSON(w http.ResponseWriter, status int, fields Fields) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := Fields{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// Success writes a plain success envelope with a message.
func Success(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Fields{"message": message})
}

// Fail writes a failure envelope. State-conflict outcomes the client
// branches on are written with http.StatusOK; transport failures carry
// a real status code.
func Fail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Fields{"success": false, "message": message}); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
