package rest

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	User    models.Identity `json:"user"`
	Message string          `json:"message"`
}

type sessionUser struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type meResponse struct {
	User sessionUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, apiError{Code: code, Message: message})
}
