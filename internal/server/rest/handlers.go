package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
)

const maxBodyBytes = 1 << 20

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeLogin reads a single JSON object. Unknown fields are ignored.
func decodeLogin(r *http.Request) (loginRequest, error) {
	var req loginRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return req, errors.New("request body must contain a single JSON value")
	}
	return req, nil
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, err := decodeLogin(r)
	if err != nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, common.CodeMissingFields, common.MsgMissingFields)
		return
	}

	out, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		msg := common.MsgInternal
		if errors.Is(err, common.ErrSigningKeyMissing) {
			msg = common.MsgJWTNotConfigured
		}
		h.log.Error(r.Context(), "login failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, common.CodeServerError, msg)
		return
	}

	if !out.Succeeded() {
		writeError(w, http.StatusUnauthorized, common.CodeInvalidCredentials, common.MsgInvalidCredentials)
		return
	}

	http.SetCookie(w, h.sessionCookie(out.Token, out.ExpiresAt))
	writeJSON(w, http.StatusOK, loginResponse{
		Token:   out.Token,
		User:    out.Identity,
		Message: common.MsgLoginSuccess,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	c := h.sessionCookie("", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
	writeJSON(w, http.StatusOK, messageResponse{Message: common.MsgLogoutSuccess})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, common.CodeUnauthorized, common.MsgUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: sessionUser{ID: identity.ID, Role: identity.Role}})
}

func (h *Handler) sessionCookie(value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if value != "" {
		c.Expires = expires.UTC()
		c.MaxAge = max(int(time.Until(expires).Seconds()), 1)
	}
	return c
}
