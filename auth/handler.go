package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"apotek/logger"

	"go.uber.org/zap"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func setSessionCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SignUpHandler creates the account and signs it in.
func SignUpHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c credentials
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if _, err := svc.SignUp(r.Context(), c.Email, c.Password, c.DisplayName); err != nil {
			switch {
			case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrPasswordTooShort):
				writeJSONError(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrEmailTaken):
				writeJSONError(w, err.Error(), http.StatusConflict)
			default:
				logger.FromContext(r.Context()).Error("sign-up failed", zap.Error(err))
				writeJSONError(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		sess, err := svc.SignIn(r.Context(), c.Email, c.Password)
		if err != nil {
			logger.FromContext(r.Context()).Error("sign-in after sign-up failed", zap.Error(err))
			writeJSONError(w, "internal error", http.StatusInternalServerError)
			return
		}
		setSessionCookie(w, sess)
		writeJSON(w, http.StatusCreated, sess)
	}
}

func SignInHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c credentials
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		sess, err := svc.SignIn(r.Context(), c.Email, c.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				writeJSONError(w, err.Error(), http.StatusUnauthorized)
				return
			}
			logger.FromContext(r.Context()).Error("sign-in failed", zap.Error(err))
			writeJSONError(w, "internal error", http.StatusInternalServerError)
			return
		}
		setSessionCookie(w, sess)
		writeJSON(w, http.StatusOK, sess)
	}
}

func SignOutHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.SignOut(r.Context(), TokenFromRequest(r)); err != nil {
			logger.FromContext(r.Context()).Error("sign-out failed", zap.Error(err))
			writeJSONError(w, "internal error", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
	}
}

// SessionHandler returns the current session or null.
func SessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Session(r.Context(), TokenFromRequest(r))
		if err != nil {
			logger.FromContext(r.Context()).Error("session lookup failed", zap.Error(err))
			writeJSONError(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// EventsHandler streams session changes as server-sent events until the
// client goes away.
func EventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSONError(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		events, unsubscribe := svc.Subscribe()
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
				flusher.Flush()
			}
		}
	}
}
