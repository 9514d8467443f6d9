package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"lumera.app/lumera/internal/core"
	"lumera.app/lumera/internal/logger"
	"lumera.app/lumera/internal/store"
)

type APIHandler struct {
	companion *core.Companion
}

func NewAPIHandler(c *core.Companion) *APIHandler {
	return &APIHandler{companion: c}
}

// LocalOnlyMiddleware rejects requests that do not come from the loopback
// interface. The bridge serves a single local user.
func (h *APIHandler) LocalOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
			logger.Warnw("rejected non-local request", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			http.Error(w, "Only local clients are allowed", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", err)
	}
}

func sessionIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	return id, err == nil
}

// Chat handlers

func (h *APIHandler) GetChatHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.companion.Current().Snapshot())
}

type PostMessageRequest struct {
	Text string `json:"text"`
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "Message text cannot be empty", http.StatusBadRequest)
		return
	}

	// a client going away must not cut the model's reply short
	turn, ok := h.companion.Current().Submit(context.WithoutCancel(r.Context()), req.Text)
	if !ok {
		http.Error(w, "A reply is still pending", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (h *APIHandler) NewChatHandler(w http.ResponseWriter, r *http.Request) {
	o := h.companion.NewChat()
	writeJSON(w, http.StatusCreated, o.Snapshot())
}

func (h *APIHandler) LoadChatHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(r)
	if !ok {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	o, err := h.companion.LoadSession(id)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		logger.Errorw("failed to load session", "session_id", id, "error", err)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, o.Snapshot())
}

func (h *APIHandler) StartVoiceHandler(w http.ResponseWriter, r *http.Request) {
	err := h.companion.Current().StartVoiceInput()
	switch {
	case errors.Is(err, core.ErrRecognitionUnsupported):
		http.Error(w, err.Error(), http.StatusNotImplemented)
	case errors.Is(err, core.ErrRecognitionInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		logger.Error("failed to start voice input", err)
		http.Error(w, "Failed to start voice input", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}

func (h *APIHandler) StopVoiceHandler(w http.ResponseWriter, r *http.Request) {
	h.companion.Current().StopVoiceInput()
	w.WriteHeader(http.StatusNoContent)
}

// Settings handlers

func (h *APIHandler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.companion.Settings())
}

func (h *APIHandler) PutSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req store.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	settings, err := h.companion.UpdateSettings(req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidSettings) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("failed to update settings", err)
		http.Error(w, "Failed to update settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *APIHandler) ResetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := h.companion.ResetSettings()
	if err != nil {
		logger.Error("failed to reset settings", err)
		http.Error(w, "Failed to reset settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Mood handlers

func (h *APIHandler) ListMoodsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.companion.Moods())
}

type LogMoodRequest struct {
	Emotion store.Emotion `json:"emotion"`
}

func (h *APIHandler) LogMoodHandler(w http.ResponseWriter, r *http.Request) {
	var req LogMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.companion.LogMood(req.Emotion)
	if err != nil {
		if errors.Is(err, core.ErrInvalidEmotion) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("failed to log mood", err)
		http.Error(w, "Failed to log mood", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// History handlers

func (h *APIHandler) ListHistoryHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.companion.History())
}

func (h *APIHandler) ClearHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.companion.ClearHistory(); err != nil {
		logger.Error("failed to clear history", err)
		http.Error(w, "Failed to clear history", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(r)
	if !ok {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	if err := h.companion.DeleteSession(id); err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		logger.Errorw("failed to delete session", "session_id", id, "error", err)
		http.Error(w, "Failed to delete session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Static content

func (h *APIHandler) HelplinesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Helplines)
}

func (h *APIHandler) TipsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.WellnessTips)
}

func (h *APIHandler) ResourcesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Resources)
}
