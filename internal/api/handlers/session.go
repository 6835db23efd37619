package handlers

import (
	"net/http"

	"arrival-route-service/internal/api/dto"
	"arrival-route-service/internal/domain"
)

// SnapshotReader exposes the current session state.
type SnapshotReader interface {
	Snapshot() domain.Snapshot
}

type SessionHandler struct {
	Session SnapshotReader
}

// Get returns the current session snapshot.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Session == nil {
		writeError(w, r, http.StatusServiceUnavailable, "no active session")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.SessionFromSnapshot(h.Session.Snapshot()))
}
