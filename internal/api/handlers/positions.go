package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"arrival-route-service/internal/api/dto"
	"arrival-route-service/internal/domain"

	"github.com/go-playground/validator/v10"
)

// PositionSink accepts fixes and location failures relayed by a client.
type PositionSink interface {
	Push(p domain.Position)
	Fail(e domain.LocationError)
}

type PositionHandler struct {
	Sink PositionSink
	Now  func() time.Time
}

var validate = validator.New()

// Post accepts either a fix or a location failure and forwards it to the session.
func (h *PositionHandler) Post(w http.ResponseWriter, r *http.Request) {
	if h.Sink == nil {
		writeError(w, r, http.StatusServiceUnavailable, "positions are not accepted over HTTP on this instance")
		return
	}

	var req dto.PositionRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	if kind := strings.TrimSpace(req.Error); kind != "" {
		k, err := domain.ParseLocationErrorKind(kind)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "error must be one of permission_denied, timeout, position_unavailable")
			return
		}
		h.Sink.Fail(domain.LocationError{Kind: k, Message: req.Message, At: now()})
		writeJSON(w, r, http.StatusAccepted, dto.AcceptedResponse{Status: "accepted", Kind: "error"})
		return
	}

	if req.Lat == nil || req.Lon == nil {
		writeError(w, r, http.StatusBadRequest, "lat and lon are required")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "lat must be within [-90, 90] and lon within [-180, 180]")
		return
	}

	capturedAt := now()
	if req.CapturedAt != nil {
		capturedAt = *req.CapturedAt
	}

	h.Sink.Push(domain.Position{Lat: *req.Lat, Lon: *req.Lon, CapturedAt: capturedAt})
	writeJSON(w, r, http.StatusAccepted, dto.AcceptedResponse{Status: "accepted", Kind: "position"})
}
