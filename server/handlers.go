package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spektr-org/launchboard/engine"
	"github.com/spektr-org/launchboard/render"
)

const maxSignalBody = 4 << 10 // 4KB

type sessionResponse struct {
	ID    string       `json:"id"`
	State engine.State `json:"state"`
}

type signalRequest struct {
	Value json.RawMessage `json:"value"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.layout)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.logger.Warn("session create failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.Header().Set("Location", "/api/v1/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, State: sess.Graph.Snapshot()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: sess.Graph.Snapshot()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if !sess.Allow() {
		if s.rec != nil {
			s.rec.RateLimited()
		}
		writeError(w, http.StatusTooManyRequests, "too many signal updates")
		return
	}

	var req signalRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSignalBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Value) == 0 {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}

	signal := engine.Signal(chi.URLParam(r, "signal"))
	res, err := sess.Graph.Apply(signal, decodeSignalValue(signal, req.Value))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decodeSignalValue converts the JSON value into the type the graph expects
// for signal. Values that don't fit are passed through as decoded JSON so the
// graph rejects them like any other out-of-domain value.
func decodeSignalValue(signal engine.Signal, raw json.RawMessage) any {
	switch signal {
	case engine.SignalSite:
		var site string
		if err := json.Unmarshal(raw, &site); err == nil {
			return engine.SiteSelector(site)
		}
	case engine.SignalPayloadRange:
		var rng engine.PayloadRange
		if err := json.Unmarshal(raw, &rng); err == nil {
			return rng
		}
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&v); err != nil {
		return string(raw)
	}
	return v
}

func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "output")
	asPNG := strings.HasSuffix(name, ".png")
	name = strings.TrimSuffix(name, ".png")

	artifact, ok := sess.Graph.Snapshot().Artifact(engine.Output(name))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown output "+name)
		return
	}

	switch {
	case asPNG:
		s.writePNG(w, engine.BuildChart(artifact))
	case r.URL.Query().Get("view") == "chart":
		writeJSON(w, http.StatusOK, engine.BuildChart(artifact))
	default:
		writeJSON(w, http.StatusOK, artifact)
	}
}

func (s *Server) writePNG(w http.ResponseWriter, cfg *engine.ChartConfig) {
	var buf bytes.Buffer
	err := s.png.Render(&buf, cfg)
	if errors.Is(err, render.ErrEmptyChart) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.logger.Error("png render failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", s.png.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
