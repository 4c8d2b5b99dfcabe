package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/errors"
	"github.com/matzehuels/stripview/pkg/gesture"
	"github.com/matzehuels/stripview/pkg/render/frame"
)

// state snapshots s. The caller holds the session lock.
func (s *Session) state() stateResponse {
	t := s.store.Current()
	resp := stateResponse{
		ID:        s.ID,
		Viewport:  s.viewport,
		Transform: t,
		Bounds:    canvas.ComputeZoomBounds(s.viewport, s.cfg),
		Container: canvas.ContainerBounds(t, s.cfg),
		Phase:     s.ctrl.Phase().String(),
	}
	if m, ok := s.ctrl.Memo(); ok {
		resp.Memo = &m
	}
	return resp
}

func (srv *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Version:  srv.version,
		Sessions: srv.sessions.Len(),
	})
}

func (srv *Server) handleGeometry(w http.ResponseWriter, r *http.Request) {
	vp, err := viewportFromQuery(r)
	if err != nil {
		writeError(w, srv.logger, err)
		return
	}
	cfg := srv.canvas
	initial := canvas.Initialize(vp, cfg)
	writeJSON(w, http.StatusOK, geometryResponse{
		Viewport:  vp,
		Config:    cfg,
		Extent:    canvas.Extent(cfg),
		Initial:   initial,
		Bounds:    canvas.ComputeZoomBounds(vp, cfg),
		Container: canvas.ContainerBounds(initial, cfg),
		Sections:  canvas.SectionBounds(initial, cfg),
	})
}

func viewportFromQuery(r *http.Request) (canvas.Viewport, error) {
	q := r.URL.Query()
	var vp canvas.Viewport
	for _, f := range []struct {
		name string
		dst  *float64
	}{{"width", &vp.Width}, {"height", &vp.Height}} {
		raw := q.Get(f.name)
		if raw == "" {
			return vp, errors.New(errors.ErrCodeInvalidInput, "missing query parameter %q", f.name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return vp, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", f.name)
		}
		*f.dst = v
	}
	return vp, vp.Validate()
}

func (srv *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, srv.logger, err)
		return
	}
	vp := req.viewport()
	if err := vp.Validate(); err != nil {
		writeError(w, srv.logger, err)
		return
	}

	s := newSession(vp, srv.canvas, srv.logger)
	if evicted := srv.sessions.Add(s); evicted != "" {
		srv.logger.Info("session evicted", "session", evicted)
	}
	srv.logger.Info("session created", "session", s.ID, "viewport", vp)

	s.lock()
	defer s.unlock()
	w.Header().Set("Location", "/api/v1/sessions/"+s.ID)
	writeJSON(w, http.StatusCreated, s.state())
}

// withSession resolves the {id} URL parameter and runs fn with the session
// locked.
func (srv *Server) withSession(fn func(http.ResponseWriter, *http.Request, *Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := srv.sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, srv.logger, err)
			return
		}
		s.lock()
		defer s.unlock()
		fn(w, r, s)
	}
}

func (srv *Server) handleGetSession(w http.ResponseWriter, r *http.Request, s *Session) {
	writeJSON(w, http.StatusOK, s.state())
}

func (srv *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := srv.sessions.Delete(id); err != nil {
		writeError(w, srv.logger, err)
		return
	}
	srv.logger.Info("session deleted", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleViewport replaces the surface size sample. The transform is left
// alone; the next pinch computes its bounds from the new size.
func (srv *Server) handleViewport(w http.ResponseWriter, r *http.Request, s *Session) {
	var req viewportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, srv.logger, err)
		return
	}
	vp := req.viewport()
	if err := vp.Validate(); err != nil {
		writeError(w, srv.logger, err)
		return
	}
	s.viewport = vp
	writeJSON(w, http.StatusOK, s.state())
}

func (srv *Server) handlePinch(w http.ResponseWriter, r *http.Request, s *Session) {
	var req pinchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, srv.logger, err)
		return
	}

	var sample gesture.Pinch
	switch {
	case len(req.Pointers) > 0:
		if len(req.Pointers) != 2 {
			writeError(w, srv.logger, errors.New(errors.ErrCodeInvalidInput,
				"pinch needs exactly 2 pointers, got %d", len(req.Pointers)))
			return
		}
		s.wheel.End()
		sample = s.pointers.Move(req.Pointers[0].point(), req.Pointers[1].point(), nil)
		if req.Last {
			sample, _ = s.pointers.Release()
		}
	case req.Origin != nil:
		sample = gesture.Pinch{
			Origin: req.Origin.point(),
			Offset: gesture.Offset{Scale: req.Scale, Rotation: req.Rotation},
			Last:   req.Last,
		}
		if err := sample.Validate(); err != nil {
			writeError(w, srv.logger, err)
			return
		}
		s.wheel.End()
		if s.pinch == nil {
			pc := s.ctrl.PinchConfig()
			s.pinch = &pc
		}
		sample.Offset.Scale = s.pinch.Bounds.Clamp(sample.Offset.Scale)
	default:
		writeError(w, srv.logger, errors.New(errors.ErrCodeInvalidInput,
			"pinch needs either origin or pointers"))
		return
	}

	if err := sample.Validate(); err != nil {
		writeError(w, srv.logger, err)
		return
	}
	s.ctrl.HandlePinch(r.Context(), sample)
	if s.ctrl.Phase() == gesture.PhaseIdle {
		// A gesture may end through either mode; the next one starts from
		// fresh bounds in both.
		s.pinch = nil
		s.pointers.Release()
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (srv *Server) handleCancelPinch(w http.ResponseWriter, r *http.Request, s *Session) {
	s.pinch = nil
	s.pointers.Release()
	if !s.ctrl.CancelPinch(r.Context()) {
		writeError(w, srv.logger, errors.New(errors.ErrCodeNotFound, "no active pinch"))
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (srv *Server) handleWheel(w http.ResponseWriter, r *http.Request, s *Session) {
	var req wheelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, srv.logger, err)
		return
	}

	var sample gesture.Wheel
	switch {
	case req.Offset != nil:
		s.wheel.End()
		sample = gesture.Wheel{Offset: req.Offset.point()}
	case req.Delta != nil:
		sample = s.wheel.Scroll(req.Delta[0], req.Delta[1], nil)
	case req.End:
		s.wheel.End()
		writeJSON(w, http.StatusOK, s.state())
		return
	default:
		writeError(w, srv.logger, errors.New(errors.ErrCodeInvalidInput,
			"wheel needs either offset or delta"))
		return
	}

	if err := sample.Validate(); err != nil {
		s.wheel.End()
		writeError(w, srv.logger, err)
		return
	}
	s.ctrl.HandleWheel(r.Context(), sample)
	if req.End {
		s.wheel.End()
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (srv *Server) handleFit(w http.ResponseWriter, r *http.Request, s *Session) {
	s.pinch = nil
	s.pointers.Release()
	s.wheel.End()
	s.ctrl.Fit(r.Context())
	writeJSON(w, http.StatusOK, s.state())
}

func (srv *Server) handleFrame(w http.ResponseWriter, r *http.Request, s *Session) {
	format := chi.URLParam(r, "format")
	if !frame.Formats[format] {
		writeError(w, srv.logger, errors.New(errors.ErrCodeInvalidFormat,
			"unsupported frame format %q", format))
		return
	}

	q := r.URL.Query()
	var opts []frame.Option
	if boolParam(q.Get("hud")) {
		opts = append(opts, frame.WithHUD(), frame.WithPhase(s.ctrl.Phase().String()))
	}
	if boolParam(q.Get("labels")) {
		opts = append(opts, frame.WithLabels())
	}
	f := frame.New(s.cfg, s.viewport, s.store.Current(), opts...)

	data, hit, err := srv.runner.Render(r.Context(), f, s.cfg, format)
	if err != nil {
		writeError(w, srv.logger, err)
		return
	}
	w.Header().Set("Content-Type", frame.ContentType(format))
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func boolParam(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
