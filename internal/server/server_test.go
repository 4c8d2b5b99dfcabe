package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stripview/pkg/cache"
	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/errors"
	"github.com/matzehuels/stripview/pkg/pipeline"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

type testServer struct {
	t   *testing.T
	srv *Server
	ts  *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := log.New(&bytes.Buffer{})
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	srv := New(Options{
		Canvas: canvas.DefaultConfiguration(),
		Runner: pipeline.NewRunner(fc, nil, logger),
		Logger: logger,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testServer{t: t, srv: srv, ts: ts}
}

func (s *testServer) do(method, path string, body any) *http.Response {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.ts.URL+path, &buf)
	if err != nil {
		s.t.Fatalf("NewRequest: %v", err)
	}
	resp, err := s.ts.Client().Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	s.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) state(resp *http.Response, wantStatus int) stateResponse {
	s.t.Helper()
	if resp.StatusCode != wantStatus {
		s.t.Fatalf("status = %d, want %d", resp.StatusCode, wantStatus)
	}
	var st stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		s.t.Fatalf("decode state: %v", err)
	}
	return st
}

func (s *testServer) errorCode(resp *http.Response, wantStatus int) errors.Code {
	s.t.Helper()
	if resp.StatusCode != wantStatus {
		s.t.Fatalf("status = %d, want %d", resp.StatusCode, wantStatus)
	}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.t.Fatalf("decode error: %v", err)
	}
	return body.Code
}

func (s *testServer) create(w, h float64) stateResponse {
	s.t.Helper()
	return s.state(s.do(http.MethodPost, "/api/v1/sessions", viewportRequest{Width: w, Height: h}), http.StatusCreated)
}

func TestCreateSession(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(http.MethodPost, "/api/v1/sessions", viewportRequest{Width: 1600, Height: 800})
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/api/v1/sessions/") {
		t.Errorf("Location = %q", loc)
	}
	st := s.state(resp, http.StatusCreated)

	if st.ID == "" {
		t.Fatal("empty session ID")
	}
	if !approx(st.Transform.Scale, 800.0/1224.0) {
		t.Errorf("scale = %v, want %v", st.Transform.Scale, 800.0/1224.0)
	}
	if !approx(st.Bounds.Min, 1600.0/7140.0) || st.Bounds.Max != 1 {
		t.Errorf("bounds = %+v", st.Bounds)
	}
	if st.Phase != "idle" || st.Memo != nil {
		t.Errorf("phase = %q, memo = %v", st.Phase, st.Memo)
	}
	if !approx(st.Container.X, 0) || !approx(st.Container.Y, 0) {
		t.Errorf("container origin = (%v, %v), want (0, 0)", st.Container.X, st.Container.Y)
	}
	if s.srv.Sessions().Len() != 1 {
		t.Errorf("sessions = %d", s.srv.Sessions().Len())
	}
}

func TestCreateSessionErrors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body any
		want errors.Code
	}{
		{"zero width", viewportRequest{Width: 0, Height: 800}, errors.ErrCodeInvalidViewport},
		{"negative height", viewportRequest{Width: 100, Height: -1}, errors.ErrCodeInvalidViewport},
		{"unknown field", `{"width": 1, "height": 1, "depth": 3}`, errors.ErrCodeInvalidInput},
		{"malformed", `{"width":`, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.errorCode(s.do(http.MethodPost, "/api/v1/sessions", tt.body), http.StatusBadRequest); got != tt.want {
				t.Errorf("code = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnknownSession(t *testing.T) {
	s := newTestServer(t)
	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/sessions/nope"},
		{http.MethodDelete, "/api/v1/sessions/nope"},
		{http.MethodPost, "/api/v1/sessions/nope/fit"},
	} {
		if got := s.errorCode(s.do(req.method, req.path, nil), http.StatusNotFound); got != errors.ErrCodeSessionNotFound {
			t.Errorf("%s %s: code = %s", req.method, req.path, got)
		}
	}
}

func TestPinchAnchoredAtCenterKeepsPosition(t *testing.T) {
	s := newTestServer(t)
	st := s.create(1600, 800)
	base := "/api/v1/sessions/" + st.ID
	center := st.Container.Center()

	active := s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"origin": []float64{center.X, center.Y},
		"scale":  0.9,
	}), http.StatusOK)
	if active.Phase != "active" || active.Memo == nil {
		t.Fatalf("phase = %q, memo = %v", active.Phase, active.Memo)
	}
	if active.Transform.Scale != 0.9 {
		t.Errorf("scale = %v, want 0.9", active.Transform.Scale)
	}
	if !approx(active.Transform.Position.X, st.Transform.Position.X) ||
		!approx(active.Transform.Position.Y, st.Transform.Position.Y) {
		t.Errorf("position moved: %v -> %v", st.Transform.Position, active.Transform.Position)
	}

	done := s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"origin": []float64{center.X, center.Y},
		"scale":  0.95,
		"last":   true,
	}), http.StatusOK)
	if done.Phase != "idle" || done.Memo != nil {
		t.Errorf("after last: phase = %q, memo = %v", done.Phase, done.Memo)
	}
	if done.Transform.Scale != 0.95 {
		t.Errorf("scale = %v, want 0.95", done.Transform.Scale)
	}
}

func TestPinchScaleClamped(t *testing.T) {
	s := newTestServer(t)
	st := s.create(1600, 800)
	base := "/api/v1/sessions/" + st.ID

	got := s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"origin": []float64{10, 10},
		"scale":  5,
	}), http.StatusOK)
	if got.Transform.Scale != 1 {
		t.Errorf("scale = %v, want clamped to 1", got.Transform.Scale)
	}

	got = s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"origin": []float64{10, 10},
		"scale":  0.01,
		"last":   true,
	}), http.StatusOK)
	if !approx(got.Transform.Scale, 1600.0/7140.0) {
		t.Errorf("scale = %v, want clamped to min", got.Transform.Scale)
	}
}

func TestPinchPointers(t *testing.T) {
	s := newTestServer(t)
	st := s.create(1600, 800)
	base := "/api/v1/sessions/" + st.ID

	s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"pointers": [][]float64{{700, 400}, {900, 400}},
	}), http.StatusOK)
	// Spreading the contacts by 10% scales by 10%.
	got := s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"pointers": [][]float64{{690, 400}, {910, 400}},
		"last":     true,
	}), http.StatusOK)
	if !approx(got.Transform.Scale, st.Transform.Scale*1.1) {
		t.Errorf("scale = %v, want %v", got.Transform.Scale, st.Transform.Scale*1.1)
	}
	if got.Phase != "idle" {
		t.Errorf("phase = %q, want idle", got.Phase)
	}
}

func TestPinchInvalid(t *testing.T) {
	s := newTestServer(t)
	st := s.create(1600, 800)
	path := "/api/v1/sessions/" + st.ID + "/pinch"

	tests := []struct {
		name string
		body any
		want errors.Code
	}{
		{"no origin or pointers", map[string]any{"scale": 1}, errors.ErrCodeInvalidInput},
		{"one pointer", map[string]any{"pointers": [][]float64{{1, 1}}}, errors.ErrCodeInvalidInput},
		{"three coordinates", `{"origin": [1, 2, 3], "scale": 1}`, errors.ErrCodeInvalidInput},
		{"zero scale", map[string]any{"origin": []float64{1, 1}, "scale": 0}, errors.ErrCodeInvalidGesture},
		{"negative scale", map[string]any{"origin": []float64{1, 1}, "scale": -2}, errors.ErrCodeInvalidGesture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.errorCode(s.do(http.MethodPost, path, tt.body), http.StatusBadRequest); got != tt.want {
				t.Errorf("code = %s, want %s", got, tt.want)
			}
		})
	}

	after := s.state(s.do(http.MethodGet, "/api/v1/sessions/"+st.ID, nil), http.StatusOK)
	if after.Phase != "idle" || after.Transform != st.Transform {
		t.Errorf("rejected samples changed state: %+v", after)
	}
}

func TestCancelPinch(t *testing.T) {
	s := newTestServer(t)
	st := s.create(1600, 800)
	base := "/api/v1/sessions/" + st.ID

	if got := s.errorCode(s.do(http.MethodDelete, base+"/pinch", nil), http.StatusNotFound); got != errors.ErrCodeNotFound {
		t.Errorf("cancel without pinch: code = %s", got)
	}

	mid := s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"origin": []float64{0, 0},
		"scale":  0.8,
	}), http.StatusOK)
	canceled := s.state(s.do(http.MethodDelete, base+"/pinch", nil), http.StatusOK)
	if canceled.Phase != "idle" || canceled.Memo != nil {
		t.Errorf("phase = %q, memo = %v", canceled.Phase, canceled.Memo)
	}
	// Cancel keeps the last applied transform.
	if canceled.Transform != mid.Transform {
		t.Errorf("transform = %v, want %v", canceled.Transform, mid.Transform)
	}
}

func TestWheel(t *testing.T) {
	s := newTestServer(t)
	st := s.create(1600, 800)
	base := "/api/v1/sessions/" + st.ID
	from := st.Transform.Position

	got := s.state(s.do(http.MethodPost, base+"/wheel", map[string]any{"delta": []float64{10, 0}}), http.StatusOK)
	got = s.state(s.do(http.MethodPost, base+"/wheel", map[string]any{"delta": []float64{5, 5}, "end": true}), http.StatusOK)
	want := canvas.Point{X: from.X + 15, Y: from.Y + 5}
	if !approx(got.Transform.Position.X, want.X) || !approx(got.Transform.Position.Y, want.Y) {
		t.Errorf("position = %v, want %v", got.Transform.Position, want)
	}
	if got.Transform.Scale != st.Transform.Scale {
		t.Errorf("wheel changed scale: %v -> %v", st.Transform.Scale, got.Transform.Scale)
	}

	got = s.state(s.do(http.MethodPost, base+"/wheel", map[string]any{"offset": []float64{-40, 12}}), http.StatusOK)
	if got.Transform.Position != (canvas.Point{X: -40, Y: 12}) {
		t.Errorf("absolute offset: position = %v", got.Transform.Position)
	}

	// A new delta gesture rebases on the current position.
	got = s.state(s.do(http.MethodPost, base+"/wheel", map[string]any{"delta": []float64{1, 1}}), http.StatusOK)
	if got.Transform.Position != (canvas.Point{X: -39, Y: 13}) {
		t.Errorf("rebased delta: position = %v", got.Transform.Position)
	}

	if code := s.errorCode(s.do(http.MethodPost, base+"/wheel", map[string]any{}), http.StatusBadRequest); code != errors.ErrCodeInvalidInput {
		t.Errorf("empty wheel: code = %s", code)
	}
}

func TestViewportAndFit(t *testing.T) {
	s := newTestServer(t)
	st := s.create(1600, 800)
	base := "/api/v1/sessions/" + st.ID

	resized := s.state(s.do(http.MethodPut, base+"/viewport", viewportRequest{Width: 800, Height: 400}), http.StatusOK)
	if resized.Transform != st.Transform {
		t.Errorf("resize changed transform: %v -> %v", st.Transform, resized.Transform)
	}
	if !approx(resized.Bounds.Min, 800.0/7140.0) {
		t.Errorf("bounds.min = %v", resized.Bounds.Min)
	}

	// The next pinch reads bounds from the new viewport.
	got := s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"origin": []float64{0, 0},
		"scale":  0.001,
		"last":   true,
	}), http.StatusOK)
	if !approx(got.Transform.Scale, 800.0/7140.0) {
		t.Errorf("scale = %v, want %v", got.Transform.Scale, 800.0/7140.0)
	}

	fit := s.state(s.do(http.MethodPost, base+"/fit", nil), http.StatusOK)
	if !approx(fit.Transform.Scale, 400.0/1224.0) {
		t.Errorf("fit scale = %v, want %v", fit.Transform.Scale, 400.0/1224.0)
	}

	if code := s.errorCode(s.do(http.MethodPut, base+"/viewport", viewportRequest{}), http.StatusBadRequest); code != errors.ErrCodeInvalidViewport {
		t.Errorf("zero viewport: code = %s", code)
	}
}

func TestFrame(t *testing.T) {
	s := newTestServer(t)
	st := s.create(1600, 800)
	base := "/api/v1/sessions/" + st.ID

	tests := []struct {
		format      string
		contentType string
		prefix      string
	}{
		{"svg", "image/svg+xml", "<svg"},
		{"png", "image/png", "\x89PNG"},
		{"json", "application/json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp := s.do(http.MethodGet, base+"/frame."+tt.format+"?hud=1&labels=true", nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if xc := resp.Header.Get("X-Cache"); xc != "MISS" {
				t.Errorf("first X-Cache = %q, want MISS", xc)
			}
			var body bytes.Buffer
			if _, err := body.ReadFrom(resp.Body); err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(body.String(), tt.prefix) {
				t.Errorf("body starts with %q", body.String()[:min(8, body.Len())])
			}

			again := s.do(http.MethodGet, base+"/frame."+tt.format+"?hud=1&labels=true", nil)
			if xc := again.Header.Get("X-Cache"); xc != "HIT" {
				t.Errorf("second X-Cache = %q, want HIT", xc)
			}
		})
	}

	if code := s.errorCode(s.do(http.MethodGet, base+"/frame.gif", nil), http.StatusBadRequest); code != errors.ErrCodeInvalidFormat {
		t.Errorf("gif: code = %s", code)
	}
}

func TestFramePhaseNotServedStale(t *testing.T) {
	s := newTestServer(t)
	st := s.create(1600, 800)
	base := "/api/v1/sessions/" + st.ID

	readPhase := func() (string, string) {
		t.Helper()
		resp := s.do(http.MethodGet, base+"/frame.json?hud=1", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var body struct {
			Phase string `json:"phase"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		return body.Phase, resp.Header.Get("X-Cache")
	}

	if phase, xc := readPhase(); phase != "idle" || xc != "MISS" {
		t.Fatalf("first frame: phase = %q, X-Cache = %q", phase, xc)
	}

	// Pinching to the current scale leaves the transform unchanged.
	got := s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"origin": []float64{800, 400},
		"scale":  st.Transform.Scale,
	}), http.StatusOK)
	if got.Transform != st.Transform || got.Phase != "active" {
		t.Fatalf("after pinch: transform = %v, phase = %q", got.Transform, got.Phase)
	}

	if phase, xc := readPhase(); phase != "active" || xc != "MISS" {
		t.Errorf("frame during pinch: phase = %q, X-Cache = %q, want active MISS", phase, xc)
	}
}

func TestPinchModeSwitchRecomputesBounds(t *testing.T) {
	s := newTestServer(t)
	st := s.create(1600, 800)
	base := "/api/v1/sessions/" + st.ID

	// Start with an absolute-scale pinch, finish it with a pointer release.
	s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"origin": []float64{800, 400},
		"scale":  0.5,
	}), http.StatusOK)
	ended := s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"pointers": [][]float64{{700, 400}, {900, 400}},
		"last":     true,
	}), http.StatusOK)
	if ended.Phase != "idle" {
		t.Fatalf("phase = %q, want idle", ended.Phase)
	}

	resized := s.state(s.do(http.MethodPut, base+"/viewport", viewportRequest{Width: 400, Height: 800}), http.StatusOK)
	wantMin := 400.0 / 7140.0
	if !approx(resized.Bounds.Min, wantMin) {
		t.Fatalf("bounds.min = %v, want %v", resized.Bounds.Min, wantMin)
	}

	got := s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"origin": []float64{0, 0},
		"scale":  0.01,
		"last":   true,
	}), http.StatusOK)
	if !approx(got.Transform.Scale, wantMin) {
		t.Errorf("scale = %v, want clamped to new min %v", got.Transform.Scale, wantMin)
	}

	// The reverse: pointers start, an absolute sample ends the gesture.
	s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"pointers": [][]float64{{100, 400}, {300, 400}},
	}), http.StatusOK)
	s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"origin": []float64{0, 0},
		"scale":  0.5,
		"last":   true,
	}), http.StatusOK)
	// A fresh pointer gesture starts from the live scale (0.5), not the
	// scale captured by the abandoned one.
	got = s.state(s.do(http.MethodPost, base+"/pinch", map[string]any{
		"pointers": [][]float64{{100, 400}, {300, 400}},
		"last":     true,
	}), http.StatusOK)
	if !approx(got.Transform.Scale, 0.5) {
		t.Errorf("scale = %v, want 0.5", got.Transform.Scale)
	}
}

func TestGeometry(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/api/v1/geometry?width=1600&height=800", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var g geometryResponse
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		t.Fatal(err)
	}
	if !approx(g.Initial.Scale, 800.0/1224.0) {
		t.Errorf("initial scale = %v", g.Initial.Scale)
	}
	if g.Extent != (canvas.Size{Width: 7140, Height: 1224}) {
		t.Errorf("extent = %v", g.Extent)
	}
	if len(g.Sections) != 4 {
		t.Errorf("sections = %d, want 4", len(g.Sections))
	}

	for _, q := range []string{"", "?width=1600", "?width=abc&height=1", "?width=0&height=1"} {
		resp := s.do(http.MethodGet, "/api/v1/geometry"+q, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%q: status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestHealthAndServerHeader(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Server"), "stripview/") {
		t.Errorf("Server = %q", resp.Header.Get("Server"))
	}
	var h healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" {
		t.Errorf("status = %q", h.Status)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t)
	st := s.create(1600, 800)
	resp := s.do(http.MethodDelete, "/api/v1/sessions/"+st.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if s.srv.Sessions().Len() != 0 {
		t.Errorf("sessions = %d", s.srv.Sessions().Len())
	}
}

func TestRegistryEviction(t *testing.T) {
	logger := log.New(&bytes.Buffer{})
	r := NewRegistry(2)
	vp := canvas.Viewport{Width: 100, Height: 100}
	cfg := canvas.DefaultConfiguration()

	a := newSession(vp, cfg, logger)
	b := newSession(vp, cfg, logger)
	r.Add(a)
	r.Add(b)

	// Touch a so b is the least recently used.
	time.Sleep(time.Millisecond)
	a.lock()
	a.unlock()

	c := newSession(vp, cfg, logger)
	if evicted := r.Add(c); evicted != b.ID {
		t.Errorf("evicted %q, want %q", evicted, b.ID)
	}
	if _, err := r.Get(b.ID); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get(evicted) error = %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
}

func TestRegistryCleanup(t *testing.T) {
	r := NewRegistry(0)
	s := newSession(canvas.Viewport{Width: 100, Height: 100}, canvas.DefaultConfiguration(), log.New(&bytes.Buffer{}))
	r.Add(s)

	if n := r.Cleanup(time.Hour); n != 0 {
		t.Errorf("Cleanup(hour) = %d, want 0", n)
	}
	s.mu.Lock()
	s.lastSeen = time.Now().Add(-2 * time.Hour)
	s.mu.Unlock()
	if n := r.Cleanup(time.Hour); n != 1 {
		t.Errorf("Cleanup(hour) = %d, want 1", n)
	}
}
