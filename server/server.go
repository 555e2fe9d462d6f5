// Package server exposes interpreter sessions over HTTP.
package server

import (
	"encoding/json"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/tevino/abool/v2"
	"github.com/valyala/fasthttp"

	"github.com/titivuk/apl/config"
	"github.com/titivuk/apl/interpreter"
	"github.com/titivuk/apl/object"
)

type session struct {
	mu     sync.Mutex
	interp *interpreter.Session

	// guarded by Server.mu
	lastUsed time.Time
}

type Server struct {
	cfg    config.Server
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*session

	sweeping *abool.AtomicBool
	draining *abool.AtomicBool

	scheduler gocron.Scheduler
	srv       *fasthttp.Server

	now func() time.Time
}

func New(cfg config.Server, logger *log.Logger) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*session),
		sweeping: abool.NewBool(false),
		draining: abool.NewBool(false),
		now:      time.Now,
	}
}

// ListenAndServe starts the idle session sweeper and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	if err := s.startSweeper(); err != nil {
		return err
	}

	s.srv = &fasthttp.Server{
		Handler:      s.Handler,
		Name:         "apl",
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	s.logger.Printf("Starting HTTP server on %q", s.cfg.Addr)
	return s.srv.ListenAndServe(s.cfg.Addr)
}

// Shutdown stops accepting evaluations, stops the sweeper and closes
// the listener once in-flight requests are done.
func (s *Server) Shutdown() error {
	s.draining.Set()

	if s.scheduler != nil {
		if err := s.scheduler.Shutdown(); err != nil {
			s.logger.Printf("sweeper: %v", err)
		}
	}
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown()
}

func (s *Server) startSweeper() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(gocron.DurationJob(s.cfg.SweepInterval), gocron.NewTask(func() {
		if n := s.Sweep(); n > 0 {
			s.logger.Printf("evicted %d idle sessions", n)
		}
	}))
	if err != nil {
		return err
	}

	s.scheduler = scheduler
	scheduler.Start()
	return nil
}

// Sweep drops sessions unused for longer than the session TTL and returns
// how many were dropped. A sweep that starts while another one is running
// does nothing.
func (s *Server) Sweep() int {
	if !s.sweeping.SetToIf(false, true) {
		return 0
	}
	defer s.sweeping.UnSet()

	cutoff := s.now().Add(-s.cfg.SessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}

	return evicted
}

// Len returns the number of live sessions.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// session looks up, or creates, the session id and marks it used, so a sweep
// running before the caller locks the session cannot drop it.
func (s *Server) session(id string, create bool) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok && create {
		sess = &session{interp: interpreter.NewSession()}
		s.sessions[id] = sess
		ok = true
	}
	if ok {
		sess.lastUsed = s.now()
	}
	return sess
}

func (s *Server) touch(sess *session) {
	s.mu.Lock()
	sess.lastUsed = s.now()
	s.mu.Unlock()
}

func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	var method string

	switch string(ctx.Path()) {
	case "/eval":
		method = fasthttp.MethodPost
	case "/vars":
		method = fasthttp.MethodGet
	case "/reset":
		method = fasthttp.MethodPost
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
		return
	}

	if s.draining.IsSet() {
		ctx.Error("shutting down", fasthttp.StatusServiceUnavailable)
		return
	}
	if string(ctx.Method()) != method {
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		ctx.Response.Header.Set("Allow", method)
		return
	}

	id := strings.TrimSpace(string(ctx.QueryArgs().Peek("session")))
	if id == "" {
		ctx.Error("missing session", fasthttp.StatusBadRequest)
		return
	}

	switch string(ctx.Path()) {
	case "/eval":
		s.handleEval(ctx, id)
	case "/vars":
		s.handleVars(ctx, id)
	case "/reset":
		s.handleReset(ctx, id)
	}
}

type errorBody struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

type evalResponse struct {
	OK     bool                   `json:"ok"`
	Kind   string                 `json:"kind,omitempty"`
	Result string                 `json:"result,omitempty"`
	Error  *errorBody             `json:"error,omitempty"`
	Vars   map[string]interface{} `json:"vars"`
}

type varsResponse struct {
	Vars map[string]interface{} `json:"vars"`
}

func (s *Server) handleEval(ctx *fasthttp.RequestCtx, id string) {
	line := strings.TrimRight(string(ctx.PostBody()), "\r\n")

	sess := s.session(id, true)
	sess.mu.Lock()
	res, err := sess.interp.Run(line)
	vars := jsonVars(sess.interp.Store())
	sess.mu.Unlock()
	s.touch(sess)

	if err != nil {
		writeJSON(ctx, fasthttp.StatusUnprocessableEntity, evalResponse{
			Error: &errorBody{Stage: interpreter.Stage(err), Message: err.Error()},
			Vars:  vars,
		})
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, evalResponse{
		OK:     true,
		Kind:   res.Kind.String(),
		Result: res.Value.Inspect(),
		Vars:   vars,
	})
}

func (s *Server) handleVars(ctx *fasthttp.RequestCtx, id string) {
	var digest string
	var vars map[string]interface{}

	if sess := s.session(id, false); sess != nil {
		sess.mu.Lock()
		digest = sess.interp.Store().Digest()
		vars = jsonVars(sess.interp.Store())
		sess.mu.Unlock()
	} else {
		empty := object.NewStore()
		digest = empty.Digest()
		vars = jsonVars(empty)
	}

	etag := `"` + digest + `"`

	// NotModified resets the response, the ETag goes on afterwards
	if string(ctx.Request.Header.Peek("If-None-Match")) == etag {
		ctx.NotModified()
	} else {
		writeJSON(ctx, fasthttp.StatusOK, varsResponse{Vars: vars})
	}
	ctx.Response.Header.Set("ETag", etag)
}

func (s *Server) handleReset(ctx *fasthttp.RequestCtx, id string) {
	if sess := s.session(id, false); sess != nil {
		sess.mu.Lock()
		sess.interp.Reset()
		sess.mu.Unlock()
	}

	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

// jsonVars keeps the integer/float distinction of the store: values are
// written as JSON numbers in their printed form, so 2.0 stays 2.0.
// Infinities and NaN have no JSON number form and are written as strings.
func jsonVars(store *object.Store) map[string]interface{} {
	out := make(map[string]interface{}, store.Len())
	for name, v := range store.Snapshot() {
		if f, ok := v.(*object.Float); ok && (math.IsInf(f.Value, 0) || math.IsNaN(f.Value)) {
			out[name] = f.Inspect()
			continue
		}
		out[name] = json.Number(v.Inspect())
	}
	return out
}

func writeJSON(ctx *fasthttp.RequestCtx, code int, v interface{}) {
	buf, err := json.Marshal(v)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(code)
	ctx.SetBody(buf)
}
