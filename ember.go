package ember

import (
	"errors"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/semaphore"
)

// Server is the top-level framework instance: a route registry, a hook
// store, CORS and body-parser configuration, and the raw-TCP listener
// that drives the request pipeline (§2, §4.6).
type Server struct {
	Config Config

	registry *RouteRegistry
	hooks    *HookStore
	logger   *Logger

	ln       net.Listener
	sem      *semaphore.Weighted
	started  bool
	closed   bool
	mu       sync.Mutex
	shutdown chan struct{}
}

// New returns a Server configured with cfg as given (§6). Zero-valued
// fields are not filled in from DefaultConfig; a zero Port fails
// validation. If cfg.ConfigFile is set, its contents are loaded and
// merged on top before the Server is constructed.
func New(cfg Config) (*Server, error) {
	if cfg.ConfigFile != "" {
		merged, err := LoadConfigFile(cfg, cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = merged
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Server{
		Config:   cfg,
		registry: newRouteRegistry(),
		hooks:    newHookStore(),
		logger:   newLogger(ParseLogLevel(cfg.LogLevel)),
	}, nil
}

// registerRoute registers an already-built route, auto-deriving HEAD
// from GET per §4.4.
func (s *Server) registerRoute(route *Route) error {
	return s.registry.Register(route)
}

// register validates and registers one route built from opts (Before,
// After, RawBody), auto-deriving HEAD from GET per §4.4.
func (s *Server) register(method, path string, handler Handler, opts ...RouteOption) error {
	route := &Route{Method: method, Pattern: path, Handler: handler}
	for _, opt := range opts {
		opt(route)
	}
	return s.registerRoute(route)
}

// GET registers a GET route. opts may include Before, After, and
// RawBody to reach Route's optional fields.
func (s *Server) GET(path string, handler Handler, opts ...RouteOption) error {
	return s.register(MethodGET, path, handler, opts...)
}

// POST registers a POST route.
func (s *Server) POST(path string, handler Handler, opts ...RouteOption) error {
	return s.register(MethodPOST, path, handler, opts...)
}

// PUT registers a PUT route.
func (s *Server) PUT(path string, handler Handler, opts ...RouteOption) error {
	return s.register(MethodPUT, path, handler, opts...)
}

// PATCH registers a PATCH route.
func (s *Server) PATCH(path string, handler Handler, opts ...RouteOption) error {
	return s.register(MethodPATCH, path, handler, opts...)
}

// DELETE registers a DELETE route.
func (s *Server) DELETE(path string, handler Handler, opts ...RouteOption) error {
	return s.register(MethodDELETE, path, handler, opts...)
}

// OPTIONS registers an OPTIONS route. With CORS enabled, a
// user-registered OPTIONS route only runs for an authorized origin when
// the CORS gate's preflightContinue lets the pipeline continue past the
// preflight short-circuit (§4.7, §9); with CORS disabled it always runs.
func (s *Server) OPTIONS(path string, handler Handler, opts ...RouteOption) error {
	return s.register(MethodOPTIONS, path, handler, opts...)
}

// HEAD registers an explicit HEAD route (§4.4, §9). Registered before GET
// for the same path, it takes the place of GET's auto-derived HEAD route;
// registered after GET, it conflicts with that derived route and fails.
func (s *Server) HEAD(path string, handler Handler, opts ...RouteOption) error {
	return s.register(MethodHEAD, path, handler, opts...)
}

// Group returns a Group rooted at prefix, sharing this Server.
func (s *Server) Group(prefix string) *Group {
	return &Group{prefix: prefix, server: s}
}

// BeforeAll registers a global before-hook (§4.5).
func (s *Server) BeforeAll(hook Hook, filter HookFilter) {
	s.hooks.BeforeAll(hook, filter)
}

// AfterAll registers a global after-hook (§4.5).
func (s *Server) AfterAll(hook Hook, filter HookFilter) {
	s.hooks.AfterAll(hook, filter)
}

// OnError overrides the error handler (§4.5, §7).
func (s *Server) OnError(handler ErrorHandler) {
	s.hooks.OnError(handler)
}

// OnNotFound overrides the not-found handler (§4.5, §6).
func (s *Server) OnNotFound(handler NotFoundHandler) {
	s.hooks.OnNotFound(handler)
}

// Logger returns the Server's Logger, for callers that want to log
// outside of a request (e.g. startup/shutdown messages).
func (s *Server) Logger() *Logger {
	return s.logger
}

// errAlreadyStarted is returned by a second Listen/Serve call on the
// same Server (§5 "A server may be started at most once").
var errAlreadyStarted = errors.New("ember: server already started")

// Listen starts accepting connections on Config.Host:Config.Port and
// blocks serving requests until the listener is closed or an auto
// graceful-shutdown signal is handled.
func (s *Server) Listen() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errAlreadyStarted
	}
	s.started = true
	s.shutdown = make(chan struct{})
	s.mu.Unlock()

	addr := net.JoinHostPort(s.Config.Host, strconv.Itoa(s.Config.Port))

	nl, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.ln = newListener(nl)

	maxConns := s.Config.MaxConnections
	if maxConns <= 0 {
		maxConns = 256
	}
	s.sem = semaphore.NewWeighted(int64(maxConns))

	if s.Config.AutoGracefulShutdown {
		s.installSignalHandler()
	}

	s.logger.Infof("ember: listening on %s", addr)

	err = s.serve(s.ln, s.sem)
	if s.closed {
		return nil
	}
	return err
}

// installSignalHandler arms SIGINT/SIGTERM to call Close exactly once
// (§5 "must not install duplicate signal handlers across repeated
// instantiations").
func (s *Server) installSignalHandler() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			s.Close()
		case <-s.shutdown:
		}
	}()
}

// Close stops the listener immediately. Idempotent (§5).
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.shutdown != nil {
		close(s.shutdown)
	}

	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}

// handleRaw parses one complete raw request message and drives it
// through the pipeline, returning the serialized response (§4.1-§4.9).
// Kept as its own method so it is directly unit-testable without a real
// socket.
func (s *Server) handleRaw(raw, remoteAddr string) string {
	parsed := parseWire(raw)

	headers, headerErr := parseHeaders(parsed.HeaderBlock)

	path, rawQuery := splitPathAndQuery(parsed.Path)
	path = normalizePath(path)

	req := &Request{
		Method:     parsed.Method,
		Path:       path,
		Protocol:   parsed.Protocol,
		headers:    headers,
		Query:      parseQuery(rawQuery),
		Params:     map[string]string{},
		RawBody:    parsed.Body,
		RemoteAddr: remoteAddr,
	}

	ctx := newContext(req)
	ctx.Set("requestID", nextRequestID(remoteAddr, time.Now()))

	if headerErr != nil {
		pl := &pipeline{registry: s.registry, hooks: s.hooks, cors: s.Config.ResolvedCORS(), logger: s.logger}
		pl.fail(ctx, headerErr)
		return pl.finalize(ctx)
	}

	contentTypeHeader := req.Header("Content-Type")
	mainType, boundary := parseContentType(contentTypeHeader)
	req.ContentType = mainType
	req.Boundary = boundary

	pl := &pipeline{registry: s.registry, hooks: s.hooks, cors: s.Config.ResolvedCORS(), logger: s.logger}

	if route, _, ok := s.registry.Match(req.Method, req.Path); ok && route.RawBody {
		req.Body = parsed.Body
	} else {
		body, err := decodeBody(parsed.Body, mainType, boundary, s.Config.BodyParser)
		if err != nil {
			pl.fail(ctx, err)
			return pl.finalize(ctx)
		}
		if form, isForm := body.(*MultipartForm); isForm {
			req.Multipart = form
		} else {
			req.Body = body
		}
	}

	return pl.run(ctx)
}
