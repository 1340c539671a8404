// Package server exposes the contact form over HTTP: the page, the classic
// form POST, live validation over a websocket, the OpenAPI contract and the
// embedded runtime assets.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-contactform/internal/config"
	"github.com/goliatone/go-contactform/pkg/form"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/openapi"
	"github.com/goliatone/go-contactform/pkg/orchestrator"
	"github.com/goliatone/go-contactform/pkg/render"
	htmlrenderer "github.com/goliatone/go-contactform/pkg/renderers/html"
	"github.com/goliatone/go-contactform/pkg/validation"
)

// Routes served by Handler.
const (
	PathHome    = "/"
	PathLive    = "/ws"
	PathOpenAPI = "/openapi.json"
	PathHealth  = "/healthz"
	PathAssets  = "/assets/"
)

// csrfField is the hidden input carrying the double-submit token.
const csrfField = "_csrf"

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger used for access and error logs.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSink sets where valid submissions go. Defaults to a zap log sink.
func WithSink(sink form.Sink) Option {
	return func(s *Server) {
		s.sink = sink
	}
}

// WithOrchestrator supplies the render pipeline: form definition, presets,
// renderers and theme. Defaults to the bundled form and HTML renderer.
func WithOrchestrator(orch *orchestrator.Orchestrator) Option {
	return func(s *Server) {
		s.orch = orch
	}
}

// WithTemplateWatch reloads the HTML renderer's templates whenever a file
// under dir changes. It only has an effect when the renderer supports
// reloading.
func WithTemplateWatch(dir string) Option {
	return func(s *Server) {
		s.watchDir = dir
	}
}

// Server serves one contact form.
type Server struct {
	cfg      config.ServerConfig
	logger   *zap.Logger
	orch     *orchestrator.Orchestrator
	form     model.FormModel
	schema   *validation.Schema
	renderer render.Renderer
	sink     form.Sink
	contract []byte
	watchDir string
}

// New prepares the form definition once, resolves the page renderer and
// pre-computes the OpenAPI contract.
func New(cfg config.ServerConfig, options ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.orch == nil {
		s.orch = orchestrator.New()
	}
	if s.sink == nil {
		s.sink = form.LogSink(s.logger)
	}
	if s.cfg.CSRFCookie == "" {
		s.cfg.CSRFCookie = "contactform_csrf"
	}

	fm, err := s.orch.Prepare(context.Background())
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.form = fm

	schema, err := validation.FromModel(s.form)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.schema = schema

	renderer, err := s.orch.Renderer("")
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.renderer = renderer

	contract, err := openapi.MarshalDocument(context.Background(), s.form)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.contract = contract

	return s, nil
}

// Handler returns the routed handler wrapped in request id and access log
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+PathHome+"{$}", s.handlePage)
	mux.HandleFunc("POST "+PathHome+"{$}", s.handleSubmit)
	mux.HandleFunc("GET "+PathOpenAPI, s.handleOpenAPI)
	mux.HandleFunc("GET "+PathHealth, s.handleHealth)
	mux.Handle("GET "+PathAssets, http.StripPrefix(PathAssets, http.FileServerFS(htmlrenderer.AssetsFS())))
	if s.cfg.LiveValidation {
		mux.HandleFunc("GET "+PathLive, s.handleLive)
	}
	return requestID(accessLog(s.logger, mux))
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured timeout. The template watcher, when
// enabled, runs alongside the listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	group, groupCtx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return groupCtx },
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	group.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})

	if s.watchDir != "" {
		group.Go(func() error {
			return s.watchTemplates(groupCtx)
		})
	}

	return group.Wait()
}
