package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/pkg/form"
	"github.com/goliatone/go-contactform/pkg/orchestrator"
	"github.com/goliatone/go-contactform/pkg/render"
	htmlrenderer "github.com/goliatone/go-contactform/pkg/renderers/html"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	token := s.ensureCSRF(w, r)
	s.writePage(w, r, http.StatusOK, nil, token)
}

// handleSubmit is the no-script path: the browser posts the whole form, the
// server runs the submit lifecycle on a fresh state and either redirects
// (post/redirect/get) or re-renders with every error visible.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}
	token, ok := s.checkCSRF(r)
	if !ok {
		http.Error(w, "invalid or missing CSRF token", http.StatusForbidden)
		return
	}

	st := form.New(s.schema)
	for _, field := range s.form.Fields {
		var err error
		if field.Multiple() {
			err = st.SetSelection(field.Name, r.PostForm[field.Name])
		} else {
			err = st.Set(field.Name, r.PostForm.Get(field.Name))
		}
		if err != nil {
			s.logger.Error("apply form value", zap.String("field", field.Name), zap.Error(err))
			http.Error(w, "unsupported field", http.StatusInternalServerError)
			return
		}
	}

	_, err := st.Submit(r.Context(), s.sink)
	var invalid *form.InvalidError
	switch {
	case err == nil:
		http.Redirect(w, r, PathHome, http.StatusSeeOther)
	case errors.As(err, &invalid):
		s.writePage(w, r, http.StatusUnprocessableEntity, st, token)
	default:
		s.logger.Error("submission sink failed", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		s.writePage(w, r, http.StatusBadGateway, st, token)
	}
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.contract)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, st *form.State, token string) {
	page, err := s.renderPage(r.Context(), st, token)
	if err != nil {
		s.logger.Error("render page", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(page)
}

func (s *Server) renderPage(ctx context.Context, st *form.State, token string) ([]byte, error) {
	opts := render.FromState(st)
	opts.Action = PathHome
	opts.Hidden = render.MergeHiddenFields(opts.Hidden, render.CSRFToken(csrfField, token))
	if s.cfg.LiveValidation {
		opts.LiveEndpoint = PathLive
	}

	errorCount := 0
	if st != nil {
		errorCount = st.ErrorCount()
	}
	return s.orch.Generate(ctx, orchestrator.Request{
		Form:          &s.form,
		Renderer:      s.renderer.Name(),
		RenderOptions: opts,
		Page: &orchestrator.Page{
			ErrorCount:  errorCount,
			Stylesheets: []string{PathAssets + htmlrenderer.StylesheetName},
			Scripts:     []string{PathAssets + htmlrenderer.RuntimeScriptName},
		},
	})
}

// ensureCSRF returns the token from the request cookie, issuing a new one
// when absent.
func (s *Server) ensureCSRF(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(s.cfg.CSRFCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CSRFCookie,
		Value:    token,
		Path:     PathHome,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	return token
}

// checkCSRF compares the posted token with the cookie.
func (s *Server) checkCSRF(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.cfg.CSRFCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	posted := r.PostForm.Get(csrfField)
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(posted)) != 1 {
		return "", false
	}
	return cookie.Value, true
}
