// Package handler exposes the widget and the lookup API over HTTP.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pincheck/internal/pincode/models"
	"pincheck/internal/pincode/widget"
	"pincheck/pkg/domain"
	dErrors "pincheck/pkg/domain-errors"
	"pincheck/pkg/platform/httputil"
	"pincheck/pkg/requestcontext"
)

// DefaultCookieName carries the widget id between page loads.
const DefaultCookieName = "pincheck_widget"

// Service validates and looks up pincodes.
type Service interface {
	Validate(raw string) models.ValidationResult
	Lookup(ctx context.Context, raw string) (models.LookupResult, error)
}

// Widgets stores live widget instances.
type Widgets interface {
	Create(ctx context.Context) *widget.Widget
	Get(ctx context.Context, id domain.WidgetID) (*widget.Widget, error)
}

// Renderer writes widget views as HTML.
type Renderer interface {
	Page(w io.Writer, view widget.View) error
	Fragment(w io.Writer, view widget.View) error
}

type Handler struct {
	service       Service
	widgets       Widgets
	renderer      Renderer
	logger        *slog.Logger
	cookieName    string
	secureCookie  bool
	settleTimeout time.Duration
}

type Option func(*Handler)

func WithCookieName(name string) Option {
	return func(h *Handler) {
		if name != "" {
			h.cookieName = name
		}
	}
}

// WithSecureCookie marks the widget cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) {
		h.secureCookie = secure
	}
}

// WithSettleTimeout bounds how long a plain form submission waits for its
// lookup before the page is rendered in the loading state.
func WithSettleTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.settleTimeout = d
		}
	}
}

func New(service Service, widgets Widgets, renderer Renderer, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service:       service,
		widgets:       widgets,
		renderer:      renderer,
		logger:        logger,
		cookieName:    DefaultCookieName,
		settleTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.HandlePage)
	r.Route("/widgets/{id}", func(r chi.Router) {
		r.Get("/", h.HandleView)
		r.Post("/input", h.HandleInput)
		r.Post("/submit", h.HandleSubmit)
	})
	r.Get("/api/v1/pincodes/{pincode}", h.HandleLookup)
	r.Post("/api/v1/pincodes/validate", h.HandleValidate)
}

// HandlePage renders the widget, reusing the instance named by the cookie
// while it is still live.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var wdg *widget.Widget
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if id, err := domain.ParseWidgetID(cookie.Value); err == nil {
			wdg, _ = h.widgets.Get(ctx, id)
		}
	}
	if wdg == nil {
		wdg = h.widgets.Create(ctx)
		h.logger.DebugContext(ctx, "widget created",
			"widget_id", wdg.ID().String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    wdg.ID().String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.writePage(w, r, wdg.View())
}

// HandleView returns the widget view as JSON, or its status and results areas as HTML.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	wdg, ok := h.widget(w, r)
	if !ok {
		return
	}
	view := wdg.View()
	if wantsJSON(r) {
		writeView(w, http.StatusOK, view)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.Fragment(w, view); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render fragment",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}
}

// HandleInput validates one keystroke worth of input.
func (h *Handler) HandleInput(w http.ResponseWriter, r *http.Request) {
	wdg, ok := h.widget(w, r)
	if !ok {
		return
	}
	if !h.parseForm(w, r) {
		return
	}
	wdg.Input(r.PostFormValue("pincode"))

	if wantsJSON(r) {
		writeView(w, http.StatusOK, wdg.View())
		return
	}
	h.writePage(w, r, wdg.View())
}

// HandleSubmit submits the widget. A pincode field in the form replaces the
// current input first, so the form also works without per-keystroke updates.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wdg, ok := h.widget(w, r)
	if !ok {
		return
	}
	if !h.parseForm(w, r) {
		return
	}
	if _, present := r.PostForm["pincode"]; present {
		wdg.Input(r.PostFormValue("pincode"))
	}

	view := wdg.Submit(ctx)
	h.logger.InfoContext(ctx, "widget submitted",
		"widget_id", view.WidgetID,
		"state", string(view.State),
		"sequence", view.Sequence,
		"request_id", requestcontext.RequestID(ctx),
	)

	if wantsJSON(r) {
		status := http.StatusOK
		if view.Loading {
			status = http.StatusAccepted
		}
		writeView(w, status, view)
		return
	}

	if view.Loading {
		settleCtx, cancel := context.WithTimeout(ctx, h.settleTimeout)
		defer cancel()
		if err := wdg.Await(settleCtx); err != nil {
			h.logger.WarnContext(ctx, "lookup still pending at render",
				"widget_id", view.WidgetID,
				"error", err,
			)
		}
		view = wdg.View()
	}
	h.writePage(w, r, view)
}

// HandleLookup implements GET /api/v1/pincodes/{pincode}.
//
// Success and upstream rejections answer 200 with the result; a transport
// failure answers 502 with the same body shape.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := chi.URLParam(r, "pincode")

	result, err := h.service.Lookup(ctx, raw)
	if err != nil {
		h.logger.InfoContext(ctx, "lookup rejected",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if result.Kind == models.KindTransportError {
		status = http.StatusBadGateway
	}
	httputil.WriteJSON(w, status, result)
}

type validateRequest struct {
	Pincode string `json:"pincode"`
}

// HandleValidate implements POST /api/v1/pincodes/validate.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[validateRequest](w, r, h.logger)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.service.Validate(req.Pincode))
}

// widget resolves the {id} URL parameter. Plain browser requests for an
// unknown widget are sent back to the page, which creates a new one.
func (h *Handler) widget(w http.ResponseWriter, r *http.Request) (*widget.Widget, bool) {
	ctx := r.Context()
	id, err := domain.ParseWidgetID(chi.URLParam(r, "id"))
	if err == nil {
		var wdg *widget.Widget
		if wdg, err = h.widgets.Get(ctx, id); err == nil {
			return wdg, true
		}
	}

	if !wantsJSON(r) && dErrors.HasCode(err, dErrors.CodeNotFound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	httputil.WriteError(w, err)
	return nil, false
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(r.Context(), "failed to parse form",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
		return false
	}
	return true
}

func (h *Handler) writePage(w http.ResponseWriter, r *http.Request, view widget.View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.Page(w, view); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}
}

func writeView(w http.ResponseWriter, status int, view widget.View) {
	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, status, view)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
