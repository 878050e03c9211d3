// Package web serves the contact book over HTTP: an HTML page with form
// actions, a plain-text search endpoint, and a small JSON API.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"contactbook/docs/schema/openapi"
	blobcore "contactbook/internal/blob/core"
	"contactbook/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// ContactService is the operation surface the handler drives. *core.Service
// satisfies it.
type ContactService interface {
	Add(ctx context.Context, name, email string) (core.Contact, error)
	Delete(ctx context.Context, name string) (core.Contact, error)
	Search(ctx context.Context, name string) (core.Contact, error)
	Undo(ctx context.Context) (core.Outcome, error)
	Redo(ctx context.Context) (core.Outcome, error)
	State() core.State
}

// ExportService writes, lists and reads back state exports.
type ExportService interface {
	Export(ctx context.Context) (blobcore.Info, error)
	List(ctx context.Context) ([]blobcore.Info, error)
	Get(ctx context.Context, id string) (core.Export, error)
}

// Handler routes contact book requests.
type Handler struct {
	Contacts ContactService
	Exports  ExportService
	Metrics  http.Handler
	Title    string
	Logger   Logger
}

// Logger is the subset of *slog.Logger the handler uses.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

func (h *Handler) log() Logger {
	if h.Logger == nil {
		return noopLogger{}
	}
	return h.Logger
}

// NewHandler constructs a handler. Exports and metrics are optional.
func NewHandler(contacts ContactService, title string) *Handler {
	if title == "" {
		title = "Contact Manager"
	}
	return &Handler{Contacts: contacts, Title: title, Logger: noopLogger{}}
}

// WithPrometheus serves the metrics gathered by g on /metrics.
func (h *Handler) WithPrometheus(g prometheus.Gatherer) *Handler {
	h.Metrics = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Contacts == nil {
		writeError(w, http.StatusInternalServerError, "contact service not configured")
		return
	}

	path := r.URL.Path
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	switch path {
	case "/":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleIndex(w, r)
	case "/add", "/delete", "/undo", "/redo":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleAction(w, r, strings.TrimPrefix(path, "/"))
	case "/search":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleSearch(w, r)
	case "/api/v1/state":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"state": h.Contacts.State()})
	case "/api/v1/openapi.yaml":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openapi.ContactBookSpec)
	case "/api/v1/exports":
		if h.Exports == nil {
			http.NotFound(w, r)
			return
		}
		h.handleExports(w, r)
	case "/metrics":
		if h.Metrics == nil {
			http.NotFound(w, r)
			return
		}
		h.Metrics.ServeHTTP(w, r)
	default:
		if id, ok := strings.CutPrefix(path, "/api/v1/exports/"); ok && h.Exports != nil {
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			h.handleExport(w, r, id)
			return
		}
		http.NotFound(w, r)
	}
}

type indexView struct {
	Title string
	State core.State
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := indexView{Title: h.Title, State: h.Contacts.State()}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, view); err != nil {
		h.log().Warn("render index failed", "error", err, "path", r.URL.Path)
	}
}

// handleAction runs a form action and always redirects home. Failures are
// recorded in the activity log by the service, so they are not surfaced here.
func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request, action string) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	ctx := r.Context()
	var err error
	switch action {
	case "add":
		_, err = h.Contacts.Add(ctx, strings.TrimSpace(r.PostForm.Get("name")), strings.TrimSpace(r.PostForm.Get("email")))
	case "delete":
		_, err = h.Contacts.Delete(ctx, strings.TrimSpace(r.PostForm.Get("name")))
	case "undo":
		_, err = h.Contacts.Undo(ctx)
	case "redo":
		_, err = h.Contacts.Redo(ctx)
	}
	if err != nil && !isExpected(err) {
		h.log().Warn("contact action failed", "action", action, "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c, err := h.Contacts.Search(r.Context(), query)
	if err != nil {
		_, _ = w.Write([]byte("Contact not found."))
		return
	}
	_, _ = w.Write([]byte("Contact found: " + c.Name + " (" + c.Email + ")"))
}

func (h *Handler) handleExports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		info, err := h.Exports.Export(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"export": info})
	case http.MethodGet:
		infos, err := h.Exports.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if infos == nil {
			infos = []blobcore.Info{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"exports": infos})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := h.Exports.Get(r.Context(), id)
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "export not found")
	case errors.Is(err, core.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid export id")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]any{"export": doc})
	}
}

func isExpected(err error) bool {
	return errors.Is(err, core.ErrInvalidInput) ||
		errors.Is(err, core.ErrNotFound) ||
		errors.Is(err, core.ErrNoHistory) ||
		errors.Is(err, core.ErrNoRedo) ||
		errors.Is(err, core.ErrRedoFailed)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
