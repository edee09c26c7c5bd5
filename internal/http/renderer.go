package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/equihire/equihire-core/internal/domain/model"
)

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t      *template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing layout.tmpl, error.tmpl, pages/ and partials/ (required)
	Logger     *slog.Logger // Optional
}

// NewTemplateRenderer parses every template in cfg.TemplateFS.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer := &TemplateRenderer{logger: logger}
	t, err := template.New("root").Funcs(renderer.funcs()).ParseFS(cfg.TemplateFS,
		"*.tmpl",
		"pages/*.tmpl",
		"partials/*.tmpl",
	)
	if err != nil {
		logger.Error("template parsing failed", slog.Any("error", err))
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	renderer.t = t
	return renderer, nil
}

// Render writes the full layout with data.Page as the main content.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, data *PageData) error {
	return r.renderTemplate(w, status, "layout", data)
}

// RenderError writes the standalone error page.
func (r *TemplateRenderer) RenderError(w http.ResponseWriter, status int, data ErrorPageData) error {
	if data.Status == 0 {
		data.Status = status
	}
	if data.Title == "" {
		data.Title = http.StatusText(status)
	}
	return r.renderTemplate(w, status, "error-layout", data)
}

func (r *TemplateRenderer) renderTemplate(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("template execution failed",
			slog.String("template", name),
			slog.Any("error", err),
		)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write rendered template",
			slog.String("template", name),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// HasTemplate reports whether name was parsed.
func (r *TemplateRenderer) HasTemplate(name string) bool {
	return r.t.Lookup(name) != nil
}

func (r *TemplateRenderer) funcs() template.FuncMap {
	return template.FuncMap{
		// page executes a template chosen at runtime, which html/template cannot do directly.
		"page": func(name string, data any) (template.HTML, error) {
			if r.t == nil || r.t.Lookup(name) == nil {
				return "", fmt.Errorf("unknown page template %q", name)
			}
			var buf bytes.Buffer
			if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
				return "", err
			}
			//nolint:gosec // output of html/template is already escaped
			return template.HTML(buf.String()), nil
		},
		"stateLabel": stateLabel,
		"stateClass": func(s model.IntegrationState) string { return "status-" + string(s) },
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("2006-01-02 15:04 UTC")
		},
		"initial": func(s string) string {
			s = strings.TrimSpace(s)
			if s == "" {
				return "?"
			}
			return strings.ToUpper(string([]rune(s)[0]))
		},
	}
}

func stateLabel(s model.IntegrationState) string {
	switch s {
	case model.IntegrationConnected:
		return "Active"
	case model.IntegrationDegraded:
		return "Degraded"
	default:
		return "Inactive"
	}
}
