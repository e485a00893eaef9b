package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/catalog-console/internal/catalog"
	"github.com/sandeepkv93/catalog-console/internal/http/handler/web"
	"github.com/sandeepkv93/catalog-console/internal/http/middleware"
	"github.com/sandeepkv93/catalog-console/internal/http/response"
	"github.com/sandeepkv93/catalog-console/internal/validation"
)

// ProductHandler serves the catalog page. Each request builds its own page
// model and controller, so concurrent requests never share view state.
type ProductHandler struct {
	products  catalog.ProductService
	validator catalog.FormValidator
	logger    *slog.Logger
	tmpl      *template.Template
}

type validateResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Invalid bool   `json:"invalid"`
	Stale   bool   `json:"stale"`
}

func NewProductHandler(products catalog.ProductService, validator catalog.FormValidator, logger *slog.Logger) (*ProductHandler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(web.Templates, "templates/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &ProductHandler{products: products, validator: validator, logger: logger, tmpl: tmpl}, nil
}

// Assets serves the embedded stylesheet, script and banner images.
func (h *ProductHandler) Assets() http.Handler {
	sub, err := fs.Sub(web.Assets, "assets")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/assets/", http.FileServerFS(sub))
}

func (h *ProductHandler) newController(r *http.Request) (*catalog.Controller, *Page) {
	page := newPage(h.validator.Fields(), middleware.CSRFToken(r.Context()))
	return catalog.NewController(h.products, page, page, h.validator, h.logger), page
}

func (h *ProductHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctrl, page := h.newController(r)
	_ = ctrl.Render(r.Context())
	h.render(w, r, http.StatusOK, page)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid form", nil)
		return
	}
	ctrl, page := h.newController(r)
	page.setValues(map[string]string{
		validation.FieldName:  r.PostFormValue(validation.FieldName),
		validation.FieldPrice: r.PostFormValue(validation.FieldPrice),
		validation.FieldImage: r.PostFormValue(validation.FieldImage),
	})

	_, err := ctrl.Submit(formScope(r))
	switch {
	case err == nil:
		h.render(w, r, http.StatusOK, page)
	case errors.Is(err, catalog.ErrInvalidForm):
		_ = ctrl.Render(r.Context())
		h.render(w, r, http.StatusUnprocessableEntity, page)
	default:
		_ = ctrl.Render(r.Context())
		h.render(w, r, http.StatusBadGateway, page)
	}
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctrl, page := h.newController(r)
	if err := ctrl.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		_ = ctrl.Render(r.Context())
		h.render(w, r, http.StatusBadGateway, page)
		return
	}
	h.render(w, r, http.StatusOK, page)
}

// Remove handles the delete buttons of the rendered cards, which post their
// data-remove value.
func (h *ProductHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid form", nil)
		return
	}
	ctrl, page := h.newController(r)
	handled, err := ctrl.Click(r.Context(), formElement{r: r})
	switch {
	case err != nil:
		_ = ctrl.Render(r.Context())
		h.render(w, r, http.StatusBadGateway, page)
	case !handled:
		_ = ctrl.Render(r.Context())
		h.render(w, r, http.StatusOK, page)
	default:
		h.render(w, r, http.StatusOK, page)
	}
}

func (h *ProductHandler) Validate(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	ctrl, page := h.newController(r)
	page.setValues(map[string]string{field: r.URL.Query().Get("value")})

	res, err := ctrl.Blur(formScope(r), field)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	response.JSON(w, r, http.StatusOK, validateResponse{
		Field:   res.Field,
		Message: res.Message,
		Invalid: res.Invalid(),
		Stale:   res.Stale,
	})
}

func (h *ProductHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctrl, page := h.newController(r)
	ctrl.Clear()
	_ = ctrl.Render(r.Context())
	h.render(w, r, http.StatusOK, page)
}

func (h *ProductHandler) render(w http.ResponseWriter, r *http.Request, status int, page *Page) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, page); err != nil {
		h.logger.ErrorContext(r.Context(), "render catalog page failed", "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to render page", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// formScope keys validation generations by the browser's csrf token, which
// is stable for the life of the session cookie.
func formScope(r *http.Request) context.Context {
	return validation.WithScope(r.Context(), middleware.CSRFToken(r.Context()))
}

// formElement exposes posted form values as element attributes. It has no
// parent: the posted button is the whole tree.
type formElement struct {
	r *http.Request
}

func (e formElement) Attr(name string) (string, bool) {
	if vs, ok := e.r.PostForm[name]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}

func (e formElement) Parent() catalog.Element {
	return nil
}
