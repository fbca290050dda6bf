package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/kondate/internal/apperr"
	"github.com/starford/kondate/internal/catalog"
	"github.com/starford/kondate/internal/oracle"
	"github.com/starford/kondate/internal/recipe"
)

const maxBodyBytes = 1 << 20

// pathParam returns the named route parameter decoded exactly once. chi
// matches against RawPath when the request carried escapes that Path cannot
// represent (such as %2F), leaving the parameter encoded; otherwise it is
// already decoded and must not be unescaped again.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

// Handler holds API route handlers.
type Handler struct {
	svc *recipe.Service
	cat catalog.Catalog
}

// NewHandler creates a new Handler. cat may be nil when the catalog is off.
func NewHandler(svc *recipe.Service, cat catalog.Catalog) *Handler {
	return &Handler{svc: svc, cat: cat}
}

// writeServiceError maps service errors onto status codes.
func writeServiceError(w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append(attrs, slog.String("error", err.Error()))
	switch {
	case errors.Is(err, oracle.ErrParse):
		slog.Warn(msg, attrs...)
		writeJSON(w, http.StatusBadGateway, errorBody("unparseable oracle reply"))
	case errors.Is(err, oracle.ErrOracle):
		slog.Warn(msg, attrs...)
		writeJSON(w, http.StatusBadGateway, errorBody("oracle unavailable"))
	case errors.Is(err, apperr.ErrCorruptData):
		slog.Error(msg, attrs...)
		writeJSON(w, http.StatusInternalServerError, errorBody("corrupt cache entry"))
	default:
		slog.Error(msg, attrs...)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// Overview handles POST /overview.
//
//	@Summary		Suggest recipes for a list of ingredients
//	@Tags			recipes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OverviewRequest	true	"Ingredients"
//	@Success		200		{array}		RecipeOverview
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Router			/overview [post]
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req OverviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	req.normalize()
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	overviews, err := h.svc.Suggest(r.Context(), req.Ingredients)
	if err != nil {
		writeServiceError(w, "suggest failed", err)
		return
	}
	if overviews == nil {
		overviews = []RecipeOverview{}
	}
	writeJSON(w, http.StatusOK, overviews)
}

// Details handles GET /details/{recipe_name}.
//
//	@Summary		Get a recipe, generating and caching it on first request
//	@Tags			recipes
//	@Produce		json
//	@Param			recipe_name	path		string	true	"Recipe name"
//	@Success		200			{object}	RecipeDetail	"usual layout; the stored document is returned as-is"
//	@Failure		500			{object}	errResponse
//	@Failure		502			{object}	errResponse
//	@Router			/details/{recipe_name} [get]
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "recipe_name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("recipe name is required"))
		return
	}

	doc, err := h.svc.GetDetail(r.Context(), name)
	if err != nil {
		writeServiceError(w, "get detail failed", err, slog.String("name", name))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Catalog handles GET /catalog.
//
//	@Summary		List cached recipes
//	@Tags			catalog
//	@Produce		json
//	@Param			q		query		string	false	"Substring of name or description"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	CatalogResponse
//	@Router			/catalog [get]
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.cat.List(limit, offset, q.Get("q"))
	if err != nil {
		slog.Error("list catalog failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, CatalogResponse{Recipes: items, Total: total})
}

// CatalogEntry handles GET /catalog/{key}.
func (h *Handler) CatalogEntry(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	rec, err := h.cat.Get(key)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("get catalog entry failed", slog.String("key", key), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
