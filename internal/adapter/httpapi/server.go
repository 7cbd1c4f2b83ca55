// Package httpapi exposes the storefront stores as a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/listing"
	"github.com/example/storefront/internal/usecase"
)

type Server struct {
	Router  *mux.Router
	Cart    *cart.Store
	Catalog *catalog.Store

	// BaseContext scopes background refetches started by requests.
	BaseContext context.Context
}

func NewServer(ctx context.Context, c *cart.Store, cat *catalog.Store) *Server {
	s := &Server{Router: mux.NewRouter(), Cart: c, Catalog: cat, BaseContext: ctx}
	api := s.Router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)
	api.HandleFunc("/catalog/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/products", s.handleProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}", s.handleProduct).Methods(http.MethodGet)
	api.HandleFunc("/cart", s.handleCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", s.handleClearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", s.handleAddItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id:[0-9]+}", s.handleSetQuantity).Methods(http.MethodPut)
	api.HandleFunc("/cart/items/{id:[0-9]+}", s.handleRemoveItem).Methods(http.MethodDelete)
	s.Router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.Router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "")
	})
	s.Router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})
	return s
}

// Handler returns the router wrapped in request-id and logging middleware.
func (s *Server) Handler() http.Handler {
	return WithRequestID(WithLogging(s.Router))
}

type catalogView struct {
	Status     catalog.Status  `json:"status"`
	Error      string          `json:"error,omitempty"`
	ItemCount  int             `json:"itemCount"`
	Categories []string        `json:"categories"`
	Detail     *catalog.Detail `json:"detail"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	st := s.Catalog.Snapshot()
	writeJSON(w, http.StatusOK, catalogView{
		Status:     st.Status,
		Error:      st.Error,
		ItemCount:  len(st.Items),
		Categories: st.Categories,
		Detail:     st.Detail,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	ctx := s.BaseContext
	if ctx == nil {
		ctx = context.Background()
	}
	s.Catalog.FetchListAsync(ctx)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": string(catalog.StatusLoading)})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c := listing.Criteria{
		SearchText: q.Get("search"),
		Category:   q.Get("category"),
	}
	if c.Category == "" {
		c.Category = listing.CategoryAll
	}
	var err error
	if c.MinPrice, err = optionalFloat(q.Get("minPrice")); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "minPrice must be a number")
		return
	}
	if c.MaxPrice, err = optionalFloat(q.Get("maxPrice")); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "maxPrice must be a number")
		return
	}
	page := atoiDefault(q.Get("page"), 1)
	pageSize := atoiDefault(q.Get("pageSize"), listing.DefaultPageSize)
	writeJSON(w, http.StatusOK, usecase.BrowseProducts{Catalog: s.Catalog}.Execute(c, page, pageSize))
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, loaded := usecase.ViewProduct{Catalog: s.Catalog}.Execute(r.Context(), id)
	switch {
	case !loaded:
		// a newer detail request owns the slot
		writeJSON(w, http.StatusAccepted, map[string]string{"status": string(catalog.StatusLoading)})
	case d.Product == nil:
		writeJSONError(w, http.StatusBadGateway, "catalog_error", d.Error)
	default:
		writeJSON(w, http.StatusOK, d.Product)
	}
}

type cartView struct {
	Items []domain.CartEntry `json:"items"`
	Count int                `json:"count"`
	Total string             `json:"total"`
}

func (s *Server) writeCart(w http.ResponseWriter, status int) {
	writeJSON(w, status, cartView{
		Items: s.Cart.Entries(),
		Count: s.Cart.Count(),
		Total: s.Cart.Total().StringFixed(2),
	})
}

func (s *Server) handleCart(w http.ResponseWriter, _ *http.Request) {
	s.writeCart(w, http.StatusOK)
}

func (s *Server) handleClearCart(w http.ResponseWriter, _ *http.Request) {
	s.Cart.Clear()
	s.writeCart(w, http.StatusOK)
}

type addItemReq struct {
	ID int64 `json:"id"`
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "id is required")
		return
	}
	if _, err := (usecase.AddToCart{Cart: s.Cart, Catalog: s.Catalog}).Execute(req.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "not_found", "product is not loaded in the catalog")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	s.writeCart(w, http.StatusOK)
}

type setQuantityReq struct {
	Qty *int `json:"qty"`
}

func (s *Server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req setQuantityReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Qty == nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "qty is required")
		return
	}
	s.Cart.SetQuantity(id, *req.Qty)
	s.writeCart(w, http.StatusOK)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.Cart.Remove(id)
	s.writeCart(w, http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "invalid id")
		return 0, false
	}
	return id, true
}

func optionalFloat(v string) (*float64, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func atoiDefault(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
