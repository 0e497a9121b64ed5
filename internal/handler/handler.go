package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator"
	"github.com/gorilla/mux"

	"github.com/vvangelov/brregservice/internal/server"
	"github.com/vvangelov/brregservice/internal/storage"
)

const numberVar = "organizationnumber"

// Lookuper runs the registry lookup and cache upsert for one number.
type Lookuper interface {
	Lookup(ctx context.Context, number string) (*storage.Organization, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	validator *validator.Validate
	lookup    Lookuper
	storage   storage.Storage
	messages  Messages
}

func New(lookup Lookuper, storage storage.Storage, opts ...OptionFunc) *Handler {
	opt := defaultHandlerOptions()
	for _, f := range opts {
		f(opt)
	}
	return &Handler{
		validator: validator.New(),
		lookup:    lookup,
		storage:   storage,
		messages:  opt.messages,
	}
}

// Register mounts the handler routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/v1/organization/{"+numberVar+"}/lookup", server.ToHTTPHandlerFunc(h.Lookup)).Methods(http.MethodPost)
	r.HandleFunc("/v1/organization/{"+numberVar+"}", server.ToHTTPHandlerFunc(h.Retrieve)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", server.ToHTTPHandlerFunc(h.Health)).Methods(http.MethodGet)
}

type organizationParams struct {
	OrganizationNumber string `validate:"required,len=9,number"`
}

func (h *Handler) params(r *http.Request) (*organizationParams, error) {
	p := &organizationParams{OrganizationNumber: mux.Vars(r)[numberVar]}
	if err := h.validator.Struct(p); err != nil {
		return p, err
	}
	return p, nil
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (h *Handler) Health(r *http.Request) (int, interface{}, error) {
	if p, ok := h.storage.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			return server.ErrorToResponse(ErrUnavailable, http.StatusServiceUnavailable)
		}
	}
	return http.StatusOK, &HealthResponse{Status: "ok"}, nil
}
