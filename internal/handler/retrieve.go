package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vvangelov/brregservice/internal/logging"
	"github.com/vvangelov/brregservice/internal/server"
	"github.com/vvangelov/brregservice/internal/storage"
)

type RetrieveResponse struct {
	Number     string `json:"number"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Postnummer string `json:"postnummer"`
}

// Retrieve answers with the cached record, without contacting the registry.
func (h *Handler) Retrieve(r *http.Request) (int, interface{}, error) {
	ctx := r.Context()
	p, err := h.params(r)
	if err != nil {
		return server.ErrorToResponse(fmt.Errorf("%w %s", ErrInvalidRequest, err), http.StatusBadRequest)
	}
	data, err := h.storage.Organization(ctx, p.OrganizationNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return server.ErrorToResponse(ErrNotFound, http.StatusNotFound)
		}
		logging.Error(ctx, err, logging.Data{"number": p.OrganizationNumber}, "error retrieving organization")
		return server.ErrorToResponse(ErrInternal, http.StatusInternalServerError)
	}
	return http.StatusOK, &RetrieveResponse{
		Number:     data.Number.String,
		Name:       data.Name.String,
		Address:    data.Address.String,
		Postnummer: data.Postnummer.String,
	}, nil
}
