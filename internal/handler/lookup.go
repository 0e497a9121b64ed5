package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vvangelov/brregservice/internal/logging"
	"github.com/vvangelov/brregservice/internal/lookup"
	"github.com/vvangelov/brregservice/internal/storage"
)

// LookupResponse is the envelope answered by Lookup. Exactly one of Data and Errors is
// set, except on a storage failure where the looked up record is returned with an
// error message.
type LookupResponse struct {
	Data   *storage.Organization `json:"data"`
	Errors *string               `json:"errors"`
}

func envelope(data *storage.Organization, msg string) *LookupResponse {
	res := &LookupResponse{Data: data}
	if msg != "" {
		res.Errors = &msg
	}
	return res
}

// LookupStatus maps an error returned by a lookup to the response status and the
// message put in the envelope. Error details never reach the message.
func (m Messages) LookupStatus(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, lookup.ErrNotFound):
		return http.StatusNotFound, m.OrganizationMissing
	case errors.Is(err, lookup.ErrTransport):
		return http.StatusBadGateway, m.RegistryUnavailable
	case errors.Is(err, lookup.ErrMalformedResponse):
		return http.StatusBadGateway, m.UnexpectedResponse
	default:
		return http.StatusInternalServerError, m.InternalProblem
	}
}

// Lookup queries the registry for the organization number, caches the result and
// answers with the envelope.
func (h *Handler) Lookup(r *http.Request) (int, interface{}, error) {
	ctx := r.Context()
	p, err := h.params(r)
	if err != nil {
		logging.Info(ctx, logging.Data{"number": p.OrganizationNumber}, "invalid organization number")
		return http.StatusBadRequest, envelope(nil, h.messages.InvalidFormat), fmt.Errorf("%w %s", ErrInvalidRequest, err)
	}
	org, err := h.lookup.Lookup(ctx, p.OrganizationNumber)
	status, msg := h.messages.LookupStatus(err)
	switch status {
	case http.StatusOK:
		return status, envelope(org, ""), nil
	case http.StatusNotFound:
		return status, envelope(nil, msg), ErrNotFound
	case http.StatusBadGateway:
		logging.Error(ctx, err, logging.Data{"number": p.OrganizationNumber}, "registry lookup failed")
		return status, envelope(nil, msg), err
	default:
		logging.Error(ctx, err, logging.Data{"number": p.OrganizationNumber}, "error looking up organization")
		return status, envelope(org, msg), ErrInternal
	}
}
