package registry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vvangelov/brregservice/internal/storage"
)

// statusUnknownNumber is the status the registry puts in the body for numbers it does
// not know.
const statusUnknownNumber = 400

type entity struct {
	Status              interface{} `json:"status"`
	Organisasjonsnummer *string     `json:"organisasjonsnummer"`
	Navn                *string     `json:"navn"`
	Forretningsadresse  *address    `json:"forretningsadresse"`
}

type address struct {
	Adresse       *string `json:"adresse"`
	Kommunenummer *string `json:"kommunenummer"`
	Kommune       *string `json:"kommune"`
	Land          *string `json:"land"`
	Postnummer    *string `json:"postnummer"`
}

func (a *address) format() string {
	return fmt.Sprintf("%s %s %s %s",
		value(a.Adresse),
		value(a.Kommunenummer),
		value(a.Kommune),
		value(a.Land),
	)
}

// unknownNumber compares status numerically, so 400, 400.0 and "400" all match.
func unknownNumber(status interface{}) bool {
	switch v := status.(type) {
	case float64:
		return v == statusUnknownNumber
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil && f == statusUnknownNumber
	}
	return false
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Normalize parses a registry body. An unknown-number answer yields found == false and
// no error. Number, name, business address and postal code are required.
func Normalize(body []byte) (storage.Organization, bool, error) {
	e := &entity{}
	if err := json.Unmarshal(body, e); err != nil {
		return storage.Organization{}, false, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if unknownNumber(e.Status) {
		return storage.Organization{}, false, nil
	}
	switch {
	case e.Organisasjonsnummer == nil:
		return storage.Organization{}, false, fmt.Errorf("%w: missing organisasjonsnummer", ErrMalformedResponse)
	case e.Navn == nil:
		return storage.Organization{}, false, fmt.Errorf("%w: missing navn", ErrMalformedResponse)
	case e.Forretningsadresse == nil:
		return storage.Organization{}, false, fmt.Errorf("%w: missing forretningsadresse", ErrMalformedResponse)
	case e.Forretningsadresse.Postnummer == nil:
		return storage.Organization{}, false, fmt.Errorf("%w: missing forretningsadresse.postnummer", ErrMalformedResponse)
	}
	return storage.Organization{
		Number:     *e.Organisasjonsnummer,
		Name:       *e.Navn,
		Address:    e.Forretningsadresse.format(),
		PostalCode: *e.Forretningsadresse.Postnummer,
	}, true, nil
}
