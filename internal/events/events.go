// Package events announces cached organization changes to other services.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vvangelov/brregservice/internal/storage"
)

const (
	SubjectPrefix = "brreg.organizations"
	// SubjectOrganizationUpserted takes the organization number.
	SubjectOrganizationUpserted = SubjectPrefix + ".%s.upserted"
	SubjectOrganizationsAll     = SubjectPrefix + ".>"

	TypeOrganizationUpserted = "organization.upserted"
)

func OrganizationUpsertedSubject(number string) string {
	return fmt.Sprintf(SubjectOrganizationUpserted, number)
}

type Event struct {
	ID           string               `json:"id"`
	Type         string               `json:"type"`
	OccurredAt   time.Time            `json:"occurred_at"`
	Organization storage.Organization `json:"organization"`
}

func NewOrganizationUpserted(org storage.Organization) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         TypeOrganizationUpserted,
		OccurredAt:   time.Now().UTC(),
		Organization: org,
	}
}

type Publisher interface {
	OrganizationUpserted(ctx context.Context, org storage.Organization) error
}

// Noop drops every event.
type Noop struct{}

func (Noop) OrganizationUpserted(context.Context, storage.Organization) error { return nil }
