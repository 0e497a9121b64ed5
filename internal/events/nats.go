package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/vvangelov/brregservice/internal"
	"github.com/vvangelov/brregservice/internal/logging"
	"github.com/vvangelov/brregservice/internal/storage"
)

type NATSPublisher struct {
	nc *nats.Conn
}

// Connect dials url and returns a publisher owning the connection.
func Connect(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name(internal.ServiceName),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logging.Error(context.Background(), err, nil, "nats error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Error(context.Background(), err, nil, "nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logging.Info(context.Background(), nil, "nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewNATSPublisher(nc), nil
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) OrganizationUpserted(ctx context.Context, org storage.Organization) error {
	data, err := json.Marshal(NewOrganizationUpserted(org))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.nc.Publish(OrganizationUpsertedSubject(org.Number), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		logging.Error(context.Background(), err, nil, "failed to drain nats connection")
	}
}
