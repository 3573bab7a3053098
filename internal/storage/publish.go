package storage

import (
	"encoding/json"

	"chatvault/backend/internal/models"

	"github.com/pkg/errors"
)

// EventsChannel is the Redis Pub/Sub channel carrying every durably
// persisted message event, for external consumers (analytics, audit,
// push relays). Local delivery never depends on it.
const EventsChannel = "chat:events"

// PublishEvent pushes an event envelope onto the firehose channel.
func (s *Service) PublishEvent(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.WithMessage(err, "encode event payload")
	}
	frame, err := json.Marshal(models.Envelope{Event: event, Data: data})
	if err != nil {
		return errors.WithMessage(err, "encode event frame")
	}
	if err := s.Redis.Publish(s.Ctx, EventsChannel, frame).Err(); err != nil {
		return errors.WithMessage(err, "publish event")
	}
	return nil
}
