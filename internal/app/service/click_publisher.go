package service

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/sifan077/SnipURL/internal/app/model"
)

// ClickPublisher publishes click events to NATS JetStream.
type ClickPublisher struct {
	js nats.JetStreamContext
}

// NewClickPublisher creates a new click event publisher.
func NewClickPublisher(js nats.JetStreamContext) *ClickPublisher {
	return &ClickPublisher{js: js}
}

// Publish sends a click event to the stream.
func (p *ClickPublisher) Publish(event model.ClickEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.ClickStreamSubject, data)
	return err
}
