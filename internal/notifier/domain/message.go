package domain

import "github.com/colabsdev/colabs-be/internal/events"

// EventMessage pairs a parsed event envelope with its RabbitMQ delivery tag
// so workers can ACK or NACK after processing.
type EventMessage struct {
	Envelope    events.Envelope
	DeliveryTag uint64
}
