package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageInterface is a consumed job awaiting settlement. Workers depend on
// it rather than on *Message so they can be tested without a broker.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// Message is a decoded job together with the delivery that carried it.
// Settlement goes through the delivery's own acknowledger, which is the
// consumer channel the job arrived on.
type Message struct {
	Job      *Job
	delivery amqp.Delivery
}

func newMessage(job *Job, d amqp.Delivery) *Message {
	return &Message{Job: job, delivery: d}
}

// Ack settles the delivery as processed.
func (m *Message) Ack() error { return m.delivery.Ack(false) }

// Nack rejects the delivery. Without requeue it is dead-lettered.
func (m *Message) Nack(requeue bool) error { return m.delivery.Nack(false, requeue) }

func (m *Message) GetJob() *Job { return m.Job }

var _ MessageInterface = (*Message)(nil)
