package queue

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

type recordingAcker struct {
	acked   []uint64
	nacked  []uint64
	requeue bool
}

func (a *recordingAcker) Ack(tag uint64, _ bool) error {
	a.acked = append(a.acked, tag)
	return nil
}

func (a *recordingAcker) Nack(tag uint64, _ bool, requeue bool) error {
	a.nacked = append(a.nacked, tag)
	a.requeue = requeue
	return nil
}

func (a *recordingAcker) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestMessage_Settlement(t *testing.T) {
	t.Parallel()

	acker := &recordingAcker{}
	job := NewJournalReflectionJob("device", "entry")

	msg := newMessage(job, amqp.Delivery{Acknowledger: acker, DeliveryTag: 7})
	if msg.GetJob() != job {
		t.Fatal("GetJob should return the decoded job")
	}
	if err := msg.Ack(); err != nil {
		t.Fatalf("Ack() error = %v", err)
	}
	if len(acker.acked) != 1 || acker.acked[0] != 7 {
		t.Errorf("acked tags = %v, want [7]", acker.acked)
	}

	retry := newMessage(job, amqp.Delivery{Acknowledger: acker, DeliveryTag: 8})
	if err := retry.Nack(true); err != nil {
		t.Fatalf("Nack() error = %v", err)
	}
	if len(acker.nacked) != 1 || acker.nacked[0] != 8 || !acker.requeue {
		t.Errorf("nacked tags = %v requeue = %v, want [8] true", acker.nacked, acker.requeue)
	}
}

func TestMessage_WithoutAcknowledger(t *testing.T) {
	t.Parallel()

	msg := newMessage(NewJournalReflectionJob("device", "entry"), amqp.Delivery{})
	if err := msg.Ack(); err == nil {
		t.Error("expected an error settling a delivery with no acknowledger")
	}
}
