package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"finboard/internal/audit/domain"
)

// KafkaEmitter fans login attempts out to a Kafka topic using segmentio/kafka-go.
// The emission is fire-and-forget: it has no bearing on the request outcome.
type KafkaEmitter struct {
	writer *kafka.Writer
}

type attemptEvent struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	UserID     string    `json:"user_id,omitempty"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	Success    bool      `json:"success"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewKafkaEmitter creates an emitter writing to the given topic.
// Returns nil when brokers or topic are unset (fan-out disabled). Call Close when shutting down.
func NewKafkaEmitter(brokers []string, topic string) *KafkaEmitter {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaEmitter{writer: writer}
}

// Emit serializes the attempt as JSON and writes it in a goroutine with a
// short timeout so slow Kafka never blocks a login request. Failures are logged.
func (e *KafkaEmitter) Emit(ctx context.Context, a *domain.LoginAttempt) {
	if e == nil || e.writer == nil || a == nil {
		return
	}
	payload, err := json.Marshal(attemptEvent{
		ID: a.ID, Identifier: a.Identifier, UserID: a.UserID,
		IPAddress: a.IPAddress, UserAgent: a.UserAgent,
		Success: a.Success, Reason: a.Reason, CreatedAt: a.CreatedAt,
	})
	if err != nil {
		log.Printf("audit: kafka marshal failed: %v", err)
		return
	}
	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.writer.WriteMessages(writeCtx, kafka.Message{Value: payload}); err != nil {
			log.Printf("audit: kafka emit failed: %v", err)
		}
	}()
}

// Close closes the Kafka writer. Safe to call multiple times or on nil.
func (e *KafkaEmitter) Close() error {
	if e == nil || e.writer == nil {
		return nil
	}
	return e.writer.Close()
}
