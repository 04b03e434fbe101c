package watch

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// WorkItem is one per-doctor check emitted to the task queue in distributed
// mode. Keying by doctor id keeps all checks for one doctor on one partition.
type WorkItem struct {
	ID        string    `json:"id"`
	CycleID   string    `json:"cycle_id"`
	DoctorID  int64     `json:"doctor_id"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Emitter publishes work items for the worker fleet.
type Emitter interface {
	Emit(ctx context.Context, item WorkItem) error
}

// Producer writes work items to the check topic.
type Producer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: writer, log: log}
}

// Emit publishes one work item.
func (p *Producer) Emit(ctx context.Context, item WorkItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(item.DoctorID, 10)),
		Value: payload,
	})
}

func (p *Producer) Close() error { return p.writer.Close() }

// NewReader builds the consumer-group reader workers drain the topic with.
func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  group,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
}
