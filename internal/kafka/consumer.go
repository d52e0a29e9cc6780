package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"
	"sla-monitor/internal/logging"
	"sla-monitor/internal/models"
	"sla-monitor/internal/sla"
)

// taskEvent is the shape of one ERP task lifecycle message.
type taskEvent struct {
	TaskID   int64  `json:"task_id"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// Consumer listens for task lifecycle events and triggers an immediate
// monitoring cycle when a task enters or stays in an active status, so
// SLA checks do not wait for the next timer tick.
type Consumer struct {
	reader *kafka.Reader
	engine *sla.Engine
	logger *logging.Logger
}

func NewConsumer(brokers []string, topic, groupID string, engine *sla.Engine, logger *logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, engine: engine, logger: logger}
}

// Start consumes until ctx is cancelled or the reader is closed.
func (c *Consumer) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Kafka consumer started on topic %s", c.reader.Config().Topic)

		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, kafka.ErrGroupClosed) {
					c.logger.Infof("Kafka consumer stopped")
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				continue
			}

			var event taskEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				c.logger.Errorf("Unmarshal task event failed: %v", err)
				continue
			}
			if event.TaskID < 1 {
				c.logger.Errorf("Invalid task event: missing task_id")
				continue
			}
			if !models.TaskStatus(event.Status).IsActive() {
				c.logger.Debugf("Task %d event status %s not monitored, skipping", event.TaskID, event.Status)
				continue
			}

			if _, err := c.engine.RunCycle(ctx); err != nil {
				if errors.Is(err, sla.ErrCycleInProgress) {
					c.logger.Debugf("Cycle already running, task %d event folded into it", event.TaskID)
					continue
				}
				c.logger.Errorf("Event-triggered cycle failed: %v", err)
			}
		}
	}()
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
