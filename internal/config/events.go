package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/events"
)

const (
	PublisherKafka = "kafka"
	PublisherMock  = "mock"
)

var ErrNoKafkaBrokers = errors.New("kafka publisher selected but KAFKA_BROKERS is empty")

// EventConfig selects where test.published and session.finished events go
type EventConfig struct {
	Enabled      bool
	Publisher    string
	KafkaBrokers string
	Topic        string
}

// GetKafkaBrokers splits KAFKA_BROKERS, dropping blanks
func (c *EventConfig) GetKafkaBrokers() []string {
	brokers := make([]string, 0)
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// CreateEventPublisher returns the Kafka publisher, or the in-memory one when
// publishing is off or the publisher name is unknown
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, quiz events stay in memory")
		return events.NewMockEventPublisher(logger), nil
	}

	switch c.Publisher {
	case PublisherKafka:
		brokers := c.GetKafkaBrokers()
		if len(brokers) == 0 {
			return nil, ErrNoKafkaBrokers
		}
		logger.Info("Creating Kafka event publisher", "brokers", brokers, "topic", c.Topic)

		publisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: brokers,
			TopicName:    c.Topic,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		return publisher, nil
	case PublisherMock:
		logger.Info("Using in-memory event publisher")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher, quiz events stay in memory", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}
