package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"booking/internal/config"
	"booking/internal/events"
)

// NewEventPublisher builds the booking event publisher selected by cfg.Broker.
func NewEventPublisher(cfg config.EventsConfig, log logrus.FieldLogger) (events.Publisher, error) {
	switch cfg.Broker {
	case "", "log":
		return events.NewLogPublisher(log), nil
	case "kafka":
		log.WithFields(logrus.Fields{
			"brokers": cfg.KafkaBrokers,
			"topic":   cfg.KafkaTopic,
		}).Info("publishing booking events to kafka")
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case "rabbitmq":
		publisher, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		log.WithField("exchange", cfg.RabbitMQExchange).Info("publishing booking events to rabbitmq")
		return publisher, nil
	default:
		return nil, fmt.Errorf("unsupported event broker %q", cfg.Broker)
	}
}
