package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange для событий маркетплейса.
const Exchange = "marketplace.events"

// Очереди и ключи маршрутизации событий документов.
const (
	QueueDocumentDecisions = "document.decisions"
	KeyDocumentApproved    = "document.approved"
	KeyDocumentRejected    = "document.rejected"
)

type QueueConfig struct {
	QueueName   string
	RoutingKeys []string
}

// GetNotificationQueues возвращает очереди, которые слушает notification-sender.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueDocumentDecisions, RoutingKeys: []string{KeyDocumentApproved, KeyDocumentRejected}},
	}
}

// SetupChannel объявляет exchange и очереди и возвращает готовый канал.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		for _, key := range q.RoutingKeys {
			err = ch.QueueBind(
				q.QueueName,
				key,
				Exchange,
				false,
				nil,
			)
			if err != nil {
				return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, key, err)
			}
		}
	}

	return ch, nil
}
