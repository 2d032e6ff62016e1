package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/streadway/amqp"

	"report-analytics/models"
)

// MutationHandler consumes report mutation events.
type MutationHandler func(event models.MutationEvent)

// Subscriber consumes report mutation events from the workflow services
// and forwards them to the cache invalidation handler.
type Subscriber struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	done     chan struct{}
}

// NewSubscriber connects to RabbitMQ and binds the invalidation queue to
// the report events exchange.
func NewSubscriber(amqpURL, exchangeName, queueName string) (*Subscriber, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, routingKey := range []string{models.MutationReportCreated, models.MutationStatusChanged} {
		if err := channel.QueueBind(queue.Name, routingKey, exchangeName, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue to %s: %w", routingKey, err)
		}
	}

	return &Subscriber{
		conn:     conn,
		channel:  channel,
		exchange: exchangeName,
		queue:    queue.Name,
		done:     make(chan struct{}),
	}, nil
}

// Start begins consuming mutation events. Malformed payloads still reach
// the handler as an empty event so invalidation can fall back to
// clearing everything rather than missing a mutation.
func (s *Subscriber) Start(handler MutationHandler) error {
	msgs, err := s.channel.Consume(
		s.queue,
		"",    // consumer
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		log.Printf("Mutation subscriber consuming from queue %s", s.queue)
		for {
			select {
			case <-s.done:
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Printf("Mutation subscriber channel closed")
					return
				}
				s.dispatch(msg, handler)
			}
		}
	}()

	return nil
}

func (s *Subscriber) dispatch(msg amqp.Delivery, handler MutationHandler) {
	var event models.MutationEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Failed to decode mutation event (routing key %s): %v", msg.RoutingKey, err)
		handler(models.MutationEvent{})
		return
	}
	if event.Type == "" {
		event.Type = msg.RoutingKey
	}
	if event.Timestamp.IsZero() && !msg.Timestamp.IsZero() {
		event.Timestamp = msg.Timestamp
	}
	handler(event)
}

// Close stops the consumer loop and tears down the connection.
func (s *Subscriber) Close() error {
	close(s.done)

	var firstErr error
	if err := s.channel.Close(); err != nil {
		firstErr = err
	}
	if err := s.conn.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	// Give the consumer goroutine a moment to observe the shutdown.
	time.Sleep(50 * time.Millisecond)
	return firstErr
}
