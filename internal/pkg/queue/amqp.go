package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPSettings represents the settings that we require in order to connect to
// the AMQP broker.
type AMQPSettings struct {
	URI          string
	ExchangeName string
	QueueName    string
	RoutingKey   string
	Prefetch     int
}

// AMQP publishes and consumes enrichment jobs over an AMQP broker. It
// declares a durable direct exchange and a durable queue bound to it, so
// either side of the connection can start first.
type AMQP struct {
	settings AMQPSettings
	conn     *amqp.Connection
	channel  *amqp.Channel
	log      *slog.Logger
}

// NewAMQP connects to the broker and declares the exchange and queue.
func NewAMQP(settings AMQPSettings, log *slog.Logger) (*AMQP, error) {
	conn, err := amqp.Dial(settings.URI)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to the AMQP broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to open an AMQP channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		settings.ExchangeName,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to declare the AMQP exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		settings.QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to declare the AMQP queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, settings.RoutingKey, settings.ExchangeName, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to bind the AMQP queue: %w", err)
	}

	return &AMQP{
		settings: settings,
		conn:     conn,
		channel:  channel,
		log:      log,
	}, nil
}

// Enqueue publishes a job with persistent delivery. An error here means the
// broker did not accept the job.
func (a *AMQP) Enqueue(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("unable to marshal the work item: %w", err)
	}

	err = a.channel.PublishWithContext(ctx,
		a.settings.ExchangeName,
		a.settings.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("unable to publish the work item: %w", err)
	}
	return nil
}

// Consume pulls deliveries until the context is canceled. Handler errors
// marked recoverable are nacked with requeue; everything else is acked, since
// redelivering a malformed or permanently failing job cannot help.
func (a *AMQP) Consume(ctx context.Context, handler Handler) error {
	prefetch := a.settings.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := a.channel.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("unable to set the channel QoS: %w", err)
	}

	deliveries, err := a.channel.Consume(
		a.settings.QueueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("unable to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("the AMQP delivery channel was closed")
			}
			a.dispatch(ctx, delivery, handler)
		}
	}
}

func (a *AMQP) dispatch(ctx context.Context, delivery amqp.Delivery, handler Handler) {
	var job Job
	if err := json.Unmarshal(delivery.Body, &job); err != nil {
		a.log.Error("discarding unparseable work item", "error", err)
		_ = delivery.Ack(false)
		return
	}

	err := handler(ctx, job)
	switch {
	case err == nil:
		_ = delivery.Ack(false)
	case IsRecoverable(err):
		a.log.Warn("requeueing work item", "notification_id", job.NotificationID, "error", err)
		_ = delivery.Nack(false, true)
	default:
		a.log.Error("dropping work item", "notification_id", job.NotificationID, "error", err)
		_ = delivery.Ack(false)
	}
}

// Close closes the channel and connection.
func (a *AMQP) Close() {
	if a.channel != nil {
		a.channel.Close()
	}
	if a.conn != nil {
		a.conn.Close()
	}
}
