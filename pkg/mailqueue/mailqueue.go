// Package mailqueue moves outbound mail through RabbitMQ so a slow or
// failing SMTP relay never blocks request handling. Producers publish mail
// jobs; a consumer goroutine drains the queue and hands each job to a
// Mailer.
package mailqueue

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"

	"gopress/pkg/mail"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient creates a new mail queue client. It connects to RabbitMQ,
// opens a channel and declares the durable mail queue upfront.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable (persists messages across broker restarts)
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	log.Printf("RabbitMQ client connected and queue %s declared.", cfg.Queue)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during mail queue close: %v", errs)
	}
	return nil
}

// PublishMail enqueues one mail job. The message is marshaled to JSON and
// published persistently so a broker restart does not drop it.
func (c *Client) PublishMail(msg mail.Message) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mail message to JSON: %w", err)
	}

	err = c.channel.Publish(
		"",      // exchange: default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish mail message: %w", err)
	}

	log.Printf(" [x] Enqueued mail: %s", msg.Subject)
	return nil
}

// ConsumeMail drains the mail queue, delivering each job through mailer.
// Jobs are acknowledged only after successful delivery; failed deliveries
// are nacked back onto the queue.
func (c *Client) ConsumeMail(mailer mail.Mailer) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := c.channel.QueueDeclare(
		c.queue, // name
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue for consuming: %w", err)
	}

	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack: false, we acknowledge after delivery
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for mail jobs on %s", queue.Name)

	go func() {
		for d := range msgs {
			var msg mail.Message
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				log.Printf("Dropping malformed mail job %d: %v", d.DeliveryTag, err)
				// Malformed jobs can never succeed; don't requeue them.
				if nackErr := d.Nack(false, false); nackErr != nil {
					log.Printf("Error nacking message %d: %v", d.DeliveryTag, nackErr)
				}
				continue
			}

			if err := mailer.Send(msg); err != nil {
				log.Printf("Error delivering mail job %d: %v", d.DeliveryTag, err)
				if requeueErr := d.Nack(false, true); requeueErr != nil {
					log.Printf("Error nacking message %d: %v", d.DeliveryTag, requeueErr)
				}
				continue
			}

			if ackErr := d.Ack(false); ackErr != nil {
				log.Printf("Error acking message %d: %v", d.DeliveryTag, ackErr)
			}
		}
	}()

	return nil
}
