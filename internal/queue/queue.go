package queue

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/scoutpost/outreach-backend/internal/model"
)

const campaignEventsQueue = "campaign_events"

// Publisher pushes campaign lifecycle events onto RabbitMQ.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher dials RabbitMQ and declares the durable events queue.
func NewPublisher(url string) (*Publisher, error) {
	conn, ch, err := dial(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch}, nil
}

func (p *Publisher) PublishCampaignEvent(ev model.CampaignEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.channel.Publish(
		"",                  // exchange
		campaignEventsQueue, // routing key
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Consumer reads campaign events and hands them to a handler. A handler
// error requeues the delivery once; redelivered failures are dropped.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewConsumer(url string) (*Consumer, error) {
	conn, ch, err := dial(url)
	if err != nil {
		return nil, err
	}
	return &Consumer{conn: conn, channel: ch}, nil
}

// Consume blocks, dispatching events to handler until the channel closes.
func (c *Consumer) Consume(handler func(ev model.CampaignEvent) error) error {
	msgs, err := c.channel.Consume(
		campaignEventsQueue,
		"",    // consumer tag
		false, // autoAck off for reliability
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	for d := range msgs {
		var ev model.CampaignEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			logrus.WithError(err).Warn("invalid campaign event, dropping")
			d.Ack(false)
			continue
		}

		if err := handler(ev); err != nil {
			logrus.WithError(err).WithField("campaign_id", ev.CampaignID).Warn("event handler failed")
			if !d.Redelivered {
				d.Nack(false, true) // one requeue
				continue
			}
		}
		d.Ack(false)
	}
	return nil
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

func dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		campaignEventsQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare queue: %w", err)
	}

	return conn, ch, nil
}
