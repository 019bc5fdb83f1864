package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"ms-nft-ticketing/internal/models"
)

// Producer is the change feed the core publishes to. External consumers
// (cache invalidation, notifications) subscribe on their own; the core
// never reads these topics back.
type Producer struct {
	Writer  *kafka.Writer
	Topics  TopicSet
	enabled bool
}

type TopicSet struct {
	TicketPurchased string
	TicketCheckedIn string
	EventUpdated    string
	NFTMinted       string
}

func NewProducer(brokers []string, topics TopicSet, enabled bool) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer, Topics: topics, enabled: enabled}
}

// Publish is a no-op when the feed is disabled by config.
func (p *Producer) Publish(topic, key string, value []byte) error {
	if !p.enabled {
		return nil
	}
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

func (p *Producer) publishJSON(topic, key string, v interface{}) error {
	msgBytes, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Publish(topic, key, msgBytes)
}

// PublishTicketPurchased streams the purchase to the change feed
func (p *Producer) PublishTicketPurchased(ticket models.Ticket) error {
	return p.publishJSON(p.Topics.TicketPurchased, ticket.EventID, ticket)
}

// PublishTicketCheckedIn streams the attendance record to the change feed
func (p *Producer) PublishTicketCheckedIn(record models.AttendanceRecord) error {
	return p.publishJSON(p.Topics.TicketCheckedIn, record.EventID, record)
}

// PublishEventUpdated streams event mutations (edits, publish, counter bumps)
func (p *Producer) PublishEventUpdated(event models.Event) error {
	return p.publishJSON(p.Topics.EventUpdated, event.ID, event)
}

// PublishNFTMinted streams a successful mint
func (p *Producer) PublishNFTMinted(record models.AttendanceRecord) error {
	return p.publishJSON(p.Topics.NFTMinted, record.AttendeeID, record)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
