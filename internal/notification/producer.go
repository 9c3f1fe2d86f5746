package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/consensuslabs/pavilion-mint/internal/logger"
	"github.com/consensuslabs/pavilion-mint/internal/mint"
)

// sender is the part of pulsar.Producer the mint producer uses
type sender interface {
	Send(ctx context.Context, msg *pulsar.ProducerMessage) (pulsar.MessageID, error)
	Close()
}

// MintProducer publishes mint session events to Pulsar
type MintProducer struct {
	client   pulsar.Client
	producer sender
	topic    string
	logger   logger.Logger
}

// NewPulsarClient connects to the broker in config
func NewPulsarClient(config *ServiceConfig) (pulsar.Client, error) {
	clientOptions := pulsar.ClientOptions{
		URL:               config.PulsarURL,
		OperationTimeout:  config.OperationTimeout,
		ConnectionTimeout: config.ConnectionTimeout,
	}
	if config.AuthToken != "" {
		clientOptions.Authentication = pulsar.NewAuthenticationToken(config.AuthToken)
	}

	client, err := pulsar.NewClient(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pulsar client: %w", err)
	}
	return client, nil
}

// NewMintProducer creates a producer on the mint events topic. The client is
// closed together with the producer.
func NewMintProducer(client pulsar.Client, config *ServiceConfig, logger logger.Logger) (*MintProducer, error) {
	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic:                   config.MintEventsTopic,
		SendTimeout:             30 * time.Second,
		MaxPendingMessages:      100,
		BatchingMaxPublishDelay: 10 * time.Millisecond,
		BatchingMaxMessages:     1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	p := newMintProducer(producer, config.MintEventsTopic, logger)
	p.client = client
	return p, nil
}

func newMintProducer(producer sender, topic string, logger logger.Logger) *MintProducer {
	return &MintProducer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish implements mint.Publisher
func (p *MintProducer) Publish(ctx context.Context, event mint.Event) error {
	msg, err := createProducerMessage(event)
	if err != nil {
		return fmt.Errorf("failed to create producer message: %w", err)
	}

	if _, err := p.producer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.LogDebug("Published mint event", map[string]interface{}{
		"event_type": event.Type,
		"session_id": event.SessionID,
		"state":      event.State,
		"topic":      p.topic,
	})
	return nil
}

// Close closes the producer and the client it was created from
func (p *MintProducer) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	if p.client != nil {
		p.client.Close()
	}
	return nil
}

var _ mint.Publisher = (*MintProducer)(nil)
