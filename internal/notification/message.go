package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/consensuslabs/pavilion-mint/internal/mint"
	"github.com/google/uuid"
)

// createProducerMessage wraps a mint event. Messages are keyed by session so
// one session's events stay ordered on a key-shared subscription.
func createProducerMessage(event mint.Event) (*pulsar.ProducerMessage, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event: %w", err)
	}

	eventTime := event.At
	if eventTime.IsZero() {
		eventTime = time.Now()
	}

	properties := map[string]string{
		"event_id":       uuid.NewString(),
		"event_type":     event.Type,
		"wallet_address": event.WalletAddress,
		"state":          string(event.State),
	}
	if event.Stage != "" {
		properties["stage"] = string(event.Stage)
	}

	return &pulsar.ProducerMessage{
		Payload:    data,
		Key:        event.SessionID,
		Properties: properties,
		EventTime:  eventTime,
	}, nil
}
