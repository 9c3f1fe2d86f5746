package mint

import (
	"context"
	"time"
)

// Event types
const (
	EventSessionOpened = "mint.session.opened"
	EventTransition    = "mint.session.transition"
	EventMinted        = "mint.session.minted"
	EventFailed        = "mint.session.failed"
)

// Event describes a session change for downstream consumers
type Event struct {
	Type          string    `json:"type"`
	SessionID     string    `json:"sessionId"`
	WalletAddress string    `json:"walletAddress"`
	From          State     `json:"from,omitempty"`
	State         State     `json:"state"`
	Stage         Stage     `json:"stage,omitempty"`
	AssetID       string    `json:"assetId,omitempty"`
	CID           string    `json:"cid,omitempty"`
	MetadataURL   string    `json:"metadataUrl,omitempty"`
	TxHash        string    `json:"txHash,omitempty"`
	Error         string    `json:"error,omitempty"`
	At            time.Time `json:"at"`
}

func newEvent(s *Session, from State, at time.Time) Event {
	eventType := EventTransition
	switch s.State {
	case StateMinted:
		eventType = EventMinted
	case StateFailed:
		eventType = EventFailed
	case StateIdle:
		eventType = EventSessionOpened
	}
	return Event{
		Type:          eventType,
		SessionID:     s.ID.String(),
		WalletAddress: s.WalletAddress,
		From:          from,
		State:         s.State,
		Stage:         s.FailedStage,
		AssetID:       s.AssetID,
		CID:           s.Storage.CID,
		MetadataURL:   s.Storage.MetadataURL,
		TxHash:        s.Call.TxHash,
		Error:         s.Error,
		At:            at,
	}
}

// NoopPublisher drops every event
type NoopPublisher struct{}

// Publish implements Publisher
func (NoopPublisher) Publish(context.Context, Event) error {
	return nil
}
