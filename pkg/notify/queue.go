package notify

import (
	"context"
	"fmt"
)

// queueSender abstracts provider-specific queue senders.
type queueSender interface {
	Send(ctx context.Context, evt Event) error
}

// queueMirror dispatches alert events to a cloud queue provider.
type queueMirror struct {
	id       string
	typ      string
	provider string
	sender   queueSender
	log      Logger
}

// newQueueMirror creates a queue mirror for the configured provider.
func newQueueMirror(ctx context.Context, cfg ChannelConfig, log Logger) (Mirror, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("channel %q missing queue configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var (
		sender queueSender
		err    error
	)

	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newAWSSQSSender(ctx, cfg.Queue.SQS, log)
	case QueueProviderAWSSNS:
		sender, err = newAWSSNSSender(ctx, cfg.Queue.SNS, log)
	case QueueProviderGCP:
		sender, err = newGCPPubSubSender(ctx, cfg.Queue.GCP, log)
	case QueueProviderAzure:
		err = fmt.Errorf("queue provider %q not implemented", cfg.Queue.Provider)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queueMirror{
		id:       cfg.ID,
		typ:      cfg.Type,
		provider: cfg.Queue.Provider,
		sender:   sender,
		log:      ensureLogger(log),
	}, nil
}

func (m *queueMirror) ID() string   { return m.id }
func (m *queueMirror) Type() string { return m.typ }

// Publish forwards the event to the configured queue provider.
func (m *queueMirror) Publish(ctx context.Context, evt Event) error {
	if err := m.sender.Send(ctx, evt); err != nil {
		return fmt.Errorf("queue provider %s send failed: %w", m.provider, err)
	}
	return nil
}
