package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Builder creates a Mirror from a channel config entry.
type Builder func(ctx context.Context, cfg ChannelConfig, log Logger) (Mirror, error)

// Registry maps channel types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	MirrorFor(ctx context.Context, cfg ChannelConfig, log Logger) (Mirror, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{
		builders: make(map[string]Builder),
	}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a channel type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// MirrorFor returns the mirror built for the provided config.
func (r *registry) MirrorFor(ctx context.Context, cfg ChannelConfig, log Logger) (Mirror, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("channel %q has no type configured", cfg.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no mirror registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg, log)
}

// DefaultRegistry wires up the known mirror channel types.
func DefaultRegistry() Registry {
	builders := map[string]Builder{
		TypeQueue: newQueueMirror,
	}
	return NewRegistry(builders)
}

// BuildMirrors instantiates mirrors for the configs using the registry.
func BuildMirrors(ctx context.Context, reg Registry, cfgs []ChannelConfig, log Logger) ([]Mirror, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	log = ensureLogger(log)

	var mirrors []Mirror
	for _, cfg := range cfgs {
		m, err := reg.MirrorFor(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		mirrors = append(mirrors, m)
	}
	return mirrors, nil
}
