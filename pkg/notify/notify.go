package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Supported mirror channel types.
	TypeQueue = "queue"

	// Supported queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderAzure  = "azure"
	QueueProviderGCP    = "gcp"

	// Event kinds.
	KindDigest = "digest"
	KindAlert  = "alert"
)

// Notification is a single outbound email: destination, subject and a
// rendered HTML document. Built per send, never stored.
type Notification struct {
	Recipient string
	Subject   string
	HTML      string
}

// EmailSender delivers a notification to its recipient.
type EmailSender interface {
	Send(ctx context.Context, n Notification) error
}

// Event is the payload mirrored to queue channels alongside an email.
type Event struct {
	Kind        string         `json:"kind"`
	Keyword     string         `json:"keyword,omitempty"`
	Matches     int            `json:"matches"`
	GeneratedAt time.Time      `json:"generated_at"`
	Articles    []EventArticle `json:"articles"`
}

// EventArticle is the wire form of an article inside an Event.
type EventArticle struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	PubDate string `json:"pub_date,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Mirror publishes alert events to a secondary sink (queue, topic).
type Mirror interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the minimal logging surface the notify package depends on.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) InfoObj(string, string, map[string]any)  {}
func (nopLogger) WarnObj(string, string, map[string]any)  {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}

// Routes is the data-driven keyword routing table: which recipient gets the
// digest, which recipient each keyword alerts, and which mirror channels
// also receive alert events.
type Routes struct {
	Digest   DigestRoute     `json:"digest" yaml:"digest"`
	Keywords []Route         `json:"keywords" yaml:"keywords"`
	Channels []ChannelConfig `json:"channels" yaml:"channels"`
}

// DigestRoute configures the daily digest delivery.
type DigestRoute struct {
	Recipient string `json:"recipient" yaml:"recipient"`
	Language  string `json:"language" yaml:"language"`
}

// Route maps one monitored keyword to its alert recipient. Language, when
// set, overrides the feed language for the keyword-specific search fetch.
type Route struct {
	Keyword   string `json:"keyword" yaml:"keyword"`
	Recipient string `json:"recipient" yaml:"recipient"`
	Language  string `json:"language" yaml:"language"`
}

// ChannelConfig declares one mirror channel.
type ChannelConfig struct {
	ID      string              `json:"id" yaml:"id"`
	Type    string              `json:"type" yaml:"type"`
	Enabled *bool               `json:"enabled" yaml:"enabled"`
	Queue   *QueueChannelConfig `json:"queue" yaml:"queue"`
}

// QueueChannelConfig selects a cloud queue provider.
type QueueChannelConfig struct {
	Provider string                  `json:"provider" yaml:"provider"`
	SQS      *AWSSQSChannelConfig    `json:"sqs" yaml:"sqs"`
	SNS      *AWSSNSChannelConfig    `json:"sns" yaml:"sns"`
	GCP      *GCPPubSubChannelConfig `json:"gcp" yaml:"gcp"`
}

// AWSSQSChannelConfig holds AWS SQS specific settings.
type AWSSQSChannelConfig struct {
	QueueURL        string `json:"uri" yaml:"uri"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// AWSSNSChannelConfig holds AWS SNS specific settings.
type AWSSNSChannelConfig struct {
	TopicARN        string `json:"topic_arn" yaml:"topic_arn"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// GCPPubSubChannelConfig holds the minimal Pub/Sub topic settings.
type GCPPubSubChannelConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// LoadRoutes loads the routing table from a YAML/JSON file. Environment
// references in the file are expanded before decoding, so secrets and
// recipient addresses can stay out of the file itself.
func LoadRoutes(path string) (*Routes, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("routes file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open routes file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	routes, err := parseRoutes(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	return sanitizeAndValidate(routes)
}

// parseRoutes attempts to decode the routes file content.
func parseRoutes(data []byte, ext string) (Routes, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var routes Routes
		err := d.fn(data, &routes)
		if err == nil {
			return routes, nil
		}
		lastErr = fmt.Errorf("decode %s routes: %w", d.name, err)
	}

	if lastErr != nil {
		return Routes{}, lastErr
	}
	return Routes{}, errors.New("routes file format not recognized (expected YAML or JSON)")
}

func sanitizeAndValidate(routes Routes) (*Routes, error) {
	routes.Digest.Recipient = strings.TrimSpace(routes.Digest.Recipient)
	routes.Digest.Language = strings.TrimSpace(routes.Digest.Language)

	if len(routes.Keywords) == 0 {
		return nil, errors.New("routes file declares no keywords")
	}

	seen := make(map[string]struct{}, len(routes.Keywords))
	for i := range routes.Keywords {
		r := &routes.Keywords[i]
		r.Keyword = strings.TrimSpace(r.Keyword)
		r.Recipient = strings.TrimSpace(r.Recipient)
		r.Language = strings.TrimSpace(r.Language)

		if r.Keyword == "" {
			return nil, fmt.Errorf("keywords[%d]: keyword is required", i)
		}
		if r.Recipient == "" {
			return nil, fmt.Errorf("keywords[%d]: recipient is required for keyword %q", i, r.Keyword)
		}
		key := strings.ToLower(r.Keyword)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate keyword %q", r.Keyword)
		}
		seen[key] = struct{}{}
	}

	for i := range routes.Channels {
		cfg := sanitizeChannelConfig(routes.Channels[i])
		if err := validateChannelConfig(cfg); err != nil {
			return nil, fmt.Errorf("channels[%d]: %w", i, err)
		}
		routes.Channels[i] = cfg
	}

	return &routes, nil
}

// sanitizeChannelConfig trims and normalizes the channel config fields.
func sanitizeChannelConfig(cfg ChannelConfig) ChannelConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.Queue != nil {
		qc := *cfg.Queue
		qc.Provider = strings.ToLower(strings.TrimSpace(qc.Provider))
		if qc.SQS != nil {
			s := *qc.SQS
			s.QueueURL = strings.TrimSpace(s.QueueURL)
			s.Region = strings.TrimSpace(s.Region)
			s.AccessKeyID = strings.TrimSpace(s.AccessKeyID)
			s.SecretAccessKey = strings.TrimSpace(s.SecretAccessKey)
			qc.SQS = &s
		}
		if qc.SNS != nil {
			s := *qc.SNS
			s.TopicARN = strings.TrimSpace(s.TopicARN)
			s.Region = strings.TrimSpace(s.Region)
			s.AccessKeyID = strings.TrimSpace(s.AccessKeyID)
			s.SecretAccessKey = strings.TrimSpace(s.SecretAccessKey)
			qc.SNS = &s
		}
		if qc.GCP != nil {
			g := *qc.GCP
			g.ProjectID = strings.TrimSpace(g.ProjectID)
			g.Topic = strings.TrimSpace(g.Topic)
			g.CredentialsFile = strings.TrimSpace(g.CredentialsFile)
			qc.GCP = &g
		}
		cfg.Queue = &qc
	}

	return cfg
}

// validateChannelConfig checks that required fields are present.
func validateChannelConfig(cfg ChannelConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	if cfg.Type == "" {
		return fmt.Errorf("type is required for channel %q", cfg.ID)
	}
	switch cfg.Type {
	case TypeQueue:
		if cfg.Queue == nil {
			return fmt.Errorf("queue config required for channel %q", cfg.ID)
		}
		switch cfg.Queue.Provider {
		case QueueProviderAWSSQS:
			return validateSQSConfig(cfg.ID, cfg.Queue.SQS)
		case QueueProviderAWSSNS:
			return validateSNSConfig(cfg.ID, cfg.Queue.SNS)
		case QueueProviderGCP:
			return validateGCPConfig(cfg.ID, cfg.Queue.GCP)
		case QueueProviderAzure:
			return fmt.Errorf("queue provider %q not implemented for channel %q", cfg.Queue.Provider, cfg.ID)
		default:
			return fmt.Errorf("queue provider %q not supported for channel %q", cfg.Queue.Provider, cfg.ID)
		}
	default:
		return fmt.Errorf("type %q not supported for channel %q", cfg.Type, cfg.ID)
	}
}

func validateSQSConfig(id string, cfg *AWSSQSChannelConfig) error {
	if cfg == nil {
		return fmt.Errorf("sqs config required for channel %q", id)
	}
	if cfg.QueueURL == "" {
		return fmt.Errorf("sqs.uri is required for channel %q", id)
	}
	if cfg.Region == "" {
		return fmt.Errorf("sqs.region is required for channel %q", id)
	}
	if cfg.AccessKeyID == "" {
		return fmt.Errorf("sqs.access_key_id is required for channel %q", id)
	}
	if cfg.SecretAccessKey == "" {
		return fmt.Errorf("sqs.secret_access_key is required for channel %q", id)
	}
	return nil
}

func validateSNSConfig(id string, cfg *AWSSNSChannelConfig) error {
	if cfg == nil {
		return fmt.Errorf("sns config required for channel %q", id)
	}
	if cfg.TopicARN == "" {
		return fmt.Errorf("sns.topic_arn is required for channel %q", id)
	}
	if cfg.Region == "" {
		return fmt.Errorf("sns.region is required for channel %q", id)
	}
	if cfg.AccessKeyID == "" {
		return fmt.Errorf("sns.access_key_id is required for channel %q", id)
	}
	if cfg.SecretAccessKey == "" {
		return fmt.Errorf("sns.secret_access_key is required for channel %q", id)
	}
	return nil
}

func validateGCPConfig(id string, cfg *GCPPubSubChannelConfig) error {
	if cfg == nil {
		return fmt.Errorf("gcp config required for channel %q", id)
	}
	if cfg.ProjectID == "" {
		return fmt.Errorf("gcp.project_id is required for channel %q", id)
	}
	if cfg.Topic == "" {
		return fmt.Errorf("gcp.topic is required for channel %q", id)
	}
	return nil
}

// EnabledChannels returns the channels that are switched on.
func (r *Routes) EnabledChannels() []ChannelConfig {
	if r == nil {
		return nil
	}

	out := make([]ChannelConfig, 0, len(r.Channels))
	for _, cfg := range r.Channels {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns the enabled flag defaulting to true.
func (cfg ChannelConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
