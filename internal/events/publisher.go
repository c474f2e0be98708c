package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DetectionEvent is the payload pushed to the downstream queue whenever a
// plate is recorded.
type DetectionEvent struct {
	DetectionID uuid.UUID `json:"detection_id"`
	UserID      uuid.UUID `json:"user_id"`
	Plate       string    `json:"plate"`
	Confidence  float64   `json:"confidence"`
	Method      string    `json:"method"`
	Compliance  string    `json:"compliance"`
	DetectedAt  time.Time `json:"detected_at"`
}

// Publisher sends detection events to SQS. A publisher with an empty queue
// URL is a no-op, so deployments without the queue just skip publishing.
type Publisher struct {
	client   *sqs.Client
	queueURL string
	log      zerolog.Logger
}

func NewPublisher(client *sqs.Client, queueURL string, log zerolog.Logger) *Publisher {
	return &Publisher{client: client, queueURL: queueURL, log: log}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.client != nil && p.queueURL != ""
}

func (p *Publisher) Publish(ctx context.Context, event DetectionEvent) error {
	if !p.Enabled() {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal detection event: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("sqs send: %w", err)
	}

	p.log.Debug().Str("plate", event.Plate).Msg("published detection event")
	return nil
}
