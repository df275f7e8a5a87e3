package forms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/gabomsambo/silce/internal/observability"
)

const (
	defaultTimeout    = 8 * time.Second
	idempotencyHeader = "Idempotency-Key"
)

// Kind names the form a submission came from.
type Kind string

const (
	KindReview     Kind = "review"
	KindNewsletter Kind = "newsletter"
)

// Submission is the envelope forwarded to the hosted form endpoint.
type Submission struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Locale     string    `json:"locale"`
	ReceivedAt time.Time `json:"receivedAt"`
	Data       any       `json:"data"`
}

// Sink accepts validated submissions. Nothing is stored locally.
type Sink interface {
	Send(ctx context.Context, sub Submission) error
}

// Client forwards submissions as JSON to a hosted endpoint. Retries are off;
// a failed send is reported to the visitor, who may resubmit.
type Client struct {
	endpoint string
	http     *resty.Client
	logger   *zap.Logger
}

// NewClient constructs a forwarding client. When endpoint is empty, the client
// only logs accepted submissions.
func NewClient(endpoint string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: strings.TrimSpace(endpoint),
		http: resty.New().
			SetTimeout(defaultTimeout).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		logger: logger,
	}
}

// Configured reports whether submissions leave the process.
func (c *Client) Configured() bool { return c != nil && c.endpoint != "" }

// Send posts sub to the endpoint, using its ID as idempotency key.
func (c *Client) Send(ctx context.Context, sub Submission) error {
	if !c.Configured() {
		c.logger.Info("submission accepted without forwarding endpoint",
			zap.String("id", sub.ID),
			zap.String("kind", string(sub.Kind)),
			zap.String("locale", sub.Locale),
		)
		return nil
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(idempotencyHeader, sub.ID).
		SetBody(sub).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d: %s", ErrSubmissionFailed, resp.StatusCode(), drainError(resp.String()))
	}
	return nil
}

func drainError(body string) string {
	return observability.SanitizeString(strings.TrimSpace(body), 256)
}
