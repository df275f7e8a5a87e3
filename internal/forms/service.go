package forms

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/gabomsambo/silce/internal/observability"
)

// Service validates submissions and hands them to their sinks.
type Service struct {
	validator  *Validator
	reviews    Sink
	newsletter Sink
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// NewService wires a Service. A nil logger falls back to a no-op logger.
func NewService(v *Validator, reviews, newsletter Sink, metrics *observability.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		validator:  v,
		reviews:    reviews,
		newsletter: newsletter,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		newID:      func() string { return ulid.Make().String() },
	}
}

// SubmitReview validates and forwards a review. Field errors are returned
// without sending; a forwarding failure wraps ErrSubmissionFailed.
func (s *Service) SubmitReview(ctx context.Context, locale string, in ReviewSubmission) (string, FieldErrors, error) {
	if errs := s.validator.Review(in); errs != nil {
		s.metrics.Submission(string(KindReview), "invalid")
		return "", errs, nil
	}
	id, err := s.send(ctx, s.reviews, KindReview, locale, in)
	return id, nil, err
}

// SubscribeNewsletter validates and forwards a signup.
func (s *Service) SubscribeNewsletter(ctx context.Context, locale string, in NewsletterSignup) (string, FieldErrors, error) {
	if errs := s.validator.Newsletter(in); errs != nil {
		s.metrics.Submission(string(KindNewsletter), "invalid")
		return "", errs, nil
	}
	id, err := s.send(ctx, s.newsletter, KindNewsletter, locale, in)
	return id, nil, err
}

func (s *Service) send(ctx context.Context, sink Sink, kind Kind, locale string, data any) (string, error) {
	sub := Submission{
		ID:         s.newID(),
		Kind:       kind,
		Locale:     locale,
		ReceivedAt: s.now().UTC(),
		Data:       data,
	}
	if sink == nil {
		sink = NewClient("", s.logger)
	}
	if err := sink.Send(ctx, sub); err != nil {
		if !errors.Is(err, ErrSubmissionFailed) {
			err = errors.Join(ErrSubmissionFailed, err)
		}
		s.metrics.Submission(string(kind), "failed")
		s.logger.Warn("submission forwarding failed",
			zap.String("id", sub.ID),
			zap.String("kind", string(kind)),
			zap.String("locale", observability.SanitizeString(locale, 16)),
			zap.String("error", observability.SanitizeString(err.Error(), 512)),
		)
		return "", err
	}
	s.metrics.Submission(string(kind), "accepted")
	return sub.ID, nil
}
