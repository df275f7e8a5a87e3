package booking

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/gabomsambo/silce/internal/observability"
)

// Patch is the pluggable widget-environment strategy. Start is fire-and-forget;
// the returned stop tears the task down.
type Patch interface {
	Name() string
	Start(ctx context.Context) (stop func())
}

// NopPatch does nothing. Used in tests and when patching is switched off.
type NopPatch struct{}

func (NopPatch) Name() string                        { return "off" }
func (NopPatch) Start(context.Context) (stop func()) { return func() {} }

// ProbePatch checks that the vendor search script is reachable, polling with
// the bounded Poller. Failures are logged and counted, never returned.
type ProbePatch struct {
	ScriptURL string
	Poller    Poller
	Client    *resty.Client
	Logger    *zap.Logger
	Metrics   *observability.Metrics

	reachable atomic.Bool
	attempts  atomic.Int32
}

// NewProbePatch builds a probe with a short per-request timeout and no retries.
func NewProbePatch(scriptURL string, poller Poller, logger *zap.Logger, metrics *observability.Metrics) *ProbePatch {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetHeader("User-Agent", "silverpineapple-web/widget-probe")
	return &ProbePatch{
		ScriptURL: scriptURL,
		Poller:    poller,
		Client:    client,
		Logger:    logger.With(zap.String("component", "widget_probe")),
		Metrics:   metrics,
	}
}

func (p *ProbePatch) Name() string { return "probe" }

// Reachable reports whether a probe has succeeded.
func (p *ProbePatch) Reachable() bool { return p.reachable.Load() }

// Attempts returns the number of probes issued so far.
func (p *ProbePatch) Attempts() int { return int(p.attempts.Load()) }

func (p *ProbePatch) Start(ctx context.Context) (stop func()) {
	if p.ScriptURL == "" {
		p.Logger.Warn("widget probe disabled: no script url")
		return func() {}
	}
	return p.Poller.Start(ctx, p.probe, p.finish)
}

func (p *ProbePatch) probe(ctx context.Context) bool {
	p.attempts.Add(1)
	resp, err := p.Client.R().SetContext(ctx).Head(p.ScriptURL)
	if err != nil {
		if ctx.Err() == nil {
			p.Logger.Debug("widget script probe failed", zap.Error(err))
		}
		return false
	}
	if !resp.IsSuccess() {
		p.Logger.Debug("widget script probe rejected", zap.Int("status", resp.StatusCode()))
		return false
	}
	p.reachable.Store(true)
	return true
}

func (p *ProbePatch) finish(err error) {
	switch {
	case err == nil:
		p.Metrics.WidgetProbe("ok")
		p.Logger.Info("widget script reachable", zap.String("url", p.ScriptURL), zap.Int("attempts", p.Attempts()))
	case errors.Is(err, ErrCeiling):
		p.Metrics.WidgetProbe("timeout")
		p.Logger.Warn("widget script unreachable before ceiling", zap.String("url", p.ScriptURL), zap.Int("attempts", p.Attempts()))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		p.Metrics.WidgetProbe("cancelled")
	default:
		p.Metrics.WidgetProbe("error")
		p.Logger.Warn("widget probe stopped", zap.Error(err))
	}
}
