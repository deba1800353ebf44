package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mwhite7112/woodpantry-pickle/internal/clients"
	"github.com/mwhite7112/woodpantry-pickle/internal/events"
)

const (
	systemPrompt = "You are an expert on pickling foods and preserving items. You know what can and cannot be safely pickled."

	maxTokens   = 150
	temperature = 0.3
)

// Fallback reasons returned when the provider cannot give an answer.
const (
	ReasonAPIError   = "Unable to determine if item can be pickled due to API error."
	ReasonUnexpected = "An error occurred while checking if the item can be pickled."
)

// Outcome classifies how a check ended.
type Outcome string

const (
	OutcomeYes             Outcome = "yes"
	OutcomeNo              Outcome = "no"
	OutcomeUpstreamError   Outcome = "upstream_error"
	OutcomeUnexpectedError Outcome = "unexpected_error"
)

// CheckResult is the verdict relayed to callers.
type CheckResult struct {
	CanPickle bool   `json:"canPickle"`
	Reason    string `json:"reason"`
}

// PickleChecker asks the provider whether an item can be pickled. It fails
// closed: any failure yields CanPickle=false with a fixed reason.
type PickleChecker struct {
	completer Completer
	publisher EventPublisher
	recorder  CheckRecorder
	logger    *slog.Logger
	tracer    trace.Tracer
}

type Option func(*PickleChecker)

func WithPublisher(p EventPublisher) Option {
	return func(c *PickleChecker) {
		if p != nil {
			c.publisher = p
		}
	}
}

func WithRecorder(r CheckRecorder) Option {
	return func(c *PickleChecker) {
		if r != nil {
			c.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *PickleChecker) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewPickleChecker(completer Completer, opts ...Option) *PickleChecker {
	c := &PickleChecker{
		completer: completer,
		publisher: events.NopPublisher{},
		recorder:  nopRecorder{},
		logger:    slog.Default(),
		tracer:    otel.Tracer("github.com/mwhite7112/woodpantry-pickle/internal/service"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildPrompt returns the user prompt for item.
func BuildPrompt(item string) string {
	return fmt.Sprintf("Can '%s' be pickled? Answer with 'Yes' or 'No' followed by a brief explanation why. Keep the response under 100 words.", item)
}

// ParseVerdict reports whether answer starts with "yes", ignoring case.
// Nothing else about the answer is interpreted.
func ParseVerdict(answer string) bool {
	return strings.HasPrefix(strings.ToLower(answer), "yes")
}

// Check never returns an error; item must already be non-blank.
func (c *PickleChecker) Check(ctx context.Context, item string) CheckResult {
	ctx, span := c.tracer.Start(ctx, "pickle.check", trace.WithAttributes(attribute.String("pickle.item", item)))
	defer span.End()

	start := time.Now()
	result, outcome := c.check(ctx, item)
	c.recorder.ObserveCheck(string(outcome), time.Since(start))

	span.SetAttributes(
		attribute.Bool("pickle.can_pickle", result.CanPickle),
		attribute.String("pickle.outcome", string(outcome)),
	)

	event := events.PickleChecked{
		CheckID:   uuid.New(),
		Item:      item,
		CanPickle: result.CanPickle,
		Reason:    result.Reason,
		Outcome:   string(outcome),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.publisher.PublishPickleChecked(ctx, event); err != nil {
		c.logger.WarnContext(ctx, "publish pickle.checked failed", "check_id", event.CheckID, "error", err)
	}

	return result
}

func (c *PickleChecker) check(ctx context.Context, item string) (result CheckResult, outcome Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.ErrorContext(ctx, "error occurred while checking if item can be pickled", "item", item, "panic", rec)
			result, outcome = CheckResult{CanPickle: false, Reason: ReasonUnexpected}, OutcomeUnexpectedError
		}
	}()

	answer, err := c.completer.Complete(ctx, clients.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   BuildPrompt(item),
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	})
	if err != nil {
		return c.fallback(ctx, item, err)
	}

	canPickle := ParseVerdict(answer)
	outcome = OutcomeNo
	if canPickle {
		outcome = OutcomeYes
	}
	return CheckResult{CanPickle: canPickle, Reason: answer}, outcome
}

func (c *PickleChecker) fallback(ctx context.Context, item string, err error) (CheckResult, Outcome) {
	var statusErr *clients.StatusError
	if errors.As(err, &statusErr) {
		c.logger.ErrorContext(ctx, "openai api request failed",
			"item", item,
			"status_code", statusErr.StatusCode,
			"body", statusErr.Body,
		)
		return CheckResult{CanPickle: false, Reason: ReasonAPIError}, OutcomeUpstreamError
	}

	c.logger.ErrorContext(ctx, "error occurred while checking if item can be pickled", "item", item, "error", err)
	return CheckResult{CanPickle: false, Reason: ReasonUnexpected}, OutcomeUnexpectedError
}

type nopRecorder struct{}

func (nopRecorder) ObserveCheck(string, time.Duration) {}
