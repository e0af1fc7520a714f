package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recommit/internal/completion"
	"github.com/fyrsmithlabs/recommit/internal/validate"
)

const instrumentationName = "github.com/fyrsmithlabs/recommit/internal/rewrite"

// Outcome labels recorded on the results counter.
const (
	outcomeSuccess              = "success"
	outcomeExhausted            = "exhausted"
	outcomeCompletionFailure    = "completion_failure"
	outcomeValidatorUnavailable = "validator_unavailable"
	outcomePassThrough          = "pass_through"
)

// Service runs the rewrite loop.
type Service interface {
	// Rewrite drives one message through generation, validation, and
	// retries until it conforms or the budget runs out.
	Rewrite(ctx context.Context, req *Request) (*Result, error)
}

// service implements the Service interface.
type service struct {
	config     *Config
	completion completion.Service
	validator  validate.Validator
	logger     *zap.Logger

	// Telemetry
	tracer         trace.Tracer
	meter          metric.Meter
	attemptCounter metric.Int64Counter
	resultCounter  metric.Int64Counter
}

// NewService creates a new rewrite service. The validator may be nil when
// the project has no message-format configuration.
func NewService(cfg *Config, cs completion.Service, v validate.Validator, logger *zap.Logger) (Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries < 1 {
		return nil, errors.New("max retries must be at least 1")
	}
	if cs == nil {
		return nil, errors.New("completion service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &service{
		config:     cfg,
		completion: cs,
		validator:  v,
		logger:     logger,
		tracer:     otel.Tracer(instrumentationName),
		meter:      otel.Meter(instrumentationName),
	}

	s.initMetrics()

	return s, nil
}

// initMetrics initializes OpenTelemetry metrics.
func (s *service) initMetrics() {
	var err error

	s.attemptCounter, err = s.meter.Int64Counter(
		"recommit.rewrite.attempts_total",
		metric.WithDescription("Total number of generation attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		s.logger.Warn("failed to create attempt counter", zap.Error(err))
	}

	s.resultCounter, err = s.meter.Int64Counter(
		"recommit.rewrite.results_total",
		metric.WithDescription("Total number of rewrite runs by outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		s.logger.Warn("failed to create result counter", zap.Error(err))
	}
}

// Rewrite drives one message through the loop. An empty or whitespace-only
// message passes through untouched with zero completion calls. Validation
// failures are the only condition that consumes the retry budget: completion
// failures end the run immediately, and a validator that cannot run degrades
// the run to unvalidated generation.
func (s *service) Rewrite(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, errors.New("request is required")
	}

	ctx, span := s.tracer.Start(ctx, "rewrite.message")
	defer span.End()

	logger := s.logger.With(zap.String("run_id", uuid.New().String()))

	if strings.TrimSpace(req.Original) == "" {
		logger.Debug("empty message, passing through unchanged")
		span.SetAttributes(attribute.String("outcome", outcomePassThrough))
		s.countResult(ctx, outcomePassThrough)
		return &Result{Success: true, Message: req.Original, Attempts: 0}, nil
	}

	systemPrompt := buildSystemPrompt(s.config.SystemPrompt, promptHintOf(s.validator))
	span.SetAttributes(
		attribute.String("validator", validatorNameOf(s.validator)),
		attribute.Int("max_retries", s.config.MaxRetries),
		attribute.Bool("has_diff", strings.TrimSpace(req.Diff) != ""),
	)

	var (
		candidate      string
		lastViolations []string
		attempts       int
	)

	for attempts < s.config.MaxRetries {
		attempts++
		s.countAttempt(ctx)

		text, err := s.completion.Complete(ctx, completion.Request{
			SystemPrompt: systemPrompt,
			UserPrompt:   buildUserPrompt(req.Original, req.Diff, lastViolations),
			Temperature:  s.config.Temperature,
			MaxTokens:    s.config.MaxTokens,
		})
		if err != nil {
			// The completion client already spent its single timeout retry;
			// whatever surfaces here ends the run.
			logger.Error("completion failed",
				zap.Int("attempt", attempts),
				zap.String("kind", string(completion.KindOf(err))),
				zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.countResult(ctx, outcomeCompletionFailure)
			return &Result{Success: false, Message: req.Original, Attempts: attempts},
				fmt.Errorf("completion failed on attempt %d: %w", attempts, err)
		}
		candidate = text

		if s.validator == nil {
			logger.Info("message rewritten", zap.Int("attempts", attempts))
			span.SetAttributes(attribute.Int("attempts", attempts), attribute.String("outcome", outcomeSuccess))
			s.countResult(ctx, outcomeSuccess)
			return &Result{Success: true, Message: candidate, Attempts: attempts}, nil
		}

		verdict, err := s.validator.Validate(ctx, candidate)
		if err != nil {
			// A checker that cannot run cannot adjudicate. Accept the
			// candidate as if no validator were configured.
			logger.Warn("validator unavailable, accepting message unvalidated",
				zap.String("validator", s.validator.Name()),
				zap.Error(err))
			span.SetAttributes(attribute.Int("attempts", attempts), attribute.String("outcome", outcomeValidatorUnavailable))
			s.countResult(ctx, outcomeValidatorUnavailable)
			return &Result{Success: true, Message: candidate, Attempts: attempts}, nil
		}
		if verdict.Valid {
			logger.Info("message rewritten",
				zap.Int("attempts", attempts),
				zap.String("validator", s.validator.Name()))
			span.SetAttributes(attribute.Int("attempts", attempts), attribute.String("outcome", outcomeSuccess))
			s.countResult(ctx, outcomeSuccess)
			return &Result{Success: true, Message: candidate, Attempts: attempts}, nil
		}

		// Only the most recent verdict feeds the next prompt.
		lastViolations = verdict.Violations
		logger.Debug("candidate rejected",
			zap.Int("attempt", attempts),
			zap.Strings("violations", lastViolations))
	}

	logger.Warn("retry budget exhausted, keeping last candidate",
		zap.Int("attempts", attempts),
		zap.Strings("violations", lastViolations))
	span.SetAttributes(attribute.Int("attempts", attempts), attribute.String("outcome", outcomeExhausted))
	s.countResult(ctx, outcomeExhausted)
	return &Result{Success: false, Message: candidate, Attempts: attempts, Violations: lastViolations}, nil
}

func (s *service) countAttempt(ctx context.Context) {
	if s.attemptCounter != nil {
		s.attemptCounter.Add(ctx, 1)
	}
}

func (s *service) countResult(ctx context.Context, outcome string) {
	if s.resultCounter != nil {
		s.resultCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func promptHintOf(v validate.Validator) string {
	if v == nil {
		return ""
	}
	return v.PromptHint()
}

func validatorNameOf(v validate.Validator) string {
	if v == nil {
		return "none"
	}
	return v.Name()
}

// Ensure interfaces are implemented.
var _ Service = (*service)(nil)
