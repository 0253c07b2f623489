package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/andrewpaige1/roadmap-api/metrics"
	"github.com/andrewpaige1/roadmap-api/roadmap"
)

// Completer sends a prompt to a text generator and returns its raw answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Error is a failure to obtain text from the generator. It is always retryable: the
// caller may submit the same goal again.
type Error struct {
	Topic string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generate roadmap for %q: %v", e.Topic, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Retryable() bool { return true }

var ErrEmptyResponse = errors.New("generator returned no text")

type Options struct {
	Timeout          time.Duration
	BreakerName      string
	MaxRequests      uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultOptions mirrors the circuit breaker defaults used for other upstreams.
func DefaultOptions() Options {
	return Options{
		Timeout:          60 * time.Second,
		BreakerName:      "roadmap-generator",
		MaxRequests:      5,
		Interval:         30 * time.Second,
		OpenTimeout:      60 * time.Second,
		MinRequests:      5,
		FailureThreshold: 0.8,
	}
}

// Client wraps a Completer with the roadmap prompt, a timeout and a circuit breaker.
type Client struct {
	completer Completer
	breaker   *gobreaker.CircuitBreaker
	timeout   time.Duration
	logger    *zap.Logger
}

func NewClient(completer Completer, opts Options, logger *zap.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        opts.BreakerName,
		MaxRequests: opts.MaxRequests,
		Interval:    opts.Interval,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < opts.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= opts.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// a caller walking away is not the generator's fault
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Client{
		completer: completer,
		breaker:   breaker,
		timeout:   opts.Timeout,
		logger:    logger,
	}
}

// Generate asks the generator for a roadmap and returns its text with code fences
// stripped. The text is not parsed or validated here.
func (c *Client) Generate(ctx context.Context, topic string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.completer.Complete(ctx, Prompt(topic))
	})
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("roadmap generation failed", zap.String("topic", topic), zap.Error(err))
		return "", &Error{Topic: topic, Err: err}
	}

	text := StripFences(out.(string))
	if text == "" {
		return "", &Error{Topic: topic, Err: ErrEmptyResponse}
	}
	return text, nil
}

// Roadmap generates and validates a roadmap for the topic. Failures are one of
// *Error, *roadmap.ParseError or *roadmap.ValidationError, all of which the caller may
// retry; nothing is persisted either way.
func (c *Client) Roadmap(ctx context.Context, topic string) (*roadmap.Document, error) {
	text, err := c.Generate(ctx, topic)
	if err != nil {
		metrics.Generations.WithLabelValues("generation_failed").Inc()
		return nil, err
	}

	doc, err := roadmap.Decode([]byte(text))
	if err != nil {
		var verr *roadmap.ValidationError
		if errors.As(err, &verr) {
			metrics.Generations.WithLabelValues("invalid").Inc()
			metrics.ValidationFailures.WithLabelValues(string(verr.Rule)).Inc()
		} else {
			metrics.Generations.WithLabelValues("parse_failed").Inc()
		}
		c.logger.Warn("generator returned an unusable roadmap", zap.String("topic", topic), zap.Error(err))
		return nil, err
	}

	metrics.Generations.WithLabelValues("ok").Inc()
	if orphans := doc.Disconnected(); len(orphans) > 0 {
		c.logger.Info("roadmap has stages unreachable from level 0",
			zap.String("topic", topic),
			zap.Strings("stages", orphans))
	}
	return doc, nil
}
