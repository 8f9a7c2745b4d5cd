package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"jmxstat/internal/mbean"
	"jmxstat/internal/options"
	"jmxstat/internal/report"
)

// RetryPolicy bounds the reconnect backoff.
type RetryPolicy struct {
	MaxRetries int           // Consecutive failures tolerated before giving up
	MaxBackoff time.Duration // Cap of the exponential delay
}

// DefaultRetryPolicy retries five times with delays 2s, 4s, 8s, 16s, 30s.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 5, MaxBackoff: 30 * time.Second}

// Delay returns the wait before reconnect attempt number retry (starting at 1):
// min(MaxBackoff, 2^retry seconds).
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry > 30 {
		return p.MaxBackoff
	}
	d := time.Duration(1<<uint(retry)) * time.Second
	if d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// State is the runtime state of a session.
type State struct {
	Retry        int  // Consecutive communication failures
	RetryEnabled bool // Set once a connection has succeeded
	SamplesTaken int  // Data lines written
	Connected    bool // A connection is currently held

	gcDone        bool
	headerWritten bool
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Session connects to the endpoint, runs the startup actions and samples at
// the configured interval, reconnecting with exponential backoff after
// communication failures.
type Session struct {
	opts      *options.Options
	connector mbean.Connector
	sampler   *Sampler
	writer    *report.Writer
	policy    RetryPolicy
	metrics   *Metrics
	logger    zerolog.Logger
	sleep     SleepFunc
	now       func() time.Time

	state State
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) SessionOption {
	return func(s *Session) { s.policy = p }
}

// WithMetrics records session counters in m.
func WithMetrics(m *Metrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// WithSleep replaces the timed wait used between samples and before reconnects.
func WithSleep(fn SleepFunc) SessionOption {
	return func(s *Session) { s.sleep = fn }
}

// WithClock replaces the time source of the timestamp column.
func WithClock(fn func() time.Time) SessionOption {
	return func(s *Session) { s.now = fn }
}

// NewSession creates a new Session for valid options.
func NewSession(
	opts *options.Options,
	connector mbean.Connector,
	writer *report.Writer,
	logger zerolog.Logger,
	sessionOpts ...SessionOption,
) *Session {
	s := &Session{
		opts:      opts,
		connector: connector,
		sampler:   NewSampler(opts.Attributes, opts.Contention, logger),
		writer:    writer,
		policy:    DefaultRetryPolicy,
		logger:    logger.With().Str("component", "session").Str("endpoint", opts.Endpoint).Logger(),
		sleep:     sleepContext,
		now:       time.Now,
	}
	for _, o := range sessionOpts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// State returns a snapshot of the session state.
func (s *Session) State() State {
	return s.state
}

// Run drives the session until the sample count is reached, there is nothing
// to sample, or a fatal error occurs. Fatal errors are *FatalError values
// carrying the exit status; a cancelled ctx returns ctx.Err().
func (s *Session) Run(ctx context.Context) error {
	for {
		err := s.runConnected(ctx)
		s.state.Connected = false
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var fatal *FatalError
		if errors.As(err, &fatal) || !mbean.IsCommunication(err) {
			return err
		}
		if err := s.backoff(ctx, err); err != nil {
			return err
		}
	}
}

// runConnected holds one connection for as long as it works. Communication
// errors are returned unwrapped so Run can retry them.
func (s *Session) runConnected(ctx context.Context) error {
	s.metrics.Connects.Inc()
	conn, err := s.connector.Connect(ctx, s.opts.Endpoint)
	if err != nil {
		if mbean.IsCommunication(err) {
			return err
		}
		return fatalf(ExitIO, "error connecting to %s: %w", s.opts.Endpoint, err)
	}
	defer conn.Close()

	s.state.Connected = true
	s.state.RetryEnabled = true
	s.logger.Debug().Msg("connected")

	done, err := s.startup(ctx, conn)
	if err != nil || done {
		return err
	}

	return s.poll(ctx, conn)
}

// startup runs the one-shot actions. done is true when there is nothing to sample.
func (s *Session) startup(ctx context.Context, conn mbean.Conn) (done bool, err error) {
	if s.opts.PerformGC && !s.state.gcDone {
		if err := PerformGC(ctx, conn); err != nil {
			return false, &FatalError{Status: ExitAction, Err: err}
		}
		s.state.gcDone = true
		if err := s.writer.WriteTimestamp(s.now()); err != nil {
			return false, &FatalError{Status: ExitIO, Err: err}
		}
	}

	if enabled, ok := s.opts.ContentionMonitoring(); ok {
		changed, err := SetContentionMonitoring(ctx, conn, enabled)
		if err != nil {
			return false, &FatalError{Status: ExitAction, Err: err}
		}
		s.logger.Debug().Bool("enabled", enabled).Bool("changed", changed).Msg("contention monitoring set")
	}

	if s.sampler.Empty() {
		s.logger.Debug().Msg("nothing to sample")
		return true, nil
	}

	if !s.state.headerWritten {
		if err := s.writer.WriteHeader(s.sampler.Columns()); err != nil {
			return false, &FatalError{Status: ExitIO, Err: err}
		}
		s.state.headerWritten = true
	}

	return false, nil
}

// poll samples until the count is reached or an error occurs.
func (s *Session) poll(ctx context.Context, conn mbean.Conn) error {
	for {
		values, err := s.sampler.Sample(ctx, conn)
		if err != nil {
			if mbean.IsCommunication(err) {
				return err
			}
			return fatalf(ExitIO, "error reading from %s: %w", s.opts.Endpoint, err)
		}

		if err := s.writer.WriteRow(s.now(), values); err != nil {
			return &FatalError{Status: ExitIO, Err: err}
		}

		s.state.SamplesTaken++
		s.state.Retry = 0
		s.metrics.Samples.Inc()
		s.metrics.RetryAttempt.Set(0)

		if s.opts.Count > 0 && s.state.SamplesTaken >= s.opts.Count {
			return nil
		}

		if err := s.sleep(ctx, s.opts.IntervalDuration()); err != nil {
			return err
		}
	}
}

// backoff waits before the next connection attempt, or gives up when no
// connection was ever made or the retries are exhausted.
func (s *Session) backoff(ctx context.Context, cause error) error {
	s.metrics.CommunicationErrors.Inc()

	if !s.state.RetryEnabled || s.state.Retry >= s.policy.MaxRetries {
		return fatalf(ExitIO, "error reading from %s: %w", s.opts.Endpoint, cause)
	}

	s.state.Retry++
	s.metrics.RetryAttempt.Set(float64(s.state.Retry))
	wait := s.policy.Delay(s.state.Retry)

	s.logger.Warn().
		Err(cause).
		Int("retry", s.state.Retry).
		Int("max_retries", s.policy.MaxRetries).
		Dur("wait", wait).
		Msg("communication error, retrying")

	return s.sleep(ctx, wait)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
