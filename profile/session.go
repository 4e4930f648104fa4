package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ardnew/recline/log"
)

var (
	// ErrUnavailable is returned when a mode is requested from a build
	// without the pprof tag.
	ErrUnavailable = errors.New("profiling requires the " + Tag + " build tag")
	// ErrUnknownMode is returned for a mode not listed by [Modes].
	ErrUnknownMode = errors.New("unknown profiling mode")
)

func unknownMode(mode string) error { return fmt.Errorf("%w: %q", ErrUnknownMode, mode) }

type stopper interface{ Stop() }

type settings struct {
	logger log.Logger
	mode   string
	dir    string
	quiet  bool
}

// Option configures a profiling [Session].
type Option func(*settings)

// WithMode selects the profile to record. An empty mode records nothing.
func WithMode(mode string) Option {
	return func(s *settings) { s.mode = mode }
}

// WithDir sets the directory profiles are written to. Without it, a
// temporary directory is used.
func WithDir(dir string) Option {
	return func(s *settings) { s.dir = dir }
}

// WithQuiet suppresses the messages pkg/profile writes to standard error.
func WithQuiet(quiet bool) Option {
	return func(s *settings) { s.quiet = quiet }
}

// WithLogger sets the logger that records when profiling starts and stops.
func WithLogger(l log.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// Session is a running profile. A nil or inactive Session may be stopped.
type Session struct {
	stop    stopper
	logger  log.Logger
	mode    string
	dir     string
	started time.Time
	once    sync.Once
}

// Start begins recording the profile selected by [WithMode]. Without a mode
// it returns an inactive Session.
func Start(ctx context.Context, opts ...Option) (*Session, error) {
	var s settings

	for _, opt := range opts {
		opt(&s)
	}

	if s.mode == "" {
		return &Session{}, nil
	}

	stop, err := begin(s)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "profiling started",
		slog.String("mode", s.mode),
		slog.String("dir", s.dir),
	)

	return &Session{
		stop:    stop,
		logger:  s.logger,
		mode:    s.mode,
		dir:     s.dir,
		started: time.Now(),
	}, nil
}

// Active reports whether s is recording.
func (s *Session) Active() bool { return s != nil && s.stop != nil }

// Mode returns the profile being recorded, or "" if s is inactive.
func (s *Session) Mode() string {
	if !s.Active() {
		return ""
	}

	return s.mode
}

// Stop finishes the profile and writes it out. Only the first call has an
// effect.
func (s *Session) Stop() {
	if !s.Active() {
		return
	}

	s.once.Do(func() {
		s.stop.Stop()
		s.logger.Debug("profiling stopped",
			slog.String("mode", s.mode),
			slog.String("dir", s.dir),
			slog.Duration("elapsed", time.Since(s.started)),
		)
	})
}
