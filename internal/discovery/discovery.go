// Package discovery finds a random existing subject on the platform.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/ghuls/internal/model"
)

const (
	// DefaultMaxAttempts bounds the number of probes per search.
	DefaultMaxAttempts = 50
	// DefaultMaxID is the upper end of the account id range probed.
	DefaultMaxID int64 = 150_000_000
)

// ErrDiscoveryExhausted is returned when every attempt missed.
var ErrDiscoveryExhausted = errors.New("no subject found within the attempt limit")

// Probe looks up an account id. A miss is reported as ok == false with a nil error.
type Probe func(ctx context.Context, id int64) (model.Subject, bool, error)

// Locator probes random account ids until one resolves.
type Locator struct {
	rnd         *rand.Rand
	maxAttempts int
	maxID       int64
	log         *logrus.Entry
}

// Option configures a Locator.
type Option func(*Locator)

// WithRand sets the random source.
func WithRand(rnd *rand.Rand) Option {
	return func(l *Locator) {
		l.rnd = rnd
	}
}

// WithMaxAttempts sets the attempt cap. Values below 1 keep the default.
func WithMaxAttempts(n int) Option {
	return func(l *Locator) {
		if n >= 1 {
			l.maxAttempts = n
		}
	}
}

// WithMaxID sets the largest id probed. Values below 1 keep the default.
func WithMaxID(id int64) Option {
	return func(l *Locator) {
		if id >= 1 {
			l.maxID = id
		}
	}
}

// WithLogger sets the logger used for per-attempt debug output.
func WithLogger(log *logrus.Entry) Option {
	return func(l *Locator) {
		if log != nil {
			l.log = log
		}
	}
}

// New returns a Locator seeded with the current time.
func New(opts ...Option) *Locator {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	l := &Locator{
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		maxAttempts: DefaultMaxAttempts,
		maxID:       DefaultMaxID,
		log:         logrus.NewEntry(quiet),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MaxAttempts reports the attempt cap.
func (l *Locator) MaxAttempts() int {
	return l.maxAttempts
}

// Find returns the first subject the probe resolves. It stops with
// ErrDiscoveryExhausted after MaxAttempts misses, or with the context error
// when ctx is done. A probe error ends the search.
func (l *Locator) Find(ctx context.Context, probe Probe) (model.Subject, error) {
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return model.Subject{}, err
		}
		id := l.rnd.Int63n(l.maxID) + 1
		subject, ok, err := probe(ctx, id)
		if err != nil {
			return model.Subject{}, fmt.Errorf("probe id %d: %w", id, err)
		}
		if ok {
			l.log.WithFields(logrus.Fields{"id": id, "attempt": attempt}).Debugf("found subject %s", subject.Login)
			return subject, nil
		}
		l.log.WithFields(logrus.Fields{"id": id, "attempt": attempt}).Debug("no account at id")
	}
	return model.Subject{}, fmt.Errorf("%w (%d attempts)", ErrDiscoveryExhausted, l.maxAttempts)
}
