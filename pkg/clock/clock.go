// Package clock tracks the start of a reader run and stamps each read event
// with display text and whole seconds elapsed since that start.
package clock

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the display format: day/month/2-digit-year hour:minute:second.
const Layout = "02/01/06 15:04:05"

// InvalidText is the display text held before the first successful format.
const InvalidText = "invalid time"

// ErrFormat indicates the instant could not be rendered. The Timestamp
// returned alongside it carries the previous, stale text.
var ErrFormat = errors.New("clock: format failed")

// Timestamp is one marked instant.
type Timestamp struct {
	// Instant is when the mark was taken.
	Instant time.Time

	// Text is Instant rendered with Layout, or stale text after ErrFormat.
	Text string

	// Elapsed is whole seconds since the clock's start instant.
	Elapsed int64
}

// Clock owns the start instant of a run and the most recent mark.
// It is not safe for concurrent use; a run has one clock owner.
type Clock struct {
	now     func() time.Time
	zone    string
	loc     *time.Location
	start   time.Time
	started bool
	last    Timestamp
}

// Option configures a Clock.
type Option func(*Clock)

// WithNow replaces time.Now as the source of instants.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		c.now = now
	}
}

// WithLocation sets the IANA zone name used for display text.
// An empty name uses the local zone.
func WithLocation(name string) Option {
	return func(c *Clock) {
		c.zone = name
	}
}

// New creates a Clock. The start instant is unset until Initialize or the
// first Mark.
func New(opts ...Option) *Clock {
	c := &Clock{
		now:  time.Now,
		last: Timestamp{Text: InvalidText},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize captures the start instant of the run and returns the startup
// mark. Calling it again after the start is set only takes a new mark.
func (c *Clock) Initialize() (Timestamp, error) {
	return c.Mark()
}

// Mark captures the current instant. The first mark of a clock sets the start
// instant and reports 0 elapsed seconds.
func (c *Clock) Mark() (Timestamp, error) {
	t := c.now()
	if !c.started {
		c.start = t
		c.started = true
	}

	elapsed := int64(t.Sub(c.start) / time.Second)
	if elapsed < c.last.Elapsed {
		elapsed = c.last.Elapsed
	}

	ts := Timestamp{Instant: t, Text: c.last.Text, Elapsed: elapsed}
	text, err := c.format(t)
	if err == nil {
		ts.Text = text
	}
	c.last = ts
	return ts, err
}

// Start returns the start instant; zero before the first mark.
func (c *Clock) Start() time.Time {
	return c.start
}

// Last returns the most recent mark.
func (c *Clock) Last() Timestamp {
	return c.last
}

func (c *Clock) format(t time.Time) (string, error) {
	loc, err := c.location()
	if err != nil {
		return "", err
	}
	return t.In(loc).Format(Layout), nil
}

func (c *Clock) location() (*time.Location, error) {
	if c.loc != nil {
		return c.loc, nil
	}
	if c.zone == "" {
		c.loc = time.Local
		return c.loc, nil
	}
	loc, err := time.LoadLocation(c.zone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	c.loc = loc
	return loc, nil
}
