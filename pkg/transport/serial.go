package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// Port defaults.
const (
	// DefaultReadTimeout bounds each blocking read on the device so the pump
	// notices Close.
	DefaultReadTimeout = 100 * time.Millisecond

	// DefaultChunkSize is the pump's read size.
	DefaultChunkSize = 64

	// closeGrace is added to ReadTimeout to bound how long Close waits for
	// the pump to leave a device read.
	closeGrace = time.Second
)

// ErrPortClosed is returned by a Port after Close.
var ErrPortClosed = errors.New("transport: port closed")

// PortConfig tunes the pump behind a Port.
type PortConfig struct {
	// ReadTimeout is the device read timeout. It paces the pump while the
	// line is idle.
	ReadTimeout time.Duration

	// ChunkSize is the maximum bytes moved per device read.
	ChunkSize int

	// Backoff configures the delay after a failed device read.
	Backoff BackoffConfig
}

// DefaultPortConfig returns a PortConfig with sensible defaults.
func DefaultPortConfig() PortConfig {
	return PortConfig{
		ReadTimeout: DefaultReadTimeout,
		ChunkSize:   DefaultChunkSize,
		Backoff:     BackoffConfig{Jitter: JitterFactor},
	}
}

// Port is a Source over a serial device. The device has no byte count
// query, so a pump goroutine moves bytes into a buffer that Available
// reports on.
type Port struct {
	rc      io.ReadCloser
	cfg     PortConfig
	backoff *Backoff

	mu     sync.Mutex
	buf    bytes.Buffer
	err    error
	closed bool

	done    chan struct{}
	stopped chan struct{}
}

// OpenPort opens device at baud and starts the pump.
func OpenPort(device string, baud int, cfg PortConfig) (*Port, error) {
	cfg = withPortDefaults(cfg)
	sp, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	return NewPort(sp, cfg), nil
}

// SerialOpener returns an Opener backed by OpenPort.
func SerialOpener(cfg PortConfig) Opener {
	return func(device string, baud int) (Source, error) {
		p, err := OpenPort(device, baud, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// NewPort starts a pump over rc. Reads returning io.EOF with no data are
// treated as a read timeout, not the end of the stream.
func NewPort(rc io.ReadCloser, cfg PortConfig) *Port {
	cfg = withPortDefaults(cfg)
	p := &Port{
		rc:      rc,
		cfg:     cfg,
		backoff: NewBackoffWithConfig(cfg.Backoff),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go p.pump()
	return p
}

func withPortDefaults(cfg PortConfig) PortConfig {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return cfg
}

func (p *Port) pump() {
	defer close(p.stopped)

	chunk := make([]byte, p.cfg.ChunkSize)
	for {
		n, err := p.rc.Read(chunk)

		p.mu.Lock()
		if n > 0 {
			p.buf.Write(chunk[:n])
		}
		closed := p.closed
		failed := err != nil && !errors.Is(err, io.EOF)
		if failed && !closed {
			p.err = err
		}
		p.mu.Unlock()

		if closed {
			return
		}

		if !failed {
			p.backoff.Reset()
			continue
		}

		select {
		case <-p.done:
			return
		case <-time.After(p.backoff.Next()):
		}
	}
}

// Available returns the number of buffered bytes. A device read failure is
// reported once, alongside the count.
func (p *Port) Available() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	n := p.buf.Len()
	if p.err != nil {
		err := p.err
		p.err = nil
		return n, err
	}
	return n, nil
}

// Read drains up to len(b) buffered bytes. A pending device read failure is
// reported instead of data.
func (p *Port) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	if p.err != nil {
		err := p.err
		p.err = nil
		return 0, err
	}
	if p.buf.Len() == 0 {
		return 0, nil
	}
	return p.buf.Read(b)
}

// Close stops the pump and closes the device, then waits for the pump to
// return from its current read. It is safe to call Close more than once.
func (p *Port) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.buf.Reset()
	p.mu.Unlock()

	close(p.done)
	err := p.rc.Close()

	select {
	case <-p.stopped:
	case <-time.After(p.cfg.ReadTimeout + closeGrace):
	}
	return err
}

var _ Source = (*Port)(nil)
