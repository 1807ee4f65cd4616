package servobus

import "time"

// Clock supplies the current time to the velocity estimator. Injecting one
// makes velocity tests hermetic (spec §9 design note); production code uses
// systemClock, which wraps time.Now.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Bus is a LewanSoul servo bus: it owns a ByteSink from construction until
// Close, and records the last timed position sample per servo id on every
// PosRead. VelocityRead does not consult that record; it takes two fresh
// samples of its own.
//
// A Bus is not safe for concurrent use from multiple goroutines — the
// physical half-duplex bus permits exactly one outstanding request, and the
// driver relies on that to keep write-then-read atomic per command. Wrap a
// Bus in an external mutex if it must be shared.
type Bus struct {
	transport *Transport
	clock     Clock

	lastSample map[uint8]sample
}

type sample struct {
	pos float64
	at  time.Time
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithDiscardEcho enables discarding a locally echoed copy of every
// transmitted frame, for half-duplex UARTs that receive their own
// transmission.
func WithDiscardEcho(discard bool) Option {
	return func(b *Bus) { b.transport.DiscardEcho = discard }
}

// WithClock overrides the clock used by the velocity estimator. Defaults to
// the system clock.
func WithClock(clock Clock) Option {
	return func(b *Bus) { b.clock = clock }
}

// NewBus constructs a Bus over sink, taking ownership of it: Close will
// close sink exactly once.
func NewBus(sink ByteSink, opts ...Option) *Bus {
	b := &Bus{
		transport:  NewTransport(sink),
		clock:      systemClock{},
		lastSample: make(map[uint8]sample),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Close releases the Bus's underlying sink. It is idempotent: calling Close
// more than once only closes the sink on the first call.
func (b *Bus) Close() error {
	if b.transport == nil || b.transport.Sink == nil {
		return nil
	}
	sink := b.transport.Sink
	b.transport.Sink = nil
	return sink.Close()
}
