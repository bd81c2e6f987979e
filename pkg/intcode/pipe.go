package intcode

import (
	"context"
	"sync"
)

// Input is the consumer end a machine reads opcode 3 values from.
type Input interface {
	// Recv blocks until a value is available. It returns ErrInputClosed
	// once the producer closed the stream and every value was consumed.
	Recv(ctx context.Context) (int64, error)
	// TryRecv never blocks. ok is false when no value is pending.
	TryRecv() (v int64, ok bool)
}

// Output is the producer end a machine writes opcode 4 values to. Send
// must not block.
type Output interface {
	Send(v int64)
	Close()
}

// Pipe is an unbounded FIFO with a single producer and a single consumer.
// It implements both Input and Output so one Pipe connects two machines.
type Pipe struct {
	mu     sync.Mutex
	queue  []int64
	closed bool
	ready  chan struct{}
}

var (
	_ Input  = (*Pipe)(nil)
	_ Output = (*Pipe)(nil)
)

// NewPipe returns an open pipe that already holds seed.
func NewPipe(seed ...int64) *Pipe {
	p := &Pipe{
		queue: append([]int64(nil), seed...),
		ready: make(chan struct{}, 1),
	}

	return p
}

func (p *Pipe) Send(v int64) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		panic("intcode: send on closed pipe")
	}
	p.queue = append(p.queue, v)
	p.mu.Unlock()

	p.wake()
}

// Close marks the end of the stream. Values already queued can still be
// received. Closing twice is a no-op.
func (p *Pipe) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wake()
}

func (p *Pipe) wake() {
	select {
	case p.ready <- struct{}{}:
	default:
	}
}

func (p *Pipe) Recv(ctx context.Context) (int64, error) {
	for {
		p.mu.Lock()
		if len(p.queue) > 0 {
			v := p.pop()
			p.mu.Unlock()
			return v, nil
		}
		closed := p.closed
		p.mu.Unlock()

		if closed {
			return 0, ErrInputClosed
		}

		select {
		case <-p.ready:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func (p *Pipe) TryRecv() (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 {
		return 0, false
	}

	return p.pop(), true
}

func (p *Pipe) pop() int64 {
	v := p.queue[0]
	p.queue = p.queue[1:]
	return v
}

// Drain removes and returns every queued value without blocking.
func (p *Pipe) Drain() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	vals := p.queue
	p.queue = nil
	return vals
}

func (p *Pipe) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.queue)
}

func (p *Pipe) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.closed
}
