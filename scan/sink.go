package scan

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Pattern: Strategy -- swap record delivery without
// changing the scheduler.

// Sink receives completed records. Publish is called
// concurrently from many workers and must deliver each
// record as one indivisible unit.
type Sink interface {
	Publish(rec Record) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(rec Record) error

// Publish delegates to the wrapped function.
func (f SinkFunc) Publish(rec Record) error {
	return f(rec)
}

// ChanSink returns a Sink that sends every record on ch.
// The caller owns ch and must keep draining it until Run
// returns.
func ChanSink(ch chan<- Record) Sink {
	return SinkFunc(func(rec Record) error {
		ch <- rec

		return nil
	})
}

// ChanSinkContext is like ChanSink but gives up once ctx
// is done.
func ChanSinkContext(
	ctx context.Context,
	ch chan<- Record,
) Sink {
	return SinkFunc(func(rec Record) error {
		select {
		case ch <- rec:
			return nil
		case <-ctx.Done():
			return fmt.Errorf(
				"publishing %s: %w", rec.Path, ctx.Err(),
			)
		}
	})
}

// Collector is a Sink that keeps every record in memory.
// The zero value is ready to use.
type Collector struct {
	mu      sync.Mutex
	records []Record
}

// Publish stores rec.
func (c *Collector) Publish(rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = append(c.records, rec)

	return nil
}

// Records returns a copy of the collected records sorted
// by path.
func (c *Collector) Records() []Record {
	c.mu.Lock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})

	return out
}

// Len returns the number of collected records.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.records)
}
