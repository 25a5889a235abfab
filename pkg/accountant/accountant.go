// Package accountant defines the outbound counter-sample contract (§6:
// "Accountant interface (outbound)") and a minimal in-process
// implementation. The core only ever emits samples; what happens to them
// downstream (aggregation, export, dropping) is an external collaborator's
// concern.
package accountant

import (
	"time"

	"github.com/solarflare-labs/vastore/internal/value"
)

// Sample is one counter observation: a name, a value, and the instant it
// was taken.
type Sample struct {
	Timestamp time.Time
	Name      string
	Value     uint64
}

// Record renders the sample in the shared data universe (§3.1), so it can
// travel the same wire/log path as a status record.
func (s Sample) Record() value.Data {
	return value.RecordVal(value.Record{
		Names: []string{"timestamp", "name", "value"},
		Values: []value.Data{
			value.Time(s.Timestamp),
			value.String(s.Name),
			value.Count(s.Value),
		},
	})
}

// Accountant is the outbound counter-sample sink. Delivery is best-effort
// (§6): a full or absent downstream never blocks or fails the caller.
type Accountant interface {
	// Count emits one named counter sample with the given value.
	Count(name string, v uint64)
}

// Nop discards every sample; used where no accountant is configured.
type Nop struct{}

func (Nop) Count(string, uint64) {}

// InProc is an in-process accountant that buffers samples on a channel for
// a consumer goroutine to drain via Samples(). A full buffer drops the new
// sample rather than blocking the producer, matching the "best-effort"
// delivery contract.
type InProc struct {
	samples chan Sample
}

// NewInProc allocates an InProc accountant with the given buffer capacity.
func NewInProc(capacity int) *InProc {
	return &InProc{samples: make(chan Sample, capacity)}
}

// Count emits one sample, dropping it silently if the buffer is full.
func (a *InProc) Count(name string, v uint64) {
	sample := Sample{Timestamp: time.Now(), Name: name, Value: v}
	select {
	case a.samples <- sample:
	default:
	}
}

// Samples exposes the receive side of the buffer for a draining consumer.
func (a *InProc) Samples() <-chan Sample { return a.samples }

// Close stops accepting further delivery by closing the underlying
// channel; Count must not be called again after Close.
func (a *InProc) Close() { close(a.samples) }
