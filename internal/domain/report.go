package domain

import (
	"sync"
	"time"

	"github.com/omunroe-com/shiftspace"
)

type DropReason string

const (
	DropUnauthorized DropReason = "unauthorized"
)

type Drop struct {
	Destination shiftspace.Destination
	Reason      DropReason
}

// Failure is one fan-out operation that did not complete.
type Failure struct {
	Operation string
	Target    string
	Err       error
	At        time.Time
}

// PublishReport collects the non-fatal outcomes of a publish or update.
// It is safe for concurrent use.
type PublishReport struct {
	mu       sync.Mutex
	dropped  []Drop
	failures []Failure
}

func (r *PublishReport) Drop(d shiftspace.Destination, reason DropReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, Drop{Destination: d, Reason: reason})
}

func (r *PublishReport) Fail(op, target string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, Failure{Operation: op, Target: target, Err: err, At: time.Now()})
}

func (r *PublishReport) Dropped() []Drop {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Drop{}, r.dropped...)
}

func (r *PublishReport) Failures() []Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Failure{}, r.failures...)
}

func (r *PublishReport) OK() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures) == 0
}
