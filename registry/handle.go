package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// ErrCallsPending is returned by AwaitCalls while fewer calls than expected were recorded.
var ErrCallsPending = errors.New("calls pending")

// CallRecord is one intercepted invocation recorded on a Handle.
type CallRecord struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	Method   string    `json:"method"`
	To       string    `json:"to,omitempty"`
	Args     any       `json:"args,omitempty"`
	Response any       `json:"response,omitempty"`
	Error    string    `json:"error,omitempty"`
	Time     time.Time `json:"-"`
}

// Calls is the append-only call log of a Handle.
type Calls struct {
	mu      sync.RWMutex
	records []CallRecord
}

// Add appends a record, assigning it an id and a timestamp when missing.
func (c *Calls) Add(rec CallRecord) {
	if rec.ID == "" {
		rec.ID = "call_" + ksuid.New().String()
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = append(c.records, rec)
}

// All returns a copy of every recorded call, oldest first.
func (c *Calls) All() []CallRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]CallRecord, len(c.records))
	copy(out, c.records)

	return out
}

// Count returns the number of recorded calls.
func (c *Calls) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.records)
}

// Handle is returned for every registered mock. It owns the rules the mock installed and records
// every call they answered.
type Handle struct {
	id            string
	name          string
	blockchain    string
	transactionID string
	rules         []*Rule
	calls         *Calls
}

// NewHandle creates a handle for rules installed on blockchain. transactionID is the synthetic
// identifier assigned to a transaction mock and may be empty.
func NewHandle(blockchain string, rules []*Rule, transactionID string) *Handle {
	return &Handle{
		id:            uuid.NewString(),
		name:          DefaultName,
		blockchain:    blockchain,
		transactionID: transactionID,
		rules:         rules,
		calls:         &Calls{},
	}
}

// ID returns the unique id of the handle.
func (h *Handle) ID() string { return h.id }

// Blockchain returns the blockchain the handle's rules are installed on.
func (h *Handle) Blockchain() string { return h.blockchain }

// TransactionID returns the synthetic transaction identifier, or "" when no transaction was mocked.
func (h *Handle) TransactionID() string { return h.transactionID }

// Rules returns the rules installed by the handle.
func (h *Handle) Rules() []*Rule {
	out := make([]*Rule, len(h.rules))
	copy(out, h.rules)

	return out
}

// Calls returns the call log.
func (h *Handle) Calls() *Calls { return h.calls }

// CallCount returns the number of recorded calls.
func (h *Handle) CallCount() int { return h.calls.Count() }

// GetCalls returns every recorded call, oldest first.
func (h *Handle) GetCalls() []CallRecord { return h.calls.All() }

// GetCall returns the most recent call.
func (h *Handle) GetCall() (CallRecord, bool) {
	all := h.calls.All()
	if len(all) == 0 {
		return CallRecord{}, false
	}

	return all[len(all)-1], true
}

// Called reports whether more than one call was recorded. A single call is reported by
// CalledOnce only.
func (h *Handle) Called() bool { return h.calls.Count() > 1 }

// CalledOnce reports whether exactly one call was recorded.
func (h *Handle) CalledOnce() bool { return h.calls.Count() == 1 }

// Printf renders an assertion message. The first %n is replaced with the engine name and the first
// %C with every recorded call as JSON, one per line.
func (h *Handle) Printf(template string) string {
	all := h.calls.All()
	lines := make([]string, len(all))
	for i, rec := range all {
		raw, err := json.Marshal(rec)
		if err != nil {
			lines[i] = fmt.Sprintf("%+v", rec)
			continue
		}
		lines[i] = string(raw)
	}

	out := strings.Replace(template, "%n", h.name, 1)

	return strings.Replace(out, "%C", strings.Join(lines, "\n"), 1)
}

// AwaitCalls blocks until at least n calls were recorded or ctx is done. It is meant for code
// under test that calls providers from other goroutines.
func (h *Handle) AwaitCalls(ctx context.Context, n int) error {
	return retry.Do(
		func() error {
			if got := h.calls.Count(); got < n {
				return fmt.Errorf("%w: %d of %d recorded", ErrCallsPending, got, n)
			}

			return nil
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(5*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

func (h *Handle) rulesOf(kind Kind) []*Rule {
	var out []*Rule
	for _, r := range h.rules {
		if r.Kind == kind {
			out = append(out, r)
		}
	}

	return out
}
