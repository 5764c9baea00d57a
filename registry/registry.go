package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/smartcontractkit/web3-mock/pkg/logger"
)

// DefaultName is the name token used in diagnostics.
const DefaultName = "Web3Mock"

// ErrUnmatchedCall is matched by every UnmatchedCallError.
var ErrUnmatchedCall = errors.New("unmatched call")

// UnmatchedCallError is returned when an intercepted call has no corresponding rule.
type UnmatchedCallError struct {
	Name string
	Call Call
	// Candidates is the number of rules registered for the call's kind and method whose arguments
	// did not match.
	Candidates int
}

func (e *UnmatchedCallError) Error() string {
	view := e.Call
	view.To = canonicalString(view.To)
	view.Args = Canonical(view.Args)
	view.Extras = nil
	if extras, ok := Canonical(e.Call.Extras).(map[string]any); ok && len(extras) > 0 {
		view.Extras = extras
	}

	payload, err := json.Marshal(view)
	if err != nil {
		payload = []byte(fmt.Sprintf("%+v", view))
	}

	msg := fmt.Sprintf("%s: Please mock the %s: %s", e.Name, e.Call.Kind, payload)
	if e.Candidates > 0 {
		msg += fmt.Sprintf(" (%d mock(s) for %q did not match)", e.Candidates, e.Call.Method)
	}

	return msg
}

// Is implements errors.Is.
func (e *UnmatchedCallError) Is(target error) bool {
	return target == ErrUnmatchedCall
}

// Dispatcher answers intercepted calls. Providers are wired to a Dispatcher when installed.
type Dispatcher interface {
	// Dispatch answers a single call.
	Dispatch(call Call) (any, error)
	// DispatchGroup answers a call made of several parts, such as a transaction made of
	// instructions.
	DispatchGroup(summary Call, parts []Call) (any, error)
}

var _ Dispatcher = (*Registry)(nil)

// Registry is the ordered collection of mock handles. The most recently registered handle comes
// first and wins ties.
type Registry struct {
	mu      sync.RWMutex
	handles []*Handle

	name string
	lggr logger.Logger
}

// New creates an empty registry. name is used as the token in diagnostics and defaults to
// DefaultName.
func New(name string, lggr logger.Logger) *Registry {
	if name == "" {
		name = DefaultName
	}
	if lggr == nil {
		lggr = logger.Nop()
	}

	return &Registry{
		name: name,
		lggr: lggr.Named("registry"),
	}
}

// Name returns the diagnostics name token.
func (r *Registry) Name() string { return r.name }

// NewHandle is like the package level NewHandle but names the handle after the registry.
func (r *Registry) NewHandle(blockchain string, rules []*Rule, transactionID string) *Handle {
	h := NewHandle(blockchain, rules, transactionID)
	h.name = r.name

	return h
}

// Register prepends h, giving it priority over every handle registered before.
func (r *Registry) Register(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handles = append([]*Handle{h}, r.handles...)

	r.lggr.Debugw("Registered mock",
		"handle", h.id,
		"blockchain", h.blockchain,
		"rules", len(h.rules),
		"total", len(r.handles),
	)
}

// Handles returns the registered handles, newest first.
func (r *Registry) Handles() []*Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Handle, len(r.handles))
	copy(out, r.handles)

	return out
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handles)
}

// Reset removes every handle.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lggr.Debugw("Reset registry", "removed", len(r.handles))
	r.handles = nil
}

// Match finds the rule that answers call.
//
// Rules of other blockchains, kinds, methods or targets are skipped. The remaining rules are
// scored by their matcher and the highest score wins: an exact argument match beats a partial one,
// which beats a wildcard. Ties go to the most recently registered handle.
func (r *Registry) Match(call Call) (*Rule, *Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best       *Rule
		owner      *Handle
		bestScore  = NoMatch
		candidates int
	)
	for _, h := range r.handles {
		if h.blockchain != call.Blockchain {
			continue
		}
		for _, rule := range h.rules {
			if !rule.applies(call) {
				continue
			}
			candidates++
			if s := rule.score(call); s > bestScore {
				best, owner, bestScore = rule, h, s
			}
		}
	}

	if best == nil {
		err := &UnmatchedCallError{Name: r.name, Call: call, Candidates: candidates}
		r.lggr.Warnw("Unmatched call", "kind", call.Kind, "method", call.Method, "to", call.To, "candidates", candidates)

		return nil, nil, err
	}

	return best, owner, nil
}

// Dispatch matches call, resolves the response of the winning rule and records the call on the
// owning handle.
func (r *Registry) Dispatch(call Call) (any, error) {
	rule, h, err := r.Match(call)
	if err != nil {
		return nil, err
	}

	value, err := rule.Response.resolve(call)
	h.calls.Add(newRecord(call, value, err))

	return value, err
}

// MatchGroup finds the handle answering a call made of parts. A handle qualifies when every one of
// its rules of the summary's kind matches at least one part; its score is the weakest of those
// matches. A call without parts is only answered by rules with neither a target nor a matcher,
// scored against the summary's extras. The highest score wins, ties go to the most recently
// registered handle.
func (r *Registry) MatchGroup(summary Call, parts []Call) (*Handle, *Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		chosen     *Handle
		first      *Rule
		bestScore  = NoMatch
		candidates int
	)
	for _, h := range r.handles {
		if h.blockchain != summary.Blockchain {
			continue
		}
		rules := h.rulesOf(summary.Kind)
		if len(rules) == 0 {
			continue
		}
		candidates++

		weakest := Exact
		for _, rule := range rules {
			ruleBest := NoMatch
			for _, part := range parts {
				if !rule.applies(part) {
					continue
				}
				if s := rule.score(part); s > ruleBest {
					ruleBest = s
				}
			}
			if len(parts) == 0 && rule.catchAll() {
				ruleBest = rule.score(summary)
			}
			if ruleBest < weakest {
				weakest = ruleBest
			}
			if weakest == NoMatch {
				break
			}
		}

		if weakest > bestScore {
			chosen, first, bestScore = h, rules[0], weakest
		}
	}

	if chosen == nil {
		err := &UnmatchedCallError{Name: r.name, Call: summary, Candidates: candidates}
		r.lggr.Warnw("Unmatched call group", "kind", summary.Kind, "method", summary.Method, "parts", len(parts), "candidates", candidates)

		return nil, nil, err
	}

	return chosen, first, nil
}

// DispatchGroup matches a call made of parts and answers it with the response of the first rule
// of the winning handle. One record is added for the whole group.
func (r *Registry) DispatchGroup(summary Call, parts []Call) (any, error) {
	h, rule, err := r.MatchGroup(summary, parts)
	if err != nil {
		return nil, err
	}

	value, err := rule.Response.resolve(summary)
	h.calls.Add(newRecord(summary, value, err))

	return value, err
}

func newRecord(call Call, value any, err error) CallRecord {
	rec := CallRecord{
		Kind:     call.Kind,
		Method:   call.Method,
		To:       call.To,
		Args:     Canonical(call.Args),
		Response: value,
	}
	if err != nil {
		rec.Error = err.Error()
	}

	return rec
}
