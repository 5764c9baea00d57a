package registry

// Kind classifies the provider surface a call was made on.
type Kind string

const (
	KindRequest     Kind = "request"
	KindTransaction Kind = "transaction"
	KindEstimate    Kind = "estimate"
	KindRPC         Kind = "rpc"
)

// AnyMethod can be used as a Rule method to accept calls of the rule's kind regardless of method.
// Such rules never score above Wildcard.
const AnyMethod = "*"

// Call is an intercepted invocation, normalised by a provider before matching.
type Call struct {
	Blockchain string         `json:"blockchain"`
	Kind       Kind           `json:"kind"`
	Method     string         `json:"method"`
	To         string         `json:"to,omitempty"`
	Args       any            `json:"args,omitempty"`
	Extras     map[string]any `json:"extras,omitempty"`

	// Raw is the undecoded payload, for matchers and response generators that need it.
	Raw any `json:"-"`
}

// Score is how specifically a rule matched a call.
type Score int

const (
	NoMatch Score = iota
	Wildcard
	Partial
	Exact
)

func (s Score) String() string {
	switch s {
	case Wildcard:
		return "wildcard"
	case Partial:
		return "partial"
	case Exact:
		return "exact"
	default:
		return "no match"
	}
}

// Matcher scores a call against a rule's argument pattern.
type Matcher interface {
	Match(call Call) Score
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(call Call) Score

// Match implements Matcher.
func (f MatcherFunc) Match(call Call) Score { return f(call) }

// Any returns a matcher that accepts every call as a wildcard.
func Any() Matcher {
	return MatcherFunc(func(Call) Score { return Wildcard })
}

// Params returns a matcher comparing the call arguments to pattern. A nil pattern is a wildcard.
// See Compare for the scoring rules.
func Params(pattern any) Matcher {
	if pattern == nil {
		return Any()
	}

	return paramsMatcher{pattern: Canonical(pattern)}
}

type paramsMatcher struct {
	pattern any
}

func (m paramsMatcher) Match(call Call) Score {
	return Compare(m.pattern, Canonical(call.Args))
}

// Response is what a matched rule answers with: an error, a value computed from the call, or a
// literal value, in that order of precedence.
type Response struct {
	Value any
	Func  func(call Call) (any, error)
	Err   error
}

// Return responds with a literal value.
func Return(v any) Response { return Response{Value: v} }

// Fail responds with err.
func Fail(err error) Response { return Response{Err: err} }

// Compute responds with the result of fn.
func Compute(fn func(call Call) (any, error)) Response { return Response{Func: fn} }

func (r Response) resolve(call Call) (any, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Func != nil {
		return r.Func(call)
	}

	return r.Value, nil
}

// Rule is one interceptable method with its argument pattern and response.
type Rule struct {
	Kind   Kind
	Method string
	// To restricts the rule to a target (contract, program or account). Empty matches any target.
	To string
	// Matcher scores the call arguments. Nil is a wildcard.
	Matcher Matcher
	// Extras are constraints on call metadata such as the sender or the value transferred. Every
	// key must be present and equal in the call's extras.
	Extras   map[string]any
	Response Response
}

// applies reports whether the rule is a candidate for call, ignoring the arguments.
func (r *Rule) applies(call Call) bool {
	if r.Kind != call.Kind {
		return false
	}
	if r.Method != AnyMethod && r.Method != call.Method {
		return false
	}
	if r.To != "" && canonicalString(r.To) != canonicalString(call.To) {
		return false
	}

	return true
}

// catchAll reports whether the rule accepts any target and any arguments.
func (r *Rule) catchAll() bool {
	return r.To == "" && r.Matcher == nil
}

func (r *Rule) score(call Call) Score {
	if len(r.Extras) > 0 && !subset(Canonical(r.Extras), Canonical(call.Extras)) {
		return NoMatch
	}

	score := Wildcard
	if r.Matcher != nil {
		score = r.Matcher.Match(call)
	}
	if r.Method == AnyMethod && score > Wildcard {
		score = Wildcard
	}

	return score
}
