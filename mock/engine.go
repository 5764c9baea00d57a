package mock

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/go-softwarelab/common/pkg/to"

	"github.com/smartcontractkit/web3-mock/chain"
	"github.com/smartcontractkit/web3-mock/chain/evm"
	"github.com/smartcontractkit/web3-mock/chain/solana"
	"github.com/smartcontractkit/web3-mock/config"
	"github.com/smartcontractkit/web3-mock/fixture"
	"github.com/smartcontractkit/web3-mock/host"
	"github.com/smartcontractkit/web3-mock/pkg/logger"
	"github.com/smartcontractkit/web3-mock/registry"
)

// Options configure an Engine.
type Options struct {
	// Name prefixes error messages and replaces %n in Handle.Printf.
	Name string
	// Logger is named "web3mock" by the engine.
	Logger logger.Logger
	// Environment is the environment providers are installed on. A new one is created when nil.
	Environment *host.Environment
}

// WithName sets the engine name.
func WithName(name string) func(*Options) {
	return func(o *Options) { o.Name = name }
}

// WithLogger sets the engine logger.
func WithLogger(lggr logger.Logger) func(*Options) {
	return func(o *Options) { o.Logger = lggr }
}

// WithEnvironment installs providers on env instead of a new environment.
func WithEnvironment(env *host.Environment) func(*Options) {
	return func(o *Options) { o.Environment = env }
}

// Engine registers mocks and owns the registry and the environment they are served from.
//
// An engine is meant to be owned by one test, which resets it between cases. Mock is safe for
// concurrent use with the calls the providers answer.
type Engine struct {
	// mu serializes registrations so that each one is all or nothing.
	mu   sync.Mutex
	name string
	env  *host.Environment
	reg  *registry.Registry
	lggr logger.Logger
}

// New returns an engine with an empty registry.
func New(opts ...func(*Options)) *Engine {
	o := to.OptionsWithDefault(Options{
		Name:   registry.DefaultName,
		Logger: logger.Nop(),
	}, opts...)
	if o.Name == "" {
		o.Name = registry.DefaultName
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.Environment == nil {
		o.Environment = host.NewEnvironment()
	}

	lggr := o.Logger.Named("web3mock")

	return &Engine{
		name: o.Name,
		env:  o.Environment,
		reg:  registry.New(o.Name, lggr),
		lggr: lggr,
	}
}

// NewTest returns an engine logging to tb, which is reset when tb completes.
func NewTest(tb testing.TB, opts ...func(*Options)) *Engine {
	tb.Helper()

	e := New(append([]func(*Options){WithLogger(logger.Test(tb))}, opts...)...)
	tb.Cleanup(e.Reset)

	return e
}

// NewFromConfig returns an engine for cfg and mocks the fixtures it lists.
func NewFromConfig(cfg *config.Config) (*Engine, error) {
	lggr, err := logger.NewWithLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	e := New(WithName(cfg.Name), WithLogger(lggr))
	if _, err = e.LoadFixtures(cfg.Fixtures...); err != nil {
		return nil, err
	}

	return e, nil
}

// Name returns the engine name.
func (e *Engine) Name() string { return e.name }

// Environment returns the environment providers are installed on.
func (e *Engine) Environment() *host.Environment { return e.env }

// Registry returns the registry mocks are registered in.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// EVM returns the installed EVM provider.
func (e *Engine) EVM() (*evm.Provider, bool) {
	p, ok := e.env.Provider(chain.EVM)
	if !ok {
		return nil, false
	}
	ep, ok := p.(*evm.Provider)

	return ep, ok
}

// Solana returns the installed Solana provider.
func (e *Engine) Solana() (*solana.Provider, bool) {
	p, ok := e.env.Provider(chain.Solana)
	if !ok {
		return nil, false
	}
	sp, ok := p.(*solana.Provider)

	return sp, ok
}

// Mock registers cfg and returns the handle recording the calls its rules answer.
//
// cfg is a blockchain identifier (a string or a Blockchain), or an evm.Config or solana.Config
// value or pointer. A configuration that is rejected leaves the engine unchanged: the error is a
// *ConfigurationError, wraps chain.ErrUnknownBlockchain or ErrUnknownWallet, or comes from the
// adapter of the blockchain family.
func (e *Engine) Mock(cfg any) (*registry.Handle, error) {
	t, err := e.preflight(cfg)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		provider host.Provider
		rules    []*registry.Rule
		activate func()
		txID     string
	)
	switch t.family {
	case chain.EVM:
		if t.evm.Transaction != nil {
			txID = evm.NewTransactionID()
		}
		inst, ierr := evm.Install(e.env, e.reg, *t.evm, txID, e.lggr)
		if ierr != nil {
			return nil, ierr
		}
		provider, rules, activate = inst.Provider, inst.Rules, inst.Activate
	case chain.Solana:
		if t.solana.Transaction != nil {
			txID = solana.NewTransactionID()
		}
		inst, ierr := solana.Install(e.env, e.reg, *t.solana, txID, e.lggr)
		if ierr != nil {
			return nil, ierr
		}
		provider, rules, activate = inst.Provider, inst.Rules, inst.Activate
	default:
		return nil, fmt.Errorf("%w: %s", chain.ErrUnknownBlockchain, t.blockchain)
	}

	h := e.reg.NewHandle(t.blockchain, rules, txID)
	e.reg.Register(h)
	activate()

	if t.wallet != "" {
		applyWallet(provider, t.wallet)
	}
	if t.require != "" {
		e.env.Require(t.require, provider)
	}

	e.lggr.Debugw("Mocked", "blockchain", t.blockchain, "family", t.family, "rules", len(rules), "handle", h.ID())

	return h, nil
}

// MustMock is like Mock but fails tb when cfg is rejected.
func (e *Engine) MustMock(tb testing.TB, cfg any) *registry.Handle {
	tb.Helper()

	h, err := e.Mock(cfg)
	if err != nil {
		tb.Fatalf("%v", err)
	}

	return h
}

// LoadFixtures mocks every configuration of the fixture files at paths, in order. All files are
// read before anything is registered.
func (e *Engine) LoadFixtures(paths ...string) ([]*registry.Handle, error) {
	var configs []any
	for _, path := range paths {
		loaded, err := fixture.Load(path)
		if err != nil {
			return nil, err
		}
		configs = append(configs, loaded...)
	}

	handles := make([]*registry.Handle, 0, len(configs))
	for i, cfg := range configs {
		h, err := e.Mock(cfg)
		if err != nil {
			return handles, fmt.Errorf("fixture mock %d: %w", i, err)
		}
		handles = append(handles, h)
	}

	return handles, nil
}

// Trigger emits event with payload to the listeners of every provider and returns how many were
// called.
func (e *Engine) Trigger(event string, payload any) int {
	n := e.env.Trigger(event, payload)
	e.lggr.Debugw("Triggered", "event", event, "listeners", n)

	return n
}

// Reset clears the registry and the environment.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reg.Reset()
	e.env.Reset()
	e.lggr.Debugw("Reset")
}

// IsConfigurationError reports whether err rejected a configuration before anything was
// registered.
func IsConfigurationError(err error) bool {
	var cerr *ConfigurationError

	return errors.As(err, &cerr)
}
