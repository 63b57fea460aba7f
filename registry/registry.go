// Package registry instantiates accounts and binds each one to a single
// agent built from a named template.
package registry

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/rustyeddy/agentvault/account"
	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/bps"
	"github.com/rustyeddy/agentvault/id"
	"github.com/rustyeddy/agentvault/journal"
	"github.com/rustyeddy/agentvault/vaulterr"
)

type Registry struct {
	bank   bank.Transferer
	caller account.Caller
	rec    *journal.Recorder
	log    *zap.Logger

	bindMu sync.Mutex

	mu        sync.RWMutex
	templates map[string]Factory
	accounts  map[string]*account.Account
	order     []string
	agents    map[string]Agent
	bound     map[string]string // account id -> agent id
}

type Option func(*Registry)

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.log = l }
}

func WithRecorder(rec *journal.Recorder) Option {
	return func(r *Registry) { r.rec = rec }
}

// New returns a registry whose accounts settle through b and delegate
// calls through c.
func New(b bank.Transferer, c account.Caller, opts ...Option) *Registry {
	r := &Registry{
		bank:      b,
		caller:    c,
		log:       zap.NewNop(),
		templates: map[string]Factory{ExecutorTemplate: NewExecutor},
		accounts:  make(map[string]*account.Account),
		agents:    make(map[string]Agent),
		bound:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rec == nil {
		r.rec = journal.NewRecorder(nil, nil, r.log)
	}
	return r
}

func (r *Registry) RegisterTemplate(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("register template: %w: name and factory are required", vaulterr.ErrInvalidConfiguration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[name]; ok {
		return fmt.Errorf("register template %q: %w: already registered", name, vaulterr.ErrInvalidConfiguration)
	}
	r.templates[name] = f
	return nil
}

func (r *Registry) Templates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.templates))
	for name := range r.templates {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// InstantiateAccount creates a new account for owner. The account's id is
// also its bank address.
func (r *Registry) InstantiateAccount(ctx context.Context, owner bank.Address, profile account.RiskProfile, maxExposure bps.BP) (string, error) {
	acctID := id.WithPrefix(id.PrefixAccount)
	a, err := account.New(account.Config{
		ID:          acctID,
		Owner:       owner,
		Address:     bank.Address(acctID),
		RiskProfile: profile,
		MaxExposure: maxExposure,
	}, r.bank, r.caller, account.WithLogger(r.log), account.WithRecorder(r.rec))
	if err != nil {
		return "", fmt.Errorf("instantiate account: %w", err)
	}

	r.mu.Lock()
	r.accounts[acctID] = a
	r.order = append(r.order, acctID)
	r.mu.Unlock()

	r.log.Info("account created",
		zap.String("account", acctID),
		zap.String("owner", string(owner)),
		zap.Stringer("profile", profile),
		zap.Stringer("max_exposure", maxExposure),
	)
	r.rec.Emit(journal.Event{
		Kind:   journal.KindAccountCreated,
		Entity: acctID,
		Actor:  string(owner),
		Attrs: map[string]string{
			journal.AttrOwner:    string(owner),
			journal.AttrProfile:  profile.String(),
			journal.AttrExposure: strconv.FormatUint(uint64(maxExposure), 10),
		},
	})
	return acctID, nil
}

// InstantiateAgent builds an agent from template, whitelists targets on
// the account and binds the agent to it. Only the account owner may do
// this, and only once per account.
func (r *Registry) InstantiateAgent(ctx context.Context, caller bank.Address, accountID, template string, targets []bank.Address) (string, error) {
	const op = "instantiate agent"

	r.bindMu.Lock()
	defer r.bindMu.Unlock()

	a, err := r.Account(accountID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if caller != a.Owner() {
		return "", fmt.Errorf("%s: %w: %s does not own %s", op, vaulterr.ErrUnauthorized, caller, accountID)
	}

	r.mu.RLock()
	prev, bound := r.bound[accountID]
	factory, ok := r.templates[template]
	r.mu.RUnlock()
	if bound {
		return "", fmt.Errorf("%s: %w: %s has agent %s", op, vaulterr.ErrAlreadyBound, accountID, prev)
	}
	if cur := a.Agent(); !cur.IsZero() {
		return "", fmt.Errorf("%s: %w: %s has agent %s", op, vaulterr.ErrAlreadyBound, accountID, cur)
	}
	if !ok {
		return "", fmt.Errorf("%s: %w: template %q", op, vaulterr.ErrNotFound, template)
	}
	for _, t := range targets {
		if t.IsZero() {
			return "", fmt.Errorf("%s: %w: empty target", op, vaulterr.ErrInvalidConfiguration)
		}
	}

	agentID := id.WithPrefix(id.PrefixAgent)
	agent, err := factory(Spec{
		ID:       agentID,
		Address:  bank.Address(agentID),
		Template: template,
		Account:  a,
		Targets:  slices.Clone(targets),
	})
	if err != nil {
		return "", fmt.Errorf("%s: template %q: %w", op, template, err)
	}

	if err := a.Bind(ctx, caller, agent.Address(), targets); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	r.agents[agentID] = agent
	r.bound[accountID] = agentID
	r.mu.Unlock()

	r.log.Info("agent bound",
		zap.String("account", accountID),
		zap.String("agent", agentID),
		zap.String("template", template),
		zap.Int("targets", len(targets)),
	)
	r.rec.Emit(journal.Event{
		Kind:   journal.KindAgentBound,
		Entity: accountID,
		Actor:  string(caller),
		Attrs: map[string]string{
			journal.AttrAgent:    string(agent.Address()),
			journal.AttrTemplate: template,
		},
	})
	return agentID, nil
}

func (r *Registry) Account(accountID string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, vaulterr.ErrNotFound)
	}
	return a, nil
}

func (r *Registry) Agent(agentID string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ag, ok := r.agents[agentID]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", agentID, vaulterr.ErrNotFound)
	}
	return ag, nil
}

// AgentFor returns the agent bound to an account.
func (r *Registry) AgentFor(accountID string) (Agent, error) {
	r.mu.RLock()
	agentID, ok := r.bound[accountID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("agent for %s: %w", accountID, vaulterr.ErrNotFound)
	}
	return r.Agent(agentID)
}

// Accounts lists account ids in creation order.
func (r *Registry) Accounts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}
