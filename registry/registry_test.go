package registry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/agentvault/account"
	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/journal"
	"github.com/rustyeddy/agentvault/vaulterr"
)

const (
	owner bank.Address = "owner"
	dex   bank.Address = "dex"
)

func newRegistry(t *testing.T) (*Registry, *bank.Memory, *journal.Memory) {
	t.Helper()

	b := bank.NewMemory()
	b.Mint(bank.Native, owner, math.NewInt(10_000))

	router := account.NewRouter()
	router.Handle(dex, func(context.Context, bank.Address, []byte) ([]byte, error) { return nil, nil })

	mem := journal.NewMemory()
	return New(b, router, WithRecorder(journal.NewRecorder(mem, nil, nil))), b, mem
}

func TestInstantiateAccountAndAgent(t *testing.T) {
	t.Parallel()
	r, _, mem := newRegistry(t)
	ctx := context.Background()

	acctID, err := r.InstantiateAccount(ctx, owner, account.Moderate, 3000)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(acctID, "acct_"))

	agentID, err := r.InstantiateAgent(ctx, owner, acctID, ExecutorTemplate, []bank.Address{dex})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(agentID, "agt_"))

	a, err := r.Account(acctID)
	require.NoError(t, err)
	assert.Equal(t, bank.Address(agentID), a.Agent())
	assert.True(t, a.IsTargetAllowed(dex))
	assert.Equal(t, bank.Address(acctID), a.Address())

	ag, err := r.AgentFor(acctID)
	require.NoError(t, err)
	assert.Equal(t, agentID, ag.ID())
	assert.Equal(t, acctID, ag.AccountID())
	assert.Equal(t, ExecutorTemplate, ag.Template())

	_, err = r.InstantiateAgent(ctx, owner, acctID, ExecutorTemplate, nil)
	assert.ErrorIs(t, err, vaulterr.ErrAlreadyBound)

	assert.Equal(t, []string{acctID}, r.Accounts())
	assert.Len(t, mem.ByKind(journal.KindAccountCreated), 1)
	bound := mem.ByKind(journal.KindAgentBound)
	require.Len(t, bound, 1)
	assert.Equal(t, agentID, bound[0].Attr(journal.AttrAgent))
}

func TestExecutorDrivesItsAccount(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)
	ctx := context.Background()

	acctID, err := r.InstantiateAccount(ctx, owner, account.Aggressive, 5000)
	require.NoError(t, err)
	agentID, err := r.InstantiateAgent(ctx, owner, acctID, ExecutorTemplate, []bank.Address{dex})
	require.NoError(t, err)

	a, err := r.Account(acctID)
	require.NoError(t, err)
	require.NoError(t, a.Deposit(ctx, owner, math.NewInt(1_000)))

	ag, err := r.Agent(agentID)
	require.NoError(t, err)
	x, ok := ag.(*Executor)
	require.True(t, ok)
	assert.Equal(t, []bank.Address{dex}, x.Targets())

	exec, err := x.Execute(ctx, dex, nil, math.NewInt(500))
	require.NoError(t, err)
	assert.True(t, exec.Success)

	_, err = x.Execute(ctx, dex, nil, math.NewInt(501))
	assert.ErrorIs(t, err, vaulterr.ErrExposureLimitExceeded)

	require.NoError(t, x.Mark(ctx, dex, math.NewInt(520)))
	require.NoError(t, x.Report(ctx, bank.Native, math.NewInt(20)))
	assert.Equal(t, "1020", a.Performance().TotalValue.String())

	require.NoError(t, x.Pause(ctx, "done"))
	_, err = x.Execute(ctx, dex, nil, math.NewInt(1))
	assert.ErrorIs(t, err, vaulterr.ErrPaused)
}

func TestInstantiateAgentRejections(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)
	ctx := context.Background()

	_, err := r.InstantiateAgent(ctx, owner, "acct_missing", ExecutorTemplate, nil)
	assert.ErrorIs(t, err, vaulterr.ErrNotFound)

	acctID, err := r.InstantiateAccount(ctx, owner, account.Conservative, 1000)
	require.NoError(t, err)

	_, err = r.InstantiateAgent(ctx, "mallory", acctID, ExecutorTemplate, nil)
	assert.ErrorIs(t, err, vaulterr.ErrUnauthorized)

	_, err = r.InstantiateAgent(ctx, owner, acctID, "arbitrage", nil)
	assert.ErrorIs(t, err, vaulterr.ErrNotFound)

	_, err = r.InstantiateAgent(ctx, owner, acctID, ExecutorTemplate, []bank.Address{""})
	assert.ErrorIs(t, err, vaulterr.ErrInvalidConfiguration)

	// None of the failures bound anything.
	_, err = r.AgentFor(acctID)
	assert.ErrorIs(t, err, vaulterr.ErrNotFound)
	_, err = r.InstantiateAgent(ctx, owner, acctID, ExecutorTemplate, nil)
	require.NoError(t, err)
}

func TestAgentSetDirectlyBlocksBinding(t *testing.T) {
	t.Parallel()
	r, _, mem := newRegistry(t)
	ctx := context.Background()

	acctID, err := r.InstantiateAccount(ctx, owner, account.Moderate, 3000)
	require.NoError(t, err)
	a, err := r.Account(acctID)
	require.NoError(t, err)
	require.NoError(t, a.SetAgent(ctx, owner, "hand-picked"))

	_, err = r.InstantiateAgent(ctx, owner, acctID, ExecutorTemplate, []bank.Address{dex})
	assert.ErrorIs(t, err, vaulterr.ErrAlreadyBound)
	assert.False(t, a.IsTargetAllowed(dex))
	assert.Equal(t, bank.Address("hand-picked"), a.Agent())

	_, err = r.AgentFor(acctID)
	assert.ErrorIs(t, err, vaulterr.ErrNotFound)
	assert.Empty(t, mem.ByKind(journal.KindAgentBound))
}

func TestInstantiateAccountValidates(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)

	_, err := r.InstantiateAccount(context.Background(), owner, account.Moderate, 5001)
	assert.ErrorIs(t, err, vaulterr.ErrInvalidConfiguration)
	_, err = r.InstantiateAccount(context.Background(), "", account.Moderate, 100)
	assert.ErrorIs(t, err, vaulterr.ErrInvalidConfiguration)
	assert.Empty(t, r.Accounts())
}

func TestFactoryFailureLeavesAccountUnbound(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)
	ctx := context.Background()

	boom := errors.New("no model weights")
	require.NoError(t, r.RegisterTemplate("llm", func(Spec) (Agent, error) { return nil, boom }))
	assert.ErrorIs(t, r.RegisterTemplate("llm", NewExecutor), vaulterr.ErrInvalidConfiguration)
	assert.ErrorIs(t, r.RegisterTemplate("", NewExecutor), vaulterr.ErrInvalidConfiguration)
	assert.Equal(t, []string{ExecutorTemplate, "llm"}, r.Templates())

	acctID, err := r.InstantiateAccount(ctx, owner, account.Moderate, 2000)
	require.NoError(t, err)

	_, err = r.InstantiateAgent(ctx, owner, acctID, "llm", []bank.Address{dex})
	assert.ErrorIs(t, err, boom)

	a, err := r.Account(acctID)
	require.NoError(t, err)
	assert.True(t, a.Agent().IsZero())
	assert.False(t, a.IsTargetAllowed(dex))
}

func TestConcurrentBindingBindsOnce(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)
	ctx := context.Background()

	acctID, err := r.InstantiateAccount(ctx, owner, account.Moderate, 2000)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, dupe int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.InstantiateAgent(ctx, owner, acctID, ExecutorTemplate, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, vaulterr.ErrAlreadyBound):
				dupe++
			default:
				t.Errorf("unexpected: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 15, dupe)
}
