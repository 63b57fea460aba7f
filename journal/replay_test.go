package journal

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayRebuildsBooks(t *testing.T) {
	t.Parallel()

	events := []Event{
		{Kind: KindAccountCreated, Entity: "a"},
		{Kind: KindAgentBound, Entity: "a", Attrs: map[string]string{AttrAgent: "agt_1"}},
		{Kind: KindDeposit, Entity: "a", Amount: math.NewInt(1000)},
		{Kind: KindStrategyExecuted, Entity: "a", Attrs: map[string]string{
			AttrTarget: "pool", AttrSuccess: "true", AttrPosition: "250",
		}},
		{Kind: KindStrategyExecuted, Entity: "a", Attrs: map[string]string{
			AttrTarget: "pool", AttrSuccess: "false", AttrPosition: "300",
		}},
		{Kind: KindPnLRecorded, Entity: "a", Amount: math.NewInt(-40)},
		{Kind: KindWithdrawal, Entity: "a", Amount: math.NewInt(100)},
		{Kind: KindPaused, Entity: "a"},
		{Kind: KindDeposit, Entity: "b", Amount: math.NewInt(5)},
		{Kind: KindStake, Entity: "staking", Amount: math.NewInt(999)},
	}

	books, err := Replay(events)
	require.NoError(t, err)

	a := books["a"]
	require.NotNil(t, a)
	assert.Equal(t, "860", a.TotalValue.String())
	assert.Equal(t, "1000", a.TotalDeposited.String())
	assert.Equal(t, "100", a.TotalWithdrawn.String())
	assert.Equal(t, "-40", a.RealizedPnL.String())
	assert.Equal(t, "250", a.Positions["pool"].String())
	assert.True(t, a.Paused)
	assert.Equal(t, "agt_1", a.Agent)

	// value == deposited - withdrawn + realized
	assert.True(t, a.TotalValue.Equal(a.TotalDeposited.Sub(a.TotalWithdrawn).Add(a.RealizedPnL)))

	assert.Equal(t, "5", books["b"].TotalValue.String())
	_, ok := books["staking"]
	assert.False(t, ok)
}

func TestReplayBadPosition(t *testing.T) {
	t.Parallel()

	_, err := Replay([]Event{{
		ID:     "bad",
		Kind:   KindStrategyExecuted,
		Entity: "a",
		Attrs:  map[string]string{AttrSuccess: "true", AttrPosition: "lots"},
	}})
	assert.Error(t, err)
}
