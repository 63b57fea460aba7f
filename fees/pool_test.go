package fees

import (
	"context"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/agentvault/bank"
	"github.com/rustyeddy/agentvault/bps"
	"github.com/rustyeddy/agentvault/journal"
	"github.com/rustyeddy/agentvault/vaulterr"
)

const (
	gov      bank.Address = "gov"
	poolAdr  bank.Address = "fee-pool"
	stakers  bank.Address = "staking-reserve"
	treasury bank.Address = "treasury"
	payer    bank.Address = "vault-1"
	keeper   bank.Address = "keeper"
	token    bank.Asset   = "avt"
)

func newPool(t *testing.T) (*Pool, *bank.Memory, *journal.Memory) {
	t.Helper()

	b := bank.NewMemory()
	b.Mint(token, payer, math.NewInt(10_000))

	mem := journal.NewMemory()
	p, err := New(Config{
		Owner:          gov,
		Address:        poolAdr,
		Stakers:        stakers,
		Treasury:       treasury,
		Asset:          token,
		PerformanceFee: 2_000,
		ManagementFee:  200,
	}, b, WithRecorder(journal.NewRecorder(mem, nil, nil)))
	require.NoError(t, err)
	return p, b, mem
}

func TestCollectAndDistribute101(t *testing.T) {
	t.Parallel()
	p, b, mem := newPool(t)
	ctx := context.Background()

	require.NoError(t, p.CollectPerformanceFee(ctx, payer, math.NewInt(80)))
	require.NoError(t, p.CollectManagementFee(ctx, payer, math.NewInt(21)))
	assert.Equal(t, "101", p.Balance().String())
	assert.Equal(t, "80", p.CollectedBy(Performance).String())
	assert.Equal(t, "21", p.CollectedBy(Management).String())

	s, err := p.DistributeFees(ctx, keeper)
	require.NoError(t, err)
	assert.Equal(t, "50", s.ToStakers.String())
	assert.Equal(t, "25", s.ToBurn.String())
	assert.Equal(t, "26", s.ToTreasury.String())

	assert.Equal(t, "50", b.BalanceOf(token, stakers).String())
	assert.Equal(t, "25", b.BalanceOf(token, bank.Burn).String())
	assert.Equal(t, "26", b.BalanceOf(token, treasury).String())
	assert.True(t, b.BalanceOf(token, poolAdr).IsZero())

	assert.True(t, p.Balance().IsZero())
	assert.Equal(t, "101", p.TotalCollected().String())
	assert.Equal(t, "101", p.TotalDistributed().String())
	assert.Equal(t, 1, p.Rounds())

	collected := mem.ByKind(journal.KindFeeCollected)
	require.Len(t, collected, 2)
	assert.Equal(t, "performance", collected[0].Attr(journal.AttrCategory))
	assert.Equal(t, "management", collected[1].Attr(journal.AttrCategory))

	dist := mem.ByKind(journal.KindFeesDistributed)
	require.Len(t, dist, 1)
	assert.Equal(t, string(keeper), dist[0].Actor)
	assert.Equal(t, "50", dist[0].Attr(journal.AttrToStakers))
	assert.Equal(t, "25", dist[0].Attr(journal.AttrToBurn))
	assert.Equal(t, "26", dist[0].Attr(journal.AttrToTreasury))
}

func TestDistributeEmptyPool(t *testing.T) {
	t.Parallel()
	p, _, mem := newPool(t)

	_, err := p.DistributeFees(context.Background(), keeper)
	assert.ErrorIs(t, err, vaulterr.ErrNothingToDistribute)
	assert.Empty(t, mem.ByKind(journal.KindFeesDistributed))
}

func TestDistributeIsAllOrNothing(t *testing.T) {
	t.Parallel()
	p, b, mem := newPool(t)
	ctx := context.Background()
	require.NoError(t, p.CollectPerformanceFee(ctx, payer, math.NewInt(101)))

	b.FailTransfersTo(treasury, true)
	_, err := p.DistributeFees(ctx, keeper)
	assert.ErrorIs(t, err, vaulterr.ErrTransferFailed)
	assert.ErrorIs(t, err, bank.ErrRejected)

	assert.Equal(t, "101", b.BalanceOf(token, poolAdr).String())
	assert.True(t, b.BalanceOf(token, stakers).IsZero())
	assert.True(t, b.BalanceOf(token, bank.Burn).IsZero())
	assert.Equal(t, "101", p.Balance().String())
	assert.Empty(t, mem.ByKind(journal.KindFeesDistributed))

	b.FailTransfersTo(treasury, false)
	_, err = p.DistributeFees(ctx, keeper)
	require.NoError(t, err)
}

func TestCollectRejections(t *testing.T) {
	t.Parallel()
	p, _, _ := newPool(t)
	ctx := context.Background()

	assert.ErrorIs(t, p.CollectPerformanceFee(ctx, payer, math.ZeroInt()), vaulterr.ErrInvalidAmount)
	assert.ErrorIs(t, p.CollectManagementFee(ctx, payer, math.NewInt(-1)), vaulterr.ErrInvalidAmount)
	assert.ErrorIs(t, p.CollectManagementFee(ctx, payer, math.NewInt(10_001)), vaulterr.ErrTransferFailed)
	assert.True(t, p.TotalCollected().IsZero())
}

func TestUpdateFeeRates(t *testing.T) {
	t.Parallel()
	p, _, _ := newPool(t)
	ctx := context.Background()

	assert.ErrorIs(t, p.UpdateFeeRates(ctx, gov, 2_001, 100), vaulterr.ErrInvalidConfiguration)
	assert.ErrorIs(t, p.UpdateFeeRates(ctx, gov, 1_000, 201), vaulterr.ErrInvalidConfiguration)
	assert.ErrorIs(t, p.UpdateFeeRates(ctx, payer, 1_000, 100), vaulterr.ErrUnauthorized)

	require.NoError(t, p.UpdateFeeRates(ctx, gov, 1_000, 100))
	perf, mgmt := p.Rates()
	assert.Equal(t, bps.BP(1_000), perf)
	assert.Equal(t, bps.BP(100), mgmt)
	assert.Equal(t, "100", p.PerformanceFee(math.NewInt(1_000)).String())
}

func TestUpdateAddresses(t *testing.T) {
	t.Parallel()
	p, b, _ := newPool(t)
	ctx := context.Background()

	assert.ErrorIs(t, p.UpdateAddresses(ctx, gov, "", treasury), vaulterr.ErrInvalidConfiguration)
	assert.ErrorIs(t, p.UpdateAddresses(ctx, payer, "x", "y"), vaulterr.ErrUnauthorized)
	assert.ErrorIs(t, p.UpdateAddresses(ctx, gov, poolAdr, treasury), vaulterr.ErrInvalidConfiguration)
	assert.ErrorIs(t, p.UpdateAddresses(ctx, gov, stakers, poolAdr), vaulterr.ErrInvalidConfiguration)

	require.NoError(t, p.UpdateAddresses(ctx, gov, "new-stakers", "new-treasury"))
	require.NoError(t, p.CollectPerformanceFee(ctx, payer, math.NewInt(4)))
	_, err := p.DistributeFees(ctx, keeper)
	require.NoError(t, err)

	assert.Equal(t, "2", b.BalanceOf(token, "new-stakers").String())
	assert.Equal(t, "1", b.BalanceOf(token, "new-treasury").String())
}

func TestNewValidatesRates(t *testing.T) {
	t.Parallel()

	_, err := New(Config{
		Owner: gov, Address: poolAdr, Stakers: stakers, Treasury: treasury, Asset: token,
		PerformanceFee: MaxPerformanceFee + 1,
	}, bank.NewMemory())
	assert.ErrorIs(t, err, vaulterr.ErrInvalidConfiguration)

	_, err = New(Config{Owner: gov, Address: poolAdr, Asset: token}, bank.NewMemory())
	assert.ErrorIs(t, err, vaulterr.ErrInvalidConfiguration)

	_, err = New(Config{Owner: gov, Address: poolAdr, Stakers: stakers, Treasury: poolAdr, Asset: token}, bank.NewMemory())
	assert.ErrorIs(t, err, vaulterr.ErrInvalidConfiguration)
}
