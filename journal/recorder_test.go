package journal

import (
	"errors"
	"strings"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rustyeddy/agentvault/clock"
)

type failingJournal struct{}

func (failingJournal) Record(Event) error { return errors.New("disk full") }
func (failingJournal) Close() error       { return nil }

func TestRecorderStampsEvents(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mem := NewMemory()
	r := NewRecorder(mem, clock.NewManual(now), nil)

	out := r.Emit(Event{Kind: KindPaused, Entity: "a"})

	assert.True(t, strings.HasPrefix(out.ID, "evt_"))
	assert.True(t, out.Time.Equal(now))
	assert.True(t, out.Amount.IsZero())

	got := mem.Events()
	assert.Len(t, got, 1)
	assert.Equal(t, out.ID, got[0].ID)
	assert.Len(t, mem.ByKind(KindPaused), 1)
	assert.Empty(t, mem.ByKind(KindUnpaused))
}

func TestRecorderLogsSinkFailure(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	r := NewRecorder(failingJournal{}, clock.Real{}, zap.New(core))

	r.Emit(Event{Kind: KindDeposit, Entity: "a", Amount: math.NewInt(1)})

	entries := logs.FilterMessage("journal record failed").All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "deposit", entries[0].ContextMap()["kind"])
}

func TestRecorderNilJournal(t *testing.T) {
	t.Parallel()

	r := NewRecorder(nil, nil, nil)
	assert.NotPanics(t, func() { r.Emit(Event{Kind: KindPaused}) })
}
