package journal

import (
	"strings"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
)

func TestFormatEventOrg(t *testing.T) {
	t.Parallel()

	e := Event{
		ID:     "evt_01HZX3ABCDEFG",
		Time:   time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC),
		Kind:   KindFeesDistributed,
		Entity: "fees",
		Actor:  "keeper",
		Asset:  "native",
		Amount: math.NewInt(101),
		Attrs: map[string]string{
			AttrToTreasury: "26",
			AttrToStakers:  "50",
			AttrToBurn:     "25",
		},
	}

	result := FormatEventOrg(e)

	assert.Contains(t, result, "** fees_distributed: fees (01HZX3AB)")
	assert.Contains(t, result, ":ID: evt_01HZX3ABCDEFG")
	assert.Contains(t, result, ":TIME: 2024-03-15T10:30:45Z")
	assert.Contains(t, result, ":ACTOR: keeper")
	assert.Contains(t, result, ":AMOUNT: 101")
	assert.Contains(t, result, ":END:")

	// Attributes come out sorted by key.
	burn := strings.Index(result, ":TO_BURN: 25")
	stakers := strings.Index(result, ":TO_STAKERS: 50")
	treasury := strings.Index(result, ":TO_TREASURY: 26")
	assert.True(t, burn >= 0 && burn < stakers && stakers < treasury)
}

func TestFormatEventOrgOmitsEmptyFields(t *testing.T) {
	t.Parallel()

	result := FormatEventOrg(Event{ID: "x", Kind: KindPaused, Entity: "acct"})

	assert.NotContains(t, result, ":ACTOR:")
	assert.NotContains(t, result, ":ASSET:")
	assert.Contains(t, result, ":AMOUNT: 0")
}

func TestFormatEventsOrg(t *testing.T) {
	t.Parallel()

	out := FormatEventsOrg([]Event{
		{ID: "a", Kind: KindPaused, Entity: "acct"},
		{ID: "b", Kind: KindUnpaused, Entity: "acct"},
	})

	assert.Equal(t, 2, strings.Count(out, ":PROPERTIES:"))
	assert.Contains(t, out, "** paused: acct (a)")
	assert.Contains(t, out, "** unpaused: acct (b)")
}
