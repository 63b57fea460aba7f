package bps

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
)

func TestOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount int64
		bp     BP
		want   string
	}{
		{"half of 101", 101, 5000, "50"},
		{"quarter of 101", 101, 2500, "25"},
		{"whole", 777, Denominator, "777"},
		{"zero rate", 777, 0, "0"},
		{"truncates", 3, 3333, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.bp.Of(math.NewInt(tt.amount)).String())
		})
	}
}

func TestWithin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		part, whole int64
		limit       BP
		want        bool
	}{
		{"below", 250, 1000, 3000, true},
		{"exactly at limit", 300, 1000, 3000, true},
		{"one unit over", 301, 1000, 3000, false},
		{"well over", 350, 1000, 3000, false},
		{"fraction over is still over", 3001, 10001, 3000, false},
		{"empty account", 500, 0, 3000, true},
		{"zero limit zero part", 0, 1000, 0, true},
		{"zero limit any part", 1, 1000, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Within(math.NewInt(tt.part), math.NewInt(tt.whole), tt.limit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPercentAndString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "30", BP(3000).Percent().String())
	assert.Equal(t, "0.25%", BP(25).String())
	assert.Equal(t, "100.00%", BP(Denominator).String())
}

func TestRatio(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "25", Ratio(math.NewInt(250), math.NewInt(1000)).String())
	assert.True(t, Ratio(math.NewInt(1), math.ZeroInt()).IsZero())
}
