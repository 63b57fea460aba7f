package id

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 1000; i++ {
		next := New()
		require.Less(t, prev, next)
		prev = next
	}
}

func TestNewParses(t *testing.T) {
	t.Parallel()

	_, err := ulid.Parse(New())
	assert.NoError(t, err)
}

func TestWithPrefix(t *testing.T) {
	t.Parallel()

	got := WithPrefix(PrefixAccount)
	assert.True(t, strings.HasPrefix(got, "acct_"))

	_, err := ulid.Parse(strings.TrimPrefix(got, "acct_"))
	assert.NoError(t, err)
}
