package curated_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CastilloDel/debugito/internal/curated"
)

func TestErrorf_FormatsLikeFmtErrorf(t *testing.T) {
	err := curated.Errorf("loading binary: %w", errors.New("not found"))
	assert.Equal(t, "loading binary: not found", err.Error())
}

func TestIs_MatchesOnPattern(t *testing.T) {
	err := curated.Errorf("no binary loaded")
	assert.True(t, curated.Is(err, "no binary loaded"))
	assert.False(t, curated.Is(err, "something else"))
}

func TestHas_MatchesWrappedPattern(t *testing.T) {
	inner := curated.Errorf("not a valid breakpoint position")
	outer := curated.Errorf("adding breakpoint: %w", inner)
	assert.True(t, curated.Has(outer, "not a valid breakpoint position"))
}

func TestUnwrap_ReturnsWrappedError(t *testing.T) {
	inner := errors.New("short read")
	outer := curated.Errorf("reading memory: %w", inner)

	require.True(t, errors.Is(outer, inner))
}
