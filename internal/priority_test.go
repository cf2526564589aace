package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityOrdering(t *testing.T) {
	t.Run("lower numeric value is more urgent", func(t *testing.T) {
		assert.Less(t, int(SynchronousPriority), int(AnimationPriority))
		assert.Less(t, int(AnimationPriority), int(LowPriority))
		assert.Less(t, int(LowPriority), int(NoWork))
	})

	t.Run("NoWork sorts as the maximum", func(t *testing.T) {
		for _, p := range []PriorityLevel{SynchronousPriority, AnimationPriority, LowPriority} {
			assert.Less(t, p, NoWork)
		}
	})

	t.Run("String labels every level", func(t *testing.T) {
		assert.Equal(t, "Synchronous", SynchronousPriority.String())
		assert.Equal(t, "Animation", AnimationPriority.String())
		assert.Equal(t, "Low", LowPriority.String())
		assert.Equal(t, "NoWork", NoWork.String())
		assert.Equal(t, "Unknown", PriorityLevel(99).String())
	})
}

func TestMinPriority(t *testing.T) {
	t.Run("returns the more urgent value", func(t *testing.T) {
		assert.Equal(t, SynchronousPriority, minPriority(SynchronousPriority, LowPriority))
		assert.Equal(t, AnimationPriority, minPriority(NoWork, AnimationPriority))
	})

	t.Run("is stable on equal values", func(t *testing.T) {
		assert.Equal(t, LowPriority, minPriority(LowPriority, LowPriority))
	})
}
