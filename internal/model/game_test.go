package model_test

import (
	"testing"

	"moral-game-server/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestAlignmentForScore(t *testing.T) {
	cases := []struct {
		score    int
		expected string
	}{
		{6, model.AlignmentGood},
		{4, model.AlignmentGood},
		{3, model.AlignmentMostlyGood},
		{1, model.AlignmentMostlyGood},
		{0, model.AlignmentNeutral},
		{-1, model.AlignmentMostlyEvil},
		{-2, model.AlignmentMostlyEvil},
		{-3, model.AlignmentEvil},
		{-6, model.AlignmentEvil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, model.AlignmentForScore(tc.score), "score %d", tc.score)
	}
}

func TestMoralDelta(t *testing.T) {
	assert.Equal(t, 2, model.MoralDelta(1))
	assert.Equal(t, 1, model.MoralDelta(2))
	assert.Equal(t, -1, model.MoralDelta(3))
	assert.Equal(t, -2, model.MoralDelta(4))
	// Ранги за пределами таблицы прижимаются к краям
	assert.Equal(t, -2, model.MoralDelta(7))
	assert.Equal(t, 2, model.MoralDelta(0))
}

func TestDescriptorForRank(t *testing.T) {
	assert.Equal(t, "virtuous", model.DescriptorForRank(1))
	assert.Equal(t, "dark", model.DescriptorForRank(4))
	assert.Equal(t, "dark", model.DescriptorForRank(9))
}
