package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusDraft, true},
		{StatusDraft, StatusPublished, true},
		{StatusDraft, StatusArchived, true},
		{StatusPublished, StatusPublished, true},
		{StatusPublished, StatusArchived, true},
		{StatusPublished, StatusDraft, false},
		{StatusArchived, StatusArchived, true},
		{StatusArchived, StatusDraft, false},
		{StatusArchived, StatusPublished, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusDraft.IsValid())
	assert.True(t, StatusArchived.IsValid())
	assert.False(t, Status("deleted").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestRunningMean(t *testing.T) {
	assert.InDelta(t, 4.0, RunningMean(0, 0, 4), 1e-9)
	assert.InDelta(t, 4.5, RunningMean(4, 1, 5), 1e-9)
	// Mean 3 over 2 ratings plus a 1 -> (6+1)/3
	assert.InDelta(t, 7.0/3.0, RunningMean(3, 2, 1), 1e-9)
}

func TestCourse_HasStudent(t *testing.T) {
	c := &Course{Students: []string{"a", "b"}}
	assert.True(t, c.HasStudent("b"))
	assert.False(t, c.HasStudent("c"))
}
