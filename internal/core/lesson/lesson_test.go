package lesson

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState(t *testing.T) {
	tests := []struct {
		state    State
		valid    bool
		upcoming bool
	}{
		{StatePending, true, true},
		{StateConfirmed, true, true},
		{StateCompleted, true, false},
		{StateCancelled, true, false},
		{State("archived"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.state.IsValid())
			assert.Equal(t, tt.upcoming, tt.state.Upcoming())
		})
	}
}

func TestRegistryFunc(t *testing.T) {
	var gotUser string
	reg := RegistryFunc(func(_ context.Context, userID string) ([]Lesson, error) {
		gotUser = userID
		return []Lesson{{ID: "l-1"}}, nil
	})

	lessons, err := reg.ListUpcoming(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", gotUser)
	assert.Len(t, lessons, 1)
}
