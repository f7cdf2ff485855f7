package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExperiment_Validate(t *testing.T) {
	tests := []struct {
		name        string
		exp         Experiment
		expectError bool
	}{
		{
			name: "valid experiment",
			exp: Experiment{
				Name:       "bell",
				Definition: json.RawMessage(`{"gates":[["h",0],["cx",0,1]]}`),
				Shots:      1024,
			},
			expectError: false,
		},
		{
			name: "missing name",
			exp: Experiment{
				Definition: json.RawMessage(`{}`),
			},
			expectError: true,
		},
		{
			name: "missing definition",
			exp: Experiment{
				Name: "bell",
			},
			expectError: true,
		},
		{
			name: "negative shots",
			exp: Experiment{
				Name:       "bell",
				Definition: json.RawMessage(`{}`),
				Shots:      -1,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.exp.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExperimentRef_Variants(t *testing.T) {
	byName := RefByName("bell")
	assert.Equal(t, RefKindName, byName.Kind())
	assert.Equal(t, "bell", byName.Name())
	assert.Equal(t, "bell", byName.String())

	exp := &Experiment{Name: "ghz", Definition: json.RawMessage(`{}`)}
	byExp := RefByExperiment(exp)
	assert.Equal(t, RefKindExperiment, byExp.Kind())
	assert.Equal(t, "ghz", byExp.Name())

	byIndex := RefByIndex(7)
	assert.Equal(t, RefKindIndex, byIndex.Kind())
	assert.Equal(t, 7, byIndex.Index())
	assert.Equal(t, "#7", byIndex.String())
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.True(t, JobStatusDone.Terminal())
	assert.True(t, JobStatusError.Terminal())
	assert.True(t, JobStatusCancelled.Terminal())
	assert.False(t, JobStatusQueued.Terminal())
	assert.False(t, JobStatusRunning.Terminal())
}

func TestJobStatus_UnmarshalText(t *testing.T) {
	var s JobStatus
	require.NoError(t, s.UnmarshalText([]byte(" Done ")))
	assert.Equal(t, JobStatusDone, s)

	err := s.UnmarshalText([]byte("exploded"))
	assert.Error(t, err)
}
