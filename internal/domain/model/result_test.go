package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{
		BackendName: "sim_local",
		JobID:       "job-1",
		Success:     true,
		Entries: []ExperimentResult{
			{
				Name:    "bell",
				Shots:   4,
				Success: true,
				Data: ResultData{
					Counts:      map[string]int{"00": 2, "11": 2},
					Memory:      []string{"00", "11", "00", "11"},
					Statevector: []Amplitude{Amplitude(complex(0.70710678, 0)), 0, 0, Amplitude(complex(0.70710678, 0))},
				},
			},
			{
				Name:    "ghz",
				Shots:   4,
				Success: true,
				Data: ResultData{
					Counts: map[string]int{"000": 4},
				},
			},
		},
	}
}

func TestResult_Counts(t *testing.T) {
	r := sampleResult()

	counts, err := r.Counts(0)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"00": 2, "11": 2}, counts)
}

func TestResult_Counts_OutOfRange(t *testing.T) {
	r := sampleResult()

	_, err := r.Counts(2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	_, err = r.Counts(-1)
	require.Error(t, err)
}

func TestResult_Memory_MissingKind(t *testing.T) {
	r := sampleResult()

	// Entry 1 was run without memory.
	_, err := r.Memory(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no memory")
}

func TestResult_Statevector_Rounding(t *testing.T) {
	r := sampleResult()

	sv, err := r.Statevector(0, 2)
	require.NoError(t, err)
	assert.Equal(t, Amplitude(complex(0.71, 0)), sv[0])

	// Negative decimals skip rounding.
	sv, err = r.Statevector(0, -1)
	require.NoError(t, err)
	assert.Equal(t, Amplitude(complex(0.70710678, 0)), sv[0])
}

func TestResult_Statevector_DoesNotMutateStored(t *testing.T) {
	r := sampleResult()

	_, err := r.Statevector(0, 1)
	require.NoError(t, err)

	// Rounding returns a fresh slice; the stored amplitudes stay exact.
	assert.Equal(t, Amplitude(complex(0.70710678, 0)), r.Entries[0].Data.Statevector[0])
}

func TestResult_Copy_IsDeep(t *testing.T) {
	r := sampleResult()
	cp := r.Copy()

	require.Equal(t, r, cp)

	cp.Entries[0].Data.Counts["00"] = 99
	cp.Entries[0].Data.Memory[0] = "11"
	cp.Entries = append(cp.Entries, ExperimentResult{Name: "extra"})

	assert.Equal(t, 2, r.Entries[0].Data.Counts["00"])
	assert.Equal(t, "00", r.Entries[0].Data.Memory[0])
	assert.Len(t, r.Entries, 2)
}

func TestAmplitude_JSONRoundTrip(t *testing.T) {
	a := Amplitude(complex(0.5, -0.25))

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `[0.5,-0.25]`, string(data))

	var back Amplitude
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, a, back)
}

func TestResult_JSONRoundTrip(t *testing.T) {
	r := sampleResult()

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.JobID, back.JobID)
	require.Len(t, back.Entries, 2)
	assert.Equal(t, r.Entries[0].Data.Statevector, back.Entries[0].Data.Statevector)
}
