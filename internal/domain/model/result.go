package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Amplitude is a complex amplitude with JSON support. It marshals as a
// two-element [real, imag] array, matching the wire shape used by backends.
type Amplitude complex128

// MarshalJSON implements json.Marshaler.
func (a Amplitude) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{real(complex128(a)), imag(complex128(a))})
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amplitude) UnmarshalJSON(data []byte) error {
	var parts [2]float64
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("unmarshal amplitude: %w", err)
	}
	*a = Amplitude(complex(parts[0], parts[1]))
	return nil
}

// Round returns the amplitude with both components rounded to the given
// number of decimals. Negative decimals skip rounding.
func (a Amplitude) Round(decimals int) Amplitude {
	if decimals < 0 {
		return a
	}
	scale := math.Pow10(decimals)
	c := complex128(a)
	return Amplitude(complex(
		math.Round(real(c)*scale)/scale,
		math.Round(imag(c)*scale)/scale,
	))
}

// ResultData holds the measured data kinds a backend may return for one
// experiment. Only the kinds requested at submission time are populated.
type ResultData struct {
	// Counts maps measured bitstrings to occurrence counts.
	Counts map[string]int `json:"counts,omitempty"`
	// Memory is the per-shot readout sequence, one bitstring per shot.
	Memory []string `json:"memory,omitempty"`
	// Statevector is the final statevector of the experiment.
	Statevector []Amplitude `json:"statevector,omitempty"`
	// Unitary is the final unitary of the experiment.
	Unitary [][]Amplitude `json:"unitary,omitempty"`
}

// ExperimentResult is the outcome of a single experiment within a job.
type ExperimentResult struct {
	Name    string     `json:"name"`
	Shots   int        `json:"shots"`
	Success bool       `json:"success"`
	Status  string     `json:"status,omitempty"`
	Data    ResultData `json:"data"`
}

// Result is the payload produced by one completed job: one entry per
// experiment, in the order the experiments were submitted within the job.
// A Result is treated as immutable once obtained; use Copy before mutating.
type Result struct {
	BackendName string             `json:"backend_name"`
	JobID       string             `json:"job_id"`
	Success     bool               `json:"success"`
	Date        time.Time          `json:"date,omitzero"`
	Entries     []ExperimentResult `json:"entries"`
}

// entry validates the offset and returns the entry at that position.
func (r *Result) entry(i int) (*ExperimentResult, error) {
	if i < 0 || i >= len(r.Entries) {
		return nil, fmt.Errorf("experiment index %d out of range (job has %d entries)", i, len(r.Entries))
	}
	return &r.Entries[i], nil
}

// Data returns the raw result data for the experiment at the given offset.
func (r *Result) Data(i int) (ResultData, error) {
	e, err := r.entry(i)
	if err != nil {
		return ResultData{}, err
	}
	return e.Data, nil
}

// Counts returns the histogram data of the experiment at the given offset.
func (r *Result) Counts(i int) (map[string]int, error) {
	e, err := r.entry(i)
	if err != nil {
		return nil, err
	}
	if e.Data.Counts == nil {
		return nil, fmt.Errorf("no counts for experiment %d", i)
	}
	return e.Data.Counts, nil
}

// Memory returns the per-shot readout sequence of the experiment at the
// given offset.
func (r *Result) Memory(i int) ([]string, error) {
	e, err := r.entry(i)
	if err != nil {
		return nil, err
	}
	if e.Data.Memory == nil {
		return nil, fmt.Errorf("no memory for experiment %d", i)
	}
	return e.Data.Memory, nil
}

// Statevector returns the final statevector of the experiment at the given
// offset, rounded to decimals. Negative decimals skip rounding.
func (r *Result) Statevector(i, decimals int) ([]Amplitude, error) {
	e, err := r.entry(i)
	if err != nil {
		return nil, err
	}
	if e.Data.Statevector == nil {
		return nil, fmt.Errorf("no statevector for experiment %d", i)
	}
	out := make([]Amplitude, len(e.Data.Statevector))
	for j, a := range e.Data.Statevector {
		out[j] = a.Round(decimals)
	}
	return out, nil
}

// Unitary returns the final unitary of the experiment at the given offset,
// rounded to decimals. Negative decimals skip rounding.
func (r *Result) Unitary(i, decimals int) ([][]Amplitude, error) {
	e, err := r.entry(i)
	if err != nil {
		return nil, err
	}
	if e.Data.Unitary == nil {
		return nil, fmt.Errorf("no unitary for experiment %d", i)
	}
	out := make([][]Amplitude, len(e.Data.Unitary))
	for j, row := range e.Data.Unitary {
		cp := make([]Amplitude, len(row))
		for k, a := range row {
			cp[k] = a.Round(decimals)
		}
		out[j] = cp
	}
	return out, nil
}

// Copy returns a deep copy sharing no mutable backing storage with the
// receiver.
func (r *Result) Copy() *Result {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Entries = make([]ExperimentResult, len(r.Entries))
	for i := range r.Entries {
		cp.Entries[i] = r.Entries[i].copyEntry()
	}
	return &cp
}

func (e ExperimentResult) copyEntry() ExperimentResult {
	cp := e
	if e.Data.Counts != nil {
		cp.Data.Counts = make(map[string]int, len(e.Data.Counts))
		for k, v := range e.Data.Counts {
			cp.Data.Counts[k] = v
		}
	}
	if e.Data.Memory != nil {
		cp.Data.Memory = append([]string(nil), e.Data.Memory...)
	}
	if e.Data.Statevector != nil {
		cp.Data.Statevector = append([]Amplitude(nil), e.Data.Statevector...)
	}
	if e.Data.Unitary != nil {
		cp.Data.Unitary = make([][]Amplitude, len(e.Data.Unitary))
		for i, row := range e.Data.Unitary {
			cp.Data.Unitary[i] = append([]Amplitude(nil), row...)
		}
	}
	return cp
}
