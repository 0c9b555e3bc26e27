package main

// ParamSpec defines one tunable feeding parameter.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// Schedule is a fixed feeding routine: PortionMB every IntervalSec.
type Schedule struct {
	IntervalSec float64 `yaml:"interval_sec"`
	PortionMB   int     `yaml:"portion_mb"`
}

// ParamVector maps optimizer vectors to schedules.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the searchable schedule space.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "interval_sec", Min: 1, Max: 60, Default: 15},
			{Name: "portion_mb", Min: 10, Max: 500, Default: 50},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw values to [0,1].
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp keeps every value within its bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Schedule converts raw values to a schedule, clamping first.
func (pv *ParamVector) Schedule(raw []float64) Schedule {
	c := pv.Clamp(raw)
	return Schedule{IntervalSec: c[0], PortionMB: int(c[1] + 0.5)}
}
