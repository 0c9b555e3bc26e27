package pet

import "math"

// Modifier bounds.
const (
	MinModifier = 0.1
	MaxModifier = 3.0
)

// minDigestSizeMB is the size below which nothing is digested.
const minDigestSizeMB = 10

// Condition is a named metabolism modifier.
type Condition int

const (
	ConditionNormal Condition = iota
	ConditionHibernating
	ConditionHyperactive
	ConditionSick
)

// Modifier returns the multiplier for the condition.
func (c Condition) Modifier() float64 {
	switch c {
	case ConditionHibernating:
		return 0.2
	case ConditionHyperactive:
		return 2.5
	case ConditionSick:
		return 0.7
	default:
		return 1.0
	}
}

func (c Condition) String() string {
	switch c {
	case ConditionHibernating:
		return "hibernating"
	case ConditionHyperactive:
		return "hyperactive"
	case ConditionSick:
		return "sick"
	default:
		return "normal"
	}
}

// Metabolism converts elapsed time into whole megabytes digested.
type Metabolism struct {
	BaseRate float64 `json:"base_rate"` // MB per second
	Modifier float64 `json:"modifier"`
	timer    float64
}

// NewMetabolism creates a metabolism with the given base rate.
func NewMetabolism(baseRate float64) *Metabolism {
	return &Metabolism{BaseRate: baseRate, Modifier: 1.0}
}

// tierMultiplier scales digestion with size: bigger pets burn faster.
func tierMultiplier(sizeMB int) float64 {
	switch {
	case sizeMB <= 100:
		return 0.5
	case sizeMB <= 300:
		return 0.8
	case sizeMB <= 600:
		return 1.0
	case sizeMB <= 1000:
		return 1.2
	case sizeMB <= 1500:
		return 1.5
	default:
		return 2.0
	}
}

// Rate returns the effective digestion rate in MB/s at the given size.
func (m *Metabolism) Rate(sizeMB int) float64 {
	return m.BaseRate * m.Modifier * tierMultiplier(sizeMB)
}

// Process advances the digestion timer and returns whole MB to digest.
// The result never exceeds half the current size.
func (m *Metabolism) Process(sizeMB int, deltaSeconds float64) int {
	if sizeMB < minDigestSizeMB {
		return 0
	}
	if deltaSeconds < 0 || math.IsNaN(deltaSeconds) {
		deltaSeconds = 0
	}

	m.timer += deltaSeconds
	toDigest := int(math.Floor(m.Rate(sizeMB) * m.timer))
	if toDigest <= 0 {
		return 0
	}

	_, m.timer = math.Modf(m.timer)
	return min(toDigest, sizeMB/2)
}

// Boost multiplies the modifier by k. k <= 0 is ignored.
func (m *Metabolism) Boost(k float64) {
	if k <= 0 {
		return
	}
	m.Modifier = clampModifier(m.Modifier * k)
}

// Slow divides the modifier by k. k <= 0 is ignored.
func (m *Metabolism) Slow(k float64) {
	if k <= 0 {
		return
	}
	m.Modifier = clampModifier(m.Modifier / k)
}

// Apply sets the modifier to the condition's value.
func (m *Metabolism) Apply(c Condition) {
	m.Modifier = clampModifier(c.Modifier())
}

// Reset restores the neutral modifier and clears the timer.
func (m *Metabolism) Reset() {
	m.Modifier = 1.0
	m.timer = 0
}

// Timer returns accumulated undigested seconds.
func (m *Metabolism) Timer() float64 { return m.timer }

func clampModifier(v float64) float64 {
	return math.Max(MinModifier, math.Min(MaxModifier, v))
}
