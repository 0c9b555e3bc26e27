// Package pet models the creature whose body is the RAM the process holds.
//
// A Pet only tracks numbers. It never allocates: the game driver allocates
// first and calls Eat only once memory is committed, and releases the amount
// Metabolize reports.
package pet

import (
	"log/slog"
	"math"
	"math/rand"
)

// Vital limits and transition constants.
const (
	MaxVital             = 100.0
	HungerPerMBEaten     = 2.0
	HappinessPerMBEaten  = 0.5
	HappinessBoost       = 20.0
	DefaultHungerRate    = 2.0
	DefaultHappinessLoss = 3.0
)

// Rates controls time-driven decay. Not persisted: rates come from config.
type Rates struct {
	Hunger         float64 // hunger per second
	HappinessDecay float64 // happiness lost per second while hungry
}

// DefaultRates returns the normal-difficulty rates.
func DefaultRates() Rates {
	return Rates{Hunger: DefaultHungerRate, HappinessDecay: DefaultHappinessLoss}
}

// Pet holds vitals.
type Pet struct {
	Name       string         `json:"name"`
	SizeMB     int            `json:"size_mb"`
	Hunger     float64        `json:"hunger"`
	Happiness  float64        `json:"happiness"`
	Alive      bool           `json:"alive"`
	Preference FoodPreference `json:"food_preference"`
	Metabolism *Metabolism    `json:"metabolism"`

	Rates Rates `json:"-"`
}

// Params configures a new pet.
type Params struct {
	Name           string
	StartingSizeMB int
	Hunger         float64
	Happiness      float64
	MetabolismRate float64
	Rates          Rates
}

// New creates a living pet. Empty name and preference are chosen with rng.
func New(p Params, rng *rand.Rand) *Pet {
	name := p.Name
	if name == "" {
		name = RandomName(rng)
	}
	return &Pet{
		Name:       name,
		SizeMB:     max(p.StartingSizeMB, 0),
		Hunger:     clampVital(p.Hunger),
		Happiness:  clampVital(p.Happiness),
		Alive:      true,
		Preference: RandomPreference(rng),
		Metabolism: NewMetabolism(p.MetabolismRate),
		Rates:      p.Rates,
	}
}

// Eat grows the pet. Dead pets and non-positive amounts are ignored.
func (p *Pet) Eat(amountMB int) {
	if !p.Alive || amountMB <= 0 {
		return
	}
	p.SizeMB += amountMB
	p.Hunger = math.Max(0, p.Hunger-HungerPerMBEaten*float64(amountMB))
	p.Happiness = math.Min(MaxVital, p.Happiness+HappinessPerMBEaten*float64(amountMB))
}

// Metabolize advances time by dt seconds and returns MB digested.
// The caller must release exactly that much memory.
func (p *Pet) Metabolize(dt float64) int {
	if !p.Alive {
		return 0
	}
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}

	digested := p.Metabolism.Process(p.SizeMB, dt)
	digested = min(digested, p.SizeMB)
	p.SizeMB -= digested

	p.Hunger = math.Min(MaxVital, p.Hunger+p.Rates.Hunger*dt)
	if p.Hunger > HungryHunger {
		p.Happiness = math.Max(0, p.Happiness-p.Rates.HappinessDecay*dt)
	}
	if p.Hunger >= MaxVital {
		p.Alive = false
	}
	return digested
}

// BoostHappiness adds a fixed happiness bonus.
func (p *Pet) BoostHappiness() {
	if !p.Alive {
		return
	}
	p.Happiness = math.Min(MaxVital, p.Happiness+HappinessBoost)
}

// Kill ends the pet's life.
func (p *Pet) Kill() {
	p.Alive = false
}

// SyncSize forces the simulated size to match committed memory.
func (p *Pet) SyncSize(sizeMB int) {
	p.SizeMB = max(sizeMB, 0)
}

// Tier returns the current size tier.
func (p *Pet) Tier() SizeTier { return TierFor(p.SizeMB) }

// Mood returns the current mood.
func (p *Pet) Mood() Mood { return MoodFor(p.Hunger, p.Happiness, p.Alive) }

// FavoriteFoodSize returns a portion the pet loves.
func (p *Pet) FavoriteFoodSize(rng *rand.Rand) int {
	return p.Preference.FavoriteSize(rng)
}

// Normalize repairs vitals read from an untrusted source.
func (p *Pet) Normalize(metabolismRate float64, rates Rates) {
	p.SizeMB = max(p.SizeMB, 0)
	p.Hunger = clampVital(p.Hunger)
	p.Happiness = clampVital(p.Happiness)
	if p.Metabolism == nil {
		p.Metabolism = NewMetabolism(metabolismRate)
	}
	p.Metabolism.Modifier = clampModifier(p.Metabolism.Modifier)
	switch p.Preference {
	case PreferSmallFrequent, PreferBinge, PreferGourmet, PreferChaotic:
	default:
		p.Preference = PreferChaotic
	}
	p.Rates = rates
}

// Clone returns a deep copy.
func (p *Pet) Clone() *Pet {
	c := *p
	if p.Metabolism != nil {
		m := *p.Metabolism
		c.Metabolism = &m
	}
	return &c
}

// LogValue implements slog.LogValuer for structured logging.
func (p *Pet) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", p.Name),
		slog.Int("size_mb", p.SizeMB),
		slog.Float64("hunger", p.Hunger),
		slog.Float64("happiness", p.Happiness),
		slog.Bool("alive", p.Alive),
		slog.String("tier", p.Tier().String()),
		slog.String("mood", p.Mood().String()),
	)
}

func clampVital(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(MaxVital, v))
}
