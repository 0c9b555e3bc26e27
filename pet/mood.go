package pet

// Mood is derived from vitals on read.
type Mood int

const (
	MoodContent Mood = iota
	MoodHappy
	MoodExcited
	MoodSad
	MoodHungry
	MoodStarving
	MoodDead
)

// Mood thresholds.
const (
	StarvingHunger   = 90.0
	HungryHunger     = 70.0
	SadHappiness     = 20.0
	ExcitedHappiness = 80.0
	HappyMaxHunger   = 30.0
	HappyHappiness   = 60.0
)

func (m Mood) String() string {
	switch m {
	case MoodHappy:
		return "happy"
	case MoodExcited:
		return "excited"
	case MoodSad:
		return "sad"
	case MoodHungry:
		return "hungry"
	case MoodStarving:
		return "starving"
	case MoodDead:
		return "dead"
	default:
		return "content"
	}
}

// MoodFor evaluates mood in priority order, first match wins.
func MoodFor(hunger, happiness float64, alive bool) Mood {
	switch {
	case !alive:
		return MoodDead
	case hunger > StarvingHunger:
		return MoodStarving
	case hunger > HungryHunger:
		return MoodHungry
	case happiness < SadHappiness:
		return MoodSad
	case happiness > ExcitedHappiness:
		return MoodExcited
	case hunger < HappyMaxHunger && happiness > HappyHappiness:
		return MoodHappy
	default:
		return MoodContent
	}
}
