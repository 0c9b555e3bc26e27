package ui

import (
	"strings"

	"github.com/pthm-cable/rampet/game"
	"github.com/pthm-cable/rampet/pet"
)

// face returns the eyes and mouth for a mood.
func face(m pet.Mood) (eyes, mouth string) {
	switch m {
	case pet.MoodHappy:
		return "◕ ◕", "◡"
	case pet.MoodExcited:
		return "★ ★", "▽"
	case pet.MoodHungry:
		return "◔ ◔", "╰"
	case pet.MoodSad:
		return "╥ ╥", "︵"
	case pet.MoodStarving:
		return "⊗ ⊗", "〜"
	case pet.MoodDead:
		return "✖ ✖", "_"
	default:
		return "• •", "◡"
	}
}

// Art draws the pet. The body widens with each size tier.
func Art(tier pet.SizeTier, mood pet.Mood) []string {
	eyes, mouth := face(mood)

	pad := int(tier)
	inner := 5 + 2*pad
	side := strings.Repeat(" ", pad+1)

	lines := []string{
		" ╭" + strings.Repeat("─", inner) + "╮",
		" │" + side + eyes + side + "│",
	}
	for range pad / 2 {
		lines = append(lines, " │"+strings.Repeat(" ", inner)+"│")
	}
	lines = append(lines,
		" │"+strings.Repeat(" ", (inner-1)/2)+mouth+strings.Repeat(" ", inner-1-(inner-1)/2)+"│",
		" ╰"+strings.Repeat("─", inner)+"╯",
	)
	return lines
}

// Tombstone is drawn on the death screen.
var Tombstone = []string{
	"   ___   ",
	"  /   \\  ",
	" | RIP | ",
	" |     | ",
	"_|_____|_",
}

// comment picks something for the pet to say.
func comment(v game.View) string {
	switch {
	case !v.Alive:
		return ""
	case v.Hunger > 80:
		return "FEED ME!"
	case v.Hunger > 60:
		return "Getting hungry..."
	case v.Happiness > 80:
		return "Life is good!"
	case v.Happiness < 30:
		return "I'm sad..."
	default:
		return "RAM tastes good"
	}
}
