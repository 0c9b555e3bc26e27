package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/pthm-cable/rampet/game"
	"github.com/pthm-cable/rampet/pet"
)

const meterWidth = 30

// Renderer turns a game.View into a full frame of text.
type Renderer struct {
	useColors bool
	debug     bool
}

// NewRenderer creates a renderer. Without colors every pterm style is
// stripped from the output.
func NewRenderer(useColors, debug bool) *Renderer {
	if useColors {
		pterm.EnableColor()
	} else {
		pterm.DisableColor()
	}
	return &Renderer{useColors: useColors, debug: debug}
}

// Frame renders the live game screen.
func (r *Renderer) Frame(v game.View) string {
	if !v.Alive {
		return r.DeathScreen(v)
	}

	var b strings.Builder
	b.WriteString(r.header(v))
	b.WriteString("\n")

	art := strings.Join(Art(v.Tier, v.Mood), "\n")
	b.WriteString(pterm.DefaultBox.WithTitle(v.Tier.String()).WithTitleTopCenter().Sprint(r.moodStyle(v).Sprint(art)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "State: %s | Mood: %s", v.Tier, v.Mood)
	if v.Condition != pet.ConditionNormal {
		b.WriteString(pterm.Yellow(" | " + v.Condition.String()))
	}
	b.WriteString("\n")
	if c := comment(v); c != "" {
		b.WriteString(pterm.Italic.Sprintf("%q", c))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(r.stats(v))
	b.WriteString("\n")
	b.WriteString(r.messages(v.Messages))
	b.WriteString("\n")

	if v.HelpShown {
		b.WriteString(helpText())
	} else {
		b.WriteString(controlsText())
	}
	return b.String()
}

func (r *Renderer) header(v game.View) string {
	title := pterm.DefaultHeader.WithFullWidth(false).Sprint("RAM EATING PET SIMULATOR")
	return title + "\n" + pterm.Cyan("Pet: "+v.Name) + pterm.Gray("  ["+v.Difficulty+"]") + "\n"
}

func (r *Renderer) moodStyle(v game.View) *pterm.Style {
	switch {
	case v.Hunger > 80 || v.Happiness < 30:
		return pterm.NewStyle(pterm.FgRed)
	case v.Hunger > 60:
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgGreen)
	}
}

func (r *Renderer) stats(v game.View) string {
	var b strings.Builder

	size := fmt.Sprintf("%d MB", v.SizeMB)
	if v.MaxSizeMB > 0 {
		size = fmt.Sprintf("%d / %d MB", v.SizeMB, v.MaxSizeMB)
	}
	fmt.Fprintf(&b, "Pet Size:   %s\n", pterm.LightGreen(size))
	fmt.Fprintf(&b, "Hunger:     %s\n", meter(v.Hunger, 100, hungerColor(v.Hunger)))
	fmt.Fprintf(&b, "Happiness:  %s\n", meter(v.Happiness, 100, happinessColor(v.Happiness)))
	b.WriteString("\n")

	h := v.Health
	used := h.TotalMB - h.FreeMB
	fmt.Fprintf(&b, "System RAM: %s / %s MB", pterm.LightRed(used), pterm.LightGreen(h.TotalMB))
	if h.Estimated {
		b.WriteString(pterm.Gray(" (estimated)"))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "RAM Usage:  %s\n", meter(float64(used), float64(h.TotalMB), pterm.FgCyan))
	if ram := v.RAM; ram.Samples > 0 {
		fmt.Fprintf(&b, "RAM Recent: avg %.0f MB  peak %.0f MB  p90 %.0f MB\n", ram.Average, ram.Peak, ram.P90)
	}
	if h.Warning != "" {
		b.WriteString(pterm.Red(h.Warning))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Total Eaten: %s\n", pterm.LightYellow(fmt.Sprintf("%d MB", v.Stats.TotalMBEaten)))
	fmt.Fprintf(&b, "Play Time:   %s\n", pterm.LightCyan(formatDuration(v.Stats.PlayTime)))

	if r.debug {
		fmt.Fprintf(&b, "Digest: %.2f MB/s  Modifier: %.2f (%s)  Allocated: %d MB  Process RSS: %d MB  Trend: %+.0f MB  FPS: %.0f\n",
			v.DigestRate, v.Modifier, v.Condition, h.AllocatedMB, h.ProcessRSSMB, v.RAM.Trend, v.FPS)
	}
	return b.String()
}

func (r *Renderer) messages(msgs []game.Message) string {
	if len(msgs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(pterm.Yellow("Messages:"))
	b.WriteString("\n")
	for i := len(msgs) - 1; i >= 0; i-- {
		b.WriteString("  ")
		b.WriteString(levelPrinter(msgs[i].Level).Sprint(msgs[i].Text))
		b.WriteString("\n")
	}
	return b.String()
}

// DeathScreen renders the final statistics.
func (r *Renderer) DeathScreen(v game.View) string {
	var b strings.Builder
	b.WriteString(pterm.Red(strings.Repeat("═", 40)))
	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("YOUR PET HAS DIED"))
	b.WriteString("\n")
	b.WriteString(pterm.Red(strings.Repeat("═", 40)))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(Tombstone, "\n"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s lived a good life\n\n", v.Name)

	b.WriteString(pterm.NewStyle(pterm.FgYellow, pterm.Bold).Sprint("Final Statistics:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total RAM Consumed:   %d MB\n", v.Stats.TotalMBEaten)
	fmt.Fprintf(&b, "Maximum Size Reached: %d MB\n", v.Stats.MaxSizeReached)
	fmt.Fprintf(&b, "Survived For:         %s\n\n", formatDuration(v.Stats.PlayTime))

	cause := "Terminated by user"
	if v.Hunger >= 100 {
		cause = "Died of starvation"
	}
	b.WriteString(pterm.Red(cause))
	b.WriteString("\n\n")
	b.WriteString("Press any key to exit...\n")
	return b.String()
}

func controlsText() string {
	return pterm.Gray(strings.Repeat("─", 60)) + "\n" +
		pterm.Bold.Sprint("Controls:") + "\n" +
		fmt.Sprintf("  %s Feed (50 MB)   %s Snack/Meal/Feast/Gorge   %s Favorite\n",
			pterm.LightGreen("[SPACE]"), pterm.LightGreen("[1-4]"), pterm.LightCyan("[F]")) +
		fmt.Sprintf("  %s Save   %s Load   %s Help   %s Emergency exit   %s Quit\n",
			pterm.LightYellow("[S]"), pterm.LightYellow("[L]"), pterm.LightBlue("[H]"),
			pterm.LightMagenta("[X]"), pterm.LightRed("[Q/ESC]"))
}

func helpText() string {
	return pterm.DefaultBox.WithTitle("HELP").WithTitleTopCenter().Sprint(strings.Join([]string{
		"Every megabyte your pet eats is really held by this process.",
		"Feed regularly or it starves. Digestion gives memory back.",
		"Feeding is refused when free system RAM runs low.",
		"Favorite food makes your pet extra happy.",
		"The pet does not age while this help is open.",
		"Press [H] to close help.",
	}, "\n")) + "\n"
}

func levelPrinter(l game.Level) *pterm.Style {
	switch l {
	case game.LevelSuccess:
		return pterm.NewStyle(pterm.FgLightGreen)
	case game.LevelWarn:
		return pterm.NewStyle(pterm.FgYellow)
	case game.LevelCritical:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgLightWhite)
	}
}

func hungerColor(h float64) pterm.Color {
	switch {
	case h > 80:
		return pterm.FgRed
	case h > 60:
		return pterm.FgYellow
	default:
		return pterm.FgGreen
	}
}

func happinessColor(h float64) pterm.Color {
	switch {
	case h > 70:
		return pterm.FgGreen
	case h > 40:
		return pterm.FgYellow
	default:
		return pterm.FgRed
	}
}

// meter draws a fixed-width bar with the percentage.
func meter(value, maxValue float64, color pterm.Color) string {
	frac := 0.0
	if maxValue > 0 {
		frac = min(max(value/maxValue, 0), 1)
	}
	filled := int(frac * meterWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", meterWidth-filled)
	return color.Sprint(bar) + fmt.Sprintf(" %5.1f%%", frac*100)
}

func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	return fmt.Sprintf("%02dm %02ds", m, s)
}
