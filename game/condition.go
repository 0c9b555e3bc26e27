package game

import (
	"fmt"
	"time"

	"github.com/pthm-cable/rampet/pet"
	"github.com/pthm-cable/rampet/sysmon"
)

// Meal effects on metabolism. They last until mealEffectDuration passes or
// the condition changes, whichever comes first.
const (
	mealEffectDuration = 30 * time.Second
	favoriteBoost      = 1.5
	gorgeSlowdown      = 2.0
)

// conditionFor picks the metabolism condition for the host state. A pet on
// a starved host falls sick and digests slowly.
func conditionFor(snap sysmon.Snapshot) pet.Condition {
	if snap.UnderPressure() {
		return pet.ConditionSick
	}
	return pet.ConditionNormal
}

// updateCondition re-applies the condition modifier when the condition
// changes or a meal effect wears off.
func (g *Game) updateCondition(now time.Time, snap sysmon.Snapshot) {
	cond := conditionFor(snap)
	expired := !g.effectUntil.IsZero() && !now.Before(g.effectUntil)
	if cond == g.condition && !expired {
		return
	}

	if cond != g.condition {
		switch cond {
		case pet.ConditionSick:
			g.addMessage(now, LevelWarn, fmt.Sprintf("%s feels sick, RAM is scarce", g.pet.Name))
		default:
			g.addMessage(now, LevelInfo, fmt.Sprintf("%s feels better", g.pet.Name))
		}
		g.logger.Info("metabolism condition", "from", g.condition.String(), "to", cond.String(), "free_mb", snap.FreeMB)
	}
	g.condition = cond
	g.effectUntil = time.Time{}
	g.pet.Metabolism.Apply(cond)
}

// mealEffect adjusts metabolism after a meal was eaten.
func (g *Game) mealEffect(now time.Time, amountMB int, favorite bool) {
	m := g.pet.Metabolism
	switch {
	case favorite:
		m.Boost(favoriteBoost)
	case amountMB >= FeedGorge:
		m.Slow(gorgeSlowdown)
	default:
		return
	}
	g.effectUntil = now.Add(mealEffectDuration)
	g.logger.Debug("meal effect", "amount_mb", amountMB, "favorite", favorite, "modifier", m.Modifier)
}
