package game

import (
	"context"
	"time"
)

// Feeding portions in MB.
const (
	FeedSnack = 10
	FeedMeal  = 50
	FeedFeast = 100
	FeedGorge = 500
)

// CommandKind identifies a player action.
type CommandKind int

const (
	CmdFeed CommandKind = iota
	CmdFeedFavorite
	CmdSave
	CmdLoad
	CmdEmergencyExit
	CmdToggleHelp
	CmdQuit
)

func (k CommandKind) String() string {
	switch k {
	case CmdFeed:
		return "feed"
	case CmdFeedFavorite:
		return "feed_favorite"
	case CmdSave:
		return "save"
	case CmdLoad:
		return "load"
	case CmdEmergencyExit:
		return "emergency_exit"
	case CmdToggleHelp:
		return "toggle_help"
	case CmdQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command is a player action delivered to Run.
type Command struct {
	Kind     CommandKind
	AmountMB int // CmdFeed only
}

// Apply executes one command and reports whether the session should end.
// Failed actions are reported to the player through messages and logged
// here.
func (g *Game) Apply(cmd Command) (quit bool) {
	var err error
	switch cmd.Kind {
	case CmdFeed:
		err = g.Feed(cmd.AmountMB)
	case CmdFeedFavorite:
		_, err = g.FeedFavorite()
	case CmdSave:
		err = g.Save()
	case CmdLoad:
		err = g.Load()
	case CmdEmergencyExit:
		g.EmergencyExit()
	case CmdToggleHelp:
		g.ToggleHelp()
	case CmdQuit:
		return true
	}
	if err != nil {
		g.logger.Debug("command failed", "command", cmd.Kind.String(), "error", err)
	}
	return false
}

// Run ticks the session and applies commands until ctx is done, a quit
// command arrives, the command channel closes, or a configured stop
// condition is met. A nil channel means no commands.
func (g *Game) Run(ctx context.Context, commands <-chan Command) error {
	cfg := g.config()

	ticker := time.NewTicker(cfg.Derived.TickInterval)
	defer ticker.Stop()

	var autosave <-chan time.Time
	if cfg.Derived.Autosave > 0 {
		t := time.NewTicker(cfg.Derived.Autosave)
		defer t.Stop()
		autosave = t.C
	}

	g.mu.Lock()
	g.lastUpdate = g.now()
	g.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			g.Tick(g.now())
			if g.shouldStop() {
				return nil
			}

		case <-autosave:
			if g.Alive() {
				if err := g.Save(); err != nil {
					g.logger.Error("autosave failed", "error", err)
				}
			}

		case cmd, ok := <-commands:
			if !ok || g.Apply(cmd) {
				return nil
			}
		}
	}
}

func (g *Game) shouldStop() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.maxTicks > 0 && g.tick >= g.maxTicks {
		return true
	}
	return g.stopOnDeath && !g.pet.Alive
}
