package game

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/pthm-cable/rampet/memory"
	"github.com/pthm-cable/rampet/pet"
	"github.com/pthm-cable/rampet/save"
)

// Feed allocates amountMB and, only once it is committed, grows the pet.
// A declined allocation leaves every piece of state unchanged.
func (g *Game) Feed(amountMB int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.feedLocked(amountMB)
}

func (g *Game) feedLocked(amountMB int) error {
	now := g.now()
	if !g.pet.Alive {
		g.metrics.RecordFeedDeclined("dead")
		g.addMessage(now, LevelWarn, fmt.Sprintf("%s is dead and cannot eat", g.pet.Name))
		return ErrPetDead
	}

	if err := g.mem.Allocate(amountMB); err != nil {
		g.collector.RecordFeedDeclined()
		g.metrics.RecordFeedDeclined(declineReason(err))
		g.addMessage(now, LevelWarn, declineMessage(err))
		g.logger.Info("feeding declined", "amount_mb", amountMB, "error", err)
		return fmt.Errorf("feed %d MB: %w", amountMB, err)
	}

	g.pet.Eat(amountMB)
	g.mealEffect(now, amountMB, false)
	g.stats.TotalMBEaten += amountMB
	g.stats.FeedingCount++
	g.stats.MaxSizeReached = max(g.stats.MaxSizeReached, g.pet.SizeMB)

	g.collector.RecordFeed(amountMB)
	g.metrics.RecordFeed(amountMB)
	g.addMessage(now, LevelSuccess, fmt.Sprintf("Fed %s (%d MB)", pet.FoodName(amountMB), amountMB))
	g.logger.Debug("fed", "amount_mb", amountMB, "size_mb", g.pet.SizeMB, "allocated_mb", g.mem.AllocatedMB())

	if g.cfg.Game.SoundEnabled && g.bell != nil {
		g.bell()
	}
	return nil
}

// FeedFavorite feeds a portion matching the pet's preference. Happiness is
// boosted only if the meal was actually eaten.
func (g *Game) FeedFavorite() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	amount := g.pet.FavoriteFoodSize(g.rng)
	if err := g.feedLocked(amount); err != nil {
		return amount, err
	}
	g.pet.BoostHappiness()
	g.mealEffect(g.now(), amount, true)
	g.addMessage(g.now(), LevelSuccess, fmt.Sprintf("Favorite food! (%d MB)", amount))
	return amount, nil
}

// EmergencyExit kills the pet immediately.
func (g *Game) EmergencyExit() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pet.Kill()
	g.addMessage(g.now(), LevelCritical, "EMERGENCY EXIT ACTIVATED!")
	g.logger.Warn("emergency exit", "pet", g.pet)
}

// ToggleHelp shows or hides help. The pet does not age while help is shown.
func (g *Game) ToggleHelp() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.helpShown = !g.helpShown
	return g.helpShown
}

// Save writes the pet and session totals to the configured save path.
func (g *Game) Save() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := &save.Snapshot{
		Version:        save.Version,
		Pet:            g.pet.Clone(),
		TotalMBEaten:   g.stats.TotalMBEaten,
		FeedingCount:   g.stats.FeedingCount,
		MaxSizeReached: g.stats.MaxSizeReached,
		PlayTimeSec:    g.stats.PlayTime.Seconds(),
		SavedAt:        g.now(),
	}
	path := g.cfg.Game.SavePath
	if err := save.Write(path, snap); err != nil {
		g.addMessage(g.now(), LevelCritical, "Save failed!")
		g.logger.Error("save failed", "path", path, "error", err)
		return err
	}

	g.addMessage(g.now(), LevelInfo, "Game saved successfully!")
	g.logger.Info("game saved", "path", path, "size_mb", snap.Pet.SizeMB)
	return nil
}

// Load replaces the pet with the saved one and resynchronizes the memory
// pool to exactly its size. If that allocation is declined the previous pet
// is kept and its memory re-established as far as possible.
func (g *Game) Load() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	path := g.cfg.Game.SavePath
	snap, err := save.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			g.addMessage(now, LevelWarn, "No save file found!")
		} else {
			g.addMessage(now, LevelCritical, "Save file is unreadable!")
		}
		g.logger.Warn("load failed", "path", path, "error", err)
		return err
	}

	loaded := snap.Pet
	loaded.Normalize(g.cfg.Derived.MetabolismRate, g.rates())

	if err := g.mem.Resync(loaded.SizeMB); err != nil {
		g.logger.Warn("load allocation declined", "size_mb", loaded.SizeMB, "error", err)
		if rerr := g.mem.Resync(g.pet.SizeMB); rerr != nil {
			g.logger.Error("could not restore previous allocation", "size_mb", g.pet.SizeMB, "error", rerr)
		}
		g.pet.SyncSize(g.mem.AllocatedMB())
		g.addMessage(now, LevelCritical, "Not enough RAM to load that pet!")
		return fmt.Errorf("load %d MB pet: %w", loaded.SizeMB, err)
	}

	loaded.Metabolism.Reset()
	g.pet = loaded
	g.condition = pet.ConditionNormal
	g.effectUntil = time.Time{}
	g.stats = SessionStats{
		TotalMBEaten:   snap.TotalMBEaten,
		FeedingCount:   snap.FeedingCount,
		MaxSizeReached: max(snap.MaxSizeReached, loaded.SizeMB),
		PlayTime:       secondsToDuration(snap.PlayTimeSec),
	}
	g.lastUpdate = now

	g.addMessage(now, LevelInfo, "Game loaded successfully!")
	g.logger.Info("game loaded", "path", path, "pet", g.pet)
	return nil
}

func declineReason(err error) string {
	switch {
	case errors.Is(err, memory.ErrInsufficientMemory):
		return "insufficient_memory"
	case errors.Is(err, memory.ErrLimitExceeded):
		return "limit"
	case errors.Is(err, memory.ErrAllocationFailed):
		return "allocation_failed"
	case errors.Is(err, memory.ErrInvalidAmount):
		return "invalid_amount"
	default:
		return "other"
	}
}

func declineMessage(err error) string {
	switch {
	case errors.Is(err, memory.ErrInsufficientMemory):
		return "Not enough free RAM! Close some programs first!"
	case errors.Is(err, memory.ErrLimitExceeded):
		return "Your pet is too big to eat any more!"
	case errors.Is(err, memory.ErrAllocationFailed):
		return "The system refused to hand over that memory!"
	default:
		return "Could not feed the pet"
	}
}
