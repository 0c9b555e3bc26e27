package ui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pterm/pterm"

	"github.com/pthm-cable/rampet/config"
	"github.com/pthm-cable/rampet/game"
	"github.com/pthm-cable/rampet/memory"
	"github.com/pthm-cable/rampet/pet"
	"github.com/pthm-cable/rampet/sysmon"
)

type staticMonitor struct{ snap sysmon.Snapshot }

func (m *staticMonitor) Refresh()                  {}
func (m *staticMonitor) FreeMB() int               { return m.snap.FreeMB }
func (m *staticMonitor) Snapshot() sysmon.Snapshot { return m.snap }

type stubAllocator struct{}

func (stubAllocator) Alloc(int) ([]byte, error) { return make([]byte, 8), nil }
func (stubAllocator) Free([]byte) error         { return nil }

func newGame(t *testing.T) *game.Game {
	t.Helper()
	cfg := config.Default()
	cfg.Game.SavePath = t.TempDir() + "/save.json"
	cfg.Derived.TickInterval = time.Hour
	cfg.Derived.Autosave = 0

	mon := &staticMonitor{snap: sysmon.Snapshot{TotalMB: 16384, UsedMB: 8192, FreeMB: 8192}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := memory.New(mon, cfg.System.MinFreeRAMMB, memory.WithAllocator(stubAllocator{}), memory.WithLogger(logger))
	g := game.New(cfg, mon, mem, game.WithSeed(7), game.WithLogger(logger))
	t.Cleanup(func() { g.Close() })
	return g
}

func plain(s string) string { return pterm.RemoveColorFromString(s) }

func TestCommandFor(t *testing.T) {
	tests := []struct {
		key    Key
		kind   game.CommandKind
		amount int
	}{
		{KeySpace, game.CmdFeed, 50},
		{'1', game.CmdFeed, 10},
		{'2', game.CmdFeed, 50},
		{'3', game.CmdFeed, 100},
		{'4', game.CmdFeed, 500},
		{'f', game.CmdFeedFavorite, 0},
		{'s', game.CmdSave, 0},
		{'L', game.CmdLoad, 0},
		{'x', game.CmdEmergencyExit, 0},
		{'h', game.CmdToggleHelp, 0},
		{'q', game.CmdQuit, 0},
		{KeyEscape, game.CmdQuit, 0},
		{KeyCtrlC, game.CmdQuit, 0},
	}
	for _, tt := range tests {
		cmd, ok := CommandFor(tt.key)
		if !ok {
			t.Errorf("key %q: no command", tt.key)
			continue
		}
		if cmd.Kind != tt.kind || cmd.AmountMB != tt.amount {
			t.Errorf("key %q: got %+v", tt.key, cmd)
		}
	}

	if _, ok := CommandFor('z'); ok {
		t.Error("unmapped key should not produce a command")
	}
}

func TestDecodeKey(t *testing.T) {
	if k, ok := DecodeKey([]byte{0x1b}); !ok || k != KeyEscape {
		t.Errorf("lone escape should decode, got %v %v", k, ok)
	}
	if _, ok := DecodeKey([]byte{0x1b, '[', 'A'}); ok {
		t.Error("arrow key sequence should be ignored")
	}
	if _, ok := DecodeKey(nil); ok {
		t.Error("empty read should be ignored")
	}
	if k, _ := DecodeKey([]byte("s")); k != 's' {
		t.Errorf("expected 's', got %q", k)
	}
}

func TestArt_GrowsWithTier(t *testing.T) {
	small := Art(pet.TierBaby, pet.MoodHappy)
	big := Art(pet.TierGigantic, pet.MoodHappy)
	if len(big) <= len(small) || len([]rune(big[0])) <= len([]rune(small[0])) {
		t.Error("bigger tiers should draw a bigger pet")
	}
	if !strings.Contains(strings.Join(small, ""), "◕ ◕") {
		t.Errorf("happy eyes missing: %q", small)
	}
	for _, a := range [][]string{small, big} {
		width := len([]rune(a[0]))
		for _, line := range a {
			if len([]rune(line)) != width {
				t.Errorf("ragged art line %q", line)
			}
		}
	}
}

func TestFrame(t *testing.T) {
	g := newGame(t)
	if err := g.Feed(game.FeedSnack); err != nil {
		t.Fatalf("feed: %v", err)
	}
	r := NewRenderer(false, true)

	out := plain(r.Frame(g.View()))
	for _, want := range []string{"RAM EATING PET SIMULATOR", "60 MB", "Fed Tiny Snack (10 MB)", "Controls:", "Digest:"} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q:\n%s", want, out)
		}
	}

	g.ToggleHelp()
	if out := plain(r.Frame(g.View())); !strings.Contains(out, "HELP") || strings.Contains(out, "Controls:") {
		t.Errorf("help should replace controls:\n%s", out)
	}
}

func TestDeathScreen(t *testing.T) {
	g := newGame(t)
	g.EmergencyExit()
	r := NewRenderer(false, false)

	out := plain(r.Frame(g.View()))
	for _, want := range []string{"YOUR PET HAS DIED", "Terminated by user", "Maximum Size Reached: 50 MB"} {
		if !strings.Contains(out, want) {
			t.Errorf("death screen missing %q:\n%s", want, out)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(65 * time.Second); got != "01m 05s" {
		t.Errorf("got %q", got)
	}
	if got := formatDuration(time.Hour + 2*time.Minute + 3*time.Second); got != "1h 02m 03s" {
		t.Errorf("got %q", got)
	}
}

type fakeScreen struct {
	mu     sync.Mutex
	frames int
	keys   chan Key
}

func (s *fakeScreen) Draw(string) error {
	s.mu.Lock()
	s.frames++
	s.mu.Unlock()
	return nil
}

func (s *fakeScreen) Keys() <-chan Key { return s.keys }

func TestPlay(t *testing.T) {
	g := newGame(t)
	screen := &fakeScreen{keys: make(chan Key, 4)}
	screen.keys <- '3'
	screen.keys <- 'q'

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Play(ctx, g, screen, NewRenderer(false, false), time.Millisecond); err != nil {
		t.Fatalf("play: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("play should end on quit")
	}
	if g.View().SizeMB != 150 {
		t.Errorf("expected feast applied, size=%d", g.View().SizeMB)
	}
	screen.mu.Lock()
	defer screen.mu.Unlock()
	if screen.frames == 0 {
		t.Error("expected at least one frame")
	}
}

func TestPlay_AnyKeyExitsAfterDeath(t *testing.T) {
	g := newGame(t)
	g.EmergencyExit()
	screen := &fakeScreen{keys: make(chan Key, 1)}
	screen.keys <- '1'

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Play(ctx, g, screen, NewRenderer(false, false), time.Millisecond); err != nil {
		t.Fatalf("play: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("a key press should end the session once the pet is dead")
	}
}

func TestReadKeys_StopsWhenDone(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	done := make(chan struct{})
	keys := readKeys(pr, done)

	// Fill the buffer and leave one more key blocked on delivery.
	for i := 0; i < 17; i++ {
		if _, err := pw.Write([]byte{'a'}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	close(done)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-keys:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("key reader did not stop after done was closed")
		}
	}
}

func TestFrame_ShowsRAMHistoryAndCondition(t *testing.T) {
	g := newGame(t)
	g.Tick(time.Now())
	r := NewRenderer(false, false)

	out := plain(r.Frame(g.View()))
	if !strings.Contains(out, "RAM Recent: avg 8192 MB  peak 8192 MB") {
		t.Errorf("frame missing RAM history:\n%s", out)
	}
	if strings.Contains(out, "sick") {
		t.Errorf("healthy host should not show a condition:\n%s", out)
	}
}
