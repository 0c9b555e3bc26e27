package ui

import (
	"context"
	"time"

	"github.com/pthm-cable/rampet/game"
)

// Screen is where frames go and keys come from.
type Screen interface {
	Draw(frame string) error
	Keys() <-chan Key
}

// Play runs an interactive session until the player quits, the pet dies and
// a key is pressed, or ctx is done.
func Play(ctx context.Context, g *game.Game, s Screen, r *Renderer, frameInterval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	commands := make(chan game.Command)
	go forwardKeys(ctx, g, s.Keys(), commands)

	done := make(chan struct{})
	go func() {
		defer close(done)
		drawLoop(ctx, g, s, r, frameInterval)
	}()

	err := g.Run(ctx, commands)
	cancel()
	<-done
	return err
}

func forwardKeys(ctx context.Context, g *game.Game, keys <-chan Key, commands chan<- game.Command) {
	defer close(commands)
	for {
		select {
		case <-ctx.Done():
			return
		case k, ok := <-keys:
			if !ok {
				return
			}
			cmd, ok := CommandFor(k)
			if !g.Alive() {
				cmd, ok = game.Command{Kind: game.CmdQuit}, true
			}
			if !ok {
				continue
			}
			select {
			case commands <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}
}

func drawLoop(ctx context.Context, g *game.Game, s Screen, r *Renderer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := s.Draw(r.Frame(g.View())); err == nil {
			g.RecordFrame(time.Now())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
