// Package ui is the interactive terminal front end: raw-mode key input,
// key to command mapping, and frame rendering.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin is not an interactive terminal.
var ErrNotTerminal = errors.New("ui: stdin is not a terminal")

const (
	clearScreen = "\033[H\033[2J"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Terminal owns the raw-mode terminal.
type Terminal struct {
	in        *os.File
	out       io.Writer
	state     *term.State
	done      chan struct{}
	closeOnce sync.Once
}

// OpenTerminal puts stdin into raw mode.
func OpenTerminal() (*Terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("make raw: %w", err)
	}
	t := &Terminal{in: os.Stdin, out: os.Stdout, state: state, done: make(chan struct{})}
	io.WriteString(t.out, hideCursor+clearScreen)
	return t, nil
}

// Close restores the terminal and stops key delivery.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	io.WriteString(t.out, showCursor+clearScreen)
	return term.Restore(int(t.in.Fd()), t.state)
}

// Draw replaces the screen with frame. Raw mode needs explicit carriage
// returns.
func (t *Terminal) Draw(frame string) error {
	_, err := io.WriteString(t.out, clearScreen+strings.ReplaceAll(frame, "\n", "\r\n"))
	return err
}

// Bell rings the terminal bell.
func (t *Terminal) Bell() {
	io.WriteString(t.out, "\a")
}

// Keys streams key presses until the reader fails or the terminal is
// closed. A read already in progress at Close ends with the next key press.
func (t *Terminal) Keys() <-chan Key {
	return readKeys(t.in, t.done)
}

func readKeys(r io.Reader, done <-chan struct{}) <-chan Key {
	keys := make(chan Key, 16)
	go func() {
		defer close(keys)
		buf := make([]byte, 8)
		for {
			n, err := r.Read(buf)
			if err != nil {
				return
			}
			k, ok := DecodeKey(buf[:n])
			if !ok {
				continue
			}
			select {
			case keys <- k:
			case <-done:
				return
			}
		}
	}()
	return keys
}
