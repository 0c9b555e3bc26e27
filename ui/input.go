package ui

import "github.com/pthm-cable/rampet/game"

// Key is a single decoded key press.
type Key byte

const (
	KeyCtrlC  Key = 0x03
	KeyEscape Key = 0x1b
	KeySpace  Key = ' '
)

// DecodeKey turns one read from a raw terminal into a key. Escape sequences
// (arrows, function keys) are ignored; a lone escape byte is a key.
func DecodeKey(b []byte) (Key, bool) {
	if len(b) == 0 {
		return 0, false
	}
	if b[0] == byte(KeyEscape) && len(b) > 1 {
		return 0, false
	}
	return Key(b[0]), true
}

// CommandFor maps a key to a game command.
func CommandFor(k Key) (game.Command, bool) {
	switch k {
	case KeySpace:
		return game.Command{Kind: game.CmdFeed, AmountMB: game.FeedMeal}, true
	case '1':
		return game.Command{Kind: game.CmdFeed, AmountMB: game.FeedSnack}, true
	case '2':
		return game.Command{Kind: game.CmdFeed, AmountMB: game.FeedMeal}, true
	case '3':
		return game.Command{Kind: game.CmdFeed, AmountMB: game.FeedFeast}, true
	case '4':
		return game.Command{Kind: game.CmdFeed, AmountMB: game.FeedGorge}, true
	case 'f', 'F':
		return game.Command{Kind: game.CmdFeedFavorite}, true
	case 's', 'S':
		return game.Command{Kind: game.CmdSave}, true
	case 'l', 'L':
		return game.Command{Kind: game.CmdLoad}, true
	case 'x', 'X':
		return game.Command{Kind: game.CmdEmergencyExit}, true
	case 'h', 'H', '?':
		return game.Command{Kind: game.CmdToggleHelp}, true
	case 'q', 'Q', KeyEscape, KeyCtrlC:
		return game.Command{Kind: game.CmdQuit}, true
	}
	return game.Command{}, false
}
