// Package interaction reads keyboard input for the interactive surface.
package interaction

import (
	"os"

	"golang.org/x/term"
)

// KeyType classifies a keyboard event
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyEnter
	KeyArrowLeft
	KeyArrowRight
	KeyArrowUp
	KeyArrowDown
)

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyboardReader handles keyboard input in raw mode
type KeyboardReader struct {
	oldState *term.State
	input    chan KeyEvent
	stop     chan struct{}
}

// NewKeyboardReader switches stdin to raw mode and starts reading
func NewKeyboardReader() (*KeyboardReader, error) {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}

	kr := &KeyboardReader{
		oldState: oldState,
		input:    make(chan KeyEvent, 10),
		stop:     make(chan struct{}),
	}
	go kr.readInput()
	return kr, nil
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops the reader and restores the terminal
func (kr *KeyboardReader) Close() error {
	close(kr.stop)
	return term.Restore(int(os.Stdin.Fd()), kr.oldState)
}

func (kr *KeyboardReader) readInput() {
	buf := make([]byte, 3)

	for {
		select {
		case <-kr.stop:
			return
		default:
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				continue
			}

			event := parseInput(buf[:n])
			if event == nil {
				continue
			}
			select {
			case kr.input <- *event:
			case <-kr.stop:
				return
			}
		}
	}
}

// parseInput parses raw keyboard input, including arrow escape sequences
func parseInput(buf []byte) *KeyEvent {
	if len(buf) == 0 {
		return nil
	}

	switch buf[0] {
	case 3: // Ctrl+C
		return &KeyEvent{Key: 3, Type: KeyChar}
	case '\r', '\n':
		return &KeyEvent{Type: KeyEnter}
	case 27: // ESC
		if len(buf) >= 3 && buf[1] == '[' {
			switch buf[2] {
			case 'A':
				return &KeyEvent{Type: KeyArrowUp}
			case 'B':
				return &KeyEvent{Type: KeyArrowDown}
			case 'C':
				return &KeyEvent{Type: KeyArrowRight}
			case 'D':
				return &KeyEvent{Type: KeyArrowLeft}
			}
			return nil
		}
		return &KeyEvent{Key: 27, Type: KeyEscape}
	}

	return &KeyEvent{Key: rune(buf[0]), Type: KeyChar}
}
