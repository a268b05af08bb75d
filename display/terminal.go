// Package display renders a Core's framebuffer to a terminal using tcell
// and forwards keyboard input to the joypad, the way the reference
// emulator's render package drives its terminal front end.
package display

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/agrell/dmgcore"
	"github.com/agrell/dmgcore/memory"
	"github.com/agrell/dmgcore/video"
)

const (
	viewportWidth  = 160
	viewportHeight = 144
	frameTime      = time.Second / 60
)

// shadeChars renders each of the four DMG shades as a block character of
// increasing density, brightest (white) first.
var shadeChars = [4]rune{' ', '░', '▒', '█'}

// Terminal drives a Core through a tcell screen: one character cell per
// pixel of the 160x144 viewport, refreshed at roughly 60Hz.
type Terminal struct {
	screen tcell.Screen
	core   *dmgcore.Core
}

// New initializes the terminal screen and wires it to core.
func New(core *dmgcore.Core) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("display: initializing terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("display: initializing terminal: %w", err)
	}
	return &Terminal{screen: screen, core: core}, nil
}

// Run drives the emulator and redraws the screen at 60Hz until the user
// quits (Escape/Ctrl-C) or the host process is signalled.
func (t *Terminal) Run() error {
	defer t.screen.Fini()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	events := make(chan tcell.Event, 16)
	go t.screen.ChannelEvents(events, nil)

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if quit := t.handleKey(ev); quit {
					return nil
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		case <-ticker.C:
			t.runOneFrame()
			t.draw()
			t.screen.Show()
		}
	}
}

// runOneFrame steps the core until one frame's worth of machine cycles has
// drained. A full frame is 70224 dots; at 16 dots per machine cycle that's
// 4389 cycles worth of stepping. It does not watch for VBlank, so the budget
// is not aligned to frame boundaries.
func (t *Terminal) runOneFrame() {
	const cyclesPerFrame = 4389
	var drained uint64
	start := t.core.CycleCount()
	for t.core.CycleCount()-start < cyclesPerFrame || drained == 0 {
		t.core.Step()
		t.core.Wait()
		drained = t.core.CycleCount() - start
		if drained >= cyclesPerFrame {
			break
		}
	}
}

func (t *Terminal) draw() {
	fb := t.core.FrameBuffer()
	oy, ox := t.core.Origin()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	for y := 0; y < viewportHeight; y++ {
		for x := 0; x < viewportWidth; x++ {
			sy := (int(oy) + y) % video.Height
			sx := (int(ox) + x) % video.Width
			shade := fb.At(sx, sy)
			t.screen.SetContent(x, y, shadeChars[shade&3], nil, style)
		}
	}
}

// handleKey maps a key event to a joypad press and reports whether the user
// asked to quit.
func (t *Terminal) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyEnter:
		t.press(memory.ButtonStart)
	case tcell.KeyRight:
		t.press(memory.ButtonRight)
	case tcell.KeyLeft:
		t.press(memory.ButtonLeft)
	case tcell.KeyUp:
		t.press(memory.ButtonUp)
	case tcell.KeyDown:
		t.press(memory.ButtonDown)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'a':
			t.press(memory.ButtonA)
		case 's':
			t.press(memory.ButtonB)
		case 'q':
			t.press(memory.ButtonSelect)
		}
	}
	return false
}

// press models a key event as a tap: a terminal gives no key-up event, so
// every press is immediately followed by a release rather than staying
// held across frames.
func (t *Terminal) press(b memory.Button) {
	t.core.PressButton(b)
	t.core.ReleaseButton(b)
	slog.Debug("joypad tap", "button", b)
}
