// Package video implements the PPU: the mode/LY/STAT state machine and a
// simplified once-per-frame renderer, per spec section 4.5. Real hardware
// renders scanline by scanline as the beam moves; this core renders the
// whole background/window/sprite layer in one pass when VBlank begins,
// which is indistinguishable to software that only reads the framebuffer
// after VBlank fires (the normal case) but will not reproduce mid-frame
// raster effects.
package video

import "github.com/agrell/dmgcore/addr"

// Mode mirrors STAT bits 1:0.
type Mode uint8

const (
	HBlank     Mode = 0
	VBlank     Mode = 1
	OAMSearch  Mode = 2
	Transfer   Mode = 3
	dotsPerFrame = 70224
	dotsPerLine  = 456
	vblankDot    = 65664
)

// bus is the subset of *memory.Memory the PPU needs. Kept as an interface
// to avoid an import cycle with the memory package.
type bus interface {
	ReadByte(address uint16) uint8
	WriteRaw(address uint16, value uint8)
	RequestInterrupt(source addr.Interrupt)
}

// PPU owns the dot clock, the current scanline/mode, and the framebuffer.
type PPU struct {
	mem      bus
	dotCount uint32
	mode     Mode
	fb       *FrameBuffer
}

// New returns a PPU wired to the given bus.
func New(mem bus) *PPU {
	return &PPU{mem: mem, mode: OAMSearch, fb: newFrameBuffer()}
}

// FrameBuffer returns the most recently rendered frame.
func (p *PPU) FrameBuffer() *FrameBuffer { return p.fb }

// Tick advances the dot clock by one machine cycle (16 dots) and is called
// by the scheduler once per drained cycle while LCDC.7 is set.
func (p *PPU) Tick() {
	p.dotCount = (p.dotCount + 16) % dotsPerFrame

	ly := uint8(p.dotCount / dotsPerLine)
	p.mem.WriteRaw(addr.LY, ly)

	stat := p.mem.ReadByte(addr.STAT)
	lyc := p.mem.ReadByte(addr.LYC)
	if ly == lyc {
		stat |= 0b0000_0100
		if stat&0b0100_0000 != 0 {
			p.mem.RequestInterrupt(addr.LCDStat)
		}
	} else {
		stat &^= 0b0000_0100
	}
	p.mem.WriteRaw(addr.STAT, stat)

	switch {
	case p.dotCount >= vblankDot:
		if p.mode != VBlank {
			p.enterMode(VBlank, 0b0001_0000)
			p.mem.RequestInterrupt(addr.VBlank)
			p.renderFrame()
		}
	case p.dotCount%dotsPerLine >= 248:
		if p.mode != HBlank {
			p.enterMode(HBlank, 0b0000_1000)
		}
	case p.dotCount%dotsPerLine >= 80:
		if p.mode != Transfer {
			p.setMode(Transfer)
		}
	default:
		if p.mode != OAMSearch {
			p.enterMode(OAMSearch, 0b0010_0000)
		}
	}
}

// enterMode transitions into mode and, if the corresponding STAT interrupt
// source bit is enabled, requests the LCD STAT interrupt.
func (p *PPU) enterMode(mode Mode, statIntSource uint8) {
	p.setMode(mode)
	if p.mem.ReadByte(addr.STAT)&statIntSource != 0 {
		p.mem.RequestInterrupt(addr.LCDStat)
	}
}

func (p *PPU) setMode(mode Mode) {
	p.mode = mode
	stat := p.mem.ReadByte(addr.STAT)
	stat = stat&0b1111_1100 | uint8(mode)
	p.mem.WriteRaw(addr.STAT, stat)
}

// Mode reports the PPU's current rendering stage.
func (p *PPU) Mode() Mode { return p.mode }
