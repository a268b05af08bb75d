package video

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agrell/dmgcore/addr"
)

// fakeBus is a flat 64KB array implementing the bus interface for PPU tests.
type fakeBus struct {
	data       [0x10000]uint8
	interrupts []addr.Interrupt
}

func (b *fakeBus) ReadByte(address uint16) uint8         { return b.data[address] }
func (b *fakeBus) WriteRaw(address uint16, value uint8)  { b.data[address] = value }
func (b *fakeBus) RequestInterrupt(source addr.Interrupt) { b.interrupts = append(b.interrupts, source) }

func TestColorIndexByte0ContributesLowBit(t *testing.T) {
	// Pixel 0 (MSB): byte0 bit7=1, byte1 bit7=0 -> index 0b01.
	assert.Equal(t, uint8(0b01), colorIndex(0b1000_0000, 0b0000_0000, 0))
	// byte0 bit7=0, byte1 bit7=1 -> index 0b10.
	assert.Equal(t, uint8(0b10), colorIndex(0b0000_0000, 0b1000_0000, 0))
	// both set -> index 0b11.
	assert.Equal(t, uint8(0b11), colorIndex(0b1000_0000, 0b1000_0000, 0))
}

func TestTileDataAddressUnsignedVsSigned(t *testing.T) {
	assert.Equal(t, addr.TileData0, tileDataAddress(true, 0))
	assert.Equal(t, addr.TileData0+16, tileDataAddress(true, 1))

	assert.Equal(t, addr.TileData1, tileDataAddress(false, 0))
	assert.Equal(t, addr.TileData1-16, tileDataAddress(false, 0xFF)) // -1 as int8
}

func TestPPUModeTransitionsAcrossOneLine(t *testing.T) {
	bus := &fakeBus{}
	p := New(bus)

	// Drain the first 96 dots of the line: 6 ticks of 16 dots each.
	var lastMode Mode
	for i := 0; i < 6; i++ { // dotCount 16,32,..96 covers OAMSearch->Transfer
		p.Tick()
		lastMode = p.Mode()
	}
	_ = lastMode
	assert.Equal(t, Transfer, p.Mode(), "past dot 80 within the line the PPU enters Transfer")
}

func TestPPUEntersVBlankAndRendersFrame(t *testing.T) {
	bus := &fakeBus{}
	bus.data[addr.LCDC] = 0x01 // background enabled
	p := New(bus)

	ticks := (vblankDot / 16) + 1
	for i := 0; i < ticks; i++ {
		p.Tick()
	}

	assert.Equal(t, VBlank, p.Mode())
	found := false
	for _, src := range bus.interrupts {
		if src == addr.VBlank {
			found = true
		}
	}
	assert.True(t, found, "entering VBlank must request the VBlank interrupt")
}

func TestPPURequestsLCDStatOnLYCCoincidence(t *testing.T) {
	bus := &fakeBus{}
	bus.data[addr.LYC] = 0
	bus.data[addr.STAT] = 0b0100_0000 // LYC=LY interrupt source enabled
	p := New(bus)

	p.Tick() // LY should be 0, matching LYC

	found := false
	for _, src := range bus.interrupts {
		if src == addr.LCDStat {
			found = true
		}
	}
	assert.True(t, found)
	assert.NotZero(t, bus.data[addr.STAT]&0b0000_0100, "STAT coincidence bit must be set")
}

func TestRenderTileAppliesPaletteAndSkipsTransparentSpritePixel(t *testing.T) {
	bus := &fakeBus{}
	bus.data[addr.OBP0] = 0b11_10_01_00 // index 1 -> shade 1, index 0 -> shade 0
	p := New(bus)

	// Row 0: byte0=0x80 (bit7 set, low bit), byte1=0x00 -> index 0b01 at x=0.
	bus.data[0x8000] = 0x80
	bus.data[0x8001] = 0x00

	p.renderTile(0, 0, 0x8000, addr.OBP0, true, false, false)

	assert.Equal(t, Shade(1), p.fb.At(0, 0))
	// Pixel at x=1 has index 0 and isSprite=true, so it must be left untouched (still White/zero-value).
	assert.Equal(t, Shade(White), p.fb.At(1, 0))
}

func Test8x16SpritesPairConsecutiveOAMEntries(t *testing.T) {
	bus := &fakeBus{}
	bus.data[addr.LCDC] = 0x06 // sprites enabled, 8x16 mode

	top := addr.OAMStart
	bus.data[top] = 32   // Y
	bus.data[top+1] = 16 // X
	bus.data[top+2] = 0x00
	bus.data[top+3] = 0x00

	bottom := addr.OAMStart + 4
	bus.data[bottom] = 200
	bus.data[bottom+1] = 16
	bus.data[bottom+2] = 0x01
	bus.data[bottom+3] = 0x00

	p := New(bus)
	p.renderSprites(bus.data[addr.LCDC])

	// Both halves must have been read independently (tile index 0x00 then 0x01);
	// since tile data is all zero this only asserts it does not panic on the
	// pairing math for an odd/even pair.
	assert.Equal(t, numSprites, 40)
}
