package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agrell/dmgcore/addr"
)

func TestEchoRAMMirrorsWorkingRAM(t *testing.T) {
	m := New()
	m.Write(0xC010, 0x42)
	assert.Equal(t, uint8(0x42), m.Read(0xE010), "echo RAM must mirror a write to working RAM")

	m.Write(0xE020, 0x7F)
	assert.Equal(t, uint8(0x7F), m.Read(0xC020), "a write through the echo alias must land in working RAM")
}

func TestDIVResetsToZeroOnAnyWrite(t *testing.T) {
	m := New()
	m.Write(addr.DIV, 0x99)
	assert.Equal(t, uint8(0x00), m.Read(addr.DIV))
}

func TestDIVInternalIncrementBypassesResetRule(t *testing.T) {
	m := New()
	before := m.Read(addr.DIV)
	m.TickTimer(64)
	assert.Equal(t, before+1, m.Read(addr.DIV), "timer-driven DIV increments must not go through Write's reset rule")
}

func TestTIMAIncrementsAtSelectedRateAndRequestsInterruptOnOverflow(t *testing.T) {
	m := New()
	m.Write(addr.TAC, 0x05) // enabled, select=01 -> period 4
	m.Write(addr.TIMA, 0xFF)
	m.Write(addr.TMA, 0x10)
	m.Write(addr.IF, 0x00)

	m.TickTimer(4)

	assert.Equal(t, uint8(0x10), m.Read(addr.TIMA), "TIMA reloads from TMA on overflow")
	assert.Equal(t, uint8(addr.Timer), m.Read(addr.IF)&uint8(addr.Timer))
}

func TestTIMADoesNotAdvanceWhenTimerDisabled(t *testing.T) {
	m := New()
	m.Write(addr.TAC, 0x01) // disabled (bit 2 clear), select=01
	m.Write(addr.TIMA, 0x00)

	m.TickTimer(4)

	assert.Equal(t, uint8(0x00), m.Read(addr.TIMA))
}

func TestSerialTransferEmitsOnSCStartBit(t *testing.T) {
	m := New()
	sink := &captureSink{}
	m.SetSerialSink(sink)

	m.Write(addr.SB, 0x41)
	assert.NotEqual(t, uint8(0x41), m.Read(addr.SB), "SB write must not modify the backing register")
	assert.Empty(t, sink.written, "no byte is emitted until SC starts a transfer")

	m.Write(addr.SC, 0x81)
	assert.Equal(t, []byte{0x41}, sink.written)
	assert.Zero(t, m.Read(addr.SC)&0x80, "the start bit clears once the transfer completes")
}

func TestDMACopiesOAMAndChargesCycles(t *testing.T) {
	m := New()
	sink := &captureCycleSink{}
	m.SetCycleSink(sink)

	for i := uint16(0); i < 0xA0; i++ {
		m.Write(0xC100+i, uint8(i))
	}

	m.Write(addr.DMA, 0xC1)

	for i := uint16(0); i < 0xA0; i++ {
		assert.Equal(t, uint8(i), m.Read(addr.OAMStart+i))
	}
	assert.Equal(t, uint(160), sink.total)
}

func TestJoypadPressRaisesInterruptReleaseDoesNot(t *testing.T) {
	m := New()
	m.Write(addr.IF, 0x00)

	m.PressButton(ButtonA)
	assert.NotZero(t, m.Read(addr.IF)&uint8(addr.Joypad))

	m.Write(addr.IF, 0x00)
	m.ReleaseButton(ButtonA)
	assert.Zero(t, m.Read(addr.IF)&uint8(addr.Joypad))
}

func TestJoypadSelectsDirectionsOrButtons(t *testing.T) {
	m := New()
	m.PressButton(ButtonA)
	m.PressButton(ButtonUp)

	m.Write(addr.P1, 0x10) // select buttons (bit 0)
	assert.Zero(t, m.Read(addr.P1)&0x01, "A must read pressed (low) when buttons are selected")

	m.Write(addr.P1, 0x20) // select d-pad (bit 1)
	assert.Zero(t, m.Read(addr.P1)&0x04, "Up must read pressed (low) when d-pad is selected")
}

func TestJoypadSelectionFlagsReadBackAtSpecifiedBits(t *testing.T) {
	m := New()

	m.Write(addr.P1, 0x10) // select buttons (write-side bit 0)
	p1 := m.Read(addr.P1)
	assert.NotZero(t, p1&0b0010_0000, "bit 5 must be set when actions are selected")
	assert.Zero(t, p1&0b0001_0000, "bit 4 must be clear when directions are not selected")

	m.Write(addr.P1, 0x20) // select d-pad (write-side bit 1)
	p1 = m.Read(addr.P1)
	assert.Zero(t, p1&0b0010_0000, "bit 5 must be clear when actions are not selected")
	assert.NotZero(t, p1&0b0001_0000, "bit 4 must be set when directions are selected")
}

func TestROMBandWriteIsDiagnosedNotStored(t *testing.T) {
	m := NewWithROM([]byte{0xAA})
	m.Write(0x0000, 0x55)
	assert.Equal(t, uint8(0xAA), m.Read(0x0000), "writes below ROMEnd must not mutate the image")
}

func TestVRAMAndOAMAreWritable(t *testing.T) {
	m := New()
	m.Write(addr.VRAMStart, 0x12)
	assert.Equal(t, uint8(0x12), m.Read(addr.VRAMStart))

	m.Write(addr.OAMStart, 0x34)
	assert.Equal(t, uint8(0x34), m.Read(addr.OAMStart))
}

func TestIEWriteRequestsInterruptCheck(t *testing.T) {
	m := New()
	notifiee := &captureNotifiee{}
	m.SetInterruptNotifiee(notifiee)

	m.Write(addr.IE, 0x01)

	assert.True(t, notifiee.notified)
	assert.Equal(t, uint8(0x01), m.Read(addr.IE))
}

type captureSink struct {
	written []byte
}

func (c *captureSink) Write(b byte) { c.written = append(c.written, b) }

type captureCycleSink struct {
	total uint
}

func (c *captureCycleSink) AddCycles(n uint) { c.total += n }

type captureNotifiee struct {
	notified bool
}

func (c *captureNotifiee) RequestInterruptCheck() { c.notified = true }
