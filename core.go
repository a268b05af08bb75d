// Package dmgcore wires together the CPU, memory, and PPU into a runnable
// Game Boy (DMG) core and implements the scheduler described in spec
// section 4.6.
package dmgcore

import (
	"fmt"
	"os"

	"github.com/agrell/dmgcore/addr"
	"github.com/agrell/dmgcore/cpu"
	"github.com/agrell/dmgcore/memory"
	"github.com/agrell/dmgcore/serial"
	"github.com/agrell/dmgcore/video"
)

// Core owns one independent Game Boy machine: its CPU, address space and
// PPU, wired together and ready to Step/Wait.
type Core struct {
	cpu *cpu.CPU
	mem *memory.Memory
	ppu *video.PPU
}

// New returns a Core with no cartridge loaded.
func New() *Core {
	return newCore(memory.New())
}

// NewWithROM returns a Core with rom mapped flat into the address space
// from 0x0000 (spec's core has no memory bank controller).
func NewWithROM(rom []byte) *Core {
	return newCore(memory.NewWithROM(rom))
}

// LoadROMFile reads path and returns a Core with its contents loaded.
func LoadROMFile(path string) (*Core, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dmgcore: loading rom: %w", err)
	}
	return NewWithROM(data), nil
}

func newCore(mem *memory.Memory) *Core {
	c := cpu.New(mem)
	mem.SetCycleSink(c)
	mem.SetInterruptNotifiee(c)
	return &Core{
		cpu: c,
		mem: mem,
		ppu: video.New(mem),
	}
}

// Step decodes and executes exactly one instruction (or advances one HALT
// idle cycle), per spec section 4.6. Call Wait afterwards to drain the
// resulting machine-cycle cost before the next Step.
func (c *Core) Step() {
	c.cpu.Step()
}

// Wait drains the CPU's pending machine-cycle budget one cycle at a time,
// advancing the timer and, while the LCD is on, the PPU alongside it.
func (c *Core) Wait() {
	lcdOn := c.mem.ReadByte(addr.LCDC)&0x80 != 0
	for c.cpu.CyclesToWait > 0 {
		c.cpu.CyclesToWait--
		c.cpu.CycleCount++
		c.mem.TickTimer(c.cpu.CycleCount)
		if lcdOn {
			c.ppu.Tick()
		}
	}
}

// Run executes Step/Wait in a loop until stop returns true.
func (c *Core) Run(stop func() bool) {
	for !stop() {
		c.Step()
		c.Wait()
	}
}

// FrameBuffer returns the PPU's most recently rendered frame.
func (c *Core) FrameBuffer() *video.FrameBuffer {
	return c.ppu.FrameBuffer()
}

// Origin returns the background scroll registers (SCY, SCX) the host uses
// to crop a 160x144 viewport out of the 256x256 framebuffer.
func (c *Core) Origin() (y, x uint8) {
	return c.mem.ReadByte(addr.SCY), c.mem.ReadByte(addr.SCX)
}

// PressButton and ReleaseButton forward to the joypad port.
func (c *Core) PressButton(b memory.Button)   { c.mem.PressButton(b) }
func (c *Core) ReleaseButton(b memory.Button) { c.mem.ReleaseButton(b) }

// SetSerialSink replaces the default diagnostic serial sink, e.g. with one
// that asserts on a test ROM's expected output.
func (c *Core) SetSerialSink(s serial.Sink) {
	c.mem.SetSerialSink(s)
}

// Dump renders the CPU state in Gameboy-Doctor trace format, for
// instruction-level conformance testing against reference traces.
func (c *Core) Dump() string {
	return c.cpu.Dump()
}

// PC, SP and CycleCount expose scheduler/debugging state directly.
func (c *Core) PC() uint16         { return c.cpu.PC() }
func (c *Core) SP() uint16         { return c.cpu.SP() }
func (c *Core) CycleCount() uint64 { return c.cpu.CycleCount }

// SetCPUState force-sets the full architectural register file, used by
// conformance tests that need to set up a specific machine state directly
// rather than stepping through instructions to reach it.
func (c *Core) SetCPUState(af, bc, de, hl, sp, pc uint16, ime bool) {
	c.cpu.SetState(af, bc, de, hl, sp, pc, ime)
}

// WriteMemory and ReadMemory expose the address space directly, used by
// tests that need to place a program, set up IF/IE or inspect stack contents
// without a running ROM. WriteMemory stores straight into the backing array,
// bypassing the write gateway (no ROM-band protection, echo remap, DIV reset
// or other I/O side effects); a write to IF or IE still flags an interrupt
// check. ReadMemory reads through the gateway.
func (c *Core) WriteMemory(address uint16, value uint8) {
	c.mem.WriteRaw(address, value)
	if address == addr.IF || address == addr.IE {
		c.cpu.RequestInterruptCheck()
	}
}
func (c *Core) ReadMemory(address uint16) uint8 { return c.mem.Read(address) }
