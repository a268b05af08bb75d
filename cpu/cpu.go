// Package cpu implements the Sharp LR35902 instruction set: the register
// file, the opcode decoder/executor, and interrupt dispatch.
package cpu

import "fmt"

// Bus is the memory surface the CPU reads and writes through. It is
// satisfied by *memory.Memory; kept as an interface here so the package has
// no import-cycle dependency on memory.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// flag identifies one of the four bits of the F register.
type flag uint8

const (
	flagZ flag = 0x80
	flagN flag = 0x40
	flagH flag = 0x20
	flagC flag = 0x10
)

// CPU holds the Z80-derived register file and scheduling state described in
// spec section 3 ("CPU state"). Every field here is per-instance; nothing
// is shared across CPU values, so multiple independent cores are safe.
type CPU struct {
	bus Bus

	af, bc, de, hl register16
	sp, pc         register16

	ime    bool
	halted bool

	// CyclesToWait is the pending M-cycle budget accumulated by the last
	// executed instruction (or interrupt service), drained by the
	// scheduler's Wait loop.
	CyclesToWait uint

	// CycleCount is a monotonic count of machine cycles drained so far.
	CycleCount uint64

	// needInterruptCheck is the sticky flag raised on every write to
	// IF/IE (including writes performed internally via RequestInterrupt)
	// and on EI/RETI. The scheduler consults it after each step instead
	// of unconditionally re-reading IF/IE every instruction.
	needInterruptCheck bool
}

// New returns a CPU wired to the given bus, initialized to the DMG
// post-boot-ROM register state (spec section 3, "Lifecycle").
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.af.set(0x01B0)
	c.bc.set(0x0013)
	c.de.set(0x00D8)
	c.hl.set(0x014D)
	c.pc.set(0x0100)
	c.sp.set(0xFFFE)
	c.ime = false
	c.needInterruptCheck = true
	return c
}

// AddCycles charges additional machine cycles onto the pending budget,
// e.g. the 160 cycles an OAM DMA transfer costs.
func (c *CPU) AddCycles(n uint) {
	c.CyclesToWait += n
}

// RequestInterruptCheck marks that IF or IE changed and the scheduler
// should re-evaluate pending interrupts at the next opportunity. Memory
// calls this on every write to those two registers.
func (c *CPU) RequestInterruptCheck() {
	c.needInterruptCheck = true
}

// NeedsInterruptCheck reports whether an interrupt dispatch pass is due.
func (c *CPU) NeedsInterruptCheck() bool {
	return c.needInterruptCheck
}

// Halted reports whether the CPU is in the HALT idle state.
func (c *CPU) Halted() bool {
	return c.halted
}

// PC returns the current program counter, mainly for host-side debugging
// and the Gameboy-Doctor-style Dump below.
func (c *CPU) PC() uint16 { return c.pc.get() }

// SP returns the current stack pointer.
func (c *CPU) SP() uint16 { return c.sp.get() }

// IME reports whether the interrupt master enable latch is set.
func (c *CPU) IME() bool { return c.ime }

// SetState force-sets the full architectural register file. Used by tests
// that need to set up a specific machine state (e.g. interrupt vectoring
// scenarios) without stepping through instructions to get there. The low
// nibble of F is masked to zero, as for every other write to F.
func (c *CPU) SetState(af, bc, de, hl, sp, pc uint16, ime bool) {
	c.af.set(af & 0xFFF0)
	c.bc.set(bc)
	c.de.set(de)
	c.hl.set(hl)
	c.sp.set(sp)
	c.pc.set(pc)
	c.ime = ime
}

func (c *CPU) getFlag(f flag) bool {
	return c.af.low()&uint8(f) != 0
}

func (c *CPU) setFlag(f flag, on bool) {
	if on {
		c.af.setLow(c.af.low() | uint8(f))
	} else {
		c.af.setLow(c.af.low() &^ uint8(f))
	}
}

func (c *CPU) flagBit(f flag) uint8 {
	if c.getFlag(f) {
		return 1
	}
	return 0
}

// Dump renders the CPU state in the Gameboy Doctor trace format:
//
//	A:XX F:XX B:XX C:XX D:XX E:XX H:XX L:XX SP:XXXX PC:XXXX PCMEM:XX,XX,XX,XX
func (c *CPU) Dump() string {
	pc := c.pc.get()
	return fmt.Sprintf(
		"A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X PCMEM:%02X,%02X,%02X,%02X",
		c.af.high(), c.af.low(), c.bc.high(), c.bc.low(), c.de.high(), c.de.low(),
		c.hl.high(), c.hl.low(), c.sp.get(), pc,
		c.bus.Read(pc), c.bus.Read(pc+1), c.bus.Read(pc+2), c.bus.Read(pc+3),
	)
}
