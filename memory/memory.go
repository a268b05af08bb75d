// Package memory implements the 64KB flat address space described in spec
// section 3 ("Memory state"): the read/write gateway, the timer, the
// joypad port, and OAM DMA.
package memory

import (
	"fmt"
	"log/slog"

	"github.com/agrell/dmgcore/addr"
	"github.com/agrell/dmgcore/serial"
)

// Button identifies one of the eight physical buttons.
type Button uint8

const (
	ButtonRight Button = iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// cycleSink receives the machine-cycle cost of an OAM DMA transfer. Satisfied
// structurally by *cpu.CPU; kept local to avoid an import cycle.
type cycleSink interface {
	AddCycles(n uint)
}

// interruptNotifiee is told when IF or IE changes so the scheduler knows to
// re-evaluate pending interrupts. Satisfied structurally by *cpu.CPU.
type interruptNotifiee interface {
	RequestInterruptCheck()
}

// Memory is the flat 64KB address space plus the peripherals mapped into it.
type Memory struct {
	data  [0x10000]byte
	timer timer

	// directions/buttons hold one bit per button in the port's active-low
	// sense: 0 means pressed, 1 means released, the same bit the CPU reads
	// back from P1.
	directions uint8
	buttons    uint8
	joypadMode uint8

	serial            serial.Sink
	pendingSerialByte uint8

	cycles   cycleSink
	irqNotif interruptNotifiee
}

// New returns a Memory with no cartridge loaded, initialized to the DMG
// post-boot-ROM I/O register state (spec section 3, "Lifecycle").
func New() *Memory {
	m := &Memory{
		joypadMode: 0,
		serial:     serial.NewLogSink(),
	}
	m.timer.mem = m
	m.resetIO()
	return m
}

// NewWithROM loads rom directly into the address space starting at 0x0000
// (spec's core has no memory bank controller: the whole image, up to 64KB,
// is mapped flat) and then applies the DMG post-boot I/O register state on
// top of it.
func NewWithROM(rom []byte) *Memory {
	m := New()
	n := copy(m.data[:], rom)
	_ = n
	m.resetIO()
	return m
}

func (m *Memory) resetIO() {
	m.data[addr.DIV] = 0x18
	m.data[addr.TIMA] = 0x00
	m.data[addr.TMA] = 0x00
	m.data[addr.TAC] = 0xF8
	m.data[addr.IF] = 0xE1

	m.data[addr.LCDC] = 0x91
	m.data[addr.STAT] = 0x81
	m.data[addr.SCY] = 0x00
	m.data[addr.SCX] = 0x00
	m.data[addr.LY] = 0x91
	m.data[addr.LYC] = 0x00
	m.data[addr.DMA] = 0xFF
	m.data[addr.BGP] = 0xFC
	m.data[addr.OBP0] = 0xFC
	m.data[addr.OBP1] = 0xFC
	m.data[addr.WY] = 0x00
	m.data[addr.WX] = 0x00
	m.data[addr.IE] = 0x00

	m.directions = 0x0F
	m.buttons = 0x0F
	m.joypadMode = 0x03
	m.updateJoypadRegister()
}

// SetCycleSink wires the scheduler's cycle accumulator, notified on OAM DMA.
func (m *Memory) SetCycleSink(c cycleSink) { m.cycles = c }

// SetInterruptNotifiee wires the CPU's sticky interrupt-check flag.
func (m *Memory) SetInterruptNotifiee(n interruptNotifiee) { m.irqNotif = n }

// SetSerialSink replaces the default diagnostic serial sink.
func (m *Memory) SetSerialSink(s serial.Sink) { m.serial = s }

// TickTimer advances DIV/TIMA/TMA/TAC by one machine cycle, per spec section
// 4.4. cycleCount is the scheduler's post-increment monotonic counter.
func (m *Memory) TickTimer(cycleCount uint64) {
	m.timer.Tick(cycleCount)
}

// RequestInterrupt sets the given source's bit in IF.
func (m *Memory) RequestInterrupt(source addr.Interrupt) {
	m.data[addr.IF] |= uint8(source)
	if m.irqNotif != nil {
		m.irqNotif.RequestInterruptCheck()
	}
}

// remap folds the echo RAM alias onto working RAM, per spec invariant that
// reads and writes to [0xE000, 0xFE00) behave exactly as the corresponding
// address in [0xC000, 0xDE00).
func remap(address uint16) uint16 {
	if address >= addr.EchoStart && address < addr.EchoEnd {
		return address - 0x2000
	}
	return address
}

// Read implements cpu.Bus.
func (m *Memory) Read(address uint16) uint8 {
	address = remap(address)

	switch address {
	case addr.P1:
		return m.readJoypad()
	case addr.LY:
		return m.data[addr.LY]
	default:
		return m.data[address]
	}
}

// Write implements cpu.Bus.
func (m *Memory) Write(address uint16, value uint8) {
	address = remap(address)

	switch address {
	case addr.P1:
		m.writeJoypad(value)
		return
	case addr.DIV:
		// Any write to DIV, regardless of the value supplied, resets it to
		// zero (spec section 4.1). Internal timer increments go through
		// TickTimer, which bypasses this gateway.
		m.data[addr.DIV] = 0
		return
	case addr.SB:
		// Spec section 4.1: the backing register is never modified; the byte
		// is only latched here and actually emitted once SC starts a
		// transfer, matching the SB-then-SC=0x81 convention test ROMs use.
		m.pendingSerialByte = value
		return
	case addr.SC:
		m.data[addr.SC] = value
		if value&0x80 != 0 {
			m.serial.Write(m.pendingSerialByte)
			m.data[addr.SC] &^= 0x80
		}
		return
	case addr.IF, addr.IE:
		m.data[address] = value
		if m.irqNotif != nil {
			m.irqNotif.RequestInterruptCheck()
		}
		return
	case addr.DMA:
		m.data[addr.DMA] = value
		m.doDMA(value)
		return
	}

	if (address >= addr.VRAMStart && address < addr.EchoStart) || address >= addr.OAMStart {
		m.data[address] = value
		return
	}

	if address < addr.ROMEnd {
		slog.Warn("attempted bank switch, not implemented", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
		return
	}

	slog.Warn("attempted illegal write", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
}

// doDMA copies 0xA0 bytes from src<<8 into OAM and charges 160 machine
// cycles. The copy writes directly into the backing array rather than
// through Write to avoid recursing back into the gateway.
func (m *Memory) doDMA(src uint8) {
	base := uint16(src) << 8
	for i := uint16(0); i < 0xA0; i++ {
		m.data[addr.OAMStart+i] = m.Read(base + i)
	}
	if m.cycles != nil {
		m.cycles.AddCycles(160)
	}
}

// ReadByte and WriteRaw are internal-only raw accessors used by the PPU to
// read tile/map/OAM/register data and to advance LY/STAT without going
// through the public gateway (whose I/O intercepts don't apply to the PPU's
// own bookkeeping registers).
func (m *Memory) ReadByte(address uint16) uint8 {
	return m.data[address]
}

func (m *Memory) WriteRaw(address uint16, value uint8) {
	m.data[address] = value
}
