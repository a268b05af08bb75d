package memory

import "github.com/agrell/dmgcore/addr"

// Joypad select bits, grounded on original_source's joypad_mode: the value
// written to P1 bits 5:4 selects a group directly (bit 0 selects buttons,
// bit 1 selects the d-pad), not hardware's active-low select convention.
// This only governs which raw write selects a group; the bits the
// selection is reported back on (P1 bits 5:4 on read) follow spec.md's
// explicit layout instead, see readJoypad.
const (
	selectButtons uint8 = 0b01
	selectDpad    uint8 = 0b10
)

// readJoypad composes the P1 value: bits 7:6 always read high, bit 5
// reflects whether actions are selected, bit 4 reflects whether directions
// are selected (spec section 4.1 — independent of which raw write-side bit
// triggered that selection), and bits 3:0 report the selected button group,
// active-low (0 = pressed).
func (m *Memory) readJoypad() uint8 {
	result := uint8(0b11000000)

	if m.joypadMode&selectButtons != 0 {
		result |= 0b0010_0000
		result |= m.buttons & 0x0F
	}
	if m.joypadMode&selectDpad != 0 {
		result |= 0b0001_0000
		result |= m.directions & 0x0F
	}
	if m.joypadMode == 0 {
		result |= 0x0F
	}

	return result
}

func (m *Memory) writeJoypad(value uint8) {
	m.joypadMode = (value >> 4) & 0x03
	m.updateJoypadRegister()
}

func (m *Memory) updateJoypadRegister() {
	m.data[addr.P1] = m.readJoypad()
}

// PressButton marks a button as held and raises a joypad interrupt,
// regardless of whether the corresponding group is currently selected
// (matches the behavior request_interrupt unconditionally on press).
func (m *Memory) PressButton(b Button) {
	m.setButton(b, false)
	m.RequestInterrupt(addr.Joypad)
	m.updateJoypadRegister()
}

// ReleaseButton marks a button as released. No interrupt is raised.
func (m *Memory) ReleaseButton(b Button) {
	m.setButton(b, true)
	m.updateJoypadRegister()
}

// setButton sets the bit for b to released (true) or pressed (false) in
// whichever of directions/buttons it belongs to.
func (m *Memory) setButton(b Button, released bool) {
	var group *uint8
	var bitIndex uint8

	switch b {
	case ButtonRight:
		group, bitIndex = &m.directions, 0
	case ButtonLeft:
		group, bitIndex = &m.directions, 1
	case ButtonUp:
		group, bitIndex = &m.directions, 2
	case ButtonDown:
		group, bitIndex = &m.directions, 3
	case ButtonA:
		group, bitIndex = &m.buttons, 0
	case ButtonB:
		group, bitIndex = &m.buttons, 1
	case ButtonSelect:
		group, bitIndex = &m.buttons, 2
	case ButtonStart:
		group, bitIndex = &m.buttons, 3
	default:
		return
	}

	if released {
		*group |= 1 << bitIndex
	} else {
		*group &^= 1 << bitIndex
	}
}
