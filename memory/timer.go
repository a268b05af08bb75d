package memory

import "github.com/agrell/dmgcore/addr"

// timer implements the DIV/TIMA/TMA/TAC behavior described in spec section
// 4.4: a modulo check against the absolute machine-cycle counter rather than
// edge-detection against an internal divider. Every cycle the scheduler
// drains is fed through Tick once.
type timer struct {
	mem *Memory
}

// timerPeriod maps the two clock-select bits of TAC to the number of
// machine cycles between TIMA increments.
func timerPeriod(select_ uint8) uint64 {
	switch select_ & 0x03 {
	case 0x00:
		return 256
	case 0x01:
		return 4
	case 0x02:
		return 16
	default:
		return 64
	}
}

// Tick is called once per machine cycle with the scheduler's monotonic
// cycle_count (post-increment). DIV and TIMA are mutated directly in the
// backing array rather than through Write, so this does not re-trigger the
// "any write to DIV resets it" rule that applies to writes arriving from
// the CPU or an external actor.
func (t *timer) Tick(cycleCount uint64) {
	if cycleCount%64 == 0 {
		t.mem.data[addr.DIV]++
	}

	tac := t.mem.data[addr.TAC]
	if tac&0x04 == 0 {
		return
	}

	if cycleCount%timerPeriod(tac) != 0 {
		return
	}

	if t.mem.data[addr.TIMA] == 0xFF {
		t.mem.data[addr.TIMA] = t.mem.data[addr.TMA]
		t.mem.RequestInterrupt(addr.Timer)
	} else {
		t.mem.data[addr.TIMA]++
	}
}
