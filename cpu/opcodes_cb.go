package cpu

import "github.com/agrell/dmgcore/bit"

// executeCB decodes the CB-prefixed page: rotate/shift (0x00-0x3F), BIT
// (0x40-0x7F), RES (0x80-0xBF) and SET (0xC0-0xFF), each addressing one of
// the eight r8-encoded operands in the low three bits.
func (c *CPU) executeCB(op uint8) int {
	idx := op & 7
	onHL := idx == 6

	switch {
	case op < 0x40: // rotate/shift family, selected by (op>>3)&7
		v := c.shiftOp((op>>3)&7, c.r8(idx))
		c.setR8(idx, v)
		if onHL {
			return 4
		}
		return 2

	case op < 0x80: // BIT b,r
		b := (op >> 3) & 7
		c.testBit(b, c.r8(idx))
		if onHL {
			return 3
		}
		return 2

	case op < 0xC0: // RES b,r
		b := (op >> 3) & 7
		c.setR8(idx, bit.Reset(b, c.r8(idx)))
		if onHL {
			return 4
		}
		return 2

	default: // SET b,r
		b := (op >> 3) & 7
		c.setR8(idx, bit.Set(b, c.r8(idx)))
		if onHL {
			return 4
		}
		return 2
	}
}

// shiftOp dispatches the eight rotate/shift variants: RLC RRC RL RR SLA SRA
// SWAP SRL.
func (c *CPU) shiftOp(op uint8, v uint8) uint8 {
	switch op & 7 {
	case 0:
		return c.rlc(v)
	case 1:
		return c.rrc(v)
	case 2:
		return c.rl(v)
	case 3:
		return c.rr(v)
	case 4:
		return c.sla(v)
	case 5:
		return c.sra(v)
	case 6:
		return c.swap(v)
	default:
		return c.srl(v)
	}
}
