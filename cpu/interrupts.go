package cpu

import (
	"github.com/agrell/dmgcore/addr"
	"github.com/agrell/dmgcore/bit"
)

// HandleInterrupts implements spec section 4.3. It is called by the
// scheduler after an instruction step or a HALT tick whenever the
// needInterruptCheck flag is set. It
// returns the number of machine cycles charged (5 if an interrupt was
// serviced, 0 otherwise).
func (c *CPU) HandleInterrupts() int {
	c.needInterruptCheck = false

	requested := c.bus.Read(addr.IF)
	enabled := c.bus.Read(addr.IE)
	pending := requested & enabled

	if pending != 0 {
		c.halted = false
	}

	if !c.ime {
		return 0
	}

	for _, source := range addr.Ordered {
		if pending&uint8(source) == 0 {
			continue
		}

		c.bus.Write(addr.IF, requested&^uint8(source))
		c.ime = false

		sp := c.sp.get() - 2
		c.sp.set(sp)
		pc := c.pc.get()
		c.bus.Write(sp, bit.Low(pc))
		c.bus.Write(sp+1, bit.High(pc))

		c.pc.set(source.Vector())
		return 5
	}

	return 0
}
