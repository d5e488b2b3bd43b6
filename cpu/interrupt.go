package cpu

import (
	"github.com/retrocpu/m6502/bus"
	"github.com/retrocpu/m6502/irq"
)

// stepInterrupt runs the seven-cycle sequence of §4.6, shared by a
// hardware NMI/IRQ entry (synthesized by Clock's FetchOpcode hijack) and
// a software BRK (which joins partway through, at PushPCH, since its own
// FetchOpcode and ThrowawayRead already stood in for the two internal
// cycles below).
func (c *Chip) stepInterrupt(b bus.Bus, st Pipeline) (Pipeline, error) {
	switch st.Kind {
	case StateInternalOps1:
		_ = b.ReadByte(c.Reg.PC)
		return Pipeline{Kind: StateInternalOps2, Interrupt: st.Interrupt}, nil

	case StateInternalOps2:
		_ = b.ReadByte(c.Reg.PC)
		return Pipeline{Kind: StatePushPCH, Interrupt: st.Interrupt}, nil

	case StatePushPCH:
		c.pushStack(b, uint8(c.Reg.PC>>8))
		return Pipeline{Kind: StatePushPCL, Interrupt: st.Interrupt}, nil

	case StatePushPCL:
		c.pushStack(b, uint8(c.Reg.PC&0xFF))
		return Pipeline{Kind: StatePushStatusRegister, Interrupt: st.Interrupt}, nil

	case StatePushStatusRegister:
		return c.stepPushStatusRegister(b, st)

	case StatePullVectorLow:
		lo := b.ReadByte(st.Interrupt.Kind.Offset())
		return Pipeline{Kind: StatePullVectorHigh, Interrupt: st.Interrupt, PCL: lo}, nil

	case StatePullVectorHigh:
		hi := b.ReadByte(st.Interrupt.Kind.Offset() + 1)
		c.Reg.PC = uint16(hi)<<8 | uint16(st.PCL)
		return Pipeline{Kind: StateFetchOpcode}, nil
	}
	return st, InvalidPipelineState{State: st, Opcode: st.Opcode, Reason: "unreachable pipeline kind in stepInterrupt"}
}

// stepPushStatusRegister is the hijack point: the core re-polls for
// interrupts with clearLines=false, and if a higher priority interrupt
// has since been recorded, it replaces the one this sequence started
// with before the status byte is even written. The byte pushed encodes
// BREAK=1 only for a software BRK; every hardware-triggered entry pushes
// BREAK=0.
func (c *Chip) stepPushStatusRegister(b bus.Bus, st Pipeline) (Pipeline, error) {
	b.PollForInterrupts(false)
	effective := st.Interrupt
	if c.polled != nil && irq.Overrides(effective.Kind, c.polled.Kind) {
		effective = *c.polled
	}
	c.polled = nil

	pushed := c.Reg.P | FlagUnused
	if effective.Kind == irq.IRQBRK {
		pushed |= FlagBreak
	} else {
		pushed &^= FlagBreak
	}
	c.pushStack(b, pushed)
	c.Reg.setFlag(FlagInterruptDisable, true)

	return Pipeline{Kind: StatePullVectorLow, Interrupt: effective}, nil
}
