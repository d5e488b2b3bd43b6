package cpu

import (
	"github.com/retrocpu/m6502/bus"
	"github.com/retrocpu/m6502/irq"
)

// finish marks the end of an instruction: the real 6502 samples its
// interrupt lines during the last cycle of every instruction, so every
// terminal transition back to FetchOpcode polls first: here, or inline
// for stores, RMW writes, RTI and RTS.
func (c *Chip) finish(b bus.Bus) Pipeline {
	b.PollForInterrupts(true)
	return Pipeline{Kind: StateFetchOpcode}
}

func (c *Chip) pushStack(b bus.Bus, v uint8) {
	b.WriteByte(c.Reg.stackAddr(), v)
	c.Reg.S--
}

func (c *Chip) popStack(b bus.Bus) uint8 {
	c.Reg.S++
	return b.ReadByte(c.Reg.stackAddr())
}

func branchTaken(p uint8, op Operation) bool {
	carry := p&FlagCarry != 0
	zero := p&FlagZero != 0
	neg := p&FlagNegative != 0
	overflow := p&FlagOverflow != 0
	switch op {
	case OpBCC:
		return !carry
	case OpBCS:
		return carry
	case OpBEQ:
		return zero
	case OpBNE:
		return !zero
	case OpBMI:
		return neg
	case OpBPL:
		return !neg
	case OpBVC:
		return !overflow
	case OpBVS:
		return overflow
	}
	return false
}

// execute runs the operation semantics of §4.2 once the addressing walker
// has resolved an operand and/or effective address (or immediately, for
// implied and accumulator-mode instructions dispatched from
// ThrowawayRead).
func (c *Chip) execute(b bus.Bus, st Pipeline) (Pipeline, error) {
	switch st.Category {
	case CategoryStack:
		return c.executeStack(b, st)
	case CategoryReadModifyWrite:
		return c.executeRMW(st), nil
	default:
		return c.executeSimple(b, st)
	}
}

func (c *Chip) executeSimple(b bus.Bus, st Pipeline) (Pipeline, error) {
	switch st.Op {
	case OpADC:
		c.adc(st.Operand)
	case OpAND:
		c.Reg.A &= st.Operand
		c.Reg.setNZ(c.Reg.A)
	case OpASL:
		c.Reg.setFlag(FlagCarry, c.Reg.A&0x80 != 0)
		c.Reg.A <<= 1
		c.Reg.setNZ(c.Reg.A)
	case OpBIT:
		c.Reg.setFlag(FlagZero, c.Reg.A&st.Operand == 0)
		c.Reg.setFlag(FlagOverflow, st.Operand&FlagOverflow != 0)
		c.Reg.setFlag(FlagNegative, st.Operand&FlagNegative != 0)
	case OpCLC:
		c.Reg.setFlag(FlagCarry, false)
	case OpCLD:
		c.Reg.setFlag(FlagDecimal, false)
	case OpCLI:
		c.Reg.setFlag(FlagInterruptDisable, false)
	case OpCLV:
		c.Reg.setFlag(FlagOverflow, false)
	case OpSEC:
		c.Reg.setFlag(FlagCarry, true)
	case OpSED:
		c.Reg.setFlag(FlagDecimal, true)
	case OpSEI:
		c.Reg.setFlag(FlagInterruptDisable, true)
	case OpCMP:
		c.compare(c.Reg.A, st.Operand)
	case OpCPX:
		c.compare(c.Reg.X, st.Operand)
	case OpCPY:
		c.compare(c.Reg.Y, st.Operand)
	case OpDEX:
		c.Reg.X--
		c.Reg.setNZ(c.Reg.X)
	case OpDEY:
		c.Reg.Y--
		c.Reg.setNZ(c.Reg.Y)
	case OpINX:
		c.Reg.X++
		c.Reg.setNZ(c.Reg.X)
	case OpINY:
		c.Reg.Y++
		c.Reg.setNZ(c.Reg.Y)
	case OpEOR:
		c.Reg.A ^= st.Operand
		c.Reg.setNZ(c.Reg.A)
	case OpJMP:
		c.Reg.PC = st.Address
		return c.finish(b), nil
	case OpLDA:
		c.Reg.A = st.Operand
		c.Reg.setNZ(c.Reg.A)
	case OpLDX:
		c.Reg.X = st.Operand
		c.Reg.setNZ(c.Reg.X)
	case OpLDY:
		c.Reg.Y = st.Operand
		c.Reg.setNZ(c.Reg.Y)
	case OpLSR:
		c.Reg.setFlag(FlagCarry, c.Reg.A&0x01 != 0)
		c.Reg.A >>= 1
		c.Reg.setNZ(c.Reg.A)
	case OpNOP:
		// no effect
	case OpORA:
		c.Reg.A |= st.Operand
		c.Reg.setNZ(c.Reg.A)
	case OpROL:
		carryIn := uint8(0)
		if c.Reg.flag(FlagCarry) {
			carryIn = 1
		}
		c.Reg.setFlag(FlagCarry, c.Reg.A&0x80 != 0)
		c.Reg.A = c.Reg.A<<1 | carryIn
		c.Reg.setNZ(c.Reg.A)
	case OpROR:
		carryIn := uint8(0)
		if c.Reg.flag(FlagCarry) {
			carryIn = 0x80
		}
		c.Reg.setFlag(FlagCarry, c.Reg.A&0x01 != 0)
		c.Reg.A = c.Reg.A>>1 | carryIn
		c.Reg.setNZ(c.Reg.A)
	case OpSBC:
		c.adc(st.Operand ^ 0xFF)
	case OpSTA:
		b.PollForInterrupts(true)
		b.WriteByte(st.Address, c.Reg.A)
		return Pipeline{Kind: StateFetchOpcode}, nil
	case OpSTX:
		b.PollForInterrupts(true)
		b.WriteByte(st.Address, c.Reg.X)
		return Pipeline{Kind: StateFetchOpcode}, nil
	case OpSTY:
		b.PollForInterrupts(true)
		b.WriteByte(st.Address, c.Reg.Y)
		return Pipeline{Kind: StateFetchOpcode}, nil
	case OpTAX:
		c.Reg.X = c.Reg.A
		c.Reg.setNZ(c.Reg.X)
	case OpTAY:
		c.Reg.Y = c.Reg.A
		c.Reg.setNZ(c.Reg.Y)
	case OpTSX:
		c.Reg.X = c.Reg.S
		c.Reg.setNZ(c.Reg.X)
	case OpTXA:
		c.Reg.A = c.Reg.X
		c.Reg.setNZ(c.Reg.A)
	case OpTXS:
		c.Reg.S = c.Reg.X
	case OpTYA:
		c.Reg.A = c.Reg.Y
		c.Reg.setNZ(c.Reg.A)
	default:
		return st, InvalidPipelineState{State: st, Opcode: st.Opcode, Reason: "unhandled simple operation"}
	}
	return c.finish(b), nil
}

// adc implements binary-mode addition with carry, shared by ADC and SBC
// (SBC feeds the operand's one's complement). There is no decimal mode.
func (c *Chip) adc(operand uint8) {
	carryIn := uint16(0)
	if c.Reg.flag(FlagCarry) {
		carryIn = 1
	}
	a := uint16(c.Reg.A)
	sum := a + uint16(operand) + carryIn
	result := uint8(sum)
	c.Reg.setFlag(FlagCarry, sum > 0xFF)
	c.Reg.setFlag(FlagOverflow, (c.Reg.A^result)&(operand^result)&0x80 != 0)
	c.Reg.A = result
	c.Reg.setNZ(c.Reg.A)
}

func (c *Chip) compare(reg, operand uint8) {
	result := reg - operand
	c.Reg.setFlag(FlagCarry, reg >= operand)
	c.Reg.setNZ(result)
}

// executeRMW computes the read-modify-write operation's result and flags
// immediately, then hands off to WritingResult to perform the dummy
// write of the original value followed by the real write of the new
// one, per §4.4.
func (c *Chip) executeRMW(st Pipeline) Pipeline {
	old := st.Operand
	var result uint8
	switch st.Op {
	case OpASL:
		c.Reg.setFlag(FlagCarry, old&0x80 != 0)
		result = old << 1
	case OpLSR:
		c.Reg.setFlag(FlagCarry, old&0x01 != 0)
		result = old >> 1
	case OpROL:
		carryIn := uint8(0)
		if c.Reg.flag(FlagCarry) {
			carryIn = 1
		}
		c.Reg.setFlag(FlagCarry, old&0x80 != 0)
		result = old<<1 | carryIn
	case OpROR:
		carryIn := uint8(0)
		if c.Reg.flag(FlagCarry) {
			carryIn = 0x80
		}
		c.Reg.setFlag(FlagCarry, old&0x01 != 0)
		result = old>>1 | carryIn
	case OpINC:
		result = old + 1
	case OpDEC:
		result = old - 1
	}
	c.Reg.setNZ(result)
	return Pipeline{
		Kind:    StateWritingResult,
		Address: st.Address,
		Operand: old,
		Value:   result,
		Dummy:   true,
	}
}

// executeStack runs PHA, PHP, PLA, PLP, RTI, RTS and BRK's first
// execute-level cycle. Each enters its own short tail chain of micro
// states; the chain itself lives in stepCPU, or in stepInterrupt for BRK.
func (c *Chip) executeStack(b bus.Bus, st Pipeline) (Pipeline, error) {
	switch st.Op {
	case OpPHA:
		return Pipeline{Kind: StatePushRegisterOnStack, Value: c.Reg.A}, nil
	case OpPHP:
		// BREAK and UNUSED are always set to 1 in the byte a software push
		// writes to the stack.
		return Pipeline{Kind: StatePushRegisterOnStack, Value: c.Reg.P | FlagBreak | FlagUnused}, nil
	case OpPLA:
		return Pipeline{Kind: StatePreIncrementStackPointer, StackOp: stackOpPLA}, nil
	case OpPLP:
		return Pipeline{Kind: StatePreIncrementStackPointer, StackOp: stackOpPLP}, nil
	case OpRTI:
		return Pipeline{Kind: StatePreIncrementStackPointer, StackOp: stackOpRTI}, nil
	case OpRTS:
		return Pipeline{Kind: StatePreIncrementStackPointer, StackOp: stackOpRTS}, nil
	case OpBRK:
		// BRK has already spent FetchOpcode + ThrowawayRead (the padding
		// byte read and PC increment); it enters the interrupt sequence
		// directly at PushPCH rather than replaying the two internal-op
		// cycles a hardware-triggered NMI/IRQ needs.
		return Pipeline{Kind: StatePushPCH, Interrupt: irq.Interrupt{Kind: irq.IRQBRK, RaisedAt: c.cycle}}, nil
	}
	return st, InvalidPipelineState{State: st, Opcode: st.Opcode, Reason: "unhandled stack operation"}
}

// stepPullRegister handles the PullRegisterFromStack state shared by PLA,
// PLP and RTI.
func (c *Chip) stepPullRegister(b bus.Bus, st Pipeline) (Pipeline, error) {
	v := c.popStack(b)
	switch st.StackOp {
	case stackOpPLA:
		c.Reg.A = v
		c.Reg.setNZ(c.Reg.A)
		return c.finish(b), nil
	case stackOpPLP:
		// BREAK and UNUSED are never stored in P; they're stack-image-only.
		c.Reg.P = v &^ (FlagBreak | FlagUnused)
		return c.finish(b), nil
	case stackOpRTI:
		c.Reg.P = v &^ (FlagBreak | FlagUnused)
		return Pipeline{Kind: StatePullPCLFromStack, StackOp: stackOpRTI}, nil
	}
	return st, InvalidPipelineState{State: st, Opcode: st.Opcode, Reason: "PullRegisterFromStack on non-pull operation"}
}
