package cpu

import "github.com/retrocpu/m6502/bus"

// stepCPU dispatches a non-interrupt pipeline state, per the component
// breakdown in §4: FetchOpcode decodes the next instruction,
// ThrowawayRead handles the implied/accumulator second cycle, and
// ReadingOperand drives the addressing-mode walker. Everything else is a
// tail state left behind by an operation (stack/JSR/RMW micro-steps).
func (c *Chip) stepCPU(b bus.Bus, st Pipeline) (Pipeline, error) {
	switch st.Kind {
	case StateFetchOpcode:
		opcode := b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		e := opcodeTable[opcode]
		next := Pipeline{Opcode: opcode, Mode: e.Mode, Op: e.Op, Category: e.Category}
		if e.Mode == ModeImplied || e.Mode == ModeAccumulator {
			next.Kind = StateThrowawayRead
			if e.Mode == ModeAccumulator {
				next.Operand = c.Reg.A
				next.HasValue = true
			}
		} else {
			next.Kind = StateReadingOperand
		}
		return next, nil

	case StateThrowawayRead:
		// BRK is the lone exception: its second cycle increments PC since
		// the byte after the opcode is a (discarded) signature byte.
		if st.Op == OpBRK {
			_ = b.ReadByte(c.Reg.PC)
			c.Reg.PC++
		} else {
			_ = b.ReadByte(c.Reg.PC)
		}
		return c.execute(b, st)

	case StateReadingOperand:
		return c.stepAddressing(b, st)

	case StateBranchCrossesPageBoundary:
		c.Reg.PC = st.Address
		_ = b.ReadByte(c.Reg.PC)
		return c.finish(b), nil

	case StatePushRegisterOnStack:
		c.pushStack(b, st.Value)
		return c.finish(b), nil

	case StatePreIncrementStackPointer:
		_ = b.ReadByte(c.Reg.stackAddr())
		switch st.StackOp {
		case stackOpRTS:
			return Pipeline{Kind: StatePullPCLFromStack, StackOp: st.StackOp}, nil
		case stackOpPLA, stackOpPLP, stackOpRTI:
			return Pipeline{Kind: StatePullRegisterFromStack, StackOp: st.StackOp}, nil
		}
		return st, InvalidPipelineState{State: st, Opcode: st.Opcode, Reason: "PreIncrementStackPointer on non-stack operation"}

	case StatePullRegisterFromStack:
		return c.stepPullRegister(b, st)

	case StatePullPCLFromStack:
		pcl := c.popStack(b)
		return Pipeline{Kind: StatePullPCHFromStack, StackOp: st.StackOp, PCL: pcl}, nil

	case StatePullPCHFromStack:
		pch := c.popStack(b)
		c.Reg.PC = uint16(pch)<<8 | uint16(st.PCL)
		switch st.StackOp {
		case stackOpRTS:
			return Pipeline{Kind: StateIncrementProgramCounter}, nil
		case stackOpRTI:
			b.PollForInterrupts(true)
			return Pipeline{Kind: StateFetchOpcode}, nil
		}
		return st, InvalidPipelineState{State: st, Opcode: st.Opcode, Reason: "PullPCHFromStack on non-return operation"}

	case StateIncrementProgramCounter:
		b.PollForInterrupts(true)
		c.Reg.PC++
		return Pipeline{Kind: StateFetchOpcode}, nil

	case StateWritePCHToStack:
		if st.Step == 0 {
			// Internal cycle: the stack pointer has already been adjusted
			// logically but a dummy read of the current top of stack
			// happens here on real hardware.
			_ = b.ReadByte(c.Reg.stackAddr())
			st.Step = 1
			return st, nil
		}
		c.pushStack(b, uint8(c.Reg.PC>>8))
		return Pipeline{Kind: StateWritePCLToStack, Address: st.Address, AddrLo: st.AddrLo}, nil

	case StateWritePCLToStack:
		c.pushStack(b, uint8(c.Reg.PC&0xFF))
		return Pipeline{Kind: StateSetProgramCounter, Address: st.Address, AddrLo: st.AddrLo}, nil

	case StateSetProgramCounter:
		hi := b.ReadByte(c.Reg.PC)
		c.Reg.PC = uint16(hi)<<8 | uint16(st.AddrLo)
		return c.finish(b), nil

	case StateWritingResult:
		if st.Dummy {
			b.WriteByte(st.Address, st.Operand)
			st.Dummy = false
			return st, nil
		}
		b.PollForInterrupts(true)
		b.WriteByte(st.Address, st.Value)
		return Pipeline{Kind: StateFetchOpcode}, nil
	}
	return st, InvalidPipelineState{State: st, Opcode: st.Opcode, Reason: "unreachable pipeline kind in stepCPU"}
}

// stepAddressing implements §4.3, dispatching on the opcode's
// AddressingMode. st.Step counts cycles within this addressing sequence,
// starting at 0 for the first cycle after FetchOpcode.
func (c *Chip) stepAddressing(b bus.Bus, st Pipeline) (Pipeline, error) {
	switch st.Mode {
	case ModeImmediate:
		st.Operand = b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		st.HasValue = true
		return c.execute(b, st)
	case ModeZeroPage:
		return c.stepZeroPage(b, st)
	case ModeZeroPageX:
		return c.stepZeroPageIndexed(b, st, c.Reg.X)
	case ModeZeroPageY:
		return c.stepZeroPageIndexed(b, st, c.Reg.Y)
	case ModeAbsolute:
		return c.stepAbsolute(b, st)
	case ModeAbsoluteX:
		return c.stepAbsoluteIndexed(b, st, c.Reg.X)
	case ModeAbsoluteY:
		return c.stepAbsoluteIndexed(b, st, c.Reg.Y)
	case ModeIndirect:
		return c.stepIndirect(b, st)
	case ModeIndirectX:
		return c.stepIndirectX(b, st)
	case ModeIndirectY:
		return c.stepIndirectY(b, st)
	case ModeRelative:
		return c.stepRelative(b, st)
	case ModeJSR:
		return c.stepJSR(b, st)
	}
	return st, InvalidPipelineState{State: st, Opcode: st.Opcode, Reason: "unhandled addressing mode"}
}

func (c *Chip) stepZeroPage(b bus.Bus, st Pipeline) (Pipeline, error) {
	switch st.Step {
	case 0:
		lo := b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		st.AddrLo = lo
		st.Address = uint16(lo)
		st.Step = 1
		return st, nil
	default: // Step 1
		if st.Category == CategoryWrite {
			return c.execute(b, st)
		}
		st.Operand = b.ReadByte(st.Address)
		st.HasValue = true
		return c.execute(b, st)
	}
}

func (c *Chip) stepZeroPageIndexed(b bus.Bus, st Pipeline, reg uint8) (Pipeline, error) {
	switch st.Step {
	case 0:
		lo := b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		st.AddrLo = lo
		st.Step = 1
		return st, nil
	case 1:
		// Dummy read of the unindexed zero page address.
		_ = b.ReadByte(uint16(st.AddrLo))
		st.Address = uint16(st.AddrLo + reg)
		st.Step = 2
		return st, nil
	default: // Step 2
		if st.Category == CategoryWrite {
			return c.execute(b, st)
		}
		st.Operand = b.ReadByte(st.Address)
		st.HasValue = true
		return c.execute(b, st)
	}
}

func (c *Chip) stepAbsolute(b bus.Bus, st Pipeline) (Pipeline, error) {
	switch st.Step {
	case 0:
		lo := b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		st.AddrLo = lo
		st.Step = 1
		return st, nil
	case 1:
		hi := b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		st.AddrHi = hi
		st.Address = uint16(hi)<<8 | uint16(st.AddrLo)
		if st.Category == CategoryJump {
			return c.execute(b, st)
		}
		st.Step = 2
		return st, nil
	default: // Step 2
		if st.Category == CategoryWrite {
			return c.execute(b, st)
		}
		st.Operand = b.ReadByte(st.Address)
		st.HasValue = true
		return c.execute(b, st)
	}
}

func (c *Chip) stepAbsoluteIndexed(b bus.Bus, st Pipeline, reg uint8) (Pipeline, error) {
	switch st.Step {
	case 0:
		lo := b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		st.AddrLo = lo
		st.Step = 1
		return st, nil
	case 1:
		hi := b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		st.AddrHi = hi
		unindexed := uint16(hi)<<8 | uint16(st.AddrLo)
		correct := unindexed + uint16(reg)
		st.Address = correct
		st.PageBoundaryCrossed = uint8(unindexed>>8) != uint8(correct>>8)
		st.Step = 2
		return st, nil
	case 2:
		firstRead := uint16(st.AddrHi)<<8 | uint16(st.AddrLo+reg)
		switch st.Category {
		case CategoryWrite, CategoryReadModifyWrite:
			// Always take the dummy read at the unindexed-page address; the
			// shortcut for a same-page access never applies here.
			_ = b.ReadByte(firstRead)
			st.Step = 3
			return st, nil
		default: // Read
			if !st.PageBoundaryCrossed {
				st.Operand = b.ReadByte(st.Address)
				st.HasValue = true
				return c.execute(b, st)
			}
			_ = b.ReadByte(firstRead)
			st.Step = 3
			return st, nil
		}
	default: // Step 3
		if st.Category == CategoryWrite {
			return c.execute(b, st)
		}
		st.Operand = b.ReadByte(st.Address)
		st.HasValue = true
		return c.execute(b, st)
	}
}

func (c *Chip) stepIndirect(b bus.Bus, st Pipeline) (Pipeline, error) {
	// First two cycles read the pointer exactly like Absolute.
	switch st.Step {
	case 0:
		lo := b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		st.AddrLo = lo
		st.Step = 1
		return st, nil
	case 1:
		hi := b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		st.AddrHi = hi
		st.Step = 2
		return st, nil
	case 2:
		ptr := uint16(st.AddrHi)<<8 | uint16(st.AddrLo)
		st.IndLo = b.ReadByte(ptr)
		st.Step = 3
		return st, nil
	default: // Step 3
		ptr := uint16(st.AddrHi)<<8 | uint16(st.AddrLo)
		// The page-wrap bug: the high byte is read from (ptr & 0xFF00) |
		// ((ptr_lo+1) & 0xFF), never crossing into the next page.
		wrapped := (ptr & 0xFF00) | uint16(uint8(ptr)+1)
		hi := b.ReadByte(wrapped)
		c.Reg.PC = uint16(hi)<<8 | uint16(st.IndLo)
		return c.finish(b), nil
	}
}

func (c *Chip) stepIndirectX(b bus.Bus, st Pipeline) (Pipeline, error) {
	switch st.Step {
	case 0:
		st.Pointer = b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		st.Step = 1
		return st, nil
	case 1:
		// Dummy read at the unindexed zero page pointer.
		_ = b.ReadByte(uint16(st.Pointer))
		st.Pointer += c.Reg.X
		st.Step = 2
		return st, nil
	case 2:
		st.AddrLo = b.ReadByte(uint16(st.Pointer))
		st.Pointer++
		st.Step = 3
		return st, nil
	case 3:
		st.AddrHi = b.ReadByte(uint16(st.Pointer))
		st.Address = uint16(st.AddrHi)<<8 | uint16(st.AddrLo)
		st.Step = 4
		return st, nil
	default: // Step 4
		if st.Category == CategoryWrite {
			return c.execute(b, st)
		}
		st.Operand = b.ReadByte(st.Address)
		st.HasValue = true
		return c.execute(b, st)
	}
}

func (c *Chip) stepIndirectY(b bus.Bus, st Pipeline) (Pipeline, error) {
	switch st.Step {
	case 0:
		st.Pointer = b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		st.Step = 1
		return st, nil
	case 1:
		st.AddrLo = b.ReadByte(uint16(st.Pointer))
		st.Step = 2
		return st, nil
	case 2:
		st.AddrHi = b.ReadByte(uint16(st.Pointer + 1))
		unindexed := uint16(st.AddrHi)<<8 | uint16(st.AddrLo)
		correct := unindexed + uint16(c.Reg.Y)
		st.Address = correct
		st.PageBoundaryCrossed = uint8(unindexed>>8) != uint8(correct>>8)
		st.Step = 3
		return st, nil
	case 3:
		firstRead := uint16(st.AddrHi)<<8 | uint16(st.AddrLo+c.Reg.Y)
		switch st.Category {
		case CategoryWrite, CategoryReadModifyWrite:
			_ = b.ReadByte(firstRead)
			st.Step = 4
			return st, nil
		default:
			if !st.PageBoundaryCrossed {
				st.Operand = b.ReadByte(st.Address)
				st.HasValue = true
				return c.execute(b, st)
			}
			_ = b.ReadByte(firstRead)
			st.Step = 4
			return st, nil
		}
	default: // Step 4
		if st.Category == CategoryWrite {
			return c.execute(b, st)
		}
		st.Operand = b.ReadByte(st.Address)
		st.HasValue = true
		return c.execute(b, st)
	}
}

func (c *Chip) stepRelative(b bus.Bus, st Pipeline) (Pipeline, error) {
	switch st.Step {
	case 0:
		operand := b.ReadByte(c.Reg.PC)
		c.Reg.PC++
		if !branchTaken(c.Reg.P, st.Op) {
			return c.finish(b), nil
		}
		st.Operand = operand
		st.BranchAddress = c.Reg.PC
		st.Step = 1
		return st, nil
	default: // Step 1
		base := st.BranchAddress
		offset := uint16(int8(st.Operand))
		correct := base + offset
		// Dummy-read the "wrong page" address: same high byte as base,
		// low byte wrapped within the page. Real hardware always takes
		// this guess before confirming whether a page was crossed.
		wrong := (base & 0xFF00) | uint16(uint8(base)+uint8(st.Operand))
		_ = b.ReadByte(wrong)
		if wrong == correct {
			c.Reg.PC = correct
			return c.finish(b), nil
		}
		return Pipeline{Kind: StateBranchCrossesPageBoundary, Address: correct}, nil
	}
}

func (c *Chip) stepJSR(b bus.Bus, st Pipeline) (Pipeline, error) {
	// Cycle 2: read the low byte of the target and advance PC past it.
	// PC now sits on the high byte, one short of the full return address,
	// which is exactly the value JSR needs to push.
	lo := b.ReadByte(c.Reg.PC)
	c.Reg.PC++
	return Pipeline{Kind: StateWritePCHToStack, AddrLo: lo, Step: 0}, nil
}
