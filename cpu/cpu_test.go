package cpu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"

	"github.com/retrocpu/m6502/bus"
	"github.com/retrocpu/m6502/irq"
)

// run clocks c until it returns to StateFetchOpcode for the nth time
// (n==1 means "run exactly one instruction"), also counting the
// StateInternalOps1 that Clock substitutes for FetchOpcode when an
// interrupt is pending, failing the test if Clock
// ever errors or if the instruction doesn't complete within a generous
// cycle budget.
func run(t *testing.T, c *Chip, b bus.Bus, instructions int) {
	t.Helper()
	const maxCyclesPerInstruction = 12
	done := 0
	for i := 0; i < instructions*maxCyclesPerInstruction && done < instructions; i++ {
		if err := c.Clock(b); err != nil {
			t.Fatalf("Clock: %v\nstate: %s", err, spew.Sdump(c.state))
		}
		if c.state.Kind == StateFetchOpcode || c.state.Kind == StateInternalOps1 {
			done++
		}
	}
	if done < instructions {
		t.Fatalf("did not complete %d instruction(s), only %d; state: %s", instructions, done, spew.Sdump(c.state))
	}
}

func newChip(t *testing.T, fill uint8, pc uint16) (*Chip, *bus.FlatMemory) {
	t.Helper()
	mem := bus.NewFlatMemory(fill)
	mem.LoadVector(irq.RESETVector, pc)
	c := New(0, mem)
	return c, mem
}

func TestResetVector(t *testing.T) {
	mem := bus.NewFlatMemory(0xEA)
	mem.LoadVector(irq.RESETVector, 0xC000)
	c := New(0, mem)
	if c.Reg.PC != 0xC000 {
		t.Errorf("PC = 0x%04X, want 0xC000", c.Reg.PC)
	}
	if c.Reg.S != 0xFD {
		t.Errorf("S = 0x%02X, want 0xFD", c.Reg.S)
	}
	if c.Reg.P != FlagInterruptDisable {
		t.Errorf("P = 0x%02X, want 0x%02X", c.Reg.P, FlagInterruptDisable)
	}
	if c.state.Kind != StateFetchOpcode {
		t.Errorf("initial state kind = %d, want StateFetchOpcode", c.state.Kind)
	}
}

func TestADCOverflow(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0x69, 0x01}) // ADC #$01
	c.Reg.A = 0x7F
	run(t, c, mem, 1)
	if c.Reg.A != 0x80 {
		t.Errorf("A = 0x%02X, want 0x80", c.Reg.A)
	}
	if !c.Reg.flag(FlagOverflow) {
		t.Error("OVERFLOW not set on signed overflow 0x7F+0x01")
	}
	if !c.Reg.flag(FlagNegative) {
		t.Error("NEGATIVE not set for result 0x80")
	}
	if c.Reg.flag(FlagCarry) {
		t.Error("CARRY unexpectedly set")
	}
}

func TestSBCBorrow(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0xE9, 0x01}) // SBC #$01
	c.Reg.A = 0x00
	c.Reg.P |= FlagCarry // CARRY set means "no borrow yet", per convention
	run(t, c, mem, 1)
	if c.Reg.A != 0xFF {
		t.Errorf("A = 0x%02X, want 0xFF", c.Reg.A)
	}
	if c.Reg.flag(FlagCarry) {
		t.Error("CARRY still set, want clear (borrow occurred)")
	}
	if !c.Reg.flag(FlagNegative) {
		t.Error("NEGATIVE not set for result 0xFF")
	}
}

func TestBRKEntersInterruptSequence(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x8000)
	mem.LoadBytes(0x8000, []uint8{0x00, 0x00}) // BRK, signature byte
	mem.LoadVector(irq.IRQVector, 0x9000)
	c.Reg.S = 0xFF
	run(t, c, mem, 1)
	if c.Reg.PC != 0x9000 {
		t.Errorf("PC = 0x%04X, want 0x9000", c.Reg.PC)
	}
	if !c.Reg.flag(FlagInterruptDisable) {
		t.Error("INTERRUPT_DISABLE not set after BRK entry")
	}
	pushed := mem.ReadByte(0x0100 | uint16(c.Reg.S+1))
	if pushed&FlagBreak == 0 {
		t.Errorf("status byte pushed by BRK = 0x%02X, want BREAK set", pushed)
	}
	pcl := mem.ReadByte(0x0100 | uint16(c.Reg.S+2))
	pch := mem.ReadByte(0x0100 | uint16(c.Reg.S+3))
	returnAddr := uint16(pch)<<8 | uint16(pcl)
	if returnAddr != 0x8002 {
		t.Errorf("pushed return address = 0x%04X, want 0x8002", returnAddr)
	}
}

func TestJMPIndirectPageWrapBug(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0x6C, 0xFF, 0x10}) // JMP ($10FF)
	mem.WriteByte(0x10FF, 0x34)
	mem.WriteByte(0x1000, 0x12) // the buggy wraparound read, not 0x1100
	mem.WriteByte(0x1100, 0xFF)
	run(t, c, mem, 1)
	if c.Reg.PC != 0x1234 {
		t.Errorf("PC = 0x%04X, want 0x1234 (page-wrap bug)", c.Reg.PC)
	}
}

func TestLDAAbsoluteXPageCross(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0xBD, 0x01, 0x02}) // LDA $0201,X
	c.Reg.X = 0xFF
	mem.WriteByte(0x0300, 0x42) // 0x0201 + 0xFF = 0x0300, crosses the page
	run(t, c, mem, 1)
	if c.Reg.A != 0x42 {
		t.Errorf("A = 0x%02X, want 0x42", c.Reg.A)
	}
	if c.cycle != 5 {
		t.Errorf("cycles = %d, want 5 for a page-crossing LDA abs,X", c.cycle)
	}
}

func TestINCAbsoluteRMW(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0xEE, 0x34, 0x12}) // INC $1234
	mem.WriteByte(0x1234, 0x7F)
	run(t, c, mem, 1)
	if got := mem.ReadByte(0x1234); got != 0x80 {
		t.Errorf("[$1234] = 0x%02X, want 0x80", got)
	}
	if !c.Reg.flag(FlagNegative) {
		t.Error("NEGATIVE not set for result 0x80")
	}
	if c.cycle != 6 {
		t.Errorf("cycles = %d, want 6 for INC absolute", c.cycle)
	}
}

func TestJSRAndRTSRoundTrip(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0x20, 0x00, 0x03}) // JSR $0300
	mem.LoadBytes(0x0300, []uint8{0x60})             // RTS
	run(t, c, mem, 1)
	if c.Reg.PC != 0x0300 {
		t.Errorf("PC after JSR = 0x%04X, want 0x0300", c.Reg.PC)
	}
	run(t, c, mem, 1)
	if c.Reg.PC != 0x0203 {
		t.Errorf("PC after RTS = 0x%04X, want 0x0203", c.Reg.PC)
	}
}

func TestBranchTakenSamePage(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0xF0, 0x02}) // BEQ +2
	c.Reg.P |= FlagZero
	run(t, c, mem, 1)
	if c.Reg.PC != 0x0204 {
		t.Errorf("PC = 0x%04X, want 0x0204", c.Reg.PC)
	}
	if c.cycle != 3 {
		t.Errorf("cycles = %d, want 3 for a same-page taken branch", c.cycle)
	}
}

func TestBranchNotTaken(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0xF0, 0x10}) // BEQ +16
	run(t, c, mem, 1)
	if c.Reg.PC != 0x0202 {
		t.Errorf("PC = 0x%04X, want 0x0202", c.Reg.PC)
	}
	if c.cycle != 2 {
		t.Errorf("cycles = %d, want 2 for a not-taken branch", c.cycle)
	}
}

func TestNMIHijacksPendingIRQBRK(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0x00, 0x00}) // BRK
	mem.LoadVector(irq.IRQVector, 0x9000)
	mem.LoadVector(irq.NMIVector, 0xA000)
	mem.Hook = func(clearLines bool) {
		if !clearLines {
			c.RaiseInterrupt(irq.NMI)
		}
	}
	run(t, c, mem, 1)
	if c.Reg.PC != 0xA000 {
		t.Errorf("PC = 0x%04X, want 0xA000 (NMI hijacked BRK)", c.Reg.PC)
	}
	pushed := mem.ReadByte(0x0100 | uint16(c.Reg.S+1))
	if pushed&FlagBreak != 0 {
		t.Errorf("status byte pushed = 0x%02X, want BREAK clear once hijacked by NMI", pushed)
	}
}

func TestRaiseInterruptNMIAlwaysWins(t *testing.T) {
	c := &Chip{}
	c.RaiseInterrupt(irq.IRQ)
	c.RaiseInterrupt(irq.NMI)
	if c.polled.Kind != irq.NMI {
		t.Errorf("polled = %s, want NMI", c.polled.Kind)
	}
	c.RaiseInterrupt(irq.IRQ)
	if c.polled.Kind != irq.NMI {
		t.Errorf("polled = %s after a later IRQ, want it to still be NMI", c.polled.Kind)
	}
}

func TestPipelineDiff(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0xA9, 0x05}) // LDA #$05
	run(t, c, mem, 1)
	want := Pipeline{Kind: StateFetchOpcode}
	if diff := deep.Equal(c.state, want); diff != nil {
		t.Errorf("pipeline state after one instruction: %v", diff)
	}
}
