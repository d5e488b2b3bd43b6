package cpu

import "testing"

func TestZeroPageIndexedWrap(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0xB5, 0xFF}) // LDA $FF,X
	c.Reg.X = 0x02
	mem.WriteByte(0x0001, 0x99) // (0xFF+0x02)&0xFF == 0x01, wraps within zero page
	run(t, c, mem, 1)
	if c.Reg.A != 0x99 {
		t.Errorf("A = 0x%02X, want 0x99", c.Reg.A)
	}
	if c.cycle != 4 {
		t.Errorf("cycles = %d, want 4 for LDA zp,X", c.cycle)
	}
}

func TestIndirectXIndexed(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0xA1, 0x20}) // LDA ($20,X)
	c.Reg.X = 0x04
	mem.LoadVector(0x0024, 0x4000) // pointer table entry at ($20+X)
	mem.WriteByte(0x4000, 0x77)
	run(t, c, mem, 1)
	if c.Reg.A != 0x77 {
		t.Errorf("A = 0x%02X, want 0x77", c.Reg.A)
	}
	if c.cycle != 6 {
		t.Errorf("cycles = %d, want 6 for LDA (zp,X)", c.cycle)
	}
}

func TestIndirectYIndexedNoCross(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0xB1, 0x20}) // LDA ($20),Y
	mem.LoadVector(0x0020, 0x4000)
	c.Reg.Y = 0x05
	mem.WriteByte(0x4005, 0x55)
	run(t, c, mem, 1)
	if c.Reg.A != 0x55 {
		t.Errorf("A = 0x%02X, want 0x55", c.Reg.A)
	}
	if c.cycle != 5 {
		t.Errorf("cycles = %d, want 5 without a page cross", c.cycle)
	}
}

func TestIndirectYIndexedCross(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0xB1, 0x20}) // LDA ($20),Y
	mem.LoadVector(0x0020, 0x40FF)
	c.Reg.Y = 0x05
	mem.WriteByte(0x4104, 0x66)
	run(t, c, mem, 1)
	if c.Reg.A != 0x66 {
		t.Errorf("A = 0x%02X, want 0x66", c.Reg.A)
	}
	if c.cycle != 6 {
		t.Errorf("cycles = %d, want 6 with a page cross", c.cycle)
	}
}

func TestSTAAbsoluteXAlwaysFiveCycles(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0x9D, 0x01, 0x02}) // STA $0201,X
	c.Reg.X = 0x01
	c.Reg.A = 0xAB
	run(t, c, mem, 1)
	if got := mem.ReadByte(0x0202); got != 0xAB {
		t.Errorf("[$0202] = 0x%02X, want 0xAB", got)
	}
	if c.cycle != 5 {
		t.Errorf("cycles = %d, want 5 for STA abs,X regardless of page cross", c.cycle)
	}
}

func TestASLZeroPageXDummyWriteThenRealWrite(t *testing.T) {
	c, mem := newChip(t, 0xEA, 0x0200)
	mem.LoadBytes(0x0200, []uint8{0x16, 0x10}) // ASL $10,X
	c.Reg.X = 0x01
	mem.WriteByte(0x0011, 0x40)
	run(t, c, mem, 1)
	if got := mem.ReadByte(0x0011); got != 0x80 {
		t.Errorf("[$0011] = 0x%02X, want 0x80", got)
	}
	if c.cycle != 6 {
		t.Errorf("cycles = %d, want 6 for ASL zp,X", c.cycle)
	}
}
