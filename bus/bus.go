// Package bus defines the capability the 6502 core requires from its host:
// a byte addressable memory map and a hook for sampling interrupt lines.
// The core never owns memory directly; every read and write, including
// architectural dummy accesses, flows through this interface so a host
// can observe them (memory mapped I/O, PPU/APU registers, mappers, etc.)
package bus

// Bus is the capability a host must provide to drive a cpu.Chip. All
// three methods are invoked synchronously from within a single Clock call
// and must not block or re-enter the CPU, except that PollForInterrupts
// may call Chip.RaiseInterrupt.
type Bus interface {
	// ReadByte returns the byte at address. Reads have no side effects from
	// the CPU's point of view; any side effects on memory mapped registers
	// are the host's business.
	ReadByte(addr uint16) uint8
	// WriteByte stores value at address. Side effects are permitted.
	WriteByte(addr uint16, value uint8)
	// PollForInterrupts asks the host to inspect its interrupt lines. If
	// clearLines is true the host may treat this as the authoritative
	// sample point and clear edge-triggered state; if false this is the
	// re-poll taken mid interrupt-entry purely to detect hijacking. The
	// host signals a pending interrupt by calling Chip.RaiseInterrupt, not
	// via a return value.
	PollForInterrupts(clearLines bool)
}

// FlatMemory is a reference Bus implementation backed by a flat 64K
// address space with no mapping. It is useful for conformance tests and
// standalone tools that run a single binary image with no peripherals.
type FlatMemory struct {
	mem [65536]uint8
	// LastValue is the last byte to cross the bus, read or write. It is
	// available for modelling open-bus behavior.
	LastValue uint8
	// Hook, if set, is invoked by PollForInterrupts. Tests use it to
	// simulate a peripheral asserting a line at a specific poll point.
	Hook func(clearLines bool)
}

// NewFlatMemory returns a FlatMemory filled with fillValue everywhere.
func NewFlatMemory(fillValue uint8) *FlatMemory {
	f := &FlatMemory{}
	for i := range f.mem {
		f.mem[i] = fillValue
	}
	return f
}

// ReadByte implements Bus.
func (f *FlatMemory) ReadByte(addr uint16) uint8 {
	f.LastValue = f.mem[addr]
	return f.LastValue
}

// WriteByte implements Bus.
func (f *FlatMemory) WriteByte(addr uint16, value uint8) {
	f.LastValue = value
	f.mem[addr] = value
}

// PollForInterrupts implements Bus. FlatMemory has no peripherals wired up
// so it never raises anything on its own; it only forwards the poll to
// Hook, if set. Without a Hook, callers drive interrupts directly via
// Chip.RaiseInterrupt between Clock calls.
func (f *FlatMemory) PollForInterrupts(clearLines bool) {
	if f.Hook != nil {
		f.Hook(clearLines)
	}
}

// LoadVector writes a little endian 16 bit vector at addr, e.g. to seed
// RESET/NMI/IRQ vectors before powering on a Chip.
func (f *FlatMemory) LoadVector(addr uint16, target uint16) {
	f.mem[addr] = uint8(target & 0xFF)
	f.mem[addr+1] = uint8(target >> 8)
}

// LoadBytes copies data into memory starting at addr.
func (f *FlatMemory) LoadBytes(addr uint16, data []uint8) {
	copy(f.mem[int(addr):], data)
}
