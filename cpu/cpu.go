// Package cpu implements a cycle-accurate state machine for the 6502
// microprocessor, NES variant (no decimal mode). It advances exactly one
// bus cycle per Clock call and reproduces every read, write, dummy access
// and interrupt sampling point a real part would perform.
package cpu

import (
	"fmt"

	"github.com/retrocpu/m6502/bus"
	"github.com/retrocpu/m6502/irq"
)

// InvalidPipelineState is returned when a Clock call observes a pipeline
// transition that can never happen on real silicon, e.g. consulting a
// field before an earlier cycle in the same addressing sequence filled
// it in. This is a programming error in the core, not a runtime
// condition the host can recover from.
type InvalidPipelineState struct {
	State  Pipeline
	Opcode uint8
	Reason string
}

func (e InvalidPipelineState) Error() string {
	return fmt.Sprintf("invalid pipeline state (opcode 0x%.2X, kind %d, step %d): %s", e.Opcode, e.State.Kind, e.State.Step, e.Reason)
}

// Chip is a single 6502 core. All fields are exclusively owned by the
// Chip; the Bus passed to New and Clock is borrowed only for the
// duration of that call.
type Chip struct {
	Reg Registers

	state Pipeline
	cycle uint32

	// polled holds at most one pending interrupt, set by the collaborator
	// via RaiseInterrupt and consumed at FetchOpcode or during the
	// push-status re-poll of an in-flight interrupt entry.
	polled *irq.Interrupt
}

// New constructs a Chip in its post-reset state: PC loaded from the RESET
// vector, S at 0xFD, P with only INTERRUPT_DISABLE set, and the pipeline
// starting at FetchOpcode. initialCycles seeds the monotonic cycle
// counter (useful for aligning with a host's own clock).
func New(initialCycles uint32, b bus.Bus) *Chip {
	lo := b.ReadByte(irq.RESETVector)
	hi := b.ReadByte(irq.RESETVector + 1)
	c := &Chip{
		cycle: initialCycles,
	}
	c.Reg.PC = uint16(hi)<<8 | uint16(lo)
	c.Reg.S = 0xFD
	c.Reg.P = FlagInterruptDisable
	c.state = Pipeline{Kind: StateFetchOpcode}
	return c
}

// Cycles returns the monotonic cycle counter. It increments by exactly
// one per Clock call and is otherwise opaque (diagnostics only).
func (c *Chip) Cycles() uint32 {
	return c.cycle
}

// State returns the pipeline state Clock will act on next. Exposed for
// diagnostics and tests; hosts driving the CPU normally never need it.
func (c *Chip) State() Pipeline {
	return c.state
}

// RaiseInterrupt pushes kind into the polled-interrupt slot. At most one
// interrupt is pending at a time: NMI always overrides a pending IRQ or
// IRQ_BRK, but an incoming lower priority interrupt never evicts one
// already waiting. Called by the host bus, typically from within
// PollForInterrupts.
func (c *Chip) RaiseInterrupt(kind irq.Kind) {
	if c.polled == nil {
		c.polled = &irq.Interrupt{Kind: kind, RaisedAt: c.cycle}
		return
	}
	if kind == irq.NMI || irq.Overrides(c.polled.Kind, kind) {
		c.polled = &irq.Interrupt{Kind: kind, RaisedAt: c.cycle}
	}
}

// Clock advances the CPU by exactly one bus cycle, per §4.7:
//  1. dispatch the current pipeline state to the CPU or interrupt stepper
//  2. if the result is FetchOpcode and an interrupt is polled, hijack into
//     the interrupt sequence instead of actually fetching
//  3. increment the cycle counter
func (c *Chip) Clock(b bus.Bus) error {
	var next Pipeline
	var err error
	if c.state.Kind >= StateInternalOps1 {
		next, err = c.stepInterrupt(b, c.state)
	} else {
		next, err = c.stepCPU(b, c.state)
	}
	if err != nil {
		return err
	}
	c.state = next

	if c.state.Kind == StateFetchOpcode && c.polled != nil {
		pending := *c.polled
		c.polled = nil
		c.state = Pipeline{Kind: StateInternalOps1, Interrupt: pending}
	}

	c.cycle++
	return nil
}
