package cpu

import "github.com/retrocpu/m6502/irq"

// StateKind tags the current micro-step of the pipeline. The Chip holds
// exactly one Pipeline value at a time; the Clock Driver dispatches on
// this tag and, within ReadingOperand, on the opcode's AddressingMode.
type StateKind int

const (
	// CPU sub-states, §3.
	StateFetchOpcode StateKind = iota
	StateThrowawayRead
	StateReadingOperand
	StateBranchCrossesPageBoundary
	StatePushRegisterOnStack
	StatePreIncrementStackPointer
	StatePullRegisterFromStack
	StatePullPCLFromStack
	StatePullPCHFromStack
	StateIncrementProgramCounter
	StateWritePCHToStack
	StateWritePCLToStack
	StateSetProgramCounter
	StateWritingResult

	// Interrupt sub-states, §4.6. Parameterized by Pipeline.Interrupt.
	// The vector's low byte is read first (from the vector address
	// itself) and the high byte second (from vector+1); despite the
	// historical PullIRQVecHigh/Low naming this preserves that order.
	StateInternalOps1
	StateInternalOps2
	StatePushPCH
	StatePushPCL
	StatePushStatusRegister
	StatePullVectorLow
	StatePullVectorHigh
)

// stackOp identifies which stack-based instruction a generic stack
// micro-step (PreIncrementStackPointer, PullRegisterFromStack, ...) is
// currently running on behalf of, since several instructions share the
// same intermediate states.
type stackOp int

const (
	stackOpNone stackOp = iota
	stackOpPLA
	stackOpPLP
	stackOpRTI
	stackOpRTS
)

// Pipeline is the tagged pipeline state described in §3. Only the fields
// relevant to Kind are meaningful at any given time; the rest are inert
// leftovers from whichever micro-step last wrote them. Step counts the
// cycle within a multi-cycle Kind (ReadingOperand and JSR's
// WritePCHToStack; the interrupt sequence uses one Kind per cycle) the same way a real 6502's
// internal cycle counter would, rather than nesting a sub-enum per field
// as a strict sum-of-products type would: adapted so no field's presence
// or absence needs to be tracked independently of which Kind/Step we are
// on, while every named state in §3 still corresponds to exactly one
// (Kind, Step) combination.
type Pipeline struct {
	Kind StateKind
	Step int

	Opcode   uint8
	Mode     AddressingMode
	Op       Operation
	Category InstructionCategory

	AddrLo, AddrHi     uint8
	Pointer            uint8
	IndLo, IndHi       uint8
	PageBoundaryCrossed bool

	Address  uint16
	Operand  uint8
	HasValue bool

	Value uint8
	Dummy bool

	PCL uint8

	StackOp stackOp

	BranchAddress uint16 // PC before applying the branch offset

	Interrupt irq.Interrupt
}
