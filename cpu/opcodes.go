package cpu

// Operation names the semantic effect of an opcode, independent of how its
// operand was addressed. Exactly one Operation is attached to each of the
// 256 opcode table entries.
type Operation int

const (
	OpNOP Operation = iota
	OpADC
	OpAND
	OpASL
	OpBCC
	OpBCS
	OpBEQ
	OpBIT
	OpBMI
	OpBNE
	OpBPL
	OpBRK
	OpBVC
	OpBVS
	OpCLC
	OpCLD
	OpCLI
	OpCLV
	OpCMP
	OpCPX
	OpCPY
	OpDEC
	OpDEX
	OpDEY
	OpEOR
	OpINC
	OpINX
	OpINY
	OpJMP
	OpJMPIndirect
	OpJSR
	OpLDA
	OpLDX
	OpLDY
	OpLSR
	OpORA
	OpPHA
	OpPHP
	OpPLA
	OpPLP
	OpROL
	OpROR
	OpRTI
	OpRTS
	OpSBC
	OpSEC
	OpSED
	OpSEI
	OpSTA
	OpSTX
	OpSTY
	OpTAX
	OpTAY
	OpTSX
	OpTXA
	OpTXS
	OpTYA
)

// AddressingMode names the micro-sequence the walker runs to resolve an
// operand and/or effective address before handing off to the operation.
type AddressingMode int

const (
	ModeImplied AddressingMode = iota
	ModeAccumulator
	ModeImmediate
	ModeZeroPage
	ModeZeroPageX
	ModeZeroPageY
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	ModeIndirect // JMP (a) only
	ModeIndirectX
	ModeIndirectY
	ModeRelative // branches
	ModeJSR      // JSR's unique low-byte-then-push-then-high-byte shape
)

// InstructionCategory partitions behavior for the addressing walker: it
// decides whether an indexed mode performs one access or two, and whether
// the effective value is even needed.
type InstructionCategory int

const (
	CategoryImplied InstructionCategory = iota
	CategoryRead
	CategoryWrite
	CategoryReadModifyWrite
	CategoryJump
	CategoryStack
	CategoryBranch
)

// opcodeEntry is one row of the 256 entry decode table.
type opcodeEntry struct {
	Op       Operation
	Mode     AddressingMode
	Category InstructionCategory
}

// opcodeTable maps opcode byte to its decoded (Operation, AddressingMode,
// InstructionCategory). It is built once at package init from the
// documented 6502 instruction matrix; any byte not named below decodes as
// an implied-mode NOP. That is a deliberate, consistent choice for every
// unofficial opcode (see design notes) rather than a per-opcode judgment
// call, satisfying the requirement that the table be total.
var opcodeTable [256]opcodeEntry

type opcodeSpec struct {
	byte uint8
	op   Operation
	mode AddressingMode
	cat  InstructionCategory
}

func init() {
	for i := range opcodeTable {
		opcodeTable[i] = opcodeEntry{Op: OpNOP, Mode: ModeImplied, Category: CategoryImplied}
	}
	for _, s := range opcodeSpecs {
		opcodeTable[s.byte] = opcodeEntry{Op: s.op, Mode: s.mode, Category: s.cat}
	}
}

const (
	read  = CategoryRead
	write = CategoryWrite
	rmw   = CategoryReadModifyWrite
	jump  = CategoryJump
	stack = CategoryStack
	br    = CategoryBranch
	impl  = CategoryImplied
)

// opcodeSpecs enumerates every documented 6502 opcode. Grouped by
// mnemonic, in the traditional addressing-mode order, matching how the
// reference instruction set tables lay it out.
var opcodeSpecs = []opcodeSpec{
	// ADC
	{0x69, OpADC, ModeImmediate, read}, {0x65, OpADC, ModeZeroPage, read},
	{0x75, OpADC, ModeZeroPageX, read}, {0x6D, OpADC, ModeAbsolute, read},
	{0x7D, OpADC, ModeAbsoluteX, read}, {0x79, OpADC, ModeAbsoluteY, read},
	{0x61, OpADC, ModeIndirectX, read}, {0x71, OpADC, ModeIndirectY, read},
	// AND
	{0x29, OpAND, ModeImmediate, read}, {0x25, OpAND, ModeZeroPage, read},
	{0x35, OpAND, ModeZeroPageX, read}, {0x2D, OpAND, ModeAbsolute, read},
	{0x3D, OpAND, ModeAbsoluteX, read}, {0x39, OpAND, ModeAbsoluteY, read},
	{0x21, OpAND, ModeIndirectX, read}, {0x31, OpAND, ModeIndirectY, read},
	// ASL
	{0x0A, OpASL, ModeAccumulator, impl}, {0x06, OpASL, ModeZeroPage, rmw},
	{0x16, OpASL, ModeZeroPageX, rmw}, {0x0E, OpASL, ModeAbsolute, rmw},
	{0x1E, OpASL, ModeAbsoluteX, rmw},
	// Branches
	{0x90, OpBCC, ModeRelative, br}, {0xB0, OpBCS, ModeRelative, br},
	{0xF0, OpBEQ, ModeRelative, br}, {0x30, OpBMI, ModeRelative, br},
	{0xD0, OpBNE, ModeRelative, br}, {0x10, OpBPL, ModeRelative, br},
	{0x50, OpBVC, ModeRelative, br}, {0x70, OpBVS, ModeRelative, br},
	// BIT
	{0x24, OpBIT, ModeZeroPage, read}, {0x2C, OpBIT, ModeAbsolute, read},
	// BRK
	{0x00, OpBRK, ModeImplied, stack},
	// Clears/sets
	{0x18, OpCLC, ModeImplied, impl}, {0xD8, OpCLD, ModeImplied, impl},
	{0x58, OpCLI, ModeImplied, impl}, {0xB8, OpCLV, ModeImplied, impl},
	{0x38, OpSEC, ModeImplied, impl}, {0xF8, OpSED, ModeImplied, impl},
	{0x78, OpSEI, ModeImplied, impl},
	// CMP
	{0xC9, OpCMP, ModeImmediate, read}, {0xC5, OpCMP, ModeZeroPage, read},
	{0xD5, OpCMP, ModeZeroPageX, read}, {0xCD, OpCMP, ModeAbsolute, read},
	{0xDD, OpCMP, ModeAbsoluteX, read}, {0xD9, OpCMP, ModeAbsoluteY, read},
	{0xC1, OpCMP, ModeIndirectX, read}, {0xD1, OpCMP, ModeIndirectY, read},
	// CPX / CPY
	{0xE0, OpCPX, ModeImmediate, read}, {0xE4, OpCPX, ModeZeroPage, read},
	{0xEC, OpCPX, ModeAbsolute, read},
	{0xC0, OpCPY, ModeImmediate, read}, {0xC4, OpCPY, ModeZeroPage, read},
	{0xCC, OpCPY, ModeAbsolute, read},
	// DEC / DEX / DEY
	{0xC6, OpDEC, ModeZeroPage, rmw}, {0xD6, OpDEC, ModeZeroPageX, rmw},
	{0xCE, OpDEC, ModeAbsolute, rmw}, {0xDE, OpDEC, ModeAbsoluteX, rmw},
	{0xCA, OpDEX, ModeImplied, impl}, {0x88, OpDEY, ModeImplied, impl},
	// EOR
	{0x49, OpEOR, ModeImmediate, read}, {0x45, OpEOR, ModeZeroPage, read},
	{0x55, OpEOR, ModeZeroPageX, read}, {0x4D, OpEOR, ModeAbsolute, read},
	{0x5D, OpEOR, ModeAbsoluteX, read}, {0x59, OpEOR, ModeAbsoluteY, read},
	{0x41, OpEOR, ModeIndirectX, read}, {0x51, OpEOR, ModeIndirectY, read},
	// INC / INX / INY
	{0xE6, OpINC, ModeZeroPage, rmw}, {0xF6, OpINC, ModeZeroPageX, rmw},
	{0xEE, OpINC, ModeAbsolute, rmw}, {0xFE, OpINC, ModeAbsoluteX, rmw},
	{0xE8, OpINX, ModeImplied, impl}, {0xC8, OpINY, ModeImplied, impl},
	// JMP / JSR
	{0x4C, OpJMP, ModeAbsolute, jump}, {0x6C, OpJMPIndirect, ModeIndirect, jump},
	{0x20, OpJSR, ModeJSR, jump},
	// LDA
	{0xA9, OpLDA, ModeImmediate, read}, {0xA5, OpLDA, ModeZeroPage, read},
	{0xB5, OpLDA, ModeZeroPageX, read}, {0xAD, OpLDA, ModeAbsolute, read},
	{0xBD, OpLDA, ModeAbsoluteX, read}, {0xB9, OpLDA, ModeAbsoluteY, read},
	{0xA1, OpLDA, ModeIndirectX, read}, {0xB1, OpLDA, ModeIndirectY, read},
	// LDX
	{0xA2, OpLDX, ModeImmediate, read}, {0xA6, OpLDX, ModeZeroPage, read},
	{0xB6, OpLDX, ModeZeroPageY, read}, {0xAE, OpLDX, ModeAbsolute, read},
	{0xBE, OpLDX, ModeAbsoluteY, read},
	// LDY
	{0xA0, OpLDY, ModeImmediate, read}, {0xA4, OpLDY, ModeZeroPage, read},
	{0xB4, OpLDY, ModeZeroPageX, read}, {0xAC, OpLDY, ModeAbsolute, read},
	{0xBC, OpLDY, ModeAbsoluteX, read},
	// LSR
	{0x4A, OpLSR, ModeAccumulator, impl}, {0x46, OpLSR, ModeZeroPage, rmw},
	{0x56, OpLSR, ModeZeroPageX, rmw}, {0x4E, OpLSR, ModeAbsolute, rmw},
	{0x5E, OpLSR, ModeAbsoluteX, rmw},
	// NOP
	{0xEA, OpNOP, ModeImplied, impl},
	// ORA
	{0x09, OpORA, ModeImmediate, read}, {0x05, OpORA, ModeZeroPage, read},
	{0x15, OpORA, ModeZeroPageX, read}, {0x0D, OpORA, ModeAbsolute, read},
	{0x1D, OpORA, ModeAbsoluteX, read}, {0x19, OpORA, ModeAbsoluteY, read},
	{0x01, OpORA, ModeIndirectX, read}, {0x11, OpORA, ModeIndirectY, read},
	// Stack
	{0x48, OpPHA, ModeImplied, stack}, {0x08, OpPHP, ModeImplied, stack},
	{0x68, OpPLA, ModeImplied, stack}, {0x28, OpPLP, ModeImplied, stack},
	// ROL / ROR
	{0x2A, OpROL, ModeAccumulator, impl}, {0x26, OpROL, ModeZeroPage, rmw},
	{0x36, OpROL, ModeZeroPageX, rmw}, {0x2E, OpROL, ModeAbsolute, rmw},
	{0x3E, OpROL, ModeAbsoluteX, rmw},
	{0x6A, OpROR, ModeAccumulator, impl}, {0x66, OpROR, ModeZeroPage, rmw},
	{0x76, OpROR, ModeZeroPageX, rmw}, {0x6E, OpROR, ModeAbsolute, rmw},
	{0x7E, OpROR, ModeAbsoluteX, rmw},
	// RTI / RTS
	{0x40, OpRTI, ModeImplied, stack}, {0x60, OpRTS, ModeImplied, stack},
	// SBC
	{0xE9, OpSBC, ModeImmediate, read}, {0xE5, OpSBC, ModeZeroPage, read},
	{0xF5, OpSBC, ModeZeroPageX, read}, {0xED, OpSBC, ModeAbsolute, read},
	{0xFD, OpSBC, ModeAbsoluteX, read}, {0xF9, OpSBC, ModeAbsoluteY, read},
	{0xE1, OpSBC, ModeIndirectX, read}, {0xF1, OpSBC, ModeIndirectY, read},
	// STA
	{0x85, OpSTA, ModeZeroPage, write}, {0x95, OpSTA, ModeZeroPageX, write},
	{0x8D, OpSTA, ModeAbsolute, write}, {0x9D, OpSTA, ModeAbsoluteX, write},
	{0x99, OpSTA, ModeAbsoluteY, write}, {0x81, OpSTA, ModeIndirectX, write},
	{0x91, OpSTA, ModeIndirectY, write},
	// STX / STY
	{0x86, OpSTX, ModeZeroPage, write}, {0x96, OpSTX, ModeZeroPageY, write},
	{0x8E, OpSTX, ModeAbsolute, write},
	{0x84, OpSTY, ModeZeroPage, write}, {0x94, OpSTY, ModeZeroPageX, write},
	{0x8C, OpSTY, ModeAbsolute, write},
	// Register transfers
	{0xAA, OpTAX, ModeImplied, impl}, {0xA8, OpTAY, ModeImplied, impl},
	{0xBA, OpTSX, ModeImplied, impl}, {0x8A, OpTXA, ModeImplied, impl},
	{0x9A, OpTXS, ModeImplied, impl}, {0x98, OpTYA, ModeImplied, impl},
}
