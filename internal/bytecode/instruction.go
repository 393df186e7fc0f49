package bytecode

// Instruction is a single 32-bit bytecode word, laid out per spec §4.5:
//
//	iABC:  op(6) A(8) C(9) B(9)   bits 0-5 6-13 14-22 23-31
//	iABx:  op(6) A(8) Bx(18)      bits 0-5 6-13 14-31
//	iAsBx: op(6) A(8) sBx(18)     sBx = Bx - maxArgSBx
//	iAx:   op(6) Ax(26)           bits 0-5 6-31
type Instruction uint32

const (
	posOp = 0
	posA  = 6
	posC  = 14
	posB  = 23
	posBx = 14
	posAx = 6

	sizeOp = 6
	sizeA  = 8
	sizeB  = 9
	sizeC  = 9
	sizeBx = 18
	sizeAx = 26

	maskOp = 1<<sizeOp - 1
	maskA  = 1<<sizeA - 1
	maskB  = 1<<sizeB - 1
	maskC  = 1<<sizeC - 1
	maskBx = 1<<sizeBx - 1
	maskAx = 1<<sizeAx - 1

	// MaxArgBx is the largest unsigned Bx value (262143).
	MaxArgBx = maskBx
	// MaxArgSBx is the bias subtracted from Bx to form a signed sBx (131071).
	MaxArgSBx = MaxArgBx >> 1

	// RKConstantBit marks a B/C operand as indexing the constant pool
	// rather than a register (spec §4.5's RK convention).
	RKConstantBit = 1 << 8
)

// NewABC encodes an iABC instruction.
func NewABC(op OpCode, a, b, c int) Instruction {
	return Instruction(op)&maskOp |
		Instruction(a&maskA)<<posA |
		Instruction(c&maskC)<<posC |
		Instruction(b&maskB)<<posB
}

// NewABx encodes an iABx instruction with an unsigned Bx.
func NewABx(op OpCode, a, bx int) Instruction {
	return Instruction(op)&maskOp |
		Instruction(a&maskA)<<posA |
		Instruction(bx&maskBx)<<posBx
}

// NewAsBx encodes an iAsBx instruction with a signed sBx.
func NewAsBx(op OpCode, a, sbx int) Instruction {
	return NewABx(op, a, sbx+MaxArgSBx)
}

// NewAx encodes an iAx instruction (currently only EXTRAARG).
func NewAx(op OpCode, ax int) Instruction {
	return Instruction(op)&maskOp | Instruction(ax&maskAx)<<posAx
}

func (i Instruction) OpCode() OpCode { return OpCode(i & maskOp) }

func (i Instruction) A() int { return int(i>>posA) & maskA }

// B returns the raw B field of an iABC instruction (0-511).
func (i Instruction) B() int { return int(i>>posB) & maskB }

// C returns the raw C field of an iABC instruction (0-511).
func (i Instruction) C() int { return int(i>>posC) & maskC }

// Bx returns the unsigned Bx field of an iABx instruction.
func (i Instruction) Bx() int { return int(i>>posBx) & maskBx }

// SBx returns the signed sBx field of an iAsBx instruction.
func (i Instruction) SBx() int { return i.Bx() - MaxArgSBx }

// Ax returns the Ax field of an iAx instruction.
func (i Instruction) Ax() int { return int(i>>posAx) & maskAx }

// IsConstant reports whether an RK-mode operand value addresses the
// constant pool (value >= 256) rather than a register.
func IsConstant(rk int) bool { return rk&RKConstantBit != 0 }

// ConstIndex extracts the constant-pool index from an RK operand for
// which IsConstant is true.
func ConstIndex(rk int) int { return rk &^ RKConstantBit }

// RK encodes a constant-pool index as an RK operand value.
func RK(constIndex int) int { return constIndex | RKConstantBit }
