package vm

import "fmt"

// Opcode is the 4-bit instruction class held in bits [15:12].
type Opcode uint8

// opcodes
const (
	OP_BR Opcode = iota
	OP_ADD
	OP_LD
	OP_ST
	OP_JSR
	OP_AND
	OP_LDR
	OP_STR
	OP_RTI
	OP_NOT
	OP_LDI
	OP_STI
	OP_JMP
	OP_RES
	OP_LEA
	OP_TRAP
)

const opcodeCount = 16

var opcodeNames = [opcodeCount]string{
	OP_BR:   "BR",
	OP_ADD:  "ADD",
	OP_LD:   "LD",
	OP_ST:   "ST",
	OP_JSR:  "JSR",
	OP_AND:  "AND",
	OP_LDR:  "LDR",
	OP_STR:  "STR",
	OP_RTI:  "RTI",
	OP_NOT:  "NOT",
	OP_LDI:  "LDI",
	OP_STI:  "STI",
	OP_JMP:  "JMP",
	OP_RES:  "RES",
	OP_LEA:  "LEA",
	OP_TRAP: "TRAP",
}

func (op Opcode) String() string {
	if int(op) < opcodeCount {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

// instruction is a fetched word. Fields are pulled out on demand and only
// mean something for the opcodes that define them.
type instruction Word

func (in instruction) opcode() Opcode { return Opcode(in >> 12) }

// dr is also SR for the store instructions.
func (in instruction) dr() Word    { return Word(in>>9) & 0b111 }
func (in instruction) sr1() Word   { return Word(in>>6) & 0b111 }
func (in instruction) baseR() Word { return Word(in>>6) & 0b111 }
func (in instruction) sr2() Word   { return Word(in) & 0b111 }
func (in instruction) nzp() Word   { return Word(in>>9) & 0b111 }

// immediate reports the ADD/AND mode bit.
func (in instruction) immediate() bool { return (in>>5)&0b1 == 1 }

// long reports the JSR (as opposed to JSRR) form.
func (in instruction) long() bool { return (in>>11)&0b1 == 1 }

func (in instruction) imm5() Word       { return sext(Word(in)&0x1F, 5) }
func (in instruction) offset6() Word    { return sext(Word(in)&0x3F, 6) }
func (in instruction) pcoffset9() Word  { return sext(Word(in)&0x1FF, 9) }
func (in instruction) pcoffset11() Word { return sext(Word(in)&0x7FF, 11) }
func (in instruction) trapvect8() Word  { return Word(in) & 0xFF }

// sext sign extends the bitCount-bit two's complement value in x.
func sext(x Word, bitCount uint) Word {
	if (x>>(bitCount-1))&0b1 != 0 {
		x |= 0xFFFF << bitCount
	}
	return x
}
