package vm

import (
	"log"
)

type Flag uint16

// general purpose registers
const (
	R0 = 0b000
	R1 = 0b001
	R2 = 0b010
	R3 = 0b011
	R4 = 0b100
	R5 = 0b101
	R6 = 0b110
	R7 = 0b111
)

// flags
const (
	FLAG_POS Flag = 0b001
	FLAG_ZRO Flag = 0b010
	FLAG_NEG Flag = 0b100
)

func (f Flag) String() string {
	switch f {
	case FLAG_POS:
		return "POS"
	case FLAG_ZRO:
		return "ZRO"
	case FLAG_NEG:
		return "NEG"
	}
	return "INVALID"
}

type handler func(cpu *cpu, in instruction) error

// dispatch has exactly one slot per 4-bit opcode, so every fetched word
// lands on a handler.
var dispatch = [opcodeCount]handler{
	OP_BR:   (*cpu).opBR,
	OP_ADD:  (*cpu).opADD,
	OP_LD:   (*cpu).opLD,
	OP_ST:   (*cpu).opST,
	OP_JSR:  (*cpu).opJSR,
	OP_AND:  (*cpu).opAND,
	OP_LDR:  (*cpu).opLDR,
	OP_STR:  (*cpu).opSTR,
	OP_RTI:  (*cpu).opIllegal,
	OP_NOT:  (*cpu).opNOT,
	OP_LDI:  (*cpu).opLDI,
	OP_STI:  (*cpu).opSTI,
	OP_JMP:  (*cpu).opJMP,
	OP_RES:  (*cpu).opIllegal,
	OP_LEA:  (*cpu).opLEA,
	OP_TRAP: (*cpu).opTRAP,
}

type cpu struct {
	running           bool
	memory            *memory
	terminal          Terminal
	trace             *log.Logger
	internalRegisters struct {
		pc,
		ir Word // address of the instruction being executed
		cond Flag
	}
	generalPurposeRegisters [8]Word
}

func newCpu(memory *memory, terminal Terminal) *cpu {
	c := &cpu{
		memory:   memory,
		terminal: terminal,
	}
	c.internalRegisters.pc = UserSpaceStart
	c.internalRegisters.cond = FLAG_ZRO
	return c
}

// step runs one fetch-decode-execute cycle.
func (cpu *cpu) step() error {
	cpu.internalRegisters.ir = cpu.internalRegisters.pc
	in := instruction(cpu.memRead(cpu.internalRegisters.pc))
	cpu.internalRegisters.pc++
	return dispatch[in.opcode()](cpu, in)
}

func (cpu *cpu) stop() {
	cpu.running = false
}

func (cpu *cpu) tracef(format string, args ...interface{}) {
	if cpu.trace == nil {
		return
	}
	cpu.trace.Printf("0x%04x "+format, append([]interface{}{uint16(cpu.internalRegisters.ir)}, args...)...)
}

func (cpu *cpu) opADD(in instruction) error {
	dr, sr1 := in.dr(), in.sr1()

	if in.immediate() {
		imm5 := in.imm5()
		cpu.tracef("ADD: dr=%03b sr1=%03b imm5=0x%04x", dr, sr1, imm5)
		cpu.generalPurposeRegisters[dr] = cpu.generalPurposeRegisters[sr1] + imm5
	} else {
		sr2 := in.sr2()
		cpu.tracef("ADD: dr=%03b sr1=%03b sr2=%03b", dr, sr1, sr2)
		cpu.generalPurposeRegisters[dr] = cpu.generalPurposeRegisters[sr1] + cpu.generalPurposeRegisters[sr2]
	}

	cpu.updateFlags(dr)
	return nil
}

func (cpu *cpu) opAND(in instruction) error {
	dr, sr1 := in.dr(), in.sr1()

	if in.immediate() {
		imm5 := in.imm5()
		cpu.tracef("AND: dr=%03b sr1=%03b imm5=0x%04x", dr, sr1, imm5)
		cpu.generalPurposeRegisters[dr] = cpu.generalPurposeRegisters[sr1] & imm5
	} else {
		sr2 := in.sr2()
		cpu.tracef("AND: dr=%03b sr1=%03b sr2=%03b", dr, sr1, sr2)
		cpu.generalPurposeRegisters[dr] = cpu.generalPurposeRegisters[sr1] & cpu.generalPurposeRegisters[sr2]
	}

	cpu.updateFlags(dr)
	return nil
}

func (cpu *cpu) opNOT(in instruction) error {
	dr, sr := in.dr(), in.sr1()
	cpu.tracef("NOT: dr=%03b sr=%03b", dr, sr)

	cpu.generalPurposeRegisters[dr] = ^cpu.generalPurposeRegisters[sr]
	cpu.updateFlags(dr)
	return nil
}

func (cpu *cpu) opBR(in instruction) error {
	nzp := in.nzp()
	pcoffset9 := in.pcoffset9()
	cpu.tracef("BR: nzp=%03b pcoffset9=0x%04x", nzp, pcoffset9)

	if nzp&Word(cpu.internalRegisters.cond) != 0 {
		cpu.internalRegisters.pc += pcoffset9
	}
	return nil
}

func (cpu *cpu) opJMP(in instruction) error {
	br := in.baseR()
	cpu.tracef("JMP: br=%03b", br)

	cpu.internalRegisters.pc = cpu.generalPurposeRegisters[br]
	return nil
}

func (cpu *cpu) opJSR(in instruction) error {
	// JSRR R7 jumps to the old R7, so read the target first.
	var target Word
	if in.long() {
		pcoffset11 := in.pcoffset11()
		cpu.tracef("JSR: pcoffset11=0x%04x", pcoffset11)
		target = cpu.internalRegisters.pc + pcoffset11
	} else {
		br := in.baseR()
		cpu.tracef("JSRR: br=%03b", br)
		target = cpu.generalPurposeRegisters[br]
	}

	cpu.generalPurposeRegisters[R7] = cpu.internalRegisters.pc
	cpu.internalRegisters.pc = target
	return nil
}

func (cpu *cpu) opLD(in instruction) error {
	dr := in.dr()
	pcoffset9 := in.pcoffset9()
	cpu.tracef("LD: dr=%03b pcoffset9=0x%04x", dr, pcoffset9)

	cpu.generalPurposeRegisters[dr] = cpu.memRead(cpu.internalRegisters.pc + pcoffset9)
	cpu.updateFlags(dr)
	return nil
}

func (cpu *cpu) opLDI(in instruction) error {
	dr := in.dr()
	pcoffset9 := in.pcoffset9()
	cpu.tracef("LDI: dr=%03b pcoffset9=0x%04x", dr, pcoffset9)

	cpu.generalPurposeRegisters[dr] = cpu.memRead(cpu.memRead(cpu.internalRegisters.pc + pcoffset9))
	cpu.updateFlags(dr)
	return nil
}

func (cpu *cpu) opLDR(in instruction) error {
	dr, br := in.dr(), in.baseR()
	offset6 := in.offset6()
	cpu.tracef("LDR: dr=%03b br=%03b offset6=0x%04x", dr, br, offset6)

	cpu.generalPurposeRegisters[dr] = cpu.memRead(cpu.generalPurposeRegisters[br] + offset6)
	cpu.updateFlags(dr)
	return nil
}

func (cpu *cpu) opLEA(in instruction) error {
	dr := in.dr()
	pcoffset9 := in.pcoffset9()
	cpu.tracef("LEA: dr=%03b pcoffset9=0x%04x", dr, pcoffset9)

	cpu.generalPurposeRegisters[dr] = cpu.internalRegisters.pc + pcoffset9
	cpu.updateFlags(dr)
	return nil
}

func (cpu *cpu) opST(in instruction) error {
	sr := in.dr()
	pcoffset9 := in.pcoffset9()
	cpu.tracef("ST: sr=%03b pcoffset9=0x%04x", sr, pcoffset9)

	cpu.memWrite(cpu.internalRegisters.pc+pcoffset9, cpu.generalPurposeRegisters[sr])
	return nil
}

func (cpu *cpu) opSTI(in instruction) error {
	sr := in.dr()
	pcoffset9 := in.pcoffset9()
	cpu.tracef("STI: sr=%03b pcoffset9=0x%04x", sr, pcoffset9)

	cpu.memWrite(cpu.memRead(cpu.internalRegisters.pc+pcoffset9), cpu.generalPurposeRegisters[sr])
	return nil
}

func (cpu *cpu) opSTR(in instruction) error {
	sr, br := in.dr(), in.baseR()
	offset6 := in.offset6()
	cpu.tracef("STR: sr=%03b br=%03b offset6=0x%04x", sr, br, offset6)

	cpu.memWrite(cpu.generalPurposeRegisters[br]+offset6, cpu.generalPurposeRegisters[sr])
	return nil
}

// opIllegal covers RTI and RES, neither of which a user program may execute.
func (cpu *cpu) opIllegal(in instruction) error {
	cpu.tracef("%v: illegal opcode", in.opcode())
	return &DecodeFault{PC: cpu.internalRegisters.ir, Opcode: in.opcode()}
}

func (cpu *cpu) opTRAP(in instruction) error {
	vector := in.trapvect8()
	cpu.tracef("TRAP: 0x%02x", vector)

	cpu.generalPurposeRegisters[R7] = cpu.internalRegisters.pc

	routine, ok := trapRoutines[vector]
	if !ok {
		return &TrapFault{PC: cpu.internalRegisters.ir, Vector: vector}
	}
	return routine(cpu)
}

func (cpu *cpu) memWrite(addr, value Word) {
	cpu.memory.write(addr, value)
}

func (cpu *cpu) memRead(addr Word) Word {
	return cpu.memory.read(addr)
}

func (cpu *cpu) updateFlags(r Word) {
	if cpu.generalPurposeRegisters[r] == 0 {
		cpu.internalRegisters.cond = FLAG_ZRO
	} else if cpu.generalPurposeRegisters[r]>>15 != 0 {
		cpu.internalRegisters.cond = FLAG_NEG
	} else {
		cpu.internalRegisters.cond = FLAG_POS
	}
}
