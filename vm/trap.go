package vm

import "fmt"

const (
	TRAP_GETC  Word = 0x20 /* get character from keyboard, not echoed onto the terminal */
	TRAP_OUT   Word = 0x21 /* output a character */
	TRAP_PUTS  Word = 0x22 /* output a word string */
	TRAP_IN    Word = 0x23 /* get character from keyboard, echoed onto the terminal */
	TRAP_PUTSP Word = 0x24 /* output a byte string */
	TRAP_HALT  Word = 0x25 /* halt the program */
)

const (
	inPrompt   = "Enter a character: "
	haltNotice = "HALT\n"
)

// trap routines only touch R0 and the terminal
var trapRoutines = map[Word]func(cpu *cpu) error{
	TRAP_GETC:  trapGETC,
	TRAP_OUT:   trapOUT,
	TRAP_PUTS:  trapPUTS,
	TRAP_IN:    trapIN,
	TRAP_PUTSP: trapPUTSP,
	TRAP_HALT:  trapHALT,
}

func trapGETC(cpu *cpu) error {
	c, err := cpu.terminal.ReadChar()
	if err != nil {
		return fmt.Errorf("GETC: %w", err)
	}
	cpu.generalPurposeRegisters[R0] = Word(c)
	cpu.updateFlags(R0)
	return nil
}

func trapOUT(cpu *cpu) error {
	if err := cpu.terminal.WriteChar(byte(cpu.generalPurposeRegisters[R0])); err != nil {
		return fmt.Errorf("OUT: %w", err)
	}
	return nil
}

func trapPUTS(cpu *cpu) error {
	for addr := cpu.generalPurposeRegisters[R0]; ; addr++ {
		c := cpu.memRead(addr)
		if c == 0 {
			return nil
		}
		if err := cpu.terminal.WriteChar(byte(c)); err != nil {
			return fmt.Errorf("PUTS: %w", err)
		}
	}
}

func trapIN(cpu *cpu) error {
	if err := writeString(cpu.terminal, inPrompt); err != nil {
		return fmt.Errorf("IN: %w", err)
	}
	c, err := cpu.terminal.ReadChar()
	if err != nil {
		return fmt.Errorf("IN: %w", err)
	}
	if err := cpu.terminal.WriteChar(c); err != nil {
		return fmt.Errorf("IN: %w", err)
	}
	cpu.generalPurposeRegisters[R0] = Word(c)
	cpu.updateFlags(R0)
	return nil
}

// trapPUTSP writes two characters per word, low byte first. A zero high
// byte ends the word early but not the string.
func trapPUTSP(cpu *cpu) error {
	for addr := cpu.generalPurposeRegisters[R0]; ; addr++ {
		w := cpu.memRead(addr)
		if w == 0 {
			return nil
		}
		if err := cpu.terminal.WriteChar(byte(w)); err != nil {
			return fmt.Errorf("PUTSP: %w", err)
		}
		if hi := byte(w >> 8); hi != 0 {
			if err := cpu.terminal.WriteChar(hi); err != nil {
				return fmt.Errorf("PUTSP: %w", err)
			}
		}
	}
}

func trapHALT(cpu *cpu) error {
	cpu.stop()
	if err := writeString(cpu.terminal, haltNotice); err != nil {
		return fmt.Errorf("HALT: %w", err)
	}
	return nil
}
