package vm

import (
	"errors"
	"fmt"
)

var (
	ErrImageTruncated = errors.New("image truncated")
	ErrNotRunning     = errors.New("vm not running")
)

// DecodeFault is raised when an architecturally undefined opcode (RTI or
// RES) is fetched. PC is the address of the offending instruction.
type DecodeFault struct {
	PC     Word
	Opcode Opcode
}

func (err *DecodeFault) Error() string {
	return fmt.Sprintf("0x%04x: bad opcode %v", uint16(err.PC), err.Opcode)
}

// TrapFault is raised for a trap vector with no routine.
type TrapFault struct {
	PC     Word
	Vector Word
}

func (err *TrapFault) Error() string {
	return fmt.Sprintf("0x%04x: undefined trap 0x%02x", uint16(err.PC), uint16(err.Vector))
}

type ImageError struct {
	Path string
	Err  error
}

func (err *ImageError) Error() string {
	if err.Path == "" {
		return fmt.Sprintf("load image: %v", err.Err)
	}
	return fmt.Sprintf("load image %v: %v", err.Path, err.Err)
}

func (err *ImageError) Unwrap() error {
	return err.Err
}
