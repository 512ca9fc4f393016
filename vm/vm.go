package vm

import (
	"fmt"
	goIO "io"
	"log"
)

type State int

const (
	RUNNING State = iota
	HALTED
	FAULTED
)

func (s State) String() string {
	switch s {
	case RUNNING:
		return "RUNNING"
	case HALTED:
		return "HALTED"
	case FAULTED:
		return "FAULTED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// VM owns one memory and one register file for its whole life.
type VM struct {
	memory   *memory
	cpu      *cpu
	state    State
	fault    error
	hasImage bool
}

func NewVM(terminal Terminal) *VM {
	mem := newMemory(terminal)
	c := newCpu(mem, terminal)
	c.running = true
	return &VM{
		memory: mem,
		cpu:    c,
		state:  RUNNING,
	}
}

// SetTrace logs every executed instruction to l. A nil logger turns
// tracing off.
func (vm *VM) SetTrace(l *log.Logger) {
	vm.cpu.trace = l
}

// LoadImage reads an image into memory. The first image loaded decides
// the entry address.
func (vm *VM) LoadImage(r goIO.Reader) (Word, error) {
	origin, err := readImage(r, vm.memory)
	if err != nil {
		return 0, &ImageError{Err: err}
	}
	vm.setEntry(origin)
	return origin, nil
}

func (vm *VM) LoadImageFile(path string) (Word, error) {
	origin, err := readImageFile(path, vm.memory)
	if err != nil {
		return 0, &ImageError{Path: path, Err: err}
	}
	log.Printf("loaded %v at 0x%04x", path, uint16(origin))
	vm.setEntry(origin)
	return origin, nil
}

func (vm *VM) setEntry(origin Word) {
	if vm.hasImage {
		return
	}
	vm.hasImage = true
	vm.cpu.internalRegisters.pc = origin
}

// SetPC moves the program counter, e.g. to override the image entry.
func (vm *VM) SetPC(pc Word) {
	vm.cpu.internalRegisters.pc = pc
}

// Step executes a single instruction. Once the VM has halted or faulted it
// returns ErrNotRunning.
func (vm *VM) Step() error {
	if vm.state != RUNNING {
		return ErrNotRunning
	}

	if err := vm.cpu.step(); err != nil {
		vm.cpu.stop()
		vm.state = FAULTED
		vm.fault = err
		return err
	}

	if !vm.cpu.running {
		vm.state = HALTED
	}
	return nil
}

// Run executes until HALT or a fault. It returns nil when the program
// halted and the fault otherwise.
func (vm *VM) Run() error {
	for vm.state == RUNNING {
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return vm.fault
}

func (vm *VM) State() State {
	return vm.state
}

// Fault is the error that moved the VM to FAULTED, if any.
func (vm *VM) Fault() error {
	return vm.fault
}

func (vm *VM) Register(r int) Word {
	return vm.cpu.generalPurposeRegisters[r]
}

func (vm *VM) SetRegister(r int, value Word) {
	vm.cpu.generalPurposeRegisters[r] = value
}

func (vm *VM) PC() Word {
	return vm.cpu.internalRegisters.pc
}

func (vm *VM) Cond() Flag {
	return vm.cpu.internalRegisters.cond
}

// ReadMemory reads like the CPU does, device registers included.
func (vm *VM) ReadMemory(addr Word) Word {
	return vm.memory.read(addr)
}

func (vm *VM) WriteMemory(addr, value Word) {
	vm.memory.write(addr, value)
}
