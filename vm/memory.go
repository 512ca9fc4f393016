package vm

// Word is the unit of storage, addressing and register values.
type Word uint16

const MemorySize = 1 << 16

const (
	TrapVectorTableStart       = 0x0000
	InterruptVectorTableStart  = 0x0100
	SystemSpaceStart           = 0x0200
	UserSpaceStart             = 0x3000
	MemoryMappedRegistersStart = 0xFE00
)

// memory mapped register addresses
const (
	KBSR Word = MemoryMappedRegistersStart          /* keyboard status register */
	KBDR Word = MemoryMappedRegistersStart + 0x0002 /* keyboard data register */
)

const keyReady Word = 1 << 15

// Keyboard is the device behind KBSR/KBDR.
type Keyboard interface {
	// KeyAvailable reports whether ReadChar would return without blocking.
	KeyAvailable() bool
	ReadChar() (byte, error)
}

type memory struct {
	ram      [MemorySize]Word
	keyboard Keyboard
}

func newMemory(keyboard Keyboard) *memory {
	return &memory{keyboard: keyboard}
}

func isDeviceRegister(addr Word) bool {
	return addr == KBSR || addr == KBDR
}

func (mem *memory) read(addr Word) Word {
	if isDeviceRegister(addr) {
		return mem.readDevice(addr)
	}
	return mem.ram[addr]
}

// readDevice polls the keyboard on KBSR reads. Reading KBDR hands the
// latched character to the program and drops the ready bit.
func (mem *memory) readDevice(addr Word) Word {
	switch addr {
	case KBSR:
		if mem.keyboard != nil && mem.keyboard.KeyAvailable() {
			c, err := mem.keyboard.ReadChar()
			if err == nil {
				mem.ram[KBSR] = keyReady
				mem.ram[KBDR] = Word(c)
				break
			}
		}
		mem.ram[KBSR] = 0
	case KBDR:
		value := mem.ram[KBDR]
		mem.ram[KBSR] &^= keyReady
		return value
	}
	return mem.ram[addr]
}

func (mem *memory) write(addr, value Word) {
	mem.ram[addr] = value
}
