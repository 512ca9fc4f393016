package vm

import (
	"bytes"
	"encoding/binary"
	"errors"
	goIO "io"
	"testing"

	"github.com/stretchr/testify/require"
)

var errClosed = errors.New("terminal closed")

// fakeTerminal feeds queued input and records output.
type fakeTerminal struct {
	input  []byte
	output bytes.Buffer
	closed bool
}

func (t *fakeTerminal) KeyAvailable() bool {
	return len(t.input) > 0
}

func (t *fakeTerminal) ReadChar() (byte, error) {
	if len(t.input) == 0 {
		return 0, goIO.EOF
	}
	c := t.input[0]
	t.input = t.input[1:]
	return c, nil
}

func (t *fakeTerminal) WriteChar(c byte) error {
	if t.closed {
		return errClosed
	}
	return t.output.WriteByte(c)
}

func image(origin Word, words ...Word) []byte {
	buf := make([]byte, 2+2*len(words))
	binary.BigEndian.PutUint16(buf, uint16(origin))
	for i, w := range words {
		binary.BigEndian.PutUint16(buf[2+2*i:], uint16(w))
	}
	return buf
}

// newTestVM loads program at UserSpaceStart.
func newTestVM(t *testing.T, input string, program ...Word) (*VM, *fakeTerminal) {
	terminal := &fakeTerminal{input: []byte(input)}
	machine := NewVM(terminal)
	origin, err := machine.LoadImage(bytes.NewReader(image(UserSpaceStart, program...)))
	require.NoError(t, err)
	require.Equal(t, Word(UserSpaceStart), origin)
	return machine, terminal
}

// instruction encoders

const halt Word = 0xF025

func encADD(dr, sr1, sr2 Word) Word { return 0x1000 | dr<<9 | sr1<<6 | sr2 }
func encADDi(dr, sr1 Word, imm int) Word {
	return 0x1000 | dr<<9 | sr1<<6 | 1<<5 | Word(imm)&0x1F
}
func encAND(dr, sr1, sr2 Word) Word { return 0x5000 | dr<<9 | sr1<<6 | sr2 }
func encANDi(dr, sr1 Word, imm int) Word {
	return 0x5000 | dr<<9 | sr1<<6 | 1<<5 | Word(imm)&0x1F
}
func encNOT(dr, sr Word) Word { return 0x9000 | dr<<9 | sr<<6 | 0x3F }
func encBR(nzp Word, off int) Word { return nzp<<9 | Word(off)&0x1FF }
func encLD(dr Word, off int) Word { return 0x2000 | dr<<9 | Word(off)&0x1FF }
func encLDI(dr Word, off int) Word { return 0xA000 | dr<<9 | Word(off)&0x1FF }
func encLDR(dr, br Word, off int) Word { return 0x6000 | dr<<9 | br<<6 | Word(off)&0x3F }
func encLEA(dr Word, off int) Word { return 0xE000 | dr<<9 | Word(off)&0x1FF }
func encST(sr Word, off int) Word { return 0x3000 | sr<<9 | Word(off)&0x1FF }
func encSTI(sr Word, off int) Word { return 0xB000 | sr<<9 | Word(off)&0x1FF }
func encSTR(sr, br Word, off int) Word { return 0x7000 | sr<<9 | br<<6 | Word(off)&0x3F }
func encJMP(br Word) Word { return 0xC000 | br<<6 }
func encJSR(off int) Word { return 0x4800 | Word(off)&0x7FF }
func encJSRR(br Word) Word { return 0x4000 | br<<6 }
func encTRAP(vector Word) Word { return 0xF000 | vector&0xFF }
