package vm

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadImage(t *testing.T) {
	assert := assert.New(t)

	machine := NewVM(&fakeTerminal{})
	origin, err := machine.LoadImage(bytes.NewReader(image(0x3000, 0x1234, 0xABCD)))

	assert.NoError(err)
	assert.Equal(Word(0x3000), origin)
	assert.Equal(Word(0x1234), machine.ReadMemory(0x3000))
	assert.Equal(Word(0xABCD), machine.ReadMemory(0x3001))
	assert.Equal(Word(0), machine.ReadMemory(0x3002))
	assert.Equal(Word(0x3000), machine.PC())
}

func TestLoadImageTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"half origin", []byte{0x30}},
		{"half word", []byte{0x30, 0x00, 0x12, 0x34, 0x56}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := NewVM(&fakeTerminal{})
			_, err := machine.LoadImage(bytes.NewReader(tt.data))

			assert.ErrorIs(t, err, ErrImageTruncated)
			var imageErr *ImageError
			assert.True(t, errors.As(err, &imageErr))
			assert.Equal(t, Word(0), machine.ReadMemory(0x3000), "nothing is loaded")
		})
	}
}

func TestLoadImageOriginOnly(t *testing.T) {
	machine := NewVM(&fakeTerminal{})
	origin, err := machine.LoadImage(bytes.NewReader(image(0x4000)))

	require.NoError(t, err)
	assert.Equal(t, Word(0x4000), origin)
	assert.Equal(t, Word(0x4000), machine.PC())
}

func TestLoadImageStopsAtTopOfMemory(t *testing.T) {
	assert := assert.New(t)

	machine := NewVM(nil)
	_, err := machine.LoadImage(bytes.NewReader(image(0xFFFE, 0x1111, 0x2222, 0x3333, 0x4444)))

	assert.NoError(err)
	assert.Equal(Word(0x1111), machine.memory.ram[0xFFFE])
	assert.Equal(Word(0x2222), machine.memory.ram[0xFFFF])
	assert.Equal(Word(0), machine.memory.ram[0x0000], "load does not wrap")
	assert.Equal(Word(0), machine.memory.ram[0x0001])
}

func TestLoadImageFirstOriginIsEntry(t *testing.T) {
	assert := assert.New(t)

	machine := NewVM(&fakeTerminal{})
	_, err := machine.LoadImage(bytes.NewReader(image(0x3000, halt)))
	assert.NoError(err)
	_, err = machine.LoadImage(bytes.NewReader(image(0x0200, 0x0001, 0x0002)))
	assert.NoError(err)

	assert.Equal(Word(0x3000), machine.PC())
	assert.Equal(halt, machine.ReadMemory(0x3000))
	assert.Equal(Word(0x0002), machine.ReadMemory(0x0201))
}

func TestLoadImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.obj")
	require.NoError(t, os.WriteFile(path, image(0x3000, encADDi(R0, R0, 3), halt), 0644))

	machine := NewVM(&fakeTerminal{})
	origin, err := machine.LoadImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, Word(0x3000), origin)

	require.NoError(t, machine.Run())
	assert.Equal(t, Word(3), machine.Register(R0))
}

func TestLoadImageFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.obj")

	machine := NewVM(&fakeTerminal{})
	_, err := machine.LoadImageFile(path)

	var imageErr *ImageError
	require.True(t, errors.As(err, &imageErr))
	assert.Equal(t, path, imageErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "load image "+path)
}
