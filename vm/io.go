package vm

import (
	goIO "io"
	"log"
	"os"
	"sync"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal is the console the trap routines and the keyboard registers
// talk to.
type Terminal interface {
	Keyboard
	WriteChar(c byte) error
}

func writeString(t Terminal, s string) error {
	for i := 0; i < len(s); i++ {
		if err := t.WriteChar(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// Console drives a real terminal: stdin for keys, a writer for output.
// Raw mode is a scoped resource; Restore is safe to call on every exit path.
type Console struct {
	in                     *os.File
	out                    goIO.Writer
	originalTerminalConfig unix.Termios
	raw                    bool
	restore                sync.Once
}

func NewConsole(in *os.File, out goIO.Writer) *Console {
	return &Console{in: in, out: out}
}

// EnableRawMode turns off line buffering and echo. It does nothing when
// the input is not a terminal.
func (console *Console) EnableRawMode() error {
	fd := console.in.Fd()
	if !term.IsTerminal(int(fd)) {
		return nil
	}

	log.Printf("enabling raw mode...")
	if err := termios.Tcgetattr(fd, &console.originalTerminalConfig); err != nil {
		return err
	}
	newTermios := console.originalTerminalConfig
	newTermios.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &newTermios); err != nil {
		return err
	}
	console.raw = true
	return nil
}

// Restore puts the terminal back the way EnableRawMode found it.
func (console *Console) Restore() (err error) {
	console.restore.Do(func() {
		if !console.raw {
			return
		}
		log.Printf("disabling raw mode...")
		err = termios.Tcsetattr(console.in.Fd(), termios.TCSANOW, &console.originalTerminalConfig)
	})
	return
}

// KeyAvailable polls stdin without blocking.
func (console *Console) KeyAvailable() bool {
	fd := int(console.in.Fd())

	var readfds unix.FdSet
	readfds.Set(fd)
	timeout := unix.Timeval{}

	n, err := unix.Select(fd+1, &readfds, nil, nil, &timeout)
	if err != nil {
		return false
	}
	return n != 0
}

func (console *Console) ReadChar() (byte, error) {
	var buf [1]byte
	if _, err := goIO.ReadFull(console.in, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (console *Console) WriteChar(c byte) error {
	_, err := console.out.Write([]byte{c})
	return err
}
