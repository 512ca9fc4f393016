package vm

import (
	"encoding/binary"
	"errors"
	goIO "io"
	"os"
)

// readImage decodes an image: a big-endian origin word followed by
// big-endian words placed from the origin upward. Words that would run past
// the top of memory are not read.
func readImage(r goIO.Reader, mem *memory) (origin Word, err error) {
	var header [2]byte
	if _, err := goIO.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, goIO.EOF) || errors.Is(err, goIO.ErrUnexpectedEOF) {
			return 0, ErrImageTruncated
		}
		return 0, err
	}
	origin = Word(binary.BigEndian.Uint16(header[:]))

	maxRead := int64(MemorySize-int(origin)) * 2
	data, err := goIO.ReadAll(goIO.LimitReader(r, maxRead))
	if err != nil {
		return 0, err
	}
	if len(data)%2 != 0 {
		return 0, ErrImageTruncated
	}

	for i := 0; i < len(data); i += 2 {
		mem.write(origin+Word(i/2), Word(binary.BigEndian.Uint16(data[i:])))
	}
	return origin, nil
}

func readImageFile(path string, mem *memory) (Word, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return readImage(file, mem)
}
