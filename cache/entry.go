package cache

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/astrocache/internal/compress"
	"github.com/hupe1980/astrocache/internal/hash"
)

// Entry layout (little endian):
//
//	magic       [4]byte "ACE1"
//	version     uint8
//	compression uint8
//	codecLen    uint8, codec name
//	nameLen     uint16, logical name
//	checksum    uint32  CRC32C of body
//	bodyLen     uint64
//	body        compressed codec output
var entryMagic = [4]byte{'A', 'C', 'E', '1'}

const (
	entryVersion = 1
	maxNameLen   = 1<<16 - 1
)

type header struct {
	Version     uint8
	Compression compress.Type
	Codec       string
	Name        string
	Checksum    uint32
	BodyLen     uint64
}

type entry struct {
	header
	Payload []byte
}

func encodeEntry(name, codecName string, ct compress.Type, payload []byte) ([]byte, error) {
	if len(codecName) > 255 {
		return nil, fmt.Errorf("codec name too long: %d bytes", len(codecName))
	}
	if len(name) > maxNameLen {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrNameTooLong, len(name), maxNameLen)
	}

	body, err := compress.Encode(payload, ct)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(4 + 3 + len(codecName) + 2 + len(name) + 12 + len(body))
	buf.Write(entryMagic[:])
	buf.WriteByte(entryVersion)
	buf.WriteByte(byte(ct))
	buf.WriteByte(byte(len(codecName)))
	buf.WriteString(codecName)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(name)))
	buf.WriteString(name)
	_ = binary.Write(&buf, binary.LittleEndian, hash.CRC32C(body))
	_ = binary.Write(&buf, binary.LittleEndian, uint64(len(body)))
	buf.Write(body)

	return buf.Bytes(), nil
}

func readHeader(r io.Reader) (header, error) {
	var h header

	var fixed [7]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return h, fmt.Errorf("%w: short header: %w", ErrCorrupt, err)
	}
	if !bytes.Equal(fixed[:4], entryMagic[:]) {
		return h, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	h.Version = fixed[4]
	if h.Version != entryVersion {
		return h, fmt.Errorf("%w: version %d", ErrIncompatibleFormat, h.Version)
	}
	h.Compression = compress.Type(fixed[5])

	codecName := make([]byte, fixed[6])
	if _, err := io.ReadFull(r, codecName); err != nil {
		return h, fmt.Errorf("%w: short codec name: %w", ErrCorrupt, err)
	}
	h.Codec = string(codecName)

	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return h, fmt.Errorf("%w: short name length: %w", ErrCorrupt, err)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return h, fmt.Errorf("%w: short name: %w", ErrCorrupt, err)
	}
	h.Name = string(name)

	if err := binary.Read(r, binary.LittleEndian, &h.Checksum); err != nil {
		return h, fmt.Errorf("%w: short checksum: %w", ErrCorrupt, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &h.BodyLen); err != nil {
		return h, fmt.Errorf("%w: short body length: %w", ErrCorrupt, err)
	}

	return h, nil
}

func decodeEntry(data []byte) (entry, error) {
	r := bytes.NewReader(data)
	h, err := readHeader(r)
	if err != nil {
		return entry{}, err
	}

	if uint64(r.Len()) != h.BodyLen {
		return entry{}, fmt.Errorf("%w: body is %d bytes, header says %d", ErrCorrupt, r.Len(), h.BodyLen)
	}
	body := data[len(data)-r.Len():]

	if got := hash.CRC32C(body); got != h.Checksum {
		return entry{}, fmt.Errorf("%w: checksum %08x, want %08x", ErrCorrupt, got, h.Checksum)
	}

	payload, err := compress.Decode(body, h.Compression)
	if err != nil {
		return entry{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return entry{header: h, Payload: payload}, nil
}

// peekHeader reads only the entry header from r.
func peekHeader(r io.Reader) (header, error) {
	return readHeader(bufio.NewReaderSize(r, 512))
}
