// Package snapshot persists the membership table so a restarted process can
// resume incremental maintenance from the last converged state instead of a
// cold run. The on-disk format is a fixed header followed by a
// snappy-compressed body with a CRC32 checksum.
package snapshot

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"os"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-communities/pkg/copra"
)

const (
	magic         = "CSNP"
	version       = 1
	headerSize    = 4 + 1 + 1 + 2 + 4 + 4 + 4 // magic, version, labels, pad, span, length, crc
	labelSize     = 4 + 8
	labelsetSize  = copra.MaxLabels * labelSize
)

// ErrCorrupt is returned when a snapshot fails its checksum or structure checks
var ErrCorrupt = fmt.Errorf("snapshot is corrupt")

// Write persists the membership table to path, replacing any existing
// snapshot atomically via a rename.
func Write(path string, vcom []copra.Labelset) error {
	body := make([]byte, len(vcom)*labelsetSize)
	off := 0
	for u := range vcom {
		for i := range vcom[u] {
			binary.BigEndian.PutUint32(body[off:], vcom[u][i].Community)
			binary.BigEndian.PutUint64(body[off+4:], math.Float64bits(vcom[u][i].Weight))
			off += labelSize
		}
	}
	compressed := snappy.Encode(nil, body)

	buf := make([]byte, headerSize+len(compressed))
	copy(buf, magic)
	buf[4] = version
	buf[5] = copra.MaxLabels
	binary.BigEndian.PutUint32(buf[8:], uint32(len(vcom)))
	binary.BigEndian.PutUint32(buf[12:], uint32(len(compressed)))
	binary.BigEndian.PutUint32(buf[16:], crc32.ChecksumIEEE(compressed))
	copy(buf[headerSize:], compressed)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Read restores a membership table from path through a memory-mapped reader
func Read(path string) ([]copra.Labelset, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer r.Close()

	if r.Len() < headerSize {
		return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
	}
	header := make([]byte, headerSize)
	if _, err := r.ReadAt(header, 0); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if string(header[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if header[4] != version {
		return nil, fmt.Errorf("unsupported snapshot version %d", header[4])
	}
	if header[5] != copra.MaxLabels {
		return nil, fmt.Errorf("snapshot has %d labels per vertex, expected %d", header[5], copra.MaxLabels)
	}
	span := binary.BigEndian.Uint32(header[8:])
	length := binary.BigEndian.Uint32(header[12:])
	checksum := binary.BigEndian.Uint32(header[16:])

	if r.Len() != headerSize+int(length) {
		return nil, fmt.Errorf("%w: truncated body", ErrCorrupt)
	}
	compressed := make([]byte, length)
	if _, err := r.ReadAt(compressed, headerSize); err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}
	if crc32.ChecksumIEEE(compressed) != checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	body, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(body) != int(span)*labelsetSize {
		return nil, fmt.Errorf("%w: body size mismatch", ErrCorrupt)
	}

	vcom := make([]copra.Labelset, span)
	off := 0
	for u := range vcom {
		for i := range vcom[u] {
			vcom[u][i].Community = binary.BigEndian.Uint32(body[off:])
			vcom[u][i].Weight = math.Float64frombits(binary.BigEndian.Uint64(body[off+4:]))
			off += labelSize
		}
	}
	return vcom, nil
}
