// Package stream moves edge mutation batches into a running engine over
// nanomsg sockets: producers push batches to a pull socket, and run
// summaries are published for subscribers.
package stream

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/dd0wney/cluso-communities/pkg/graph"
)

const (
	protoMagic   = "CBAT"
	protoVersion = 1

	// magic, version, pad, batch id, crc, compressed length
	protoHeaderSize = 4 + 1 + 3 + 16 + 4 + 4

	deletionSize  = 4 + 4
	insertionSize = 4 + 4 + 8
)

// ErrBadMessage is returned for messages that fail framing or checksum checks
var ErrBadMessage = fmt.Errorf("malformed batch message")

// EncodeBatch frames a batch for the wire: fixed header with the batch id
// and a CRC32 checksum, followed by the snappy-compressed entry lists.
func EncodeBatch(id uuid.UUID, b *graph.Batch) []byte {
	body := make([]byte, 8+len(b.Deletions)*deletionSize+len(b.Insertions)*insertionSize)
	binary.BigEndian.PutUint32(body[0:], uint32(len(b.Deletions)))
	binary.BigEndian.PutUint32(body[4:], uint32(len(b.Insertions)))
	off := 8
	for _, d := range b.Deletions {
		binary.BigEndian.PutUint32(body[off:], d.Source)
		binary.BigEndian.PutUint32(body[off+4:], d.Target)
		off += deletionSize
	}
	for _, in := range b.Insertions {
		binary.BigEndian.PutUint32(body[off:], in.Source)
		binary.BigEndian.PutUint32(body[off+4:], in.Target)
		binary.BigEndian.PutUint64(body[off+8:], math.Float64bits(in.Weight))
		off += insertionSize
	}
	compressed := snappy.Encode(nil, body)

	msg := make([]byte, protoHeaderSize+len(compressed))
	copy(msg, protoMagic)
	msg[4] = protoVersion
	copy(msg[8:24], id[:])
	binary.BigEndian.PutUint32(msg[24:], crc32.ChecksumIEEE(compressed))
	binary.BigEndian.PutUint32(msg[28:], uint32(len(compressed)))
	copy(msg[protoHeaderSize:], compressed)
	return msg
}

// DecodeBatch parses a framed batch message
func DecodeBatch(msg []byte) (uuid.UUID, *graph.Batch, error) {
	var id uuid.UUID
	if len(msg) < protoHeaderSize {
		return id, nil, fmt.Errorf("%w: truncated header", ErrBadMessage)
	}
	if string(msg[:4]) != protoMagic {
		return id, nil, fmt.Errorf("%w: bad magic", ErrBadMessage)
	}
	if msg[4] != protoVersion {
		return id, nil, fmt.Errorf("%w: unsupported version %d", ErrBadMessage, msg[4])
	}
	copy(id[:], msg[8:24])
	checksum := binary.BigEndian.Uint32(msg[24:])
	length := binary.BigEndian.Uint32(msg[28:])
	if len(msg) != protoHeaderSize+int(length) {
		return id, nil, fmt.Errorf("%w: truncated body", ErrBadMessage)
	}
	compressed := msg[protoHeaderSize:]
	if crc32.ChecksumIEEE(compressed) != checksum {
		return id, nil, fmt.Errorf("%w: checksum mismatch", ErrBadMessage)
	}
	body, err := snappy.Decode(nil, compressed)
	if err != nil {
		return id, nil, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	if len(body) < 8 {
		return id, nil, fmt.Errorf("%w: truncated counts", ErrBadMessage)
	}
	delCount := binary.BigEndian.Uint32(body[0:])
	insCount := binary.BigEndian.Uint32(body[4:])
	want := 8 + int(delCount)*deletionSize + int(insCount)*insertionSize
	if len(body) != want {
		return id, nil, fmt.Errorf("%w: body size mismatch", ErrBadMessage)
	}

	b := &graph.Batch{
		Deletions:  make([]graph.Deletion, delCount),
		Insertions: make([]graph.Insertion, insCount),
	}
	off := 8
	for i := range b.Deletions {
		b.Deletions[i].Source = binary.BigEndian.Uint32(body[off:])
		b.Deletions[i].Target = binary.BigEndian.Uint32(body[off+4:])
		off += deletionSize
	}
	for i := range b.Insertions {
		b.Insertions[i].Source = binary.BigEndian.Uint32(body[off:])
		b.Insertions[i].Target = binary.BigEndian.Uint32(body[off+4:])
		b.Insertions[i].Weight = math.Float64frombits(binary.BigEndian.Uint64(body[off+8:]))
		off += insertionSize
	}
	return id, b, nil
}

// Summary is the published outcome of one applied batch
type Summary struct {
	BatchID     string `json:"batch_id"`
	Strategy    string `json:"strategy"`
	Affected    int    `json:"affected"`
	Iterations  int    `json:"iterations"`
	Communities int    `json:"communities"`
	DurationMS  int64  `json:"duration_ms"`
}
