package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// ChecksumSize is the width of the CRC32 trailer in bytes.
	ChecksumSize = 4

	// MinRecordSize is the smallest well-formed record: at least one value
	// byte followed by the checksum trailer.
	MinRecordSize = 1 + ChecksumSize
)

// ErrTruncated indicates input too short to hold a value and its checksum.
var ErrTruncated = errors.New("truncated record")

// Record is a decoded storage record. Value holds the stored bytes and
// Checksum the CRC32 trailer that was persisted alongside them.
type Record struct {
	Value    []byte // stored value bytes
	Checksum uint32 // CRC32 of Value, as read from the trailer
}

// EncodeRecord serializes value into the binary record format:
//
//	[value][CRC32(4)]
//
// The checksum is computed over the value bytes and appended little-endian.
func EncodeRecord(value []byte) []byte {
	buf := make([]byte, len(value)+ChecksumSize)
	copy(buf, value)
	binary.LittleEndian.PutUint32(buf[len(value):], Checksum(value))
	return buf
}

// DecodeRecord splits data into value and checksum without copying.
// The returned Record's Value aliases data; callers that retain the value
// past the lifetime of data must copy it.
//
// DecodeRecord does not verify the checksum; see Record.Verify.
func DecodeRecord(data []byte) (Record, error) {
	if len(data) < MinRecordSize {
		return Record{}, fmt.Errorf("%w: %d bytes, need at least %d", ErrTruncated, len(data), MinRecordSize)
	}

	split := len(data) - ChecksumSize
	return Record{
		Value:    data[:split],
		Checksum: binary.LittleEndian.Uint32(data[split:]),
	}, nil
}

// Verify reports whether the record's checksum matches its value bytes.
func (r Record) Verify() bool {
	return VerifyChecksum(r.Value, r.Checksum)
}

// Size returns the encoded size of the record.
func (r Record) Size() int {
	return len(r.Value) + ChecksumSize
}
