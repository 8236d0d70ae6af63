package rpc

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/decikv/decikv/pkg/codec"
)

// MaxDatagramSize is the largest datagram either side of the protocol
// sends or reads, trailer included.
const MaxDatagramSize = 65536

// ErrBadFrame indicates a datagram whose checksum trailer is missing or
// does not match the body.
var ErrBadFrame = errors.New("bad frame")

// AppendFrame suffixes payload with its little-endian CRC32 checksum,
// producing the datagram form client and server exchange.
func AppendFrame(payload []byte) []byte {
	frame := make([]byte, 0, len(payload)+codec.ChecksumSize)
	frame = append(frame, payload...)
	return binary.LittleEndian.AppendUint32(frame, codec.Checksum(payload))
}

// SplitFrame verifies a framed datagram and returns the payload without
// its trailer. The returned slice aliases frame.
func SplitFrame(frame []byte) ([]byte, error) {
	if len(frame) < codec.ChecksumSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrBadFrame, len(frame), codec.ChecksumSize)
	}

	split := len(frame) - codec.ChecksumSize
	payload := frame[:split]
	if !codec.VerifyChecksum(payload, binary.LittleEndian.Uint32(frame[split:])) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrBadFrame)
	}
	return payload, nil
}
