// Package codec provides record serialization and integrity checking for decikv.
//
// The codec package implements the binary record format used to persist values
// in the key-value backend, pairing every value with a CRC32 checksum so that
// corruption is detected on read rather than silently returned.
//
// # Record Format
//
// Records are serialized in a binary format with the following structure:
//
//	[Value][CRC32(4)]
//
// Fields:
//   - Value: variable-length value bytes (for decikv, the canonical decimal string)
//   - CRC32: 32-bit CRC checksum of the value bytes (IEEE polynomial, little-endian)
//
// The total record size is len(value) + 4 bytes. A record must carry at least
// one value byte, so anything shorter than MinRecordSize (5 bytes) fails to
// decode with ErrTruncated.
//
// # Checksum
//
// The checksum covers the value bytes only and uses the IEEE CRC32 polynomial
// via hash/crc32, which is hardware accelerated on common platforms. Checksum
// and VerifyChecksum are exposed directly for callers that frame their own
// payloads the same way (the wire protocol reuses them for datagram framing).
//
// # Usage
//
//	// Encode a value for storage.
//	encoded := codec.EncodeRecord([]byte("123.45"))
//
//	// Decode a stored record.
//	record, err := codec.DecodeRecord(encoded)
//	if err != nil {
//	    return err // too short to be a record
//	}
//
//	// Verify integrity before trusting the value.
//	if !record.Verify() {
//	    return ErrCorrupted
//	}
//
// # Decoding Semantics
//
// DecodeRecord is zero-copy: the returned Record's Value aliases the input
// buffer. Decoding splits the buffer and reads the trailer, nothing more, so
// it cannot fail on well-sized input and never panics on short input. Checksum
// verification is a separate step (Record.Verify) because the storage layer
// distinguishes "not a record" from "a record that failed integrity checks".
//
// All functions are pure and safe for concurrent use.
package codec
