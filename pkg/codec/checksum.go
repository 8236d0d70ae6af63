package codec

import "hash/crc32"

// Checksum computes the CRC32 (IEEE) checksum of b.
// It is pure and never fails; the checksum of an empty slice is 0.
func Checksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// VerifyChecksum reports whether sum is the CRC32 (IEEE) checksum of b.
func VerifyChecksum(b []byte, sum uint32) bool {
	return crc32.ChecksumIEEE(b) == sum
}
