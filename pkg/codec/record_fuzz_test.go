//go:build fuzz
// +build fuzz

package codec

import (
	"bytes"
	"errors"
	"testing"
)

// FuzzRecord_RoundTrip tests encode/decode round-trip with random values
func FuzzRecord_RoundTrip(f *testing.F) {
	// Add seed corpus
	f.Add([]byte("0"))
	f.Add([]byte("123.45"))
	f.Add([]byte("-7.250"))
	f.Add([]byte{0x00, 0x01, 0x02})

	f.Fuzz(func(t *testing.T, value []byte) {
		// Skip extremely large inputs to avoid timeout
		if len(value) > 100000 || len(value) == 0 {
			t.Skip("Input out of range for fuzz test")
		}

		encoded := EncodeRecord(value)

		if len(encoded) != len(value)+ChecksumSize {
			t.Fatalf("Encoded size mismatch: got %d, want %d", len(encoded), len(value)+ChecksumSize)
		}

		record, err := DecodeRecord(encoded)
		if err != nil {
			t.Fatalf("Decode failed for len(value)=%d: %v", len(value), err)
		}

		if !record.Verify() {
			t.Fatalf("Freshly encoded record failed verification: %q", value)
		}

		if !bytes.Equal(record.Value, value) {
			t.Errorf("Value mismatch: got %q, want %q", record.Value, value)
		}
	})
}

// FuzzRecord_CorruptionDetection tests that single-byte corruption is always detected
func FuzzRecord_CorruptionDetection(f *testing.F) {
	// Add seed corpus
	f.Add([]byte("123.45"), uint(0))
	f.Add([]byte("0"), uint(4))
	f.Add([]byte("-99.999"), uint(7))

	f.Fuzz(func(t *testing.T, value []byte, corruptPos uint) {
		// Skip extremely large inputs
		if len(value) > 10000 || len(value) == 0 {
			t.Skip("Input out of range for fuzz test")
		}

		encoded := EncodeRecord(value)

		// Skip if corruption position is beyond record length
		if int(corruptPos) >= len(encoded) {
			t.Skip("Corruption position beyond record length")
		}

		// Make a copy and corrupt one byte
		corrupted := make([]byte, len(encoded))
		copy(corrupted, encoded)
		corrupted[corruptPos] ^= 0xFF

		record, err := DecodeRecord(corrupted)
		if err != nil {
			// Decode failure is acceptable for corrupted data
			return
		}

		// If decode succeeded, verification must fail
		if record.Verify() {
			t.Errorf("Corruption not detected! Original: %x, Corrupted: %x, Position: %d",
				encoded, corrupted, corruptPos)
		}
	})
}

// FuzzDecodeRecord_MalformedData tests handling of arbitrary input
func FuzzDecodeRecord_MalformedData(f *testing.F) {
	// Add seed corpus of malformed data
	f.Add([]byte{})
	f.Add([]byte{0x01})
	f.Add([]byte{0x01, 0x02, 0x03, 0x04})
	f.Add(make([]byte, MinRecordSize-1))
	f.Add(make([]byte, MinRecordSize))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Skip extremely large inputs
		if len(data) > 100000 {
			t.Skip("Input too large for fuzz test")
		}

		// Decode must never panic; short input must report ErrTruncated.
		record, err := DecodeRecord(data)
		if len(data) < MinRecordSize {
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("Expected ErrTruncated for %d bytes, got %v", len(data), err)
			}
			return
		}

		if err != nil {
			t.Errorf("Decode failed on well-sized input of %d bytes: %v", len(data), err)
			return
		}

		if record.Size() != len(data) {
			t.Errorf("Size mismatch: got %d, want %d", record.Size(), len(data))
		}
	})
}
