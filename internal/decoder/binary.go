package decoder

import "encoding/binary"

// readUint64LE reads a little-endian uint64 at offset, per spec.md §4.1's
// bit-exact wire format requirement.
func readUint64LE(data []byte, offset int) uint64 {
	return binary.LittleEndian.Uint64(data[offset : offset+8])
}

// writeUint64LE is the inverse of readUint64LE, used by the decoder's
// round-trip tests (spec.md §8).
func writeUint64LE(val uint64, data []byte, offset int) {
	binary.LittleEndian.PutUint64(data[offset:offset+8], val)
}
