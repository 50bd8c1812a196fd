// Package floatvec packs float64 vectors as little-endian bytes, the form
// embeddings take in SQLite blobs and Redis values.
package floatvec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode packs v into 8 bytes per element.
func Encode(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// Decode unpacks b. It fails when len(b) is not a multiple of 8.
func Decode(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("floatvec: %d bytes is not a float64 vector", len(b))
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
