package retrieval

import (
	"context"
	"encoding/binary"
	"math"

	"golang.org/x/crypto/blake2b"
)

// Embedder turns text into a fixed-dimension vector. Implementations must be
// deterministic for the same input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// HashEmbedder is an offline Embedder that derives a pseudo-embedding from a
// blake2b digest of the text. Identical texts map to identical vectors; it
// carries no semantic signal.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a HashEmbedder producing vectors of size dim.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 384
	}
	return &HashEmbedder{dim: dim}
}

func (e *HashEmbedder) Dimension() int { return e.dim }

// Embed returns a unit-length vector for text.
func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := blake2b.Sum256([]byte(text))
	h := float64(int32(binary.LittleEndian.Uint32(sum[:4])))
	phase := float64(binary.LittleEndian.Uint32(sum[4:8])) / math.MaxUint32 * 2 * math.Pi

	v := make([]float64, e.dim)
	for i := range v {
		v[i] = math.Sin(h*float64(i+1)+phase)*0.5 + math.Cos(h*float64(i+2))*0.5
	}
	return Normalize(v), nil
}
