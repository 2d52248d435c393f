package qdrant

import (
	qc "github.com/qdrant/go-client/qdrant"

	"github.com/darkhanakh/claude-context/vectorstore"
)

// toPointStruct builds a single-vector point: dense vector, stable
// payload, and a deterministically-mapped backend id.
func toPointStruct(doc vectorstore.Document) *qc.PointStruct {
	return &qc.PointStruct{
		Id:      qc.NewID(backendID(doc.ID)),
		Vectors: qc.NewVectors(doc.Dense...),
		Payload: toPayload(doc),
	}
}

// toHybridPointStruct builds a named-vector point with a "dense"
// vector and, when the document carries one, a "sparse" vector.
func toHybridPointStruct(doc vectorstore.Document) *qc.PointStruct {
	vectors := map[string]*qc.Vector{
		denseVectorName: qc.NewVector(doc.Dense...),
	}
	if !doc.Sparse.Empty() {
		vectors[sparseVectorName] = qc.NewVectorSparse(
			uint32SliceFrom(doc.Sparse.Indices),
			float32SliceFrom(doc.Sparse.Values),
		)
	}

	return &qc.PointStruct{
		Id:      qc.NewID(backendID(doc.ID)),
		Vectors: qc.NewVectorsMap(vectors),
		Payload: toPayload(doc),
	}
}

func uint32SliceFrom(indices []int32) []uint32 {
	out := make([]uint32, len(indices))
	for i, v := range indices {
		out[i] = uint32(v)
	}
	return out
}

func float32SliceFrom(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

// batches splits points into fixed-size, order-preserving chunks.
func batches(points []vectorstore.Document) [][]vectorstore.Document {
	if len(points) == 0 {
		return nil
	}
	var out [][]vectorstore.Document
	for i := 0; i < len(points); i += batchSize {
		end := i + batchSize
		if end > len(points) {
			end = len(points)
		}
		out = append(out, points[i:end])
	}
	return out
}
