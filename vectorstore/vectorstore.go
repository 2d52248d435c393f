// Package vectorstore defines the backend-neutral VectorStore port
// (§4.6): the operations the hybrid dispatcher needs, independent of
// any concrete vector database. vectorstore/qdrant provides the
// primary backend implementation.
package vectorstore

import (
	"context"

	"github.com/darkhanakh/claude-context/filterexpr"
	"github.com/darkhanakh/claude-context/sparse"
)

// Document is the VectorDocument of §3: identity is by ID, all other
// fields are payload. Dense is a fixed-dimension vector matching the
// collection's configured dim; Sparse is optional.
type Document struct {
	ID            string
	Dense         []float32
	Sparse        sparse.Vector
	Content       string
	RelativePath  string
	StartLine     int
	EndLine       int
	FileExtension string
	Metadata      map[string]any
}

// SearchOptions carries the tunables of a single channel search.
type SearchOptions struct {
	Limit  int
	Filter *filterexpr.Filter
}

// SearchHit is one raw result row from a single-channel search,
// ordered by the backend's native score descending.
type SearchHit struct {
	Document Document
	Score    float64
}

// Store is the VectorStore port of §4.6.
type Store interface {
	// HasCollection reports whether the named collection exists.
	HasCollection(ctx context.Context, name string) (bool, error)

	// CreateCollection creates a single dense-vector collection of the
	// given dimension.
	CreateCollection(ctx context.Context, name string, dim int) error

	// CreateHybridCollection creates a named-vector collection with
	// both a "dense" vector of the given dimension and a "sparse"
	// vector.
	CreateHybridCollection(ctx context.Context, name string, dim int) error

	// Insert upserts points into a single-vector collection. Points
	// are inserted in deterministically ordered batches; if a batch
	// fails, previously committed batches are not rolled back and the
	// caller is told which batch index failed.
	Insert(ctx context.Context, collection string, points []Document) error

	// InsertHybrid upserts points into a hybrid (named-vector)
	// collection with the same batching and partial-failure contract
	// as Insert.
	InsertHybrid(ctx context.Context, collection string, points []Document) error

	// Search runs a single-channel search. vector is either a dense
	// []float32 or a sparse.Vector, matching channel.
	Search(ctx context.Context, collection, channel string, vector any, opts SearchOptions) ([]SearchHit, error)

	// Scroll retrieves points matching filter (nil means "no filter"),
	// projecting only the named payload fields when fields is
	// non-empty.
	Scroll(ctx context.Context, collection string, filter *filterexpr.Filter, fields []string, limit int) ([]Document, error)

	// Delete removes points by their caller-facing (pre-ID-mapping) ids.
	Delete(ctx context.Context, collection string, ids []string) error

	// DropCollection deletes an entire collection.
	DropCollection(ctx context.Context, name string) error

	// IsHybrid reports whether the named collection is configured with
	// named (hybrid) vectors, introspecting the backend on first call
	// per collection and caching thereafter.
	IsHybrid(ctx context.Context, name string) (bool, error)
}
