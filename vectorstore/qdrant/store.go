// Package qdrant implements the vectorstore.Store port (§4.6) against
// a Qdrant collection, the system's primary vector database backend:
// single dense-vector collections for the non-hybrid path, and named
// "dense"/"sparse" vector collections for the hybrid path.
package qdrant

import (
	"context"
	"fmt"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/darkhanakh/claude-context/internal/xerrors"
	"github.com/darkhanakh/claude-context/vectorstore"
)

// Store is the concrete Qdrant-backed vectorstore.Store.
type Store struct {
	client   *qc.Client
	conf     Config
	hybridOf hybridCache
}

var _ vectorstore.Store = (*Store)(nil)

// NewStore validates conf, connects (if conf.Client is nil), and
// returns a ready-to-use Store.
func NewStore(ctx context.Context, conf Config) (*Store, error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}
	conf = withDefaults(conf)

	cli := conf.Client
	if cli == nil {
		var err error
		cli, err = qc.NewClient(&qc.Config{
			Host:   conf.Host,
			Port:   conf.Port,
			APIKey: conf.APIKey,
			UseTLS: conf.UseTLS,
		})
		if err != nil {
			return nil, xerrors.BackendUnavailable("qdrant.NewStore", err)
		}
	}

	return &Store{client: cli, conf: conf}, nil
}

// HasCollection reports whether name exists.
func (s *Store) HasCollection(ctx context.Context, name string) (bool, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return false, wrapBackendErr(ctx, "qdrant.HasCollection", err)
	}
	return exists, nil
}

// boundCtx bounds ctx by conf.RequestTimeout when the caller supplied
// no deadline of their own, so a RequestTimeout configured but never
// reached by the caller's own context still has an effect.
func (s *Store) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.conf.RequestTimeout)
}

// CreateCollection creates a single dense-vector collection of dim
// dimensions.
func (s *Store) CreateCollection(ctx context.Context, name string, dim int) error {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	err := s.client.CreateCollection(ctx, &qc.CreateCollection{
		CollectionName: name,
		VectorsConfig: qc.NewVectorsConfig(&qc.VectorParams{
			Size:     uint64(dim),
			Distance: s.conf.Distance,
		}),
	})
	if err != nil {
		return wrapBackendErr(ctx, "qdrant.CreateCollection", err)
	}
	s.hybridOf.set(name, false)
	return nil
}

// CreateHybridCollection creates a named-vector collection with a
// "dense" vector of dim dimensions and a "sparse" vector.
func (s *Store) CreateHybridCollection(ctx context.Context, name string, dim int) error {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	err := s.client.CreateCollection(ctx, &qc.CreateCollection{
		CollectionName: name,
		VectorsConfig: qc.NewVectorsConfigMap(map[string]*qc.VectorParams{
			denseVectorName: {
				Size:     uint64(dim),
				Distance: s.conf.Distance,
			},
		}),
		SparseVectorsConfig: qc.NewSparseVectorsConfig(map[string]*qc.SparseVectorParams{
			sparseVectorName: {},
		}),
	})
	if err != nil {
		return wrapBackendErr(ctx, "qdrant.CreateHybridCollection", err)
	}
	s.hybridOf.set(name, true)
	return nil
}

// DropCollection deletes an entire collection.
func (s *Store) DropCollection(ctx context.Context, name string) error {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return wrapBackendErr(ctx, "qdrant.DropCollection", err)
	}
	s.hybridOf.delete(name)
	return nil
}

// IsHybrid reports whether name is configured with named vectors,
// caching the answer after the first live check per §9's guidance.
func (s *Store) IsHybrid(ctx context.Context, name string) (bool, error) {
	if hybrid, ok := s.hybridOf.get(name); ok {
		return hybrid, nil
	}

	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	info, err := s.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return false, wrapBackendErr(ctx, "qdrant.IsHybrid", err)
	}

	hybrid := collectionIsHybrid(info)
	s.hybridOf.set(name, hybrid)
	return hybrid, nil
}

// collectionIsHybrid inspects a collection's vector config to decide
// whether it is hybrid: it is iff its named vectors include "dense".
func collectionIsHybrid(info *qc.CollectionInfo) bool {
	params := info.GetConfig().GetParams()
	if m := params.GetVectorsConfig().GetParamsMap(); m != nil {
		_, ok := m.GetMap()[denseVectorName]
		return ok
	}
	return false
}

// wrapBackendErr classifies a Qdrant client error as Canceled (caller
// context already done) or BackendUnavailable, per §7's propagation
// policy.
func wrapBackendErr(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return xerrors.Canceled(ctx.Err())
	}
	return xerrors.BackendUnavailable(op, err)
}

func fmtBatchErr(batchIdx int, err error) error {
	return fmt.Errorf("qdrant: batch %d failed: %w", batchIdx, err)
}
