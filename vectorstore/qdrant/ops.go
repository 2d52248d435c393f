package qdrant

import (
	"context"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/darkhanakh/claude-context/filterexpr"
	"github.com/darkhanakh/claude-context/internal/xerrors"
	"github.com/darkhanakh/claude-context/sparse"
	"github.com/darkhanakh/claude-context/vectorstore"
)

// Insert upserts points into a single-vector collection, committing
// fixed-size batches sequentially. If a batch fails, batches already
// committed stay; the returned error names the failing batch index
// and no further batches are attempted.
func (s *Store) Insert(ctx context.Context, collection string, points []vectorstore.Document) error {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	for i, batch := range batches(points) {
		if err := ctx.Err(); err != nil {
			return xerrors.Canceled(err)
		}

		qPoints := make([]*qc.PointStruct, 0, len(batch))
		for _, doc := range batch {
			qPoints = append(qPoints, toPointStruct(doc))
		}

		if err := s.upsert(ctx, collection, qPoints); err != nil {
			return fmtBatchErr(i, err)
		}
	}
	return nil
}

// InsertHybrid upserts points into a hybrid collection with the same
// batching and partial-failure contract as Insert.
func (s *Store) InsertHybrid(ctx context.Context, collection string, points []vectorstore.Document) error {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	for i, batch := range batches(points) {
		if err := ctx.Err(); err != nil {
			return xerrors.Canceled(err)
		}

		qPoints := make([]*qc.PointStruct, 0, len(batch))
		for _, doc := range batch {
			qPoints = append(qPoints, toHybridPointStruct(doc))
		}

		if err := s.upsert(ctx, collection, qPoints); err != nil {
			return fmtBatchErr(i, err)
		}
	}
	return nil
}

func (s *Store) upsert(ctx context.Context, collection string, points []*qc.PointStruct) error {
	wait := true
	_, err := s.client.Upsert(ctx, &qc.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return wrapBackendErr(ctx, "qdrant.Insert", err)
	}
	return nil
}

// Search runs a single-channel search against collection. vector must
// be either []float32 (dense channel) or sparse.Vector (sparse
// channel). A non-empty channel selects the named vector to query; an
// empty channel queries the unnamed vector for dense input and the
// "sparse" named vector for sparse input.
func (s *Store) Search(ctx context.Context, collection, channel string, vector any, opts vectorstore.SearchOptions) ([]vectorstore.SearchHit, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	limit := uint64(opts.Limit)
	if limit == 0 {
		limit = 10
	}

	query := &qc.QueryPoints{
		CollectionName: collection,
		Limit:          &limit,
		WithPayload:    qc.NewWithPayload(true),
		Filter:         toQdrantFilter(opts.Filter),
	}

	switch v := vector.(type) {
	case []float32:
		query.Query = qc.NewQuery(v...)
		if channel != "" {
			query.Using = &channel
		}
	case sparse.Vector:
		query.Query = qc.NewQuerySparse(uint32SliceFrom(v.Indices), float32SliceFrom(v.Values))
		using := channel
		if using == "" {
			using = sparseVectorName
		}
		query.Using = &using
	default:
		return nil, xerrors.InvalidArgument("qdrant.Search: unsupported vector type %T", vector)
	}

	resp, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, wrapBackendErr(ctx, "qdrant.Search", err)
	}

	hits := make([]vectorstore.SearchHit, 0, len(resp))
	for _, point := range resp {
		hits = append(hits, vectorstore.SearchHit{
			Document: fromPayload(point.GetPayload()),
			Score:    float64(point.GetScore()),
		})
	}
	return hits, nil
}

// Scroll retrieves points matching filter without ranking.
func (s *Store) Scroll(ctx context.Context, collection string, filter *filterexpr.Filter, fields []string, limit int) ([]vectorstore.Document, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	l := uint32(limit)
	req := &qc.ScrollPoints{
		CollectionName: collection,
		Filter:         toQdrantFilter(filter),
		Limit:          &l,
	}
	if len(fields) > 0 {
		req.WithPayload = qc.NewWithPayloadInclude(fields...)
	} else {
		req.WithPayload = qc.NewWithPayload(true)
	}

	points, err := s.client.Scroll(ctx, req)
	if err != nil {
		return nil, wrapBackendErr(ctx, "qdrant.Scroll", err)
	}

	docs := make([]vectorstore.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, fromPayload(p.GetPayload()))
	}
	return docs, nil
}

// Delete removes points by their caller-facing ids, re-deriving each
// backend id via the same deterministic mapping used on insert.
func (s *Store) Delete(ctx context.Context, collection string, ids []string) error {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	backendIDs := make([]string, len(ids))
	for i, id := range ids {
		backendIDs[i] = backendID(id)
	}

	pointIDs := make([]*qc.PointId, len(backendIDs))
	for i, bid := range backendIDs {
		pointIDs[i] = qc.NewID(bid)
	}

	_, err := s.client.Delete(ctx, &qc.DeletePoints{
		CollectionName: collection,
		Points:         qc.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return wrapBackendErr(ctx, "qdrant.Delete", err)
	}
	return nil
}
