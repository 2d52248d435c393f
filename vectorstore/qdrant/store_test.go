package qdrant

import (
	"context"
	"fmt"
	"testing"

	. "github.com/bytedance/mockey"
	qc "github.com/qdrant/go-client/qdrant"
	"github.com/smartystreets/goconvey/convey"
)

func TestStore_HasCollection(t *testing.T) {
	PatchConvey("test Store.HasCollection", t, func() {
		ctx := context.Background()
		mockClient := &qc.Client{}
		s := &Store{client: mockClient, conf: withDefaults(Config{Client: mockClient})}

		PatchConvey("test collection exists", func() {
			Mock(GetMethod(mockClient, "CollectionExists")).Return(true, nil).Build()

			got, err := s.HasCollection(ctx, "chunks")
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldBeTrue)
		})

		PatchConvey("test backend error", func() {
			Mock(GetMethod(mockClient, "CollectionExists")).Return(false, fmt.Errorf("dial error")).Build()

			_, err := s.HasCollection(ctx, "chunks")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestStore_CreateCollection(t *testing.T) {
	PatchConvey("test Store.CreateCollection", t, func() {
		ctx := context.Background()
		mockClient := &qc.Client{}
		s := &Store{client: mockClient, conf: withDefaults(Config{Client: mockClient})}

		PatchConvey("test success marks collection non-hybrid", func() {
			Mock(GetMethod(mockClient, "CreateCollection")).Return(nil).Build()

			err := s.CreateCollection(ctx, "chunks", 128)
			convey.So(err, convey.ShouldBeNil)

			hybrid, ok := s.hybridOf.get("chunks")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(hybrid, convey.ShouldBeFalse)
		})

		PatchConvey("test backend error leaves cache untouched", func() {
			Mock(GetMethod(mockClient, "CreateCollection")).Return(fmt.Errorf("already exists")).Build()

			err := s.CreateCollection(ctx, "chunks", 128)
			convey.So(err, convey.ShouldNotBeNil)

			_, ok := s.hybridOf.get("chunks")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestStore_CreateHybridCollection(t *testing.T) {
	PatchConvey("test Store.CreateHybridCollection", t, func() {
		ctx := context.Background()
		mockClient := &qc.Client{}
		s := &Store{client: mockClient, conf: withDefaults(Config{Client: mockClient})}

		PatchConvey("test success marks collection hybrid", func() {
			Mock(GetMethod(mockClient, "CreateCollection")).Return(nil).Build()

			err := s.CreateHybridCollection(ctx, "chunks_hybrid", 128)
			convey.So(err, convey.ShouldBeNil)

			hybrid, ok := s.hybridOf.get("chunks_hybrid")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(hybrid, convey.ShouldBeTrue)
		})
	})
}

func TestStore_DropCollection(t *testing.T) {
	PatchConvey("test Store.DropCollection", t, func() {
		ctx := context.Background()
		mockClient := &qc.Client{}
		s := &Store{client: mockClient, conf: withDefaults(Config{Client: mockClient})}
		s.hybridOf.set("chunks", true)

		PatchConvey("test success evicts cache entry", func() {
			Mock(GetMethod(mockClient, "DeleteCollection")).Return(nil).Build()

			err := s.DropCollection(ctx, "chunks")
			convey.So(err, convey.ShouldBeNil)

			_, ok := s.hybridOf.get("chunks")
			convey.So(ok, convey.ShouldBeFalse)
		})

		PatchConvey("test backend error", func() {
			Mock(GetMethod(mockClient, "DeleteCollection")).Return(fmt.Errorf("not found")).Build()

			err := s.DropCollection(ctx, "chunks")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestStore_IsHybrid(t *testing.T) {
	PatchConvey("test Store.IsHybrid", t, func() {
		ctx := context.Background()
		mockClient := &qc.Client{}
		s := &Store{client: mockClient, conf: withDefaults(Config{Client: mockClient})}

		PatchConvey("test cached answer skips the live check", func() {
			s.hybridOf.set("chunks", true)

			got, err := s.IsHybrid(ctx, "chunks")
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldBeTrue)
		})

		PatchConvey("test uncached hybrid collection is detected and cached", func() {
			info := &qc.CollectionInfo{
				Config: &qc.CollectionConfig{
					Params: &qc.CollectionParams{
						VectorsConfig: qc.NewVectorsConfigMap(map[string]*qc.VectorParams{
							denseVectorName: {Size: 128, Distance: qc.Distance_Cosine},
						}),
						SparseVectorsConfig: qc.NewSparseVectorsConfig(map[string]*qc.SparseVectorParams{
							sparseVectorName: {},
						}),
					},
				},
			}
			Mock(GetMethod(mockClient, "GetCollectionInfo")).Return(info, nil).Build()

			got, err := s.IsHybrid(ctx, "chunks_hybrid")
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldBeTrue)

			cached, ok := s.hybridOf.get("chunks_hybrid")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(cached, convey.ShouldBeTrue)
		})

		PatchConvey("test uncached non-hybrid collection", func() {
			info := &qc.CollectionInfo{
				Config: &qc.CollectionConfig{
					Params: &qc.CollectionParams{
						VectorsConfig: qc.NewVectorsConfig(&qc.VectorParams{Size: 128, Distance: qc.Distance_Cosine}),
					},
				},
			}
			Mock(GetMethod(mockClient, "GetCollectionInfo")).Return(info, nil).Build()

			got, err := s.IsHybrid(ctx, "chunks")
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldBeFalse)
		})

		PatchConvey("test backend error", func() {
			Mock(GetMethod(mockClient, "GetCollectionInfo")).Return(nil, fmt.Errorf("not found")).Build()

			_, err := s.IsHybrid(ctx, "missing")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
