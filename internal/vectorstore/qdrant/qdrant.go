package qdrant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	qdrantclient "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"heritage-rag/internal/domain"
	"heritage-rag/internal/vectorstore"
)

// Index is a gRPC client to Qdrant.
// Collections use cosine distance; scores are converted back to squared L2
// on unit vectors so callers see the same distance as the local stores.
type Index struct {
	conn        *grpc.ClientConn
	collections qdrantclient.CollectionsClient
	points      qdrantclient.PointsClient
	apiKey      string
	timeout     time.Duration
}

type Config struct {
	Addr    string
	APIKey  string
	Timeout time.Duration
}

var _ vectorstore.Index = (*Index)(nil)

// NewIndex dials Qdrant's gRPC port. The connection is lazy; errors surface
// on first use.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6334"
	}
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant at %s: %w", cfg.Addr, err)
	}
	x := newIndex(qdrantclient.NewCollectionsClient(conn), qdrantclient.NewPointsClient(conn), cfg)
	x.conn = conn
	return x, nil
}

func newIndex(collections qdrantclient.CollectionsClient, points qdrantclient.PointsClient, cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{collections: collections, points: points, apiKey: cfg.APIKey, timeout: timeout}
}

func (x *Index) Close() error {
	if x.conn == nil {
		return nil
	}
	return x.conn.Close()
}

func (x *Index) rpcContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if x.apiKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", x.apiKey)
	}
	return context.WithTimeout(ctx, x.timeout)
}

func (x *Index) CreateCollection(ctx context.Context, name string, opts vectorstore.CollectionOptions) (vectorstore.Collection, error) {
	if opts.Dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	ctx, cancel := x.rpcContext(ctx)
	defer cancel()
	_, err := x.collections.Create(ctx, &qdrantclient.CreateCollection{
		CollectionName: name,
		VectorsConfig: &qdrantclient.VectorsConfig{
			Config: &qdrantclient.VectorsConfig_Params{
				Params: &qdrantclient.VectorParams{
					Size:     uint64(opts.Dimension),
					Distance: qdrantclient.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", name, err)
	}
	return &Collection{index: x, name: name}, nil
}

func (x *Index) DeleteCollection(ctx context.Context, name string) error {
	ctx, cancel := x.rpcContext(ctx)
	defer cancel()
	_, err := x.collections.Delete(ctx, &qdrantclient.DeleteCollection{CollectionName: name})
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("deleting collection %s: %w", name, err)
	}
	return nil
}

func (x *Index) GetCollection(ctx context.Context, name string) (vectorstore.Collection, error) {
	ctx, cancel := x.rpcContext(ctx)
	defer cancel()
	_, err := x.collections.Get(ctx, &qdrantclient.GetCollectionInfoRequest{CollectionName: name})
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%s: %w", name, vectorstore.ErrCollectionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting collection %s: %w", name, err)
	}
	return &Collection{index: x, name: name}, nil
}

// Collection is a handle on one Qdrant collection.
type Collection struct {
	index *Index
	name  string
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	points := make([]*qdrantclient.PointStruct, len(entries))
	for i, e := range entries {
		points[i] = &qdrantclient.PointStruct{
			Id: pointID(e.ID),
			Vectors: &qdrantclient.Vectors{
				VectorsOptions: &qdrantclient.Vectors_Vector{
					Vector: &qdrantclient.Vector{Data: e.Embedding},
				},
			},
			Payload: toPayload(e),
		}
	}
	ctx, cancel := c.index.rpcContext(ctx)
	defer cancel()
	wait := true
	if _, err := c.index.points.Upsert(ctx, &qdrantclient.UpsertPoints{
		CollectionName: c.name,
		Wait:           &wait,
		Points:         points,
	}); err != nil {
		return fmt.Errorf("upserting %d points: %w", len(points), err)
	}
	return nil
}

func (c *Collection) Query(ctx context.Context, embedding []float32, n int) ([]vectorstore.Neighbor, error) {
	if n <= 0 {
		return nil, nil
	}
	ctx, cancel := c.index.rpcContext(ctx)
	defer cancel()
	resp, err := c.index.points.Search(ctx, &qdrantclient.SearchPoints{
		CollectionName: c.name,
		Vector:         embedding,
		Limit:          uint64(n),
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%s: %w", c.name, vectorstore.ErrCollectionNotFound)
	}
	if status.Code(err) == codes.InvalidArgument {
		return nil, fmt.Errorf("searching %s: %w: %v", c.name, vectorstore.ErrDimensionMismatch, err)
	}
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", c.name, err)
	}
	out := make([]vectorstore.Neighbor, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		nb := fromPayload(p.GetPayload())
		nb.Distance = scoreToDistance(p.GetScore())
		out = append(out, nb)
	}
	return out, nil
}

func (c *Collection) Count(ctx context.Context) (int, error) {
	ctx, cancel := c.index.rpcContext(ctx)
	defer cancel()
	exact := true
	resp, err := c.index.points.Count(ctx, &qdrantclient.CountPoints{CollectionName: c.name, Exact: &exact})
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", c.name, err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// pointID derives a stable UUID from a chunk ID; Qdrant only accepts
// unsigned integers and UUIDs.
func pointID(id string) *qdrantclient.PointId {
	return &qdrantclient.PointId{
		PointIdOptions: &qdrantclient.PointId_Uuid{
			Uuid: uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String(),
		},
	}
}

// scoreToDistance maps a cosine similarity to the squared L2 distance
// between the corresponding unit vectors.
func scoreToDistance(score float32) float64 {
	return 2 * (1 - float64(score))
}

func str(s string) *qdrantclient.Value {
	return &qdrantclient.Value{Kind: &qdrantclient.Value_StringValue{StringValue: s}}
}

func integer(n int) *qdrantclient.Value {
	return &qdrantclient.Value{Kind: &qdrantclient.Value_IntegerValue{IntegerValue: int64(n)}}
}

func optional(s *string) *qdrantclient.Value {
	if s == nil {
		return &qdrantclient.Value{Kind: &qdrantclient.Value_NullValue{}}
	}
	return str(*s)
}

func toPayload(e domain.IndexEntry) map[string]*qdrantclient.Value {
	return map[string]*qdrantclient.Value{
		"id":         str(e.ID),
		"text":       str(e.Document),
		"site":       optional(e.Metadata.Site),
		"period":     optional(e.Metadata.Period),
		"source":     optional(e.Metadata.Source),
		"filename":   str(e.Metadata.Filename),
		"chunk_id":   integer(e.Metadata.ChunkID),
		"start_char": integer(e.Metadata.StartChar),
		"end_char":   integer(e.Metadata.EndChar),
	}
}

func fromPayload(p map[string]*qdrantclient.Value) vectorstore.Neighbor {
	optionalOf := func(key string) *string {
		v, ok := p[key]
		if !ok {
			return nil
		}
		if _, isStr := v.GetKind().(*qdrantclient.Value_StringValue); !isStr {
			return nil
		}
		return domain.Str(v.GetStringValue())
	}
	return vectorstore.Neighbor{
		ID:       p["id"].GetStringValue(),
		Document: p["text"].GetStringValue(),
		Metadata: domain.Metadata{
			Site:      optionalOf("site"),
			Period:    optionalOf("period"),
			Source:    optionalOf("source"),
			Filename:  p["filename"].GetStringValue(),
			ChunkID:   int(p["chunk_id"].GetIntegerValue()),
			StartChar: int(p["start_char"].GetIntegerValue()),
			EndChar:   int(p["end_char"].GetIntegerValue()),
		},
	}
}
