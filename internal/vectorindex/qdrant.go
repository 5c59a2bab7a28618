package vectorindex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"manifold/internal/chunk"
)

// payloadIDField mirrors the teacher's deterministic-UUID trick: Qdrant
// only accepts UUID or positive-integer point IDs, so the chunk's own
// ChunkID (already a UUID from chunk.NewID, but re-derived defensively) is
// stored back in the payload for exact recovery on read.
const payloadIDField = "_original_id"

var qdrantNamespace = uuid.MustParse("6f2a9c3e-1d4a-4e8a-9b1a-9a1c2e9a7b20")

// Qdrant is a persistent Store backed by github.com/qdrant/go-client.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	dimension  int
}

// NewQdrant connects to dsn (host[:port], gRPC) and ensures collection
// exists with a cosine-distance vector config of the given dimension.
func NewQdrant(ctx context.Context, dsn, collection string, dimension int) (*Qdrant, error) {
	if collection == "" {
		return nil, fmt.Errorf("vectorindex: collection name is required")
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: parse dsn: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := parsed.Port()
	if port == "" {
		port = "6334"
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: invalid port in dsn: %w", err)
	}
	cfg := &qdrant.Config{Host: host, Port: portNum}
	if parsed.Scheme == "https" {
		cfg.UseTLS = true
	}
	if apiKey := parsed.Query().Get("api_key"); apiKey != "" {
		cfg.APIKey = apiKey
	}
	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: create client: %w", err)
	}
	q := &Qdrant{client: client, collection: collection, dimension: dimension}
	if err := q.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return q, nil
}

func (q *Qdrant) ensureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("vectorindex: check collection: %w", err)
	}
	if exists {
		return nil
	}
	if q.dimension <= 0 {
		return fmt.Errorf("vectorindex: dimension must be > 0 to create collection")
	}
	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("vectorindex: create collection: %w", err)
	}
	return nil
}

func pointUUID(chunkID string) string {
	if _, err := uuid.Parse(chunkID); err == nil {
		return chunkID
	}
	return uuid.NewSHA1(qdrantNamespace, []byte(chunkID)).String()
}

func (q *Qdrant) Add(ctx context.Context, items []Item) error {
	points := make([]*qdrant.PointStruct, 0, len(items))
	for _, it := range items {
		uuidStr := pointUUID(it.Chunk.ChunkID)
		meta := flattenMetadata(it.Chunk)
		if uuidStr != it.Chunk.ChunkID {
			meta[payloadIDField] = it.Chunk.ChunkID
		}
		vec := make([]float32, len(it.Vector))
		copy(vec, it.Vector)
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuidStr),
			Vectors: qdrant.NewVectorsDense(vec),
			Payload: qdrant.NewValueMap(meta),
		})
	}
	if len(points) == 0 {
		return nil
	}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{CollectionName: q.collection, Points: points})
	return err
}

func (q *Qdrant) RawSearch(ctx context.Context, vector []float32, k int, filter Filter) ([]Result, error) {
	if k <= 0 {
		k = 10
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)

	var queryFilter *qdrant.Filter
	must := stableFilterConditions(filter)
	if len(must) > 0 {
		queryFilter = &qdrant.Filter{Must: must}
	}

	limit := uint64(k)
	hits, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQueryDense(vec),
		Limit:          &limit,
		Filter:         queryFilter,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(hits))
	for _, hit := range hits {
		meta := map[string]string{}
		if hit.Payload != nil {
			for k, v := range hit.Payload {
				switch kind := v.GetKind().(type) {
				case *qdrant.Value_IntegerValue:
					meta[k] = strconv.FormatInt(kind.IntegerValue, 10)
				case *qdrant.Value_BoolValue:
					meta[k] = strconv.FormatBool(kind.BoolValue)
				default:
					meta[k] = v.GetStringValue()
				}
			}
		}
		c := unflattenMetadata(meta)
		if c.ChunkID == "" {
			c.ChunkID = meta[payloadIDField]
		}
		out = append(out, Result{ChunkID: c.ChunkID, Similarity: float64(hit.Score), Metadata: c})
	}
	return out, nil
}

func stableFilterConditions(f Filter) []*qdrant.Condition {
	var must []*qdrant.Condition
	if f.ContractID != "" {
		must = append(must, qdrant.NewMatch("contract_id", f.ContractID))
	}
	if f.DocType != "" {
		must = append(must, qdrant.NewMatch("doc_type", f.DocType))
	}
	return must
}

func (q *Qdrant) Count(ctx context.Context) (int, error) {
	info, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return 0, err
	}
	return int(info.GetPointsCount()), nil
}

func (q *Qdrant) Reset(ctx context.Context) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points:         qdrant.NewPointsSelectorFilter(&qdrant.Filter{}),
	})
	return err
}

// flattenMetadata serializes a chunk's list fields to comma-joined strings
// and scalar fields directly, per spec.md §4.5/§5.
func flattenMetadata(c chunk.Chunk) map[string]any {
	return map[string]any{
		"chunk_id":          c.ChunkID,
		"contract_id":       c.ContractID,
		"article_num":       c.ArticleNum,
		"article_title":     c.ArticleTitle,
		"section_num":       c.SectionNum,
		"subsection":        c.Subsection,
		"subsection_title":  c.SubsectionTitle,
		"citation":          c.Citation,
		"content":           c.Content,
		"doc_type":          string(c.DocType),
		"applies_to":        strings.Join(c.AppliesTo, ","),
		"topics":            strings.Join(c.Topics, ","),
		"worker_questions":  strings.Join(c.WorkerQuestions, ","),
		"alternative_names": strings.Join(c.AlternativeNames, ","),
		"is_high_stakes":    c.IsHighStakes,
	}
}

// unflattenMetadata reconstructs a chunk from the flat string payload read
// back from the store, splitting comma-joined list fields.
func unflattenMetadata(meta map[string]string) chunk.Chunk {
	c := chunk.Chunk{
		ChunkID:         meta["chunk_id"],
		ContractID:      meta["contract_id"],
		ArticleTitle:    meta["article_title"],
		SectionNum:      meta["section_num"],
		Subsection:      meta["subsection"],
		SubsectionTitle: meta["subsection_title"],
		Citation:        meta["citation"],
		Content:         meta["content"],
		DocType:         chunk.DocType(meta["doc_type"]),
	}
	if n, err := strconv.Atoi(meta["article_num"]); err == nil {
		c.ArticleNum = n
	}
	c.AppliesTo = splitNonEmpty(meta["applies_to"])
	c.Topics = splitNonEmpty(meta["topics"])
	c.WorkerQuestions = splitNonEmpty(meta["worker_questions"])
	c.AlternativeNames = splitNonEmpty(meta["alternative_names"])
	c.IsHighStakes = meta["is_high_stakes"] == "true"
	return c
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (q *Qdrant) Close() error { return q.client.Close() }
