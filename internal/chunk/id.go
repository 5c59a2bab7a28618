package chunk

import (
	"strconv"

	"github.com/google/uuid"
)

// chunkNamespace is a fixed UUID namespace so chunk ids are stable across
// re-ingestion of the same content, mirroring the deterministic-UUID trick
// the teacher's qdrant vector store uses for point ids
// (internal/persistence/databases/qdrant_vector.go).
var chunkNamespace = uuid.MustParse("2f1a9b3e-7d4a-4e8a-9b1a-9a1c2e9a7b10")

// NewID derives a stable chunk_id from the contract id and the chunk's
// citation plus an ordinal disambiguator (for chunks sharing a citation,
// e.g. paragraph splits "part1, part2, ..."). Re-ingesting identical
// content yields identical ids.
func NewID(contractID, citation string, ordinal int) string {
	key := contractID + "|" + citation
	if ordinal > 0 {
		key += "|#" + strconv.Itoa(ordinal)
	}
	return uuid.NewSHA1(chunkNamespace, []byte(key)).String()
}
