package recommend

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
	"sort"

	"github.com/jonathan/news-recommender/internal/types"
)

// Fingerprint hashes everything the model and feature lookup depend on. It does not
// depend on article order.
func Fingerprint(articles []types.Article) uint64 {
	order := make([]int, len(articles))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return articles[order[i]].ID < articles[order[j]].ID
	})

	h := fnv.New64a()
	for _, i := range order {
		a := &articles[i]
		writeInt(h, a.ID)
		writeString(h, a.Title)
		writeString(h, a.Content)
		writeString(h, a.Summary)
		writeString(h, string(a.Category))
		writeString(h, string(a.PoliticalBias))
		writeInt(h, int64(math.Float64bits(a.SentimentScore)))
		writeInt(h, a.PublishedAt.UnixNano())
	}
	return h.Sum64()
}

// interactionDigest identifies an interaction history, in order.
func interactionDigest(interactions []types.InteractionEvent) uint64 {
	h := fnv.New64a()
	for i := range interactions {
		e := &interactions[i]
		writeInt(h, e.ArticleID)
		writeInt(h, int64(e.InteractionType))
		writeInt(h, e.Timestamp.UnixNano())
		writeString(h, string(e.Category))
		writeString(h, string(e.PoliticalBias))
	}
	return h.Sum64()
}

func writeInt(h hash.Hash64, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, _ = h.Write(buf[:])
}

// strings are length-prefixed so adjacent fields cannot run together
func writeString(h hash.Hash64, s string) {
	writeInt(h, int64(len(s)))
	_, _ = h.Write([]byte(s))
}
