package memory

import (
	"time"

	"ai-docchat-be/internal/dto"

	"github.com/patrickmn/go-cache"
)

// SummaryCache holds per-user session listings between writes. Entries
// are short lived and dropped eagerly on save/delete, so staleness is
// bounded to the TTL in the worst case.
type SummaryCache struct {
	cache *cache.Cache
}

func NewSummaryCache() *SummaryCache {
	c := cache.New(1*time.Minute, 5*time.Minute)
	return &SummaryCache{
		cache: c,
	}
}

func (r *SummaryCache) Get(userId string) ([]*dto.SessionSummaryResponse, bool) {
	if x, found := r.cache.Get(userId); found {
		return x.([]*dto.SessionSummaryResponse), true
	}
	return nil, false
}

func (r *SummaryCache) Save(userId string, summaries []*dto.SessionSummaryResponse) {
	r.cache.Set(userId, summaries, cache.DefaultExpiration)
}

func (r *SummaryCache) Invalidate(userId string) {
	r.cache.Delete(userId)
}
