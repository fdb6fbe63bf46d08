package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// CredentialBundle holds decrypted provider keys for one user. Lives only
// in process memory; the durable store never sees plaintext.
type CredentialBundle struct {
	GeminiKey *string
	GrokKey   *string
}

// CredentialCache keeps decrypted bundles for a short window so busy
// conversations do not pay the decrypt cost on every turn.
type CredentialCache struct {
	cache *cache.Cache
}

func NewCredentialCache() *CredentialCache {
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &CredentialCache{
		cache: c,
	}
}

func (r *CredentialCache) Get(userId string) (*CredentialBundle, bool) {
	if x, found := r.cache.Get(userId); found {
		return x.(*CredentialBundle), true
	}
	return nil, false
}

func (r *CredentialCache) Save(userId string, bundle *CredentialBundle) {
	r.cache.Set(userId, bundle, cache.DefaultExpiration)
}

// Invalidate drops a user's bundle, called when stored keys change.
func (r *CredentialCache) Invalidate(userId string) {
	r.cache.Delete(userId)
}
