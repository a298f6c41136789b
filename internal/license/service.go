package license

import (
	"context"

	"github.com/okian/spreadline/pkg/metrics"
)

// Checker is what the HTTP layer needs from the license subsystem.
type Checker interface {
	Check(ctx context.Context, key string) (Verification, error)
}

// verifyFunc lets the service call any verifier shape; tests substitute a
// counting stub here.
type verifyFunc func(ctx context.Context, key string) (Verification, error)

// Service is the cache-through license checker used per request.
type Service struct {
	cache  *Cache
	verify verifyFunc
}

// NewService wires a cache in front of a verifier.
func NewService(cache *Cache, verifier *Verifier) *Service {
	return &Service{cache: cache, verify: verifier.Verify}
}

// NewServiceFunc is NewService for an arbitrary verify function.
func NewServiceFunc(cache *Cache, verify verifyFunc) *Service {
	return &Service{cache: cache, verify: verify}
}

// Check returns the cached verification for key when fresh, otherwise asks
// the verifier and caches whatever verdict comes back. Verdicts are cached
// regardless of outcome so a hammering client with a bad key does not
// hammer the upstream.
func (s *Service) Check(ctx context.Context, key string) (Verification, error) {
	if v, ok := s.cache.Get(key); ok {
		metrics.RecordLicenseCacheHit()
		return v, nil
	}
	metrics.RecordLicenseCacheMiss()

	v, err := s.verify(ctx, key)
	if err != nil {
		return Verification{}, err
	}
	metrics.RecordLicenseVerdict(string(v.Verdict))
	s.cache.Set(key, v)
	return v, nil
}
