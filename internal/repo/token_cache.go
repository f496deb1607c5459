package repo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-gin-auth-service/internal/core/cache"
	"go-gin-auth-service/internal/domain"
)

// CachedTokenRepo puts a redis read-through cache in front of Get, the
// per-request validity lookup. Revocations and deletes overwrite the cached
// entry with the committed state; loads only fill empty keys, so a load that
// raced a revocation cannot restore the active row.
type CachedTokenRepo struct {
	domain.TokenRepository
	c   *cache.Cache
	ttl time.Duration
	log *zap.Logger
}

func NewCachedTokenRepo(next domain.TokenRepository, c *cache.Cache, ttl time.Duration, log *zap.Logger) *CachedTokenRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedTokenRepo{TokenRepository: next, c: c, ttl: ttl, log: log}
}

func tokenKey(id string) string { return "auth:token:" + id }

func (r *CachedTokenRepo) Get(ctx context.Context, id string) (*domain.Token, error) {
	return cache.GetOrLoadJSON(r.c, ctx, tokenKey(id), r.ttl, func(ctx context.Context) (*domain.Token, error) {
		return r.TokenRepository.Get(ctx, id)
	})
}

func (r *CachedTokenRepo) Create(ctx context.Context, t *domain.Token) error {
	if err := r.TokenRepository.Create(ctx, t); err != nil {
		return err
	}
	r.forget(ctx, t.ID)
	return nil
}

func (r *CachedTokenRepo) Update(ctx context.Context, id string, upd domain.TokenUpdate) (*domain.Token, error) {
	t, err := r.TokenRepository.Update(ctx, id, upd)
	if err != nil {
		r.forget(ctx, id)
		return nil, err
	}
	r.store(ctx, map[string]*domain.Token{tokenKey(id): t})
	return t, nil
}

func (r *CachedTokenRepo) Delete(ctx context.Context, id string) error {
	if err := r.TokenRepository.Delete(ctx, id); err != nil {
		r.forget(ctx, id)
		return err
	}
	r.store(ctx, map[string]*domain.Token{tokenKey(id): nil})
	return nil
}

func (r *CachedTokenRepo) DeactivateByUser(ctx context.Context, userID string) (int64, error) {
	n, err := r.TokenRepository.DeactivateByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	toks, err := r.TokenRepository.ListByUser(ctx, userID)
	if err != nil {
		r.log.Warn("token cache refresh skipped", zap.String("user_id", userID), zap.Error(err))
		return n, nil
	}
	vals := make(map[string]*domain.Token, len(toks))
	for i := range toks {
		vals[tokenKey(toks[i].ID)] = &toks[i]
	}
	r.store(ctx, vals)
	return n, nil
}

// store overwrites cached entries with committed state. A nil token is
// cached as absent.
func (r *CachedTokenRepo) store(ctx context.Context, vals map[string]*domain.Token) {
	if err := cache.SetJSON(r.c, ctx, vals, r.ttl); err != nil {
		keys := make([]string, 0, len(vals))
		for k := range vals {
			keys = append(keys, k)
		}
		r.log.Warn("token cache write failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (r *CachedTokenRepo) forget(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = tokenKey(id)
	}
	if err := r.c.Del(ctx, keys...); err != nil {
		r.log.Warn("token cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
