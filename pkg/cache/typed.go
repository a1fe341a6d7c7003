package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Typed хранит значения T в кэше в виде JSON под общим префиксом ключей
type Typed[T any] struct {
	cache      Cache
	prefix     string
	defaultTTL time.Duration
}

// NewTyped создаёт типизированную обёртку над кэшем
func NewTyped[T any](c Cache, prefix string, defaultTTL time.Duration) *Typed[T] {
	return &Typed[T]{
		cache:      c,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

// Key полный ключ для id
func (t *Typed[T]) Key(id string) string {
	return t.prefix + ":" + id
}

// Get возвращает значение и признак попадания. Повреждённая запись удаляется
// и считается промахом.
func (t *Typed[T]) Get(ctx context.Context, id string) (*T, bool, error) {
	key := t.Key(id)

	data, err := t.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		_ = t.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}
	return &value, true, nil
}

// Set сохраняет значение, ttl <= 0 означает TTL по умолчанию
func (t *Typed[T]) Set(ctx context.Context, id string, value *T, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = t.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return t.cache.Set(ctx, t.Key(id), data, ttl)
}

// InvalidateAll удаляет все значения с префиксом
func (t *Typed[T]) InvalidateAll(ctx context.Context) (int64, error) {
	return t.cache.DeleteByPattern(ctx, t.prefix+":*")
}
