package prefs

import "sync"

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache shares a compiled-program cache across evaluations.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *prefsConfig) {
		cfg.programCache = cache
	}
}

// MapProgramCache is an unbounded ProgramCache. Rule sets are fixed at startup,
// so the number of entries is bounded by the configured rules.
type MapProgramCache struct {
	entries sync.Map
}

// NewMapProgramCache returns an empty cache.
func NewMapProgramCache() *MapProgramCache {
	return &MapProgramCache{}
}

func (c *MapProgramCache) Get(key string) (any, bool) {
	return c.entries.Load(key)
}

func (c *MapProgramCache) Set(key string, value any) {
	c.entries.Store(key, value)
}
