package usercfg

import (
	"time"

	"catfill/internal/textmatch"
)

const (
	DefaultUsersSheet     = "Users"
	DefaultSpellMinLength = 3
	DefaultCacheBackend   = "file"
	DefaultRedisAddr      = "localhost:6379"
	DefaultCacheTTL       = 5 * time.Minute
	DefaultDebounce       = 300 * time.Millisecond
)

func getDefaults() Config {
	return Config{
		SchemaVersion:  CurrentSchemaVersion,
		UsersSheet:     DefaultUsersSheet,
		FuzzyThreshold: textmatch.DefaultFuzzyThreshold,
		RelativeCutoff: textmatch.DefaultRelativeCutoff,
		SpellMinLength: DefaultSpellMinLength,
		SearchCutoff:   textmatch.DefaultSearchCutoff,
		Cache: CacheConfig{
			Backend:   DefaultCacheBackend,
			TTL:       DefaultCacheTTL.String(),
			RedisAddr: DefaultRedisAddr,
		},
		Debounce: DefaultDebounce.String(),
	}
}
