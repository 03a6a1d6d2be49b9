package config

import "time"

// CacheConfig drives the Redis response cache placed in front of the public
// carpool listings.  Listings change whenever someone joins or leaves, so
// the TTL is kept short.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool // cached HTTP methods, upper-case
	TTL          time.Duration
	KeyStrategy  string // route, method_route, route_query (default), method_route_query
	Prefix       string
	MaxBodyBytes int // responses larger than this are not stored
}

// LoadCacheConfig reads the CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      envSet("CACHE_METHODS", "GET"),
		TTL:          envDur("CACHE_TTL", 15*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "orgatagova:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Second
	}
	return cfg
}
