package common

const (
	// RedisKeyQuotePrefix prefixes the per-symbol quote cache entries.
	RedisKeyQuotePrefix = "quote:"
)
