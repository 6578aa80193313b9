// File: utils/constants.go
package utils

import "time"

// ProviderCachePrefix is the prefix used for Redis provider snapshot cache keys.
const ProviderCachePrefix = "provider:"

// ProviderCacheTTL is the time-to-live for provider snapshot cache entries.
// Kept short so a suspension is consulted on the next booking action quickly.
const ProviderCacheTTL = 30 * time.Second
