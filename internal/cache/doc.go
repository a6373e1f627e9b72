// Package cache provides a small generic LRU cache.
//
// The cookie pipeline uses it to keep decoded and resampled overlay masks
// keyed by asset name and target size, so repeated runs against images of
// the same dimensions do not decode the mask again.
//
//	c := cache.New[string, int](8)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
