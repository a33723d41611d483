// Package httputil fetches dataset documents over HTTP.
//
// # Overview
//
//   - [Client]: GET with default headers, a timeout, retries and an optional
//     revalidating response cache
//   - [Cache]: file-based store of JSON values with a TTL
//   - [Retry]: retry with exponential backoff for [RetryableError]s
//
// # Caching
//
// When a [Client] has a [Cache], a fresh entry is served without touching the
// network. An expired entry is revalidated with If-None-Match and
// If-Modified-Since; a 304 refreshes it in place. If the origin cannot be
// reached at all, the stale body is served and the response is marked
// [SourceStale] so callers can warn.
//
//	cache, _ := httputil.NewCache("", 24*time.Hour)
//	client := httputil.NewClient(httputil.WithCache(cache))
//	resp, err := client.GetBytes(ctx, url)
//
// # Retry
//
// Network errors, 5xx responses and 429 rate limits are wrapped in
// [RetryableError] and retried: 3 attempts, 1 second initial delay, doubling.
// 404 is reported as [ErrNotFound] immediately.
//
// # Configuration
//
//   - Cache directory: ~/.cache/treemap/http
//   - Timeout: 10 seconds
//   - Body limit: 32 MiB
package httputil
