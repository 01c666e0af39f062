// Package fetcher drives sequential page fetches against the listing API.
//
// The remote enforces per-client rate limits, so pages are requested one at
// a time with a politeness delay between them. Each page gets its own retry
// budget with unconditional exponential backoff; a page that exhausts its
// budget is skipped and leaves a permanent gap in the output sequence IDs.
//
// Example usage:
//
//	cfg := fetcher.DefaultConfig()
//	f := fetcher.New(apiClient, cfg)
//	records := f.FetchRange(ctx, 1, 200)
//
// The fetcher:
//   - Issues exactly one request at a time (no concurrency)
//   - Retries 429 and transient failures with 1s, 2s, 4s backoff
//   - Hands successful bodies to the extractor and accumulates records
//   - Never fails the run: a fully failed run returns an empty slice
package fetcher
