// Package fetcher downloads airline review pages and keeps them in a local
// HTML cache, one file per airline named after the airline's slug.
//
// A page is fetched with a single GET request. Any status other than 200 is
// reported as a *FetchError and the airline is skipped; there are no retries.
// The presence of a cached file is the only signal the extraction stage uses
// to decide whether an airline has data.
package fetcher
