// Package extractor turns cached review pages into review records.
//
// Extractor reads the review containers of one page and yields at most a
// fixed number of records, in document order, waiting a minimum interval
// between records. Consolidator runs the Extractor over every configured
// airline whose page is cached and labels each record with its airline.
package extractor
