// Package database provides SQLite-based run history for airscrape.
//
// The HistoryDB stores:
//   - the latest download of every airline page, with its status and hash
//   - every completed run as JSON, with summary columns for listing
//
// SQLite is used via modernc.org/sqlite, so the database is a single
// CGO-free file under the XDG data directory.
package database
