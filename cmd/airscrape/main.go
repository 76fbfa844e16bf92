// Package main provides the entry point for the airscrape CLI.
//
// airscrape downloads airline review pages, consolidates the reviews into a
// flat file, and reports sentiment and delay complaint statistics.
//
// Usage:
//
//	airscrape run
//	airscrape run --offline "British Airways" Emirates
//	airscrape history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
