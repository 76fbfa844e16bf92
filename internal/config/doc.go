// Package config provides the configuration of an airscrape run: which airlines
// are scraped and from where, how records are extracted and throttled, which
// terms mark delay complaints, and how the report is written.
//
// Values come from NewConfig defaults, an optional .airscrape YAML file and CLI
// flags, applied in that order.
package config
