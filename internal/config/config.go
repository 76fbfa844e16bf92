package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The airline list, URL template, delay and record cap mirror the values the
// review site has been scraped with so far.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "airscrape"

	// AirlinePlaceholder is the token in URLTemplate replaced by the airline slug.
	AirlinePlaceholder = "{airline}"

	// DefaultURLTemplate is the review listing page of one airline.
	DefaultURLTemplate = "https://www.airlinequality.com/airline-reviews/" + AirlinePlaceholder + "/"

	// DefaultRobotsURL is the robots.txt consulted by the compliance check.
	DefaultRobotsURL = "https://www.airlinequality.com/robots.txt"

	// DefaultDataDir holds the downloaded HTML pages and the flat review file.
	DefaultDataDir = "data"

	// DefaultReviewsFile is the name of the consolidated review file inside DataDir.
	DefaultReviewsFile = "all_reviews.txt"

	// DefaultMaxReviews is the maximum number of review records taken from one page.
	DefaultMaxReviews = 20

	// DefaultExtractDelay is the minimum interval between two extracted records.
	// The first record of a run is never delayed.
	DefaultExtractDelay = 5 * time.Second

	// DefaultTopTerms is the number of most frequent terms listed per sentiment.
	DefaultTopTerms = 10

	// DefaultUserAgent identifies airscrape in HTTP requests.
	DefaultUserAgent = "airscrape/1.0 (+https://github.com/nao1215/airscrape)"

	// DefaultVerifiedTag is the literal verification tag the review site prints.
	DefaultVerifiedTag = "✅ Trip Verified"

	// DefaultNotVerifiedTag is stored when a review body carries no tag.
	DefaultNotVerifiedTag = "Not Verified"
)

// DefaultAirlines returns the airlines scraped when nothing else is configured.
// A fresh slice is returned on every call so callers may modify it.
func DefaultAirlines() []string {
	return []string{
		"British Airways",
		"Lufthansa",
		"Emirates",
		"Qatar",
		"Singapore Airlines",
		"American Airlines",
	}
}

// DefaultDelayKeywords returns the terms that mark a review as a delay complaint.
func DefaultDelayKeywords() []string {
	return []string{"delay", "delayed", "late", "cancellation", "cancelled"}
}

// Config holds all configuration options for airscrape.
// It is populated from defaults, the optional YAML file and CLI flags, in that
// order, and passed through the application explicitly.
type Config struct {
	// Airlines is the ordered list of airline display names to process.
	// The order decides the order of records in the consolidated file.
	Airlines []string

	// URLTemplate is the review page URL with AirlinePlaceholder in it.
	URLTemplate string

	// RobotsURL is the robots.txt location used by the compliance check.
	RobotsURL string

	// DataDir is where <slug>.html pages and the review file are written.
	DataDir string

	// ReviewsFile is the file name of the consolidated review file.
	ReviewsFile string

	// MaxReviews caps the number of records extracted from one page.
	MaxReviews int

	// ExtractDelay is the minimum interval between two extracted records.
	// Zero disables throttling.
	ExtractDelay time.Duration

	// DelayKeywords are matched against the cleaned text of negative reviews.
	DelayKeywords []string

	// Stopwords replaces the built-in English stop-word list when non-empty.
	Stopwords []string

	// VerifiedTag and NotVerifiedTag are the literals compared by the
	// verification statistics.
	VerifiedTag    string
	NotVerifiedTag string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// Offline skips the download step and works from pages already on disk.
	Offline bool

	// CheckRobots runs the robots.txt compliance check before downloading.
	CheckRobots bool

	// TopTerms is the number of frequent terms reported per sentiment.
	TopTerms int

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .airscrape is searched in the current and home directory.
	ConfigFilePath string

	// JSONReport and MarkdownReport select the report format.
	// They are mutually exclusive; the plain text report is the default.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path for the report. Stdout when empty.
	ReportFile string

	// DBDir is the directory of the run history database.
	// Defaults to the XDG data directory (~/.local/share/airscrape on Linux).
	DBDir string

	// SaveToDB indicates whether fetches and runs are recorded in the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Airlines:       DefaultAirlines(),
		URLTemplate:    DefaultURLTemplate,
		RobotsURL:      DefaultRobotsURL,
		DataDir:        DefaultDataDir,
		ReviewsFile:    DefaultReviewsFile,
		MaxReviews:     DefaultMaxReviews,
		ExtractDelay:   DefaultExtractDelay,
		DelayKeywords:  DefaultDelayKeywords(),
		VerifiedTag:    DefaultVerifiedTag,
		NotVerifiedTag: DefaultNotVerifiedTag,
		UserAgent:      DefaultUserAgent,
		TopTerms:       DefaultTopTerms,
		DBDir:          XDGDataDir(),
		SaveToDB:       true,
	}
}

// ReviewsPath returns the full path of the consolidated review file.
func (c *Config) ReviewsPath() string {
	return filepath.Join(c.DataDir, c.ReviewsFile)
}

// XDGDataDir returns the XDG data directory for airscrape.
// On Linux: ~/.local/share/airscrape
// On macOS: ~/Library/Application Support/airscrape
// On Windows: %LOCALAPPDATA%\airscrape
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for airscrape.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the package's sentinel errors.
func (c *Config) Validate() error {
	if len(c.Airlines) == 0 {
		return ErrNoAirlines
	}
	for _, a := range c.Airlines {
		if strings.TrimSpace(a) == "" {
			return ErrEmptyAirline
		}
	}

	if !strings.Contains(c.URLTemplate, AirlinePlaceholder) {
		return ErrInvalidURLTemplate
	}

	if c.MaxReviews <= 0 {
		return ErrInvalidMaxReviews
	}

	if c.ExtractDelay < 0 {
		return ErrInvalidDelay
	}

	if c.TopTerms < 0 {
		return ErrInvalidTopTerms
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.DataDir == "" || c.ReviewsFile == "" {
		return ErrNoDataDir
	}

	return nil
}
