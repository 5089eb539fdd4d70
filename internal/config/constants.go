package config

import (
	"time"

	"energycli/pkg/contracts"
)

// Application constants
const (
	AppName    = "energy"
	AppVersion = contracts.Version

	// Source kinds
	SourceOWID  = "owid"
	SourceEmber = "ember"
	SourceFile  = "file"

	// Storage backends
	StorageFile  = "file"
	StorageMySQL = "mysql"

	// Publisher kinds
	PublishNone  = "none"
	PublishKafka = "kafka"
	PublishMQTT  = "mqtt"

	DefaultPublishTopic = "energy.summary"

	DefaultOWIDURL      = "https://raw.githubusercontent.com/owid/energy-data/master/owid-energy-data.csv"
	DefaultEmberBaseURL = "https://api.ember-energy.org"
	DefaultEntity       = "CHN"
	DefaultWindowYears  = 5
	DefaultHTTPTimeout  = 2 * time.Minute

	// File paths (relative to the base directory)
	DefaultDataDir     = "data"
	DefaultLogsDir     = "logs"
	DefaultExportsDir  = "data/exports"
	DefaultSummaryFile = "china-energy-summary.json"

	// SummaryFormat tags the persisted envelope.
	SummaryFormat = contracts.DataFormatVersion
)
