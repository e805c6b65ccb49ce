package global

import (
	"io"
	"time"
)

// VERSION holds the version information with the following logic in mind
//  1 ... fixed
//  0 ... year 2020, 1->year 2021, etc.
//  7 ... month of year (7=July)
//  the date format after the + is always the first of the month
//
// VERSION differs from semantic versioning as described in https://semver.org/
// but we keep the correct syntax.
const VERSION = "1.0.6+20211001"
const MODULE = "meterbilling"

type DebugConf struct {
	File io.WriteCloser
	Flag int
}

// AccountConf describes an account created at startup.
type AccountConf struct {
	Number   string
	Balance  float64
	Deposits []float64
	Locked   bool
}

// MeterConf binds a meter id to an account number.
// Readings are only used by the static source.
type MeterConf struct {
	ID       int
	Account  string
	Readings []float64
}

// SourceConf selects where meter readings come from (static | file | s0counter).
type SourceConf struct {
	Type       string
	Connection string
}

type ReportConf struct {
	File string
}

type WebserverConf struct {
	Active      bool
	Port        int
	Webservices map[string]bool
}

type CsvConf struct {
	Active           bool
	Path             string
	FilenameFormat   string
	Separator        string
	DecimalSeparator string
	Dateformat       string
}

type InfluxConf struct {
	Active      bool
	ServerURL   string
	User        string
	Password    string
	Location    string
	Database    string
	Measurement string
}

type Configuration struct {
	UnitPrice float64
	Timeout   time.Duration
	Debug     DebugConf
	Accounts  []AccountConf
	Meters    []MeterConf
	Source    SourceConf
	Report    ReportConf
	Webserver WebserverConf
	Csv       CsvConf
	Influx    InfluxConf
}

// Config holds the global configuration
var Config Configuration

func init() {
	Config = Configuration{
		Webserver: WebserverConf{Webservices: map[string]bool{}},
	}
}
