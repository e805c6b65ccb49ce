package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/womat/debug"

	"meterbilling/global"
	"meterbilling/pkg/tools"
)

// ErrVersion is returned by Load if only the version was requested.
var ErrVersion = errors.New("config: version requested")

const (
	defaultUnitPrice = 2.5
	defaultTimeout   = time.Second
	defaultReport    = "reporte.txt"
)

type yamlStruct struct {
	UnitPrice float64
	Timeout   time.Duration
	Debug     struct {
		File string
		Flag string
	}
	Accounts  []global.AccountConf
	Meters    []global.MeterConf
	Source    global.SourceConf
	Report    global.ReportConf
	Webserver global.WebserverConf
	Csv       global.CsvConf
	Influx    global.InfluxConf
}

// Load parses the command line args, reads the config file and returns the configuration.
// Without --config the file config.yaml is searched in . and /opt/womat/.
func Load(args []string) (global.Configuration, error) {
	conf := global.Configuration{Webserver: global.WebserverConf{Webservices: map[string]bool{}}}

	flags := pflag.NewFlagSet(global.MODULE, pflag.ContinueOnError)
	flags.Bool("version", false, "print version and exit")
	flags.String("debug.file", "stderr", "log file eg. /tmp/meterbilling.log")
	flags.String("debug.flag", "", "enable debug information (standard | trace | debug)")
	flags.String("config", "", "Config File eg. /opt/womat/config.yaml")
	flags.String("report.file", defaultReport, "report file eg. /tmp/reporte.txt")
	if err := flags.Parse(args); err != nil {
		return conf, err
	}

	v := viper.New()
	v.SetDefault("unitprice", defaultUnitPrice)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("source.type", "static")
	v.SetDefault("csv.filenameformat", "Billing_yyyymm.csv")
	v.SetDefault("csv.separator", ";")
	v.SetDefault("csv.decimalseparator", ",")
	v.SetDefault("csv.dateformat", "yyyy-mm-dd HH:MM:SS")
	v.SetDefault("influx.measurement", "billing")
	if err := v.BindPFlags(flags); err != nil {
		return conf, err
	}

	if v.GetBool("version") {
		return conf, ErrVersion
	}

	if f := v.GetString("config"); f != "" {
		v.SetConfigFile(f)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/opt/womat/")
	}

	if err := v.ReadInConfig(); err != nil {
		return conf, fmt.Errorf("error reading config file: %w", err)
	}

	var configFile yamlStruct
	if err := v.Unmarshal(&configFile); err != nil {
		return conf, fmt.Errorf("unable to decode into struct: %w", err)
	}

	file, err := debugFile(configFile.Debug.File)
	if err != nil {
		return conf, err
	}
	conf.Debug = global.DebugConf{File: file, Flag: debugFlag(configFile.Debug.Flag)}

	conf.UnitPrice = configFile.UnitPrice
	conf.Timeout = configFile.Timeout
	conf.Accounts = configFile.Accounts
	conf.Meters = configFile.Meters
	conf.Source = configFile.Source
	conf.Report = configFile.Report
	conf.Csv = configFile.Csv
	conf.Influx = configFile.Influx
	conf.Webserver = configFile.Webserver
	if conf.Webserver.Webservices == nil {
		conf.Webserver.Webservices = map[string]bool{}
	}

	return conf, nil
}

func debugFlag(flag string) int {
	switch flag {
	case "trace":
		return debug.Full
	case "debug":
		return debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		return debug.Standard
	}
	return 0
}

func debugFile(file string) (f *os.File, err error) {
	switch file {
	case "stderr", "":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}

	if !tools.FileExists(file) {
		if err = tools.CreateFile(file); err != nil {
			return nil, fmt.Errorf("create debug file %v: %w", file, err)
		}
	}
	if f, err = os.OpenFile(file, os.O_APPEND|os.O_WRONLY, 0o644); err != nil {
		return nil, fmt.Errorf("open debug file %v: %w", file, err)
	}
	return f, nil
}
