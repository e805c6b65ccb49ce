package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/womat/debug"

	"meterbilling/global"
	"meterbilling/pkg/billing"
	"meterbilling/pkg/config"
	"meterbilling/pkg/csv"
	"meterbilling/pkg/energy"
	"meterbilling/pkg/influx"
	"meterbilling/pkg/mbclient"
	"meterbilling/pkg/readingfile"
	"meterbilling/pkg/report"
	"meterbilling/pkg/s0counter"
	"meterbilling/pkg/static"
	"meterbilling/pkg/webservice"
)

func main() {
	conf, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrVersion) {
		fmt.Printf("Version: %v\n", global.VERSION)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	global.Config = conf
	debug.SetDebug(global.Config.Debug.File, global.Config.Debug.Flag)

	site, err := billing.Build(global.Config)
	if err != nil {
		debug.ErrorLog.Println(err)
		os.Exit(1)
	}

	if global.Config.Webserver.Active {
		webservice.Start(site, global.Config.Webserver)
	}

	if err := run(site, &global.Config); err != nil {
		debug.ErrorLog.Println(err)
		os.Exit(1)
	}

	if global.Config.Webserver.Active {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
	}
}

// run applies the readings of the configured source and writes the report and all active exports.
func run(site *billing.Site, conf *global.Configuration) error {
	runTime := time.Now()

	src, err := newSource(conf)
	if err != nil {
		return err
	}
	if err := src.Open(conf.Source.Connection); err != nil {
		return fmt.Errorf("open %v source %q: %w", src, conf.Source.Connection, err)
	}
	defer src.Close()

	site.Apply(src, conf.UnitPrice)
	debug.InfoLog.Println("runtime to apply readings: ", time.Since(runTime))
	runTime = time.Now()

	rows := site.Rows()
	if err := report.WriteFile(conf.Report.File, rows); err != nil {
		return err
	}

	if conf.Csv.Active {
		if err := WriteToCSV(site.Time, rows, conf); err != nil {
			debug.ErrorLog.Printf("writing to CSV File: %v\n", err)
		}
	}
	if conf.Influx.Active {
		WriteToInflux(site.Time, rows, conf)
	}

	debug.InfoLog.Println("runtime to write data: ", time.Since(runTime))
	return nil
}

func newSource(conf *global.Configuration) (energy.Source, error) {
	switch t := conf.Source.Type; t {
	case "static", "":
		return static.New(conf.Meters), nil
	case "file":
		return readingfile.New(), nil
	case "s0counter":
		return s0counter.NewClient(), nil
	case "mbclient":
		return mbclient.NewClient(), nil
	default:
		return nil, fmt.Errorf("source type %v is not supported", t)
	}
}

func WriteToCSV(t time.Time, rows []billing.Row, conf *global.Configuration) error {
	csvFileName := path.Join(conf.Csv.Path, csv.FileName(conf.Csv.FilenameFormat, t))
	csvWriter := csv.New()
	if conf.Csv.Separator != "" {
		csvWriter.ValueSeparator = rune(conf.Csv.Separator[0])
	}
	if conf.Csv.DecimalSeparator != "" {
		csvWriter.DecimalSeparator = rune(conf.Csv.DecimalSeparator[0])
	}
	if conf.Csv.Dateformat != "" {
		csvWriter.DateFormat = conf.Csv.Dateformat
	}

	if err := csvWriter.Open(csvFileName); err != nil {
		return fmt.Errorf("open file %v: %w", csvFileName, err)
	}
	defer csvWriter.Close()

	if err := csvWriter.WriteRows(t, rows); err != nil {
		return fmt.Errorf("write csv file: %w", err)
	}
	return nil
}

func WriteToInflux(t time.Time, rows []billing.Row, conf *global.Configuration) {
	influxClient := influx.New()
	influxClient.Open(conf.Influx.ServerURL, fmt.Sprintf("%s:%s", conf.Influx.User, conf.Influx.Password), conf.Influx.Database)
	defer influxClient.Close()

	if conf.Influx.Location != "" {
		influxClient.AddTag("location", conf.Influx.Location)
	}
	influxClient.SetMeasurement(conf.Influx.Measurement)
	influxClient.SetTime(t)
	influxClient.WriteRows(rows)
}
