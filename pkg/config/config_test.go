package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/womat/debug"

	"meterbilling/global"
)

const testConfig = `
unitprice: 3
timeout: 2s
debug:
  file: stdout
  flag: standard
accounts:
  - number: "12345678"
    balance: 500
  - number: "93230182"
    balance: 300
    deposits: [10, 20.5]
    locked: true
meters:
  - id: 101
    account: "12345678"
    readings: [50.5, 2]
  - id: 102
    account: "93230182"
source:
  type: file
  connection: readings.csv
webserver:
  active: true
  port: 4000
  webservices:
    version: true
    currentdata: true
csv:
  active: true
  path: /tmp
influx:
  serverurl: http://localhost:8086
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	fileName := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(fileName, []byte(content), 0o644))
	return fileName
}

func TestLoad(t *testing.T) {
	conf, err := Load([]string{"--config", writeConfig(t, testConfig)})
	require.NoError(t, err)

	assert.Equal(t, 3.0, conf.UnitPrice)
	assert.Equal(t, 2*time.Second, conf.Timeout)
	assert.Equal(t, debug.Standard, conf.Debug.Flag)
	assert.Equal(t, os.Stdout, conf.Debug.File)

	assert.Equal(t, []global.AccountConf{
		{Number: "12345678", Balance: 500},
		{Number: "93230182", Balance: 300, Deposits: []float64{10, 20.5}, Locked: true},
	}, conf.Accounts)
	assert.Equal(t, []global.MeterConf{
		{ID: 101, Account: "12345678", Readings: []float64{50.5, 2}},
		{ID: 102, Account: "93230182"},
	}, conf.Meters)

	assert.Equal(t, global.SourceConf{Type: "file", Connection: "readings.csv"}, conf.Source)
	assert.Equal(t, "reporte.txt", conf.Report.File)
	assert.True(t, conf.Webserver.Active)
	assert.Equal(t, 4000, conf.Webserver.Port)
	assert.True(t, conf.Webserver.Webservices["currentdata"])
	assert.Equal(t, "/tmp", conf.Csv.Path)
	assert.Equal(t, "Billing_yyyymm.csv", conf.Csv.FilenameFormat)
	assert.Equal(t, ";", conf.Csv.Separator)
	assert.Equal(t, "billing", conf.Influx.Measurement)
}

func TestLoadDefaults(t *testing.T) {
	conf, err := Load([]string{"--config", writeConfig(t, "accounts: []\n")})
	require.NoError(t, err)

	assert.Equal(t, defaultUnitPrice, conf.UnitPrice)
	assert.Equal(t, defaultTimeout, conf.Timeout)
	assert.Equal(t, "static", conf.Source.Type)
	assert.Equal(t, os.Stderr, conf.Debug.File)
	assert.Equal(t, 0, conf.Debug.Flag)
	assert.NotNil(t, conf.Webserver.Webservices)
}

func TestLoadReportFlag(t *testing.T) {
	conf, err := Load([]string{"--config", writeConfig(t, testConfig), "--report.file", "/tmp/other.txt"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.txt", conf.Report.File)
}

func TestLoadDebugFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "meterbilling.log")
	conf, err := Load([]string{"--config", writeConfig(t, testConfig), "--debug.file", logFile, "--debug.flag", "trace"})
	require.NoError(t, err)
	defer conf.Debug.File.Close()

	assert.Equal(t, debug.Full, conf.Debug.Flag)
	_, err = os.Stat(logFile)
	assert.NoError(t, err)
}

func TestLoadVersion(t *testing.T) {
	_, err := Load([]string{"--version"})
	assert.True(t, errors.Is(err, ErrVersion))
}

func TestLoadMissingConfig(t *testing.T) {
	_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestLoadUnknownFlag(t *testing.T) {
	_, err := Load([]string{"--unknown"})
	assert.Error(t, err)
}
