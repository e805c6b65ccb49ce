package influx

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/womat/debug"

	"meterbilling/pkg/billing"
)

const defaultMeasurement = "billing"

// Writer provides API to communicate with InfluxDBServer
type Writer struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPI
	measurement string
	tags        map[string]string
	timestamp   time.Time
}

// New create an API to communicate with InfluxDBServer
func New() *Writer {
	return &Writer{
		measurement: defaultMeasurement,
		tags:        map[string]string{},
	}
}

// SetMeasurement set Measurement for a Point.
func (w *Writer) SetMeasurement(m string) {
	if m != "" {
		w.measurement = m
	}
}

// SetTime set timestamp for a Point.
func (w *Writer) SetTime(timestamp time.Time) {
	w.timestamp = timestamp
}

// AddTag adds a tag to all points.
func (w *Writer) AddTag(k, v string) {
	w.tags[k] = v
}

// Open opens a writer to an influx DB
// serverURL is the InfluxDB server base URL, e.g. http://localhost:8086,
// Use the form username:password for an authentication token.
// Use an empty string ("") if the server doesn't require authentication.
func (w *Writer) Open(serverURL, authToken, bucket string) {
	w.client = influxdb2.NewClient(serverURL, authToken)
	w.writeAPI = w.client.WriteAPI("", bucket)
}

// WriteRows writes one point per meter, tagged with the meter id and the account number.
// Meters without account get no account tag and no balance field.
func (w *Writer) WriteRows(rows []billing.Row) {
	for _, r := range rows {
		tags := make(map[string]string, len(w.tags)+2)
		for k, v := range w.tags {
			tags[k] = v
		}
		tags["meter"] = strconv.Itoa(r.ID)

		fields := map[string]interface{}{"consumption": r.Consumption}
		if r.HasAccount {
			tags["account"] = r.Account
			fields["balance"] = r.Balance
		}

		w.writeAPI.WritePoint(influxdb2.NewPoint(w.measurement, tags, fields, w.timestamp))
	}
	debug.DebugLog.Printf("influx: %v points of %q queued\n", len(rows), w.measurement)
}

// Close force all unwritten data to be sent and close
func (w *Writer) Close() {
	w.writeAPI.Flush()
	w.client.Close()
}
