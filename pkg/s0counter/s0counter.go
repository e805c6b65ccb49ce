package s0counter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/womat/debug"
	"github.com/womat/tools"
)

var ErrTimeOut = errors.New("s0counter: timeout during receive data")

// ClientData stores receive data form s0counter web request
type ClientData struct {
	Timestamp        time.Time `json:"TimeStamp"`
	MeterReading     float64   `json:"MeterReading"`
	UnitMeterReading string    `json:"UnitMeterReading"`
	Flow             float64   `json:"Flow"`
	UnitFlow         string    `json:"UnitFlow"`
}

// Client structure contains all Properties of a connection
// The s0counter answers with one ClientData per counter, the key is the meter id.
type Client struct {
	connectionString string
	timeout          time.Duration
	cacheTime        time.Duration
	maxRetries       int
	scaleFactor      int
	cache            map[string]ClientData
	lastRead         time.Time
}

// NewClient creates a new Client handler
func NewClient() (c *Client) {
	return &Client{
		timeout:   time.Second,
		cacheTime: time.Second,
		cache:     map[string]ClientData{},
	}
}

func (c *Client) String() string {
	return "s0counter"
}

// Open parses a connection string, the url comes first:
//  http://192.168.65.1:4000/currentdata timeout:1000 cachetime:1000 maxretries:2 sf:-3
func (c *Client) Open(connectionString string) (err error) {
	if fields := strings.Fields(connectionString); len(fields) > 0 && strings.HasPrefix(fields[0], "http") {
		c.connectionString = fields[0]
	}
	_ = tools.GetField(&c.timeout, connectionString, "timeout")
	_ = tools.GetField(&c.cacheTime, connectionString, "cachetime")
	_ = tools.GetField(&c.maxRetries, connectionString, "maxretries")
	_ = tools.GetField(&c.scaleFactor, connectionString, "sf")

	if c.connectionString == "" {
		return fmt.Errorf("s0counter: no url in connection string %q", connectionString)
	}
	return
}

// Readings returns the current meter reading of meterID as one consumption reading.
func (c *Client) Readings(meterID int) ([]float64, error) {
	key := strconv.Itoa(meterID)

	if time.Now().After(c.lastRead.Add(c.cacheTime)) {
		debug.TraceLog.Printf("key %q is not cached\n", key)

		for retryCounter := 0; ; retryCounter++ {
			val, err := c.get(c.connectionString)
			if err != nil {
				if retryCounter >= c.maxRetries {
					debug.ErrorLog.Printf("error to receive client data: %v\n", err)
					return nil, err
				}

				debug.WarningLog.Printf("error to receive client data: %v\n", err)
				time.Sleep(c.timeout / 2)
				continue
			}

			c.cache, c.lastRead = val, time.Now()
			break
		}
	} else {
		debug.TraceLog.Printf("key %q is cached\n", key)
	}

	data, ok := c.cache[key]
	if !ok {
		return nil, fmt.Errorf("s0counter: unknown meter: %v", meterID)
	}

	return []float64{data.MeterReading * math.Pow10(c.scaleFactor)}, nil
}

func (c *Client) get(connectionString string) (val map[string]ClientData, err error) {
	type result struct {
		val map[string]ClientData
		err error
	}
	done := make(chan result, 1)

	go func() {
		var r result
		defer func() { done <- r }()

		debug.DebugLog.Printf("performing http get: %q\n", connectionString)

		resp, err := http.Get(connectionString)
		if err != nil {
			r.err = err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			r.err = fmt.Errorf("s0counter: unexpected status %v", resp.Status)
			return
		}

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			r.err = err
			return
		}
		r.err = json.Unmarshal(bodyBytes, &r.val)
	}()

	// wait for API Data
	select {
	case r := <-done:
		val, err = r.val, r.err
	case <-time.After(c.timeout):
		return nil, ErrTimeOut
	}

	if err != nil {
		return nil, err
	}

	debug.TraceLog.Printf("api response: %+v\n", val)
	return val, nil
}

func (c *Client) Close() (err error) {
	c.cache = map[string]ClientData{}
	c.lastRead = time.Time{}
	return
}
