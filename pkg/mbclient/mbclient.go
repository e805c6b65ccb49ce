package mbclient

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goburrow/modbus"
	"github.com/womat/debug"
	"github.com/womat/tools"
)

const (
	_nil = iota
	_sint16
	_sint32
	_sint64
	_uint16
	_uint32
	_uint64
	_float32
)

var ErrTimeOut = errors.New("mbclient: timeout during receive data")

// Client reads the consumption of each meter from a modbus tcp device.
// The meter id is the address of the holding register that holds its consumption.
type Client struct {
	connectionString string
	timeout          time.Duration
	deviceID         uint8
	maxRetries       int
	format           int
	scaleFactor      int
}

func NewClient() (c *Client) {
	return &Client{
		timeout: time.Second,
		format:  _uint16,
	}
}

func (c *Client) String() string {
	return "mbclient"
}

// Open parses a connection string, the device address comes first:
//  192.168.65.1:502 deviceid:1 timeout:1000 maxretries:2 uint32 sf:-2
func (c *Client) Open(connectionString string) (err error) {
	fields := strings.Fields(connectionString)
	if len(fields) == 0 || strings.Contains(fields[0], "//") || !strings.Contains(fields[0], ":") {
		return fmt.Errorf("mbclient: no device address in connection string %q", connectionString)
	}
	c.connectionString = fields[0]

	var deviceID int
	_ = tools.GetField(&deviceID, connectionString, "deviceid")
	_ = tools.GetField(&c.timeout, connectionString, "timeout")
	_ = tools.GetField(&c.maxRetries, connectionString, "maxretries")
	_ = tools.GetField(&c.scaleFactor, connectionString, "sf")
	c.deviceID = uint8(deviceID)

	// the register format is a bare word, eg uint32
	for _, field := range fields[1:] {
		if f := formatOf(field); f != _nil {
			c.format = f
		}
	}
	return
}

// Readings returns the register value of meterID as one consumption reading.
func (c *Client) Readings(meterID int) ([]float64, error) {
	if meterID < 0 || meterID > math.MaxUint16 {
		return nil, fmt.Errorf("mbclient: meter id %v is no register address", meterID)
	}

	q := quantity(c.format)
	for retryCounter := 0; ; retryCounter++ {
		data, err := c.get(uint16(meterID), q)
		if err != nil {
			if retryCounter >= c.maxRetries {
				debug.ErrorLog.Printf("error to receive client data: %v\n", err)
				return nil, err
			}

			debug.WarningLog.Printf("error to receive client data: %v\n", err)
			time.Sleep(c.timeout / 2)
			continue
		}

		if len(data) < q*2 {
			return nil, fmt.Errorf("mbclient: short response of %v bytes", len(data))
		}

		var v float64
		switch d := data[0 : q*2]; c.format {
		case _sint16:
			v = float64(int16(binary.BigEndian.Uint16(d)))
		case _sint32:
			v = float64(int32(binary.BigEndian.Uint32(d)))
		case _sint64:
			v = float64(int64(binary.BigEndian.Uint64(d)))
		case _uint16:
			v = float64(binary.BigEndian.Uint16(d))
		case _uint32:
			v = float64(binary.BigEndian.Uint32(d))
		case _uint64:
			v = float64(binary.BigEndian.Uint64(d))
		case _float32:
			v = float64(math.Float32frombits(binary.BigEndian.Uint32(d)))
		}

		debug.TraceLog.Printf("register %v: %v\n", meterID, v)
		return []float64{v * math.Pow10(c.scaleFactor)}, nil
	}
}

func formatOf(format string) int {
	switch format {
	case "sint16":
		return _sint16
	case "sint32":
		return _sint32
	case "sint64":
		return _sint64
	case "uint16":
		return _uint16
	case "uint32":
		return _uint32
	case "uint64":
		return _uint64
	case "float32":
		return _float32
	}
	return _nil
}

func quantity(format int) int {
	switch format {
	case _sint16, _uint16:
		return 1
	case _sint32, _uint32, _float32:
		return 2
	case _sint64, _uint64:
		return 4
	}
	return 0
}

func (c *Client) get(address uint16, quantity int) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var r result
		defer func() { done <- r }()

		clientHandler := modbus.NewTCPClientHandler(c.connectionString)
		clientHandler.SlaveId = c.deviceID
		clientHandler.Timeout = c.timeout

		if r.err = clientHandler.Connect(); r.err != nil {
			return
		}
		defer clientHandler.Close()

		client := modbus.NewClient(clientHandler)
		r.data, r.err = client.ReadHoldingRegisters(address, uint16(quantity))
	}()

	// wait for Modbus Data
	select {
	case r := <-done:
		return r.data, r.err
	case <-time.After(c.timeout):
		return nil, ErrTimeOut
	}
}

func (c *Client) Close() (err error) {
	return
}
