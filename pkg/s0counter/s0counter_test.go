package s0counter

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/womat/debug"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, 0)
	os.Exit(m.Run())
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(s.Close)
	return s, &calls
}

func TestReadings(t *testing.T) {
	s, calls := newServer(t, http.StatusOK, `{"101":{"MeterReading":50.5,"UnitMeterReading":"kWh"},"102":{"MeterReading":30.25}}`)

	c := NewClient()
	require.NoError(t, c.Open(s.URL+"/currentdata timeout:1000"))
	defer c.Close()

	got, err := c.Readings(101)
	assert.NoError(t, err)
	assert.Equal(t, []float64{50.5}, got)

	got, err = c.Readings(102)
	assert.NoError(t, err)
	assert.Equal(t, []float64{30.25}, got)

	// second meter is served from the cache
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	_, err = c.Readings(103)
	assert.Error(t, err)
}

func TestReadingsScaleFactor(t *testing.T) {
	s, _ := newServer(t, http.StatusOK, `{"101":{"MeterReading":50500}}`)

	c := NewClient()
	require.NoError(t, c.Open(s.URL+" sf:-3"))

	got, err := c.Readings(101)
	assert.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 50.5, got[0], 1e-9)
}

func TestReadingsServerError(t *testing.T) {
	s, calls := newServer(t, http.StatusInternalServerError, `boom`)

	c := NewClient()
	require.NoError(t, c.Open(s.URL))

	_, err := c.Readings(101)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestReadingsInvalidJSON(t *testing.T) {
	s, _ := newServer(t, http.StatusOK, `{"101":`)

	c := NewClient()
	require.NoError(t, c.Open(s.URL))

	_, err := c.Readings(101)
	assert.Error(t, err)
}

func TestOpenWithoutURL(t *testing.T) {
	c := NewClient()
	assert.Error(t, c.Open("timeout:1000"))
}
