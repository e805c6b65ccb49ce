package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/womat/debug"

	"meterbilling/pkg/billing"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, 0)
	os.Exit(m.Run())
}

const expectHeader = "ID        Consumo Total  Número de cuenta   Saldo Restante \n"

func TestWrite(t *testing.T) {
	rows := []billing.Row{
		{ID: 101, Consumption: 50.5, HasAccount: true, Account: "12345678", Balance: 373.75},
		{ID: 102, Consumption: 30.2, HasAccount: true, Account: "93230182", Balance: 224.5},
		{ID: 103, Consumption: 0, HasAccount: true, Account: "94400248", Balance: 700},
		{ID: 104, Consumption: 12},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows))

	expect := expectHeader +
		"101       50.5           12345678            373.75         \n" +
		"102       30.2           93230182            224.5          \n" +
		"103       0              94400248            700            \n" +
		"104       12             Cuenta no disponibleN/A            \n"

	assert.Equal(t, expect, buf.String())
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.Equal(t, expectHeader, buf.String())
}

func TestLineWidth(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []billing.Row{{ID: 1, Consumption: 1, HasAccount: true, Account: "1", Balance: 1}}))

	for _, l := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, widthID+widthConsumption+widthAccount+widthBalance, len(l), "line %q", l)
	}
}

func TestOverlongValues(t *testing.T) {
	var buf bytes.Buffer
	rows := []billing.Row{{ID: 1234567890, Consumption: 1, HasAccount: true, Account: "ES91 2100 0418 4502 0005 1332", Balance: -1234567}}
	require.NoError(t, Write(&buf, rows))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "12345678901              ES91 2100 0418 4502 0005 1332-1.23457e+06   ", lines[1])
}

func TestNumber(t *testing.T) {
	type test struct {
		f      float64
		expect string
	}

	sequence := []test{
		{f: 373.75, expect: "373.75"},
		{f: 50.5, expect: "50.5"},
		{f: 0, expect: "0"},
		{f: 700, expect: "700"},
		{f: 100000, expect: "100000"},
		{f: 1234567, expect: "1.23457e+06"},
		{f: 1.0 / 3, expect: "0.333333"},
		{f: -12.5, expect: "-12.5"},
	}

	for _, i := range sequence {
		if got := number(i.f); got != i.expect {
			t.Errorf("expected %v, got %v", i.expect, got)
		}
	}
}

func TestWriteFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "reporte.txt")
	require.NoError(t, WriteFile(fileName, []billing.Row{{ID: 104}}))

	got, err := os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, expectHeader+"104       0              Cuenta no disponibleN/A            \n", string(got))
}

func TestWriteFileInvalidPath(t *testing.T) {
	assert.Error(t, WriteFile(filepath.Join(t.TempDir(), "missing", "reporte.txt"), nil))
}
