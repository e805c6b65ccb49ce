// Package csv appends the meter state of every billing run to a csv history file.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vigneshuvi/GoDateFormat"
	"github.com/womat/debug"

	"meterbilling/pkg/billing"
	"meterbilling/pkg/tools"
)

const (
	LF                      = "\n"
	CRLF                    = "\r\n"
	defaultValueSeparator   = ';'
	defaultDecimalSeparator = ','
	defaultRowSeparator     = LF
	defaultDateFormat       = "yyyy-mm-dd HH:MM:SS"
	notAvailable            = "N/A"
)

var ErrHeaderDoesntMatch = errors.New("csv: file header doesn't match")

// Header lists the columns of the history file.
var Header = []string{"Date", "ID", "Consumption", "Account", "Balance"}

type Writer struct {
	ValueSeparator, DecimalSeparator rune
	RowSeparator, DateFormat         string
	isNewFile                        bool
	fileName                         string
	file                             *os.File
	writer                           *csv.Writer
}

func New() *Writer {
	return &Writer{
		ValueSeparator:   defaultValueSeparator,
		DecimalSeparator: defaultDecimalSeparator,
		RowSeparator:     defaultRowSeparator,
		DateFormat:       defaultDateFormat,
	}
}

// Open opens fileName for appending. An existing file must carry the same header.
func (c *Writer) Open(fileName string) (err error) {
	c.fileName = fileName
	c.isNewFile = !tools.FileExists(fileName)
	if c.file, err = os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644); err != nil {
		return
	}

	if !c.isNewFile {
		if err = c.checkHeader(); err != nil {
			_ = c.file.Close()
			return
		}
	}

	c.writer = csv.NewWriter(c.file)
	c.writer.Comma = c.ValueSeparator
	c.writer.UseCRLF = c.RowSeparator == CRLF
	return
}

func (c *Writer) Close() error {
	return c.file.Close()
}

func (c *Writer) IsNewFile() bool {
	return c.isNewFile
}

// WriteRows writes one record per row, stamped with t. A new file gets the header first.
func (c *Writer) WriteRows(t time.Time, rows []billing.Row) (err error) {
	records := make([][]string, 0, len(rows)+1)
	if c.isNewFile {
		records = append(records, Header)
	}

	date := date2string(c.DateFormat, t)
	for _, r := range rows {
		account, balance := notAvailable, notAvailable
		if r.HasAccount {
			account, balance = r.Account, float2string(c.DecimalSeparator, r.Balance)
		}
		records = append(records, []string{date, strconv.Itoa(r.ID), float2string(c.DecimalSeparator, r.Consumption), account, balance})
	}

	// calls Flush internally
	if err = c.writer.WriteAll(records); err != nil {
		debug.ErrorLog.Println("error writing csv:", err)
		return
	}

	c.isNewFile = false
	debug.DebugLog.Printf("Filename: %s written records: %v\n", c.fileName, len(records))
	return
}

// FileName create a formatted csv output file
func FileName(format string, t time.Time) string {
	return t.Format(GoDateFormat.ConvertFormat(format))
}

func (c *Writer) checkHeader() error {
	reader := csv.NewReader(c.file)
	reader.Comma = c.ValueSeparator

	header, err := reader.Read()
	if err == io.EOF {
		c.isNewFile = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header of %v: %w", c.fileName, err)
	}

	if !tools.IsEqual(Header, header) {
		return fmt.Errorf("%w: %v", ErrHeaderDoesntMatch, header)
	}
	return nil
}

func date2string(format string, t time.Time) string {
	return t.Format(GoDateFormat.ConvertFormat(format))
}

func float2string(decimalSeparator rune, f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return strings.Replace(s, ".", string(decimalSeparator), -1)
}
