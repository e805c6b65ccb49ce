// Package report writes the fixed-width meter report.
//
// Every column is left aligned and padded with blanks to its width. Widths are
// counted in bytes and longer values are written in full.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/womat/debug"

	"meterbilling/pkg/billing"
)

const (
	widthID          = 10
	widthConsumption = 15
	widthAccount     = 20
	widthBalance     = 15

	noAccount = "Cuenta no disponible"
	noBalance = "N/A"
)

var header = [...]string{"ID", "Consumo Total", "Número de cuenta", "Saldo Restante"}

// Write writes the header and one line per row to w.
func Write(w io.Writer, rows []billing.Row) error {
	bw := bufio.NewWriter(w)

	line(bw, header[0], header[1], header[2], header[3])
	for _, r := range rows {
		account, balance := noAccount, noBalance
		if r.HasAccount {
			account, balance = r.Account, number(r.Balance)
		}
		line(bw, strconv.Itoa(r.ID), number(r.Consumption), account, balance)
	}

	return bw.Flush()
}

// WriteFile creates fileName and writes the report into it.
func WriteFile(fileName string, rows []billing.Row) (err error) {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("create report %v: %w", fileName, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err = Write(f, rows); err != nil {
		return fmt.Errorf("write report %v: %w", fileName, err)
	}

	debug.InfoLog.Printf("report %q with %v meters written\n", fileName, len(rows))
	return nil
}

func line(w *bufio.Writer, id, consumption, account, balance string) {
	_, _ = w.WriteString(pad(id, widthID))
	_, _ = w.WriteString(pad(consumption, widthConsumption))
	_, _ = w.WriteString(pad(account, widthAccount))
	_, _ = w.WriteString(pad(balance, widthBalance))
	_ = w.WriteByte('\n')
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// number formats f with at most 6 significant digits.
func number(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
