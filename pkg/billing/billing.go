// Package billing wires accounts and meters together and feeds readings into them.
package billing

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/womat/debug"

	"meterbilling/global"
	"meterbilling/pkg/account"
	"meterbilling/pkg/energy"
	"meterbilling/pkg/meter"
)

var (
	ErrDuplicateAccount = errors.New("billing: duplicate account number")
	ErrDuplicateMeter   = errors.New("billing: duplicate meter id")
)

// Row is the state of one meter and its account as shown in reports.
type Row struct {
	ID          int     `json:"id"`
	Consumption float64 `json:"consumption"`
	HasAccount  bool    `json:"hasAccount"`
	Account     string  `json:"account,omitempty"`
	Balance     float64 `json:"balance"`
}

// Summary counts the charges of one Apply run.
type Summary struct {
	Accepted int
	Rejected int
	Skipped  int
}

// Site owns all accounts and the meters charging them.
type Site struct {
	sync.RWMutex
	accounts map[string]*account.Account
	meters   []*meter.Meter
	Time     time.Time
}

// Build creates the accounts and meters of conf in configuration order.
// A meter whose account number is unknown is created without an account.
func Build(conf global.Configuration) (*Site, error) {
	s := &Site{accounts: map[string]*account.Account{}}

	for _, ac := range conf.Accounts {
		if _, ok := s.accounts[ac.Number]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAccount, ac.Number)
		}

		a := account.New(ac.Number, ac.Balance)
		for _, d := range ac.Deposits {
			_, _ = a.Deposit(d)
		}
		if ac.Locked {
			a.LockWithdrawals()
		}
		s.accounts[ac.Number] = a
	}

	ids := map[int]bool{}
	for _, mc := range conf.Meters {
		if ids[mc.ID] {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateMeter, mc.ID)
		}
		ids[mc.ID] = true

		a, ok := s.accounts[mc.Account]
		if !ok {
			debug.WarningLog.Printf("meter %v: account %q is not available\n", mc.ID, mc.Account)
			a = nil
		}
		s.meters = append(s.meters, meter.New(mc.ID, a))
	}

	debug.InfoLog.Printf("site with %v accounts and %v meters created\n", len(s.accounts), len(s.meters))
	return s, nil
}

// Apply registers all readings src has for each meter at unitPrice.
// Refused charges are counted, not returned; a meter whose readings can't be fetched is skipped.
func (s *Site) Apply(src energy.Source, unitPrice float64) (sum Summary) {
	s.Lock()
	defer s.Unlock()

	for _, m := range s.meters {
		readings, err := src.Readings(m.ID())
		if err != nil {
			debug.ErrorLog.Printf("%v: readings of meter %v: %v\n", src, m.ID(), err)
			sum.Skipped++
			continue
		}

		for _, amount := range readings {
			if err := m.RegisterConsumption(amount, unitPrice); err != nil {
				debug.WarningLog.Printf("%v: consumption %v not charged: %v\n", m, amount, err)
				sum.Rejected++
				continue
			}
			sum.Accepted++
		}
	}

	s.Time = time.Now()
	debug.InfoLog.Printf("%v: %v charges accepted, %v rejected, %v meters skipped\n", src, sum.Accepted, sum.Rejected, sum.Skipped)
	return sum
}

// Rows returns the current state of all meters in configuration order.
func (s *Site) Rows() []Row {
	s.RLock()
	defer s.RUnlock()

	rows := make([]Row, 0, len(s.meters))
	for _, m := range s.meters {
		rows = append(rows, row(m))
	}
	return rows
}

// Row returns the state of meter id.
func (s *Site) Row(id int) (Row, bool) {
	m := s.Meter(id)
	if m == nil {
		return Row{}, false
	}

	s.RLock()
	defer s.RUnlock()
	return row(m), true
}

// Meter returns the meter with id or nil.
func (s *Site) Meter(id int) *meter.Meter {
	s.RLock()
	defer s.RUnlock()

	for _, m := range s.meters {
		if m.ID() == id {
			return m
		}
	}
	return nil
}

// Account returns the account with number or nil.
func (s *Site) Account(number string) *account.Account {
	s.RLock()
	defer s.RUnlock()
	return s.accounts[number]
}

func row(m *meter.Meter) Row {
	r := Row{ID: m.ID(), Consumption: m.Consumption()}
	if a := m.Account(); a != nil {
		r.HasAccount = true
		r.Account = a.Number()
		r.Balance = a.Balance()
	}
	return r
}
