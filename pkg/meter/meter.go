// Package meter accumulates energy consumption and charges it to an account.
package meter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/womat/debug"

	"meterbilling/pkg/account"
)

var ErrNoAccount = errors.New("meter: no account bound")

// Meter counts consumption and charges the bound account for it.
// The account is not owned by the meter and must outlive it.
type Meter struct {
	sync.RWMutex
	id          int
	consumption float64
	account     *account.Account
}

// New creates a meter bound to acc. acc may be nil.
func New(id int, acc *account.Account) *Meter {
	return &Meter{id: id, account: acc}
}

// RegisterConsumption books amount and withdraws amount*unitPrice from the account.
// If the account refuses the charge the amount is taken off the total again and
// the refusal is returned; the caller is free to ignore it.
func (m *Meter) RegisterConsumption(amount, unitPrice float64) error {
	m.Lock()
	defer m.Unlock()

	if m.account == nil {
		debug.WarningLog.Printf("meter %v: consumption %v not charged, no account bound\n", m.id, amount)
		return ErrNoAccount
	}

	m.consumption += amount
	cost := amount * unitPrice

	if _, err := m.account.Withdraw(cost); err != nil {
		m.consumption -= amount
		return fmt.Errorf("meter %v: charge %v: %w", m.id, cost, err)
	}

	debug.DebugLog.Printf("meter %v: charged %v for %v, total consumption %v\n", m.id, cost, amount, m.consumption)
	return nil
}

// Consumption returns the total of all successfully charged amounts.
func (m *Meter) Consumption() float64 {
	m.RLock()
	defer m.RUnlock()
	return m.consumption
}

func (m *Meter) ID() int {
	return m.id
}

// Account returns the bound account or nil.
func (m *Meter) Account() *account.Account {
	return m.account
}

func (m *Meter) String() string {
	return fmt.Sprintf("meter %v", m.id)
}
