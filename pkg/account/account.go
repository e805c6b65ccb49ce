// Package account holds a balance that meters charge against.
package account

import (
	"errors"
	"sync"

	"github.com/womat/debug"
)

var (
	ErrInvalidAmount     = errors.New("account: amount must be greater than zero")
	ErrLocked            = errors.New("account: withdrawals are locked")
	ErrInsufficientFunds = errors.New("account: insufficient funds")
)

// Account is a bank account with a balance and a withdrawal lock.
// The lock is one way: there is no operation to release it.
type Account struct {
	sync.RWMutex
	number  string
	balance float64
	locked  bool
}

// New creates an account with an opening balance.
func New(number string, balance float64) *Account {
	return &Account{number: number, balance: balance}
}

// Number returns the account number.
func (a *Account) Number() string {
	return a.number
}

// Balance returns the current balance.
func (a *Account) Balance() float64 {
	a.RLock()
	defer a.RUnlock()
	return a.balance
}

// IsLocked reports whether withdrawals are locked.
func (a *Account) IsLocked() bool {
	a.RLock()
	defer a.RUnlock()
	return a.locked
}

// Deposit adds amount to the balance and returns the resulting balance.
// A non-positive amount leaves the balance unchanged and returns ErrInvalidAmount.
func (a *Account) Deposit(amount float64) (float64, error) {
	a.Lock()
	defer a.Unlock()

	if !(amount > 0) {
		debug.WarningLog.Printf("account %v: invalid deposit %v, amount must be greater than zero\n", a.number, amount)
		return a.balance, ErrInvalidAmount
	}

	a.balance += amount
	debug.DebugLog.Printf("account %v: deposit %v, balance %v\n", a.number, amount, a.balance)
	return a.balance, nil
}

// Withdraw subtracts amount from the balance if the withdrawal is valid.
// The resulting balance is returned in both cases, err tells why a withdrawal was refused.
func (a *Account) Withdraw(amount float64) (float64, error) {
	a.Lock()
	defer a.Unlock()

	if err := a.check(amount); err != nil {
		debug.WarningLog.Printf("account %v: withdrawal of %v refused: %v\n", a.number, amount, err)
		return a.balance, err
	}

	a.balance -= amount
	debug.DebugLog.Printf("account %v: withdrawal %v, balance %v\n", a.number, amount, a.balance)
	return a.balance, nil
}

// IsWithdrawalValid is true if withdrawals aren't locked and 0 < amount <= balance.
func (a *Account) IsWithdrawalValid(amount float64) bool {
	return a.WithdrawalCheck(amount) == nil
}

// WithdrawalCheck applies the same rule as IsWithdrawalValid and returns the reason a withdrawal would be refused.
func (a *Account) WithdrawalCheck(amount float64) error {
	a.RLock()
	defer a.RUnlock()
	return a.check(amount)
}

// check is written with negated comparisons so NaN is refused.
func (a *Account) check(amount float64) error {
	switch {
	case a.locked:
		return ErrLocked
	case !(amount > 0):
		return ErrInvalidAmount
	case !(amount <= a.balance):
		return ErrInsufficientFunds
	}
	return nil
}

// LockWithdrawals blocks all further withdrawals. Calling it again has no further effect.
func (a *Account) LockWithdrawals() {
	a.Lock()
	defer a.Unlock()

	a.locked = true
	debug.InfoLog.Printf("account %v: withdrawals locked\n", a.number)
}
