// Package ledger is the value-transfer substrate for settlement. It keeps
// per-identity accounts in integer value units and writes an entry row for
// every movement, so the fee split and refunds stay reconcilable.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aucengine/internal/models"
	"aucengine/internal/repository"
)

const (
	EntryDeposit  = "deposit"
	EntryWithdraw = "withdraw"
	EntryDebit    = "debit"
	EntryCredit   = "credit"
	EntryRefund   = "refund"
	EntryFee      = "fee"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// Book handles all balance operations. The mutex serializes movements so a
// debit-check-then-update never races a concurrent credit on the same
// account.
type Book struct {
	repo   repository.Repository
	logger *zap.Logger
	mu     sync.Mutex
}

func NewBook(repo repository.Repository, logger *zap.Logger) *Book {
	return &Book{repo: repo, logger: logger}
}

// Balance returns the current balance for an identity; unknown identities
// have a zero balance.
func (b *Book) Balance(ctx context.Context, identity string) (uint64, error) {
	account, err := b.repo.GetAccount(ctx, identity)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, nil
	}
	return account.Balance, nil
}

// Deposit adds funds to an account, creating it on first use.
func (b *Book) Deposit(ctx context.Context, identity string, amount uint64, ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.credit(ctx, identity, amount, EntryDeposit, ref)
}

// Withdraw removes funds from an account.
func (b *Book) Withdraw(ctx context.Context, identity string, amount uint64, ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.debit(ctx, identity, amount, EntryWithdraw, ref)
}

// Debit takes the buyer's offered value at the start of settlement.
func (b *Book) Debit(ctx context.Context, identity string, amount uint64, ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.debit(ctx, identity, amount, EntryDebit, ref)
}

// Credit moves settled value to an account. entryType distinguishes seller
// proceeds, the fee share, and overpayment refunds in the entry log.
func (b *Book) Credit(ctx context.Context, identity string, amount uint64, entryType, ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.credit(ctx, identity, amount, entryType, ref)
}

// Entries returns recent movements for an identity, newest first.
func (b *Book) Entries(ctx context.Context, identity string, limit int) ([]models.LedgerEntry, error) {
	return b.repo.ListLedgerEntries(ctx, identity, limit)
}

func (b *Book) account(ctx context.Context, identity string) (*models.Account, error) {
	account, err := b.repo.GetAccount(ctx, identity)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = &models.Account{Identity: identity}
	if err := b.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (b *Book) credit(ctx context.Context, identity string, amount uint64, entryType, ref string) error {
	account, err := b.account(ctx, identity)
	if err != nil {
		return err
	}
	newBalance := account.Balance + amount
	// Balance and entry commit together or not at all.
	return b.repo.InTx(ctx, func(repo repository.Repository) error {
		if err := repo.UpdateAccountBalance(ctx, identity, newBalance); err != nil {
			return err
		}
		return repo.InsertLedgerEntry(ctx, &models.LedgerEntry{
			ID:           uuid.New().String(),
			Identity:     identity,
			EntryType:    entryType,
			Amount:       int64(amount),
			BalanceAfter: newBalance,
			Reference:    ref,
		})
	})
}

func (b *Book) debit(ctx context.Context, identity string, amount uint64, entryType, ref string) error {
	account, err := b.account(ctx, identity)
	if err != nil {
		return err
	}
	if amount > account.Balance {
		return fmt.Errorf("balance %d, requested %d: %w", account.Balance, amount, ErrInsufficientFunds)
	}
	newBalance := account.Balance - amount
	return b.repo.InTx(ctx, func(repo repository.Repository) error {
		if err := repo.UpdateAccountBalance(ctx, identity, newBalance); err != nil {
			return err
		}
		return repo.InsertLedgerEntry(ctx, &models.LedgerEntry{
			ID:           uuid.New().String(),
			Identity:     identity,
			EntryType:    entryType,
			Amount:       -int64(amount),
			BalanceAfter: newBalance,
			Reference:    ref,
		})
	})
}
