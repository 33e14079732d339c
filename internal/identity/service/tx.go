package service

import (
	"context"
	"database/sql"
	"sync"

	"nolatabs/internal/platform/postgres"
	"nolatabs/pkg/domain"
	"nolatabs/pkg/platform/tx"
)

// AccountStoreTx provides the unit of work for registration. Implementations
// wrap a database transaction or, in memory, a coarse lock with undo.
// fn must use the context it is given so statements join the transaction.
type AccountStoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error
}

// TxStores are the stores usable inside a unit of work.
type TxStores struct {
	Accounts AccountStore
	Settings SettingsCreator
}

type postgresTx struct {
	db     *sql.DB
	stores TxStores
}

// NewPostgresTx runs units of work in a database transaction. The stores must
// read the transaction from the context (see pkg/platform/tx).
func NewPostgresTx(db *sql.DB, accounts AccountStore, settings SettingsCreator) AccountStoreTx {
	return &postgresTx{db: db, stores: TxStores{Accounts: accounts, Settings: settings}}
}

func (t *postgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error {
	err := tx.Run(ctx, t.db, func(ctx context.Context) error {
		return fn(ctx, t.stores)
	})
	if err != nil {
		return postgres.Classify("registration tx", err)
	}
	return nil
}

// MemoryAccounts is an in-memory account store that can undo a create.
type MemoryAccounts interface {
	AccountStore
	Remove(ctx context.Context, id domain.AccountID)
}

// MemorySettings is an in-memory preferences store that can undo a create.
type MemorySettings interface {
	SettingsCreator
	Remove(ctx context.Context, accountID domain.AccountID)
}

type memoryTx struct {
	mu       sync.Mutex
	accounts MemoryAccounts
	settings MemorySettings
}

// NewInMemoryTx serialises units of work and removes whatever a failed unit
// created, so an account never outlives a failed preferences insert. Reads
// outside RunInTx do not take the lock and may see an account before its
// preferences exist.
func NewInMemoryTx(accounts MemoryAccounts, settings MemorySettings) AccountStoreTx {
	return &memoryTx{accounts: accounts, settings: settings}
}

func (t *memoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return postgres.Classify("registration tx", err)
	}

	j := &journal{}
	stores := TxStores{
		Accounts: &journaledAccounts{MemoryAccounts: t.accounts, journal: j},
		Settings: &journaledSettings{MemorySettings: t.settings, journal: j},
	}
	if err := fn(ctx, stores); err != nil {
		for _, id := range j.settings {
			t.settings.Remove(ctx, id)
		}
		for _, id := range j.accounts {
			t.accounts.Remove(ctx, id)
		}
		return err
	}
	return nil
}

type journal struct {
	accounts []domain.AccountID
	settings []domain.AccountID
}

type journaledAccounts struct {
	MemoryAccounts
	journal *journal
}

func (a *journaledAccounts) Create(ctx context.Context, account *accountModel) error {
	if err := a.MemoryAccounts.Create(ctx, account); err != nil {
		return err
	}
	a.journal.accounts = append(a.journal.accounts, account.ID)
	return nil
}

type journaledSettings struct {
	MemorySettings
	journal *journal
}

func (s *journaledSettings) Create(ctx context.Context, accountID domain.AccountID, prefs preferences) error {
	if err := s.MemorySettings.Create(ctx, accountID, prefs); err != nil {
		return err
	}
	s.journal.settings = append(s.journal.settings, accountID)
	return nil
}
