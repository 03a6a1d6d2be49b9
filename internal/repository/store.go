package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Store bundles the repositories behind one gorm handle.  The handle is
// either the root connection pool or an open transaction.
type Store struct {
	DB        *gorm.DB
	txTimeout time.Duration
}

// NewStore returns a Store over db.  Transactions opened through WithTx are
// cancelled after txTimeout; zero disables the bound.
func NewStore(db *gorm.DB, txTimeout time.Duration) *Store {
	return &Store{DB: db, txTimeout: txTimeout}
}

// WithTx runs fn inside a single transaction.  The transaction is committed
// when fn returns nil and rolled back otherwise.  fn must only use the Store
// it receives.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx, txTimeout: s.txTimeout})
	})
}

func (s *Store) Users() *UserRepo               { return NewUserRepo(s.DB) }
func (s *Store) Carpools() *CarpoolRepo         { return NewCarpoolRepo(s.DB) }
func (s *Store) Participants() *ParticipantRepo { return NewParticipantRepo(s.DB) }
