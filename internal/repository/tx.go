package repository

import "gorm.io/gorm"

// TxRepos is the set of repositories bound to one open transaction.
type TxRepos struct {
	Users      UserRepository
	Identities IdentityRepository
	Sessions   SessionRepository
}

// TxManager runs a function with transaction-scoped repositories. The
// transaction commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	InTx(fn func(r TxRepos) error) error
}

type txManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

func (m *txManager) InTx(fn func(r TxRepos) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(TxRepos{
			Users:      NewUserRepository(tx),
			Identities: NewIdentityRepository(tx),
			Sessions:   NewSessionRepository(tx),
		})
	})
}
