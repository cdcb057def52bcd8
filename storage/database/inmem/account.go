package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eduflexsms/eduflex/core/account"
)

type accountRepository struct {
	db *accountTable
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db.account}
}

// query returns copies of all accounts, oldest first.
func (repo *accountRepository) query() []account.Account {
	accounts := make([]account.Account, 0, len(repo.db.table))
	for _, acc := range repo.db.table {
		accounts = append(accounts, *acc)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].Username < accounts[j].Username
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts
}

func (repo *accountRepository) CheckUsernameUniqueness(_ context.Context, username, email string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, acc := range repo.query() {
		if username != "" && acc.Username == username {
			return account.ErrUsernameExists
		}
		if email != "" && acc.Email == email {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	acc.ID = uuid.NewString()
	repo.db.table[acc.ID] = &acc
	return acc, nil
}

func (repo *accountRepository) GetAccountByID(_ context.Context, id string) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if acc, ok := repo.db.table[id]; ok {
		return *acc, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByUsernameOrEmail(_ context.Context, username string) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, acc := range repo.query() {
		if (acc.Username == username) || (acc.Email == username) {
			return acc, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) FilterAccounts(_ context.Context, filter account.QueryFilter) ([]account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	accounts := repo.query()

	// accounts with search keyword matching any Name, Username or Email ?
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		var filtered []account.Account
		for _, acc := range accounts {
			if strings.Contains(strings.ToLower(acc.Username), search) ||
				strings.Contains(strings.ToLower(acc.Email), search) ||
				strings.Contains(strings.ToLower(acc.Name), search) {
				filtered = append(filtered, acc)
			}
		}
		accounts = filtered
	}
	// accounts with any of the specified roles
	if len(filter.Roles) > 0 {
		var filtered []account.Account
		for _, acc := range accounts {
			for _, r := range filter.Roles {
				if acc.RoleStartsWith(r) {
					filtered = append(filtered, acc)
					break
				}
			}
		}
		accounts = filtered
	}
	if filter.IsActive != nil {
		var filtered []account.Account
		for _, acc := range accounts {
			if acc.IsActive == *filter.IsActive {
				filtered = append(filtered, acc)
			}
		}
		accounts = filtered
	}

	return accounts, nil
}

func (repo *accountRepository) SetLastLogin(_ context.Context, id string, at time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	acc, ok := repo.db.table[id]
	if !ok {
		return account.ErrNotFound
	}
	acc.LastLogin = at
	return nil
}

func (repo *accountRepository) DeleteAccountsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if _, ok := repo.db.table[id]; !ok {
			return account.ErrNotFound
		}
	}
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
