package engine

import (
	"sort"

	"github.com/tallyhq/tally/internal/domain"
)

// AccountStore maps client ids to account state. Accounts are created
// lazily on first reference and persist for the run, locked or not.
type AccountStore struct {
	accounts map[uint16]*domain.Account
}

// NewAccountStore returns an empty store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[uint16]*domain.Account)}
}

// GetOrCreate returns the account for clientID, creating a zeroed one on
// first reference.
func (s *AccountStore) GetOrCreate(clientID uint16) *domain.Account {
	acct, ok := s.accounts[clientID]
	if !ok {
		acct = &domain.Account{ClientID: clientID}
		s.accounts[clientID] = acct
	}
	return acct
}

// Get returns the account for clientID without creating it.
func (s *AccountStore) Get(clientID uint16) (*domain.Account, bool) {
	acct, ok := s.accounts[clientID]
	return acct, ok
}

// Snapshots returns every account's reportable state, sorted by client id
// so report output is deterministic.
func (s *AccountStore) Snapshots() []domain.Snapshot {
	out := make([]domain.Snapshot, 0, len(s.accounts))
	for _, acct := range s.accounts {
		out = append(out, acct.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

// Len returns the number of accounts created so far.
func (s *AccountStore) Len() int { return len(s.accounts) }
