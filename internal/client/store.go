package client

import (
	"context"
	"sync"
)

// Store keeps a local mirror of server state, one slice per resource.
// Every mutation is reconciled with the entity the server returned, so
// the cache never drifts from what a refetch would produce.
type Store struct {
	mu sync.RWMutex

	client *Client

	user          User
	authenticated bool
	authLoading   bool
	authErr       string

	accounts        []Account
	accountsLoading bool
	accountsErr     string

	transactions        []Transaction
	transactionsLoading bool
	transactionsErr     string

	settings        Settings
	settingsLoading bool
	settingsErr     string

	summary        Summary
	summaryLoading bool
	summaryErr     string
}

func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// ResourceState is the loading/error pair exposed for each resource.
type ResourceState struct {
	Loading bool
	Err     string
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	s.authLoading = true
	s.authErr = ""
	s.mu.Unlock()
	user, err := s.client.Login(ctx, email, password)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authLoading = false
	if err != nil {
		s.authErr = err.Error()
		return err
	}
	s.user = user
	s.authenticated = true
	return nil
}

func (s *Store) Register(ctx context.Context, email, password, name string) error {
	s.mu.Lock()
	s.authLoading = true
	s.authErr = ""
	s.mu.Unlock()
	user, err := s.client.Register(ctx, email, password, name)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authLoading = false
	if err != nil {
		s.authErr = err.Error()
		return err
	}
	s.user = user
	s.authenticated = true
	return nil
}

// Logout drops all cached state regardless of the server call outcome;
// a stale mirror of another session is worse than an empty one.
func (s *Store) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = User{}
	s.authenticated = false
	s.accounts = nil
	s.transactions = nil
	s.settings = Settings{}
	s.summary = Summary{}
	return err
}

func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.authenticated
}

func (s *Store) AuthState() ResourceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ResourceState{Loading: s.authLoading, Err: s.authErr}
}

func (s *Store) FetchAccounts(ctx context.Context) error {
	s.mu.Lock()
	s.accountsLoading = true
	s.accountsErr = ""
	s.mu.Unlock()
	accounts, err := s.client.ListAccounts(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountsLoading = false
	if err != nil {
		s.accountsErr = err.Error()
		return err
	}
	s.accounts = accounts
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, input AccountInput) (Account, error) {
	account, err := s.client.CreateAccount(ctx, input)
	if err != nil {
		s.setAccountsErr(err)
		return Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertAccountLocked(account)
	return account, nil
}

func (s *Store) UpdateAccount(ctx context.Context, id string, update AccountUpdate) (Account, error) {
	account, err := s.client.UpdateAccount(ctx, id, update)
	if err != nil {
		s.setAccountsErr(err)
		return Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertAccountLocked(account)
	return account, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	if err := s.client.DeleteAccount(ctx, id); err != nil {
		s.setAccountsErr(err)
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeAccountLocked(id)
	return nil
}

func (s *Store) Accounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

func (s *Store) AccountsState() ResourceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ResourceState{Loading: s.accountsLoading, Err: s.accountsErr}
}

func (s *Store) FetchTransactions(ctx context.Context, filter TransactionFilter) error {
	s.mu.Lock()
	s.transactionsLoading = true
	s.transactionsErr = ""
	s.mu.Unlock()
	transactions, err := s.client.ListTransactions(ctx, filter)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactionsLoading = false
	if err != nil {
		s.transactionsErr = err.Error()
		return err
	}
	s.transactions = transactions
	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, input TransactionInput) (Transaction, error) {
	tx, err := s.client.CreateTransaction(ctx, input)
	if err != nil {
		s.setTransactionsErr(err)
		return Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertTransactionLocked(tx)
	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, id string, input TransactionInput) (Transaction, error) {
	tx, err := s.client.UpdateTransaction(ctx, id, input)
	if err != nil {
		s.setTransactionsErr(err)
		return Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertTransactionLocked(tx)
	return tx, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.client.DeleteTransaction(ctx, id); err != nil {
		s.setTransactionsErr(err)
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeTransactionLocked(id)
	return nil
}

func (s *Store) Transactions() []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

func (s *Store) TransactionsState() ResourceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ResourceState{Loading: s.transactionsLoading, Err: s.transactionsErr}
}

func (s *Store) FetchSettings(ctx context.Context) error {
	s.mu.Lock()
	s.settingsLoading = true
	s.settingsErr = ""
	s.mu.Unlock()
	settings, err := s.client.GetSettings(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settingsLoading = false
	if err != nil {
		s.settingsErr = err.Error()
		return err
	}
	s.settings = settings
	return nil
}

func (s *Store) UpdateSettings(ctx context.Context, update SettingsUpdate) (Settings, error) {
	settings, err := s.client.UpdateSettings(ctx, update)
	if err != nil {
		s.mu.Lock()
		s.settingsErr = err.Error()
		s.mu.Unlock()
		return Settings{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return settings, nil
}

func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Store) SettingsState() ResourceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ResourceState{Loading: s.settingsLoading, Err: s.settingsErr}
}

func (s *Store) FetchSummary(ctx context.Context, filter TransactionFilter) error {
	s.mu.Lock()
	s.summaryLoading = true
	s.summaryErr = ""
	s.mu.Unlock()
	summary, err := s.client.ReportSummary(ctx, filter)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaryLoading = false
	if err != nil {
		s.summaryErr = err.Error()
		return err
	}
	s.summary = summary
	return nil
}

func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

func (s *Store) SummaryState() ResourceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ResourceState{Loading: s.summaryLoading, Err: s.summaryErr}
}

func (s *Store) setAccountsErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountsErr = err.Error()
}

func (s *Store) setTransactionsErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactionsErr = err.Error()
}

func (s *Store) upsertAccountLocked(account Account) {
	for i := range s.accounts {
		if s.accounts[i].ID == account.ID {
			s.accounts[i] = account
			return
		}
	}
	s.accounts = append(s.accounts, account)
}

func (s *Store) removeAccountLocked(id string) {
	kept := s.accounts[:0]
	for _, account := range s.accounts {
		if account.ID != id {
			kept = append(kept, account)
		}
	}
	s.accounts = kept
}

func (s *Store) upsertTransactionLocked(tx Transaction) {
	for i := range s.transactions {
		if s.transactions[i].ID == tx.ID {
			s.transactions[i] = tx
			return
		}
	}
	s.transactions = append(s.transactions, tx)
}

func (s *Store) removeTransactionLocked(id string) {
	kept := s.transactions[:0]
	for _, tx := range s.transactions {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	s.transactions = kept
}
