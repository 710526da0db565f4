package bankaccount

import "sync"

// CurrentBalanceQuery asks for the present balance of one account.
type CurrentBalanceQuery struct {
	AccountID string
}

// CurrentBalance answers a CurrentBalanceQuery.
type CurrentBalance struct {
	AccountID string
	Balance   int64
}

// CurrentBalanceProjection folds account events into per-account balances.
// Events of types the projection does not handle are ignored, so a mixed
// stream (including unknown-type fallbacks) can be fed through untouched.
type CurrentBalanceProjection struct {
	mu       sync.RWMutex
	balances map[string]int64
}

func NewCurrentBalanceProjection() *CurrentBalanceProjection {
	return &CurrentBalanceProjection{balances: make(map[string]int64)}
}

// Apply folds one event into the projection.
func (p *CurrentBalanceProjection) Apply(event any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := event.(type) {
	case BankAccountCreated:
		p.balances[e.AccountID] = e.InitialBalance
	case MoneyDeposited:
		p.balances[e.AccountID] += e.Amount
	case MoneyWithdrawn:
		p.balances[e.AccountID] -= e.Amount
	}
}

// Balance returns the account's balance and whether the account is known.
func (p *CurrentBalanceProjection) Balance(accountID string) (int64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	balance, ok := p.balances[accountID]
	return balance, ok
}

// HandleQuery answers a balance query; nil when the account is unknown.
func (p *CurrentBalanceProjection) HandleQuery(query CurrentBalanceQuery) *CurrentBalance {
	balance, ok := p.Balance(query.AccountID)
	if !ok {
		return nil
	}
	return &CurrentBalance{AccountID: query.AccountID, Balance: balance}
}
