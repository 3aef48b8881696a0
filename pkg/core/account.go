package core

// Balance is the free and locked amount held of one asset.
type Balance struct {
	Asset    string
	Free     float64
	Lock     float64
	Leverage float64
}

// Total is free plus locked.
func (b Balance) Total() float64 {
	return b.Free + b.Lock
}

// Account is a snapshot of every balance held at the venue.
type Account struct {
	Balances []Balance
}

// NewAccount rejects an empty balance list.
func NewAccount(balances []Balance) (Account, error) {
	if len(balances) == 0 {
		return Account{}, ErrEmptyAccount
	}
	return Account{Balances: balances}, nil
}

// Balance returns the balances of the asset and quote of a pair.
// Missing assets come back as zero balances.
func (a Account) Balance(assetTick, quoteTick string) (Balance, Balance) {
	var assetBalance, quoteBalance Balance
	for _, balance := range a.Balances {
		switch balance.Asset {
		case assetTick:
			assetBalance = balance
		case quoteTick:
			quoteBalance = balance
		}
	}
	return assetBalance, quoteBalance
}

// Equity sums free and locked amounts across assets without pricing them.
func (a Account) Equity() float64 {
	var total float64
	for _, balance := range a.Balances {
		total += balance.Total()
	}
	return total
}
