package ledger

// LotBalance is the remaining quantity of one LOT of a product,
// computed as the sum of "in" quantities minus the sum of "out"
// quantities for the exact (product, LOT) pair. Movements without a
// LOT number never contribute to any LOT balance.
type LotBalance struct {
	LotNumber string
	Received  int
	Shipped   int
}

// Remaining returns the quantity still available in the LOT
func (b LotBalance) Remaining() int {
	return b.Received - b.Shipped
}

// ComputeLotBalances folds a product's movements into per-LOT balances.
// LOT numbers are matched exactly and case-sensitively; the result keeps
// first-seen order so callers get a stable listing.
func ComputeLotBalances(transactions []StockTransaction) []LotBalance {
	index := make(map[string]int)
	balances := make([]LotBalance, 0)

	for _, tx := range transactions {
		if tx.LotNumber == nil {
			continue
		}
		lot := *tx.LotNumber
		i, ok := index[lot]
		if !ok {
			i = len(balances)
			index[lot] = i
			balances = append(balances, LotBalance{LotNumber: lot})
		}
		switch tx.TransactionType {
		case TransactionTypeIn:
			balances[i].Received += tx.Quantity
		case TransactionTypeOut:
			balances[i].Shipped += tx.Quantity
		}
	}

	return balances
}
