package enums

import "fmt"

// StockTransactionType classifies an entry in the stock ledger.
type StockTransactionType string

const (
	StockTransactionIn       StockTransactionType = "in"
	StockTransactionOut      StockTransactionType = "out"
	StockTransactionReversal StockTransactionType = "reversal"
)

var validStockTransactionTypes = []StockTransactionType{
	StockTransactionIn,
	StockTransactionOut,
	StockTransactionReversal,
}

func (t StockTransactionType) IsValid() bool {
	for _, candidate := range validStockTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func ParseStockTransactionType(value string) (StockTransactionType, error) {
	for _, candidate := range validStockTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock transaction type %q", value)
}
