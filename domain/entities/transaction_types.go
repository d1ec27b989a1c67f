package entities

// TransactionType identifies the ledger operation behind a balance change
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
	TransactionTypeSet    TransactionType = "set"
)

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
