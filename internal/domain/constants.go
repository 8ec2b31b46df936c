package domain

// Batch sizes accepted by a pull request
const (
	BatchSingle = 1
	BatchFive   = 5
	BatchTen    = 10
)

// Bulk discounts, in percent off the undiscounted total
const (
	DiscountPercentFive = 5
	DiscountPercentTen  = 10
)

// HistoryLimit is the number of most recent pulls retained in the ledger.
const HistoryLimit = 1000

// Placeholder items stand in for catalog gaps
const (
	PlaceholderItemPrefix = "placeholder_"
	PlaceholderCategory   = "placeholder"
)

// UpdateSourceGacha tags store updates made by the pull engine.
const UpdateSourceGacha = "gacha"

// ValidBatchSize reports whether count is an accepted batch size.
func ValidBatchSize(count int) bool {
	return count == BatchSingle || count == BatchFive || count == BatchTen
}

// DiscountPercent returns the bulk discount for a batch of count pulls.
func DiscountPercent(count int) int64 {
	switch count {
	case BatchFive:
		return DiscountPercentFive
	case BatchTen:
		return DiscountPercentTen
	default:
		return 0
	}
}
