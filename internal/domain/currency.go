package domain

import "sort"

// Currency identifies one of the abstract pull currencies.
type Currency string

const (
	CurrencyPrimary   Currency = "primary"
	CurrencySecondary Currency = "secondary"
)

// Currencies lists the supported currencies in a stable order.
func Currencies() []Currency {
	return []Currency{CurrencyPrimary, CurrencySecondary}
}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == CurrencyPrimary || c == CurrencySecondary
}

// Cost maps each currency to a non-negative integer amount. A missing key is zero.
type Cost map[Currency]int64

// Clone returns an independent copy of c.
func (c Cost) Clone() Cost {
	out := make(Cost, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// IsZero reports whether every amount is zero.
func (c Cost) IsZero() bool {
	for _, v := range c {
		if v != 0 {
			return false
		}
	}
	return true
}

// Add returns the per-currency sum of c and other.
func (c Cost) Add(other Cost) Cost {
	out := c.Clone()
	for k, v := range other {
		out[k] += v
	}
	return out
}

// ForBatch returns the cost of count pulls with discountPercent taken off.
// Each currency is floored independently.
func (c Cost) ForBatch(count int, discountPercent int64) Cost {
	out := make(Cost, len(c))
	for k, unit := range c {
		gross := unit * int64(count)
		out[k] = gross * (100 - discountPercent) / 100
	}
	return out
}

// Shortfall returns how much of each currency is missing from available to
// cover c. The result only holds currencies with a positive shortfall.
func (c Cost) Shortfall(available Cost) Cost {
	missing := make(Cost)
	for k, need := range c {
		if have := available[k]; have < need {
			missing[k] = need - have
		}
	}
	return missing
}

// Keys returns the currencies present in c, sorted.
func (c Cost) Keys() []Currency {
	keys := make([]Currency, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
