package domain

import "strings"

// Item is a concrete reward that a pull can award.
// EventTag is set for items that only appear in event-restricted pools.
type Item struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Rarity   Rarity `json:"rarity" yaml:"rarity"`
	Category string `json:"category" yaml:"category"`
	EventTag string `json:"event,omitempty" yaml:"event,omitempty"`
}

// IsPlaceholder reports whether the item was synthesized because the catalog
// had no item for the drawn rarity.
func (i Item) IsPlaceholder() bool {
	return strings.HasPrefix(i.ID, PlaceholderItemPrefix)
}

// PlaceholderItem returns the stand-in awarded when the catalog has no item of rarity r.
func PlaceholderItem(r Rarity) Item {
	return Item{
		ID:       PlaceholderItemPrefix + r.String(),
		Name:     "Mystery " + r.DisplayName() + " Reward",
		Rarity:   r,
		Category: PlaceholderCategory,
	}
}
