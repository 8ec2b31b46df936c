package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rarity is a reward tier. Tiers are totally ordered; a larger value is rarer.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityMythical
)

// NumRarities is the number of defined tiers.
const NumRarities = int(RarityMythical) + 1

// Rarity string values used in catalogs, persisted state and the API
const (
	RarityNameCommon    = "common"
	RarityNameUncommon  = "uncommon"
	RarityNameRare      = "rare"
	RarityNameEpic      = "epic"
	RarityNameLegendary = "legendary"
	RarityNameMythical  = "mythical"
)

var rarityNames = [NumRarities]string{
	RarityNameCommon,
	RarityNameUncommon,
	RarityNameRare,
	RarityNameEpic,
	RarityNameLegendary,
	RarityNameMythical,
}

var titleCaser = cases.Title(language.English)

// AllRarities returns every tier in ascending order.
func AllRarities() []Rarity {
	return []Rarity{
		RarityCommon,
		RarityUncommon,
		RarityRare,
		RarityEpic,
		RarityLegendary,
		RarityMythical,
	}
}

// Valid reports whether r is one of the defined tiers.
func (r Rarity) Valid() bool {
	return r >= RarityCommon && r <= RarityMythical
}

func (r Rarity) String() string {
	if !r.Valid() {
		return fmt.Sprintf("rarity(%d)", int(r))
	}
	return rarityNames[r]
}

// DisplayName returns the title-cased tier name for player-facing output.
func (r Rarity) DisplayName() string {
	return titleCaser.String(r.String())
}

// TierRank is the 1-based rank used for average rarity statistics (Common=1 .. Mythical=6).
func (r Rarity) TierRank() int {
	return int(r) + 1
}

// AtLeast reports whether r is the same tier as min or rarer.
func (r Rarity) AtLeast(min Rarity) bool {
	return r >= min
}

// ParseRarity converts a tier name (case-insensitive) into a Rarity.
func ParseRarity(s string) (Rarity, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range rarityNames {
		if n == name {
			return Rarity(i), nil
		}
	}
	return RarityCommon, fmt.Errorf("%w: %q", ErrUnknownRarity, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Rarity) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRarity, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rarity) UnmarshalText(text []byte) error {
	parsed, err := ParseRarity(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
