package card

import (
	"strings"
)

// Record is a single card as fetched from the card source. Records are
// immutable after fetch; everything downstream reads them as-is.
type Record struct {
	Name          string   `json:"name"`
	ManaCost      string   `json:"mana_cost"`
	CMC           float64  `json:"cmc"`
	TypeLine      string   `json:"type_line"`
	OracleText    string   `json:"oracle_text"`
	Colors        []string `json:"colors"`
	ColorIdentity []string `json:"color_identity"`
	Keywords      []string `json:"keywords"`
	Power         string   `json:"power,omitempty"`
	Toughness     string   `json:"toughness,omitempty"`
	Rarity        string   `json:"rarity"`
	Legal         bool     `json:"legal"`
}

// Valid reports whether the record is usable downstream. An empty oracle
// text is fine (vanilla creatures); a missing name is not.
func (r Record) Valid() bool {
	return strings.TrimSpace(r.Name) != ""
}

// Type-line predicates. The type line is the authority, not the oracle text.

func (r Record) IsCreature() bool    { return strings.Contains(r.TypeLine, "Creature") }
func (r Record) IsInstant() bool     { return strings.Contains(r.TypeLine, "Instant") }
func (r Record) IsSorcery() bool     { return strings.Contains(r.TypeLine, "Sorcery") }
func (r Record) IsArtifact() bool    { return strings.Contains(r.TypeLine, "Artifact") }
func (r Record) IsEnchantment() bool { return strings.Contains(r.TypeLine, "Enchantment") }
func (r Record) IsLand() bool        { return strings.Contains(r.TypeLine, "Land") }

// ShortName returns the self-reference form used in rules text. Legendary
// style names ("Foo, the Bar") refer to themselves as "Foo".
func (r Record) ShortName() string {
	if i := strings.Index(r.Name, ","); i > 0 {
		return r.Name[:i]
	}
	return r.Name
}

// Describe renders the card block used in model prompts.
func (r Record) Describe() string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	if r.ManaCost != "" {
		sb.WriteString(" (" + r.ManaCost + ")")
	}
	sb.WriteString("\nType: " + r.TypeLine)
	sb.WriteString("\nText: " + r.OracleText)
	return sb.String()
}
