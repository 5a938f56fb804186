package feature

import (
	"gocombo/domain/card"
)

// Extract derives the feature set for one card. It is deterministic and
// total: unmatched or empty text simply yields fewer tags, never an error.
func Extract(rec card.Record) Set {
	set := Set{CardName: rec.Name, Tags: map[Tag]int{}}
	text := Normalize(rec.OracleText, rec.Name, rec.ShortName())
	if text == "" {
		return set
	}
	for _, m := range Registry {
		for _, tag := range m.Match(text) {
			set.Tags[tag]++
		}
	}
	return set
}

// ExtractAll derives feature sets for a card universe, keyed by card name.
// Invalid records are skipped; the caller decides what to do with the count.
func ExtractAll(records []card.Record) (map[string]Set, int) {
	features := make(map[string]Set, len(records))
	skipped := 0
	for _, rec := range records {
		if !rec.Valid() {
			skipped++
			continue
		}
		features[rec.Name] = Extract(rec)
	}
	return features, skipped
}
