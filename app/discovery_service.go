package app

import (
	"context"
	"log"
	"sort"

	"gonum.org/v1/gonum/stat"

	"gocombo/domain/card"
	"gocombo/domain/combo"
	"gocombo/domain/core"
	"gocombo/domain/feature"
	"gocombo/ports"
)

// DiscoveryService brute-forces card combinations against the fine-tuned
// model and records affirmative verdicts. Queries run sequentially; each
// combination is independent, and the seen store makes reruns resumable.
type DiscoveryService struct {
	LLM   ports.LLMClient
	Model string
	Store ports.DiscoveryStore

	MaxTokens int

	// MinTagCount filters the candidate pool; 0 derives a threshold from
	// the 90th percentile of the tag-count distribution.
	MinTagCount    int
	CandidateLimit int
	TripleLimit    int
}

// DiscoveryReport summarizes a search run.
type DiscoveryReport struct {
	Run         core.RunID
	Candidates  int
	Tried       int
	SkippedSeen int
	ModelErrors int
	Found       int
}

// Run validates against a few known combos, then searches pairs and a
// bounded number of triples among high-potential cards.
func (s *DiscoveryService) Run(ctx context.Context, records []card.Record, features map[string]feature.Set, known []combo.KnownCombo) (*DiscoveryReport, error) {
	report := &DiscoveryReport{Run: core.RunID(core.NewID())}
	log.Printf("[Discovery] run %s starting", report.Run)

	byName := make(map[string]card.Record, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}

	s.validateKnown(ctx, known, byName)

	candidates := s.selectCandidates(records, features)
	report.Candidates = len(candidates)
	log.Printf("[Discovery] analyzing %d high-potential cards", len(candidates))

	knownKeys := combo.KnownKeys(known)

	// Pairs first.
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			pair := []card.Record{candidates[i], candidates[j]}
			s.tryCombination(ctx, pair, combo.PairPrompt(pair[0], pair[1]), knownKeys, report)
		}
	}

	// Then a bounded number of triples among the strongest candidates.
	tripleBudget := s.TripleLimit
	for i := 0; i < len(candidates) && tripleBudget > 0; i++ {
		for j := i + 1; j < len(candidates) && tripleBudget > 0; j++ {
			for k := j + 1; k < len(candidates) && tripleBudget > 0; k++ {
				if err := ctx.Err(); err != nil {
					return report, err
				}
				triple := []card.Record{candidates[i], candidates[j], candidates[k]}
				if s.tryCombination(ctx, triple, combo.InfinitePrompt(triple), knownKeys, report) {
					tripleBudget--
				}
			}
		}
	}

	log.Printf("[Discovery] done: %d tried, %d already seen, %d model errors, %d found",
		report.Tried, report.SkippedSeen, report.ModelErrors, report.Found)
	return report, nil
}

// tryCombination runs one model query unless the combination is known or
// already seen. Returns true when a query was actually issued.
func (s *DiscoveryService) tryCombination(ctx context.Context, cards []card.Record, prompt string, knownKeys map[string]bool, report *DiscoveryReport) bool {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name
	}
	key := combo.Key(names)

	if knownKeys[key] {
		return false
	}
	seen, err := s.Store.Seen(key)
	if err != nil {
		log.Printf("[Discovery] seen lookup failed for %s: %v", key, err)
		return false
	}
	if seen {
		report.SkippedSeen++
		return false
	}

	report.Tried++
	analysis, err := s.LLM.ChatCompletion(ctx, s.Model, prompt, s.MaxTokens)

	// Mark before inspecting the verdict: a combination that produced any
	// model response should not be retried on resume.
	if markErr := s.Store.MarkSeen(key); markErr != nil {
		log.Printf("[Discovery] mark seen failed for %s: %v", key, markErr)
	}

	if err != nil {
		// Model failures skip the combination, never abort the run.
		report.ModelErrors++
		log.Printf("[Discovery] model error for %v: %v", names, err)
		return true
	}

	if combo.IsAffirmative(analysis) {
		report.Found++
		log.Printf("[Discovery] potential combo: %v", names)
		if err := s.Store.Append(combo.Discovery{
			ID:       core.DiscoveryID(core.NewID()),
			Cards:    names,
			Analysis: analysis,
			Novelty:  "potentially_new",
			FoundAt:  core.Now(),
		}); err != nil {
			log.Printf("[Discovery] append failed for %v: %v", names, err)
		}
	}
	return true
}

// selectCandidates picks high-potential cards: tag count at or above the
// threshold, ordered by tag count descending then name, capped at the
// candidate limit.
func (s *DiscoveryService) selectCandidates(records []card.Record, features map[string]feature.Set) []card.Record {
	threshold := s.MinTagCount
	if threshold <= 0 {
		threshold = quantileThreshold(features)
	}

	var candidates []card.Record
	for _, rec := range records {
		if rec.Valid() && features[rec.Name].Count() >= threshold {
			candidates = append(candidates, rec)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := features[candidates[i].Name].Count(), features[candidates[j].Name].Count()
		if ci != cj {
			return ci > cj
		}
		return candidates[i].Name < candidates[j].Name
	})
	if s.CandidateLimit > 0 && len(candidates) > s.CandidateLimit {
		candidates = candidates[:s.CandidateLimit]
	}
	return candidates
}

// quantileThreshold derives the candidate cutoff from the tag-count
// distribution when no explicit threshold is configured.
func quantileThreshold(features map[string]feature.Set) int {
	if len(features) == 0 {
		return 1
	}
	counts := make([]float64, 0, len(features))
	for _, fs := range features {
		counts = append(counts, float64(fs.Count()))
	}
	sort.Float64s(counts)
	q := stat.Quantile(0.9, stat.Empirical, counts, nil)
	if q < 1 {
		return 1
	}
	return int(q)
}

// validateKnown sanity-checks the model on a few curated combos before the
// search. Verdicts are logged, not persisted.
func (s *DiscoveryService) validateKnown(ctx context.Context, known []combo.KnownCombo, byName map[string]card.Record) {
	const sample = 3
	for i, k := range known {
		if i >= sample {
			break
		}
		var resolved []card.Record
		for _, name := range k.Cards {
			if rec, ok := byName[name]; ok {
				resolved = append(resolved, rec)
			}
		}
		if len(resolved) < 2 {
			continue
		}
		analysis, err := s.LLM.ChatCompletion(ctx, s.Model, combo.InfinitePrompt(resolved), s.MaxTokens)
		if err != nil {
			log.Printf("[Discovery] validation query failed for %v: %v", k.Cards, err)
			continue
		}
		log.Printf("[Discovery] known combo %v (expected: %s) -> affirmative=%v",
			k.Cards, k.Description, combo.IsAffirmative(analysis))
	}
}
