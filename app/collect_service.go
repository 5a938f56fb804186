package app

import (
	"context"
	"log"

	"github.com/montanaflynn/stats"

	"gocombo/domain/card"
	"gocombo/domain/combo"
	"gocombo/domain/feature"
	"gocombo/ports"
)

// CollectService runs the dataset build: fetch cards, extract features,
// synthesize reasoning examples, write everything out.
type CollectService struct {
	Source ports.CardSource
	Store  ports.DatasetStore
	Synth  *combo.Synthesizer

	// AnalysisSampleLimit caps the per-card analysis examples; 0 disables
	// them entirely.
	AnalysisSampleLimit int
}

// CollectReport summarizes a run for the operator.
type CollectReport struct {
	Cards            int
	SkippedFetch     int
	SkippedSynth     int
	PairExamples     int
	NegativeExamples int
	KnownExamples    int
	CardExamples     int
	TotalExamples    int

	// Tag-count distribution over the universe.
	TagMean   float64
	TagMedian float64
	TagP90    float64
}

// Run executes the full collection pipeline.
func (s *CollectService) Run(ctx context.Context) (*CollectReport, error) {
	log.Printf("[Collect] fetching card universe")
	records, fetchReport, err := s.Source.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("[Collect] fetched %d cards (%d skipped)", fetchReport.Fetched, fetchReport.Skipped)

	features, skippedExtract := feature.ExtractAll(records)
	log.Printf("[Collect] extracted features for %d cards", len(features))

	pairExamples, synthSummary := s.Synth.Synthesize(records, features)
	log.Printf("[Collect] synthesized %d positives, %d negatives over %d pairs (%d skipped)",
		synthSummary.Positives, synthSummary.Negatives, synthSummary.Pairs, synthSummary.Skipped)

	byName := make(map[string]card.Record, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}
	knownExamples := combo.KnownComboExamples(combo.KnownCombos, byName)

	var cardExamples []combo.ReasoningExample
	if s.AnalysisSampleLimit > 0 {
		cardExamples = combo.CardAnalysisExamples(records, features, s.AnalysisSampleLimit)
		cardExamples = append(cardExamples,
			combo.SuggestionExamples(records, features, 3, s.AnalysisSampleLimit)...)
	}

	all := make([]combo.ReasoningExample, 0, len(knownExamples)+len(pairExamples)+len(cardExamples))
	all = append(all, knownExamples...)
	all = append(all, pairExamples...)
	all = append(all, cardExamples...)

	if err := s.Store.WriteCards(records, features); err != nil {
		return nil, err
	}
	if err := s.Store.WriteTrainingExamples(all); err != nil {
		return nil, err
	}
	if err := s.Store.WriteKnownCombos(combo.KnownCombos); err != nil {
		return nil, err
	}

	report := &CollectReport{
		Cards:            len(records),
		SkippedFetch:     fetchReport.Skipped,
		SkippedSynth:     synthSummary.Skipped + skippedExtract,
		PairExamples:     synthSummary.Positives,
		NegativeExamples: synthSummary.Negatives,
		KnownExamples:    len(knownExamples),
		CardExamples:     len(cardExamples),
		TotalExamples:    len(all),
	}
	report.TagMean, report.TagMedian, report.TagP90 = tagDistribution(features)

	log.Printf("[Collect] wrote %d training examples for %d cards (tag mean %.2f, median %.0f, p90 %.0f)",
		report.TotalExamples, report.Cards, report.TagMean, report.TagMedian, report.TagP90)
	return report, nil
}

// tagDistribution summarizes how tag-dense the universe is; a sanity signal
// for matcher regressions (a sudden mean drop means a pattern broke).
func tagDistribution(features map[string]feature.Set) (mean, median, p90 float64) {
	if len(features) == 0 {
		return 0, 0, 0
	}
	counts := make([]float64, 0, len(features))
	for _, fs := range features {
		counts = append(counts, float64(fs.Count()))
	}
	mean, _ = stats.Mean(counts)
	median, _ = stats.Median(counts)
	p90, _ = stats.Percentile(counts, 90)
	return mean, median, p90
}
