package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"gocombo/domain/card"
	"gocombo/domain/combo"
	"gocombo/internal/errors"
	"gocombo/ports"
)

// ExplorerService answers ad hoc combo questions against the fine-tuned
// model: analyze a specific combination, or suggest companions for a card.
type ExplorerService struct {
	LLM       ports.LLMClient
	Model     string
	MaxTokens int

	index map[string]card.Record
	names []string
}

// NewExplorerService indexes the card universe by lowercased name.
func NewExplorerService(llm ports.LLMClient, model string, maxTokens int, records []card.Record) *ExplorerService {
	index := make(map[string]card.Record, len(records))
	names := make([]string, 0, len(records))
	for _, rec := range records {
		if !rec.Valid() {
			continue
		}
		index[strings.ToLower(rec.Name)] = rec
		names = append(names, rec.Name)
	}
	return &ExplorerService{LLM: llm, Model: model, MaxTokens: maxTokens, index: index, names: names}
}

// FindCard looks up a card by name, case-insensitively.
func (s *ExplorerService) FindCard(name string) (card.Record, bool) {
	rec, ok := s.index[strings.ToLower(strings.TrimSpace(name))]
	return rec, ok
}

// AnalyzeCombo asks the model whether the named cards combo. Unknown names
// are reported; at least two known cards are required.
func (s *ExplorerService) AnalyzeCombo(ctx context.Context, names []string) (string, error) {
	var resolved []card.Record
	for _, name := range names {
		rec, ok := s.FindCard(name)
		if !ok {
			log.Printf("[Explorer] card %q not found in Pauper universe", name)
			continue
		}
		resolved = append(resolved, rec)
	}
	if len(resolved) < 2 {
		return "", errors.NotFound("at least 2 valid Pauper cards")
	}

	var prompt string
	if len(resolved) == 2 {
		prompt = combo.PairPrompt(resolved[0], resolved[1])
	} else {
		prompt = combo.InfinitePrompt(resolved)
	}
	return s.LLM.ChatCompletion(ctx, s.Model, prompt, s.MaxTokens)
}

// SuggestPieces asks the model for companion pieces for one card.
func (s *ExplorerService) SuggestPieces(ctx context.Context, name string) (string, error) {
	rec, ok := s.FindCard(name)
	if !ok {
		return "", errors.NotFound(fmt.Sprintf("card %q", name))
	}
	return s.LLM.ChatCompletion(ctx, s.Model, combo.SuggestPrompt(rec), s.MaxTokens)
}

// RunInteractive reads commands from in and writes responses to out until
// EOF or an exit command. Commands:
//
//	combo <card1>, <card2>[, <card3>]
//	suggest <card>
//	quit | exit | q
func (s *ExplorerService) RunInteractive(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Pauper Combo Explorer")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  combo <card1>, <card2>[, <card3>]  - analyze combo potential")
	fmt.Fprintln(out, "  suggest <card>                     - get combo suggestions")
	fmt.Fprintln(out, "  quit                               - exit")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		lowered := strings.ToLower(line)

		switch {
		case lowered == "quit" || lowered == "exit" || lowered == "q":
			fmt.Fprintln(out, "Goodbye!")
			return nil

		case strings.HasPrefix(lowered, "combo "):
			parts := strings.Split(line[len("combo "):], ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			result, err := s.AnalyzeCombo(ctx, parts)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, result)

		case strings.HasPrefix(lowered, "suggest "):
			result, err := s.SuggestPieces(ctx, line[len("suggest "):])
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, result)

		case line == "":
			continue

		default:
			fmt.Fprintln(out, "Unknown command. Use 'combo <cards>' or 'suggest <card>'")
		}
	}
}
