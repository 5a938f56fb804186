package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocombo/adapters/llm"
	"gocombo/domain/card"
	"gocombo/internal/errors"
)

func newExplorer(mock *llm.MockClient) *ExplorerService {
	return NewExplorerService(mock, "test-model", 128,
		[]card.Record{testGuard, testGond, testBears})
}

func TestFindCardIsCaseInsensitive(t *testing.T) {
	svc := newExplorer(&llm.MockClient{})

	rec, ok := svc.FindCard("midnight guard")
	require.True(t, ok)
	assert.Equal(t, "Midnight Guard", rec.Name)

	rec, ok = svc.FindCard("  MIDNIGHT GUARD  ")
	require.True(t, ok)
	assert.Equal(t, "Midnight Guard", rec.Name)

	_, ok = svc.FindCard("Black Lotus")
	assert.False(t, ok)
}

func TestAnalyzeComboBuildsPairPrompt(t *testing.T) {
	mock := &llm.MockClient{Response: "Yes, infinite tokens."}
	svc := newExplorer(mock)

	got, err := svc.AnalyzeCombo(context.Background(), []string{"Midnight Guard", "Presence of Gond"})
	require.NoError(t, err)
	assert.Equal(t, "Yes, infinite tokens.", got)

	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "Card 1: Midnight Guard")
	assert.Contains(t, mock.Prompts[0], "Card 2: Presence of Gond")
}

func TestAnalyzeComboThreeCardsUsesInfinitePrompt(t *testing.T) {
	mock := &llm.MockClient{}
	svc := newExplorer(mock)

	_, err := svc.AnalyzeCombo(context.Background(),
		[]string{"Midnight Guard", "Presence of Gond", "Grizzly Bears"})
	require.NoError(t, err)

	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "infinite combo")
}

func TestAnalyzeComboToleratesUnknownNames(t *testing.T) {
	mock := &llm.MockClient{}
	svc := newExplorer(mock)

	// One unknown name still leaves two resolvable cards.
	_, err := svc.AnalyzeCombo(context.Background(),
		[]string{"Midnight Guard", "Not A Card", "Presence of Gond"})
	require.NoError(t, err)

	// Fewer than two resolvable cards is an error.
	_, err = svc.AnalyzeCombo(context.Background(), []string{"Midnight Guard", "Not A Card"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestSuggestPiecesUnknownCard(t *testing.T) {
	svc := newExplorer(&llm.MockClient{})

	_, err := svc.SuggestPieces(context.Background(), "Black Lotus")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestRunInteractiveSession(t *testing.T) {
	mock := &llm.MockClient{Response: "Yes, these combo."}
	svc := newExplorer(mock)

	input := strings.Join([]string{
		"combo Midnight Guard, Presence of Gond",
		"suggest Midnight Guard",
		"bogus command",
		"",
		"quit",
	}, "\n")
	var out bytes.Buffer

	err := svc.RunInteractive(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	transcript := out.String()
	assert.Contains(t, transcript, "Pauper Combo Explorer")
	assert.Contains(t, transcript, "Yes, these combo.")
	assert.Contains(t, transcript, "Unknown command")
	assert.Contains(t, transcript, "Goodbye!")
	assert.Len(t, mock.Prompts, 2)
}

func TestRunInteractiveEOF(t *testing.T) {
	svc := newExplorer(&llm.MockClient{})
	var out bytes.Buffer

	err := svc.RunInteractive(context.Background(), strings.NewReader(""), &out)
	require.NoError(t, err)
}
