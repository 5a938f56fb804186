package combo

import (
	"fmt"

	"gocombo/domain/card"
)

const (
	TemplateTriggerUntapLoop TemplateID = "TRIGGER_UNTAP_LOOP"
	TemplateManaUntapLoop    TemplateID = "MANA_UNTAP_LOOP"
	TemplateLifegainUntap    TemplateID = "LIFEGAIN_UNTAP"
	TemplateFlickerValue     TemplateID = "FLICKER_VALUE"
	TemplateTokenSacrifice   TemplateID = "TOKEN_SACRIFICE"
	TemplateSacRecursion     TemplateID = "SAC_RECURSION"
	TemplateStormFuel        TemplateID = "STORM_FUEL"
	TemplateNoCombo          TemplateID = "NO_COMBO"
)

// renderFunc turns the two role-assigned cards into a completion text.
type renderFunc func(enabler, payoff card.Record) string

var templates = map[TemplateID]renderFunc{
	TemplateTriggerUntapLoop: func(enabler, payoff card.Record) string {
		return fmt.Sprintf("Yes, this looks like an infinite combo.\n\n"+
			"Trigger: %s creates a creature token, and the token entering the battlefield satisfies %s's untap condition.\n"+
			"Action: Untap the tapped creature with %s and use the token-making ability again.\n"+
			"Loop: every new token untaps the creature, so the cycle repeats for arbitrarily many tokens.",
			payoff.Name, enabler.Name, enabler.Name)
	},
	TemplateManaUntapLoop: func(enabler, payoff card.Record) string {
		return fmt.Sprintf("Yes, this is a mana engine and potentially an infinite combo.\n\n"+
			"Trigger: %s taps to add mana.\n"+
			"Action: Untap it with %s, spending part of the mana produced.\n"+
			"Loop: whenever the untap costs less than the mana added, each cycle nets mana and the loop repeats.",
			payoff.Name, enabler.Name)
	},
	TemplateLifegainUntap: func(enabler, payoff card.Record) string {
		return fmt.Sprintf("Yes, these cards form a loop.\n\n"+
			"Trigger: %s gains you life.\n"+
			"Action: the life gain lets %s Untap.\n"+
			"Loop: with any tap ability on %s that causes more life gain, the untap trigger keeps firing and the loop repeats.",
			enabler.Name, payoff.Name, payoff.Name)
	},
	TemplateFlickerValue: func(enabler, payoff card.Record) string {
		return fmt.Sprintf("Yes, these cards synergize strongly.\n\n"+
			"Trigger: %s has an enters-the-battlefield ability.\n"+
			"Action: %s exiles it and returns it to the battlefield.\n"+
			"Loop: each flicker re-triggers the ability, so the effect repeats every time the flicker is cast or recurred.",
			payoff.Name, enabler.Name)
	},
	TemplateTokenSacrifice: func(enabler, payoff card.Record) string {
		return fmt.Sprintf("Yes, these cards form a sacrifice engine.\n\n"+
			"Trigger: %s creates creature tokens.\n"+
			"Action: %s sacrifices those tokens for value.\n"+
			"Loop: as long as tokens keep arriving, the sacrifice outlet converts them repeatedly.",
			enabler.Name, payoff.Name)
	},
	TemplateSacRecursion: func(enabler, payoff card.Record) string {
		return fmt.Sprintf("Yes, these cards form a recursion loop.\n\n"+
			"Trigger: %s sacrifices a permanent.\n"+
			"Action: %s returns it from the graveyard.\n"+
			"Loop: the same permanent can be sacrificed and recurred repeatedly for each trigger along the way.",
			enabler.Name, payoff.Name)
	},
	TemplateStormFuel: func(enabler, payoff card.Record) string {
		return fmt.Sprintf("Yes, these cards synergize.\n\n"+
			"Trigger: %s makes spells cheaper or adds mana.\n"+
			"Action: cast more spells in one turn before %s.\n"+
			"Loop: each extra spell raises the storm count, multiplying the payoff.",
			enabler.Name, payoff.Name)
	},
	TemplateNoCombo: func(a, b card.Record) string {
		return fmt.Sprintf("No, %s and %s do not combo. Neither card's abilities feed a loop with the other; "+
			"they can be played in the same deck but do not interact beyond that.",
			a.Name, b.Name)
	},
}

// Render produces the completion text for a template and role assignment.
// The second return is false for unknown template ids.
func Render(id TemplateID, enabler, payoff card.Record) (string, bool) {
	fn, ok := templates[id]
	if !ok {
		return "", false
	}
	return fn(enabler, payoff), true
}
