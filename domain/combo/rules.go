package combo

import (
	"gocombo/domain/feature"
)

// Rule is one compatibility check between two feature sets. Rules are pure
// and total: Match never fails, it only says whether the enabler/payoff role
// assignment holds. The synthesizer tries each rule in registry order and in
// both orientations, so the first listed rule that fits decides the template.
type Rule struct {
	ID       RuleID
	Template TemplateID
	Match    func(enabler, payoff feature.Set) bool
}

const (
	RuleTriggerUntapLoop RuleID = "trigger_untap_loop"
	RuleManaUntapLoop    RuleID = "mana_untap_loop"
	RuleLifegainUntap    RuleID = "lifegain_untap"
	RuleFlickerValue     RuleID = "flicker_value"
	RuleTokenSacrifice   RuleID = "token_sacrifice"
	RuleSacRecursion     RuleID = "sac_recursion"
	RuleStormFuel        RuleID = "storm_fuel"
)

// DefaultRules is the fixed priority order. Loop-closing rules come first:
// a pair that closes an untap loop should never be downgraded to a generic
// token-sacrifice synergy just because both readings apply.
var DefaultRules = []Rule{
	{
		ID:       RuleTriggerUntapLoop,
		Template: TemplateTriggerUntapLoop,
		Match: func(enabler, payoff feature.Set) bool {
			return enabler.Has(feature.TagUntapOther) &&
				payoff.HasAll(feature.TagETBTrigger, feature.TagTokenCreate)
		},
	},
	{
		ID:       RuleManaUntapLoop,
		Template: TemplateManaUntapLoop,
		Match: func(enabler, payoff feature.Set) bool {
			return enabler.Has(feature.TagUntapOther) &&
				payoff.HasAll(feature.TagTapAbility, feature.TagManaAdd)
		},
	},
	{
		ID:       RuleLifegainUntap,
		Template: TemplateLifegainUntap,
		Match: func(enabler, payoff feature.Set) bool {
			return enabler.Has(feature.TagLifegain) &&
				payoff.Has(feature.TagUntapSelf)
		},
	},
	{
		ID:       RuleFlickerValue,
		Template: TemplateFlickerValue,
		Match: func(enabler, payoff feature.Set) bool {
			return enabler.Has(feature.TagFlicker) &&
				payoff.Has(feature.TagETBTrigger)
		},
	},
	{
		ID:       RuleTokenSacrifice,
		Template: TemplateTokenSacrifice,
		Match: func(enabler, payoff feature.Set) bool {
			return enabler.Has(feature.TagTokenCreate) &&
				payoff.Has(feature.TagSacOutlet)
		},
	},
	{
		ID:       RuleSacRecursion,
		Template: TemplateSacRecursion,
		Match: func(enabler, payoff feature.Set) bool {
			return enabler.Has(feature.TagSacOutlet) &&
				payoff.Has(feature.TagRecur)
		},
	},
	{
		ID:       RuleStormFuel,
		Template: TemplateStormFuel,
		Match: func(enabler, payoff feature.Set) bool {
			return (enabler.Has(feature.TagManaAdd) || enabler.Has(feature.TagCostReduce)) &&
				payoff.Has(feature.TagStormCount)
		},
	},
}
