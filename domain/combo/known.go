package combo

// KnownCombos is the curated seed corpus of real, human-verified Pauper
// combos. It anchors the training set with ground truth and keeps the
// discovery search from re-reporting combos everyone already knows.
var KnownCombos = []KnownCombo{
	{
		Cards:       []string{"Ghostly Flicker", "Archaeomancer", "Mnemonic Wall"},
		Description: "Infinite mana with land untap",
		Steps: []string{
			"Have Archaeomancer or Mnemonic Wall on the battlefield",
			"Cast Ghostly Flicker targeting the creature and a land",
			"Flicker returns Ghostly Flicker to your hand",
			"Untap the land to generate mana",
			"Repeat for infinite mana and flickers",
		},
		Requirements: []string{"2 creatures that return instants/sorceries", "Ghostly Flicker", "lands for mana"},
		Result:       "Infinite mana, infinite ETB triggers, infinite flicker effects",
		Type:         "infinite",
	},
	{
		Cards:       []string{"Famished Paladin", "Presence of Gond", "Soul Warden"},
		Description: "Infinite creature tokens and life",
		Steps: []string{
			"Enchant Famished Paladin with Presence of Gond",
			"Have Soul Warden on battlefield",
			"Tap Famished Paladin to create an Elf token with Presence of Gond",
			"Soul Warden triggers, you gain 1 life",
			"Famished Paladin untaps from life gain",
			"Repeat for infinite tokens and life",
		},
		Requirements: []string{"Famished Paladin", "Presence of Gond", "Soul Warden or similar life gain trigger"},
		Result:       "Infinite 1/1 Elf tokens, infinite life gain",
		Type:         "infinite",
	},
	{
		Cards:       []string{"Midnight Guard", "Presence of Gond"},
		Description: "Infinite creature tokens",
		Steps: []string{
			"Enchant Midnight Guard with Presence of Gond",
			"Tap Midnight Guard to create a 1/1 Elf token",
			"Midnight Guard untaps when the token enters",
			"Repeat for infinite tokens",
		},
		Requirements: []string{"Midnight Guard", "Presence of Gond"},
		Result:       "Infinite 1/1 Elf tokens",
		Type:         "infinite",
	},
	{
		Cards:       []string{"Sage's Row Denizen", "Mortuary Mire", "Mnemonic Wall", "Ghostly Flicker"},
		Description: "Infinite mill combo",
		Steps: []string{
			"Have Sage's Row Denizen and Mnemonic Wall on battlefield",
			"Cast Ghostly Flicker targeting Mnemonic Wall and Mortuary Mire",
			"Mortuary Mire returns Ghostly Flicker to top of library",
			"Mnemonic Wall returns Ghostly Flicker to hand",
			"Sage's Row Denizen mills opponent for each ETB",
			"Repeat until opponent is milled out",
		},
		Requirements: []string{"Sage's Row Denizen", "Mnemonic Wall", "Ghostly Flicker", "Mortuary Mire", "enough mana"},
		Result:       "Infinite mill, infinite ETB triggers",
		Type:         "infinite",
	},
	{
		Cards:       []string{"Freed from the Real", "Zealous Conscripts", "land that produces 2+ mana"},
		Description: "Infinite mana combo",
		Steps: []string{
			"Enchant a creature that taps for mana with Freed from the Real",
			"Tap creature for 2+ mana",
			"Pay 1 blue to untap with Freed from the Real",
			"Net 1+ mana per cycle",
			"Repeat for infinite mana",
		},
		Requirements: []string{"Creature that taps for 2+ mana", "Freed from the Real"},
		Result:       "Infinite mana",
		Type:         "infinite",
	},
	{
		Cards:       []string{"Peregrine Drake", "Ghostly Flicker", "Archaeomancer"},
		Description: "Classic infinite mana combo",
		Steps: []string{
			"Have Archaeomancer and Peregrine Drake on battlefield",
			"Cast Ghostly Flicker targeting both creatures",
			"Archaeomancer returns Ghostly Flicker",
			"Peregrine Drake untaps 5 lands",
			"Net 2 mana per loop (5 untapped - 3 to cast)",
			"Repeat for infinite mana",
		},
		Requirements: []string{"Peregrine Drake", "Archaeomancer or Mnemonic Wall", "Ghostly Flicker", "5 lands"},
		Result:       "Infinite mana, infinite ETB triggers",
		Type:         "infinite",
	},
	{
		Cards:       []string{"Frilled Deathspitter", "Guilty Conscience", "Loran's Escape", "Gut Shot"},
		Description: "Infinite damage combo using indestructible and damage redirection",
		Steps: []string{
			"Enchant Frilled Deathspitter with Guilty Conscience",
			"Give Frilled Deathspitter indestructible using Loran's Escape, Blacksmith's Skill, or Tyr's Blessing",
			"Deal damage to Frilled Deathspitter",
			"Frilled Deathspitter's ability triggers, dealing 1 damage to target opponent",
			"Guilty Conscience triggers, dealing 1 damage to Frilled Deathspitter",
			"The trigger pair repeats because Frilled Deathspitter has indestructible",
			"Loop continues until opponent loses all life",
		},
		Requirements: []string{
			"Frilled Deathspitter on battlefield",
			"Guilty Conscience enchanting Frilled Deathspitter",
			"Indestructible protection (Loran's Escape, Blacksmith's Skill, or Tyr's Blessing)",
			"Damage source (Gut Shot, Lightning Bolt, combat damage, or blocking)",
		},
		Result: "Infinite damage to target opponent",
		Type:   "infinite",
	},
}

// KnownKeys returns the idempotency keys of every known combo.
func KnownKeys(known []KnownCombo) map[string]bool {
	keys := make(map[string]bool, len(known))
	for _, k := range known {
		keys[Key(k.Cards)] = true
	}
	return keys
}
