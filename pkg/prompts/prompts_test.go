package prompts

import (
	"strings"
	"testing"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/gm"
)

func TestBuildSettingsPrompt(t *testing.T) {
	tests := []struct {
		name     string
		settings gm.Settings
		contains []string
	}{
		{
			name:     "provided text is verbatim",
			settings: gm.Settings{WorldSetting: "Steam and brass.", ScriptContent: "Escape the airship."},
			contains: []string{"Steam and brass.", "Escape the airship."},
		},
		{
			name:     "blank falls back",
			settings: gm.Settings{WorldSetting: " ", ScriptContent: ""},
			contains: []string{fallbackWorld, fallbackScript},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSettingsPrompt(tt.settings)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("BuildSettingsPrompt() missing %q in %q", want, got)
				}
			}
		})
	}
}

func TestBuildCharacterPrompt(t *testing.T) {
	c := character.Default()
	if err := c.Equip("1"); err != nil {
		t.Fatalf("Equip() error = %v", err)
	}

	got := BuildCharacterPrompt(c)

	for _, want := range []string{
		"Eric (male), Level 1 Wandering Adventurer",
		"HP 35/35, SP 24/24",
		"Strength 14 (+2)",
		"Charisma 8 (-1)",
		"Skills: Wilderness Survival, Simple Weapon Training",
		"Equipped: mainHand: Worn Short Sword",
		"Rations [id 3]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("BuildCharacterPrompt() missing %q\n%s", want, got)
		}
	}
	if strings.Contains(got, "Worn Short Sword [id 1]") {
		t.Error("equipped item should not be listed in inventory")
	}
}
