package prompts

import (
	"fmt"
	"strings"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/check"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/gm"
)

// BaseSystemPrompt sets up the Game Master role and the reply protocol.
const BaseSystemPrompt = `You are the Game Master (GM) of a tabletop role-playing game. You run the game with rules in the style of D&D 5e. You describe the world, voice every NPC and decide what the player's actions lead to. You never speak or act for the player character.

### Checks
- When the player attempts something whose outcome is uncertain, do not narrate the result. Describe the attempt and return a checkRequest naming the attribute and the difficulty (DC).
- DC guide: 10 easy, 15 medium, 20 hard, 25 very hard.
- A checkRequest pauses the turn. Do not change HP, SP, attributes, skills or items in the same reply; those follow once the roll is reported back to you.
- When a check result or a free dice roll is reported to you, narrate its consequences.

### State changes
- hpChange and spChange are deltas. Use negative values for damage and exertion.
- statUpdates overwrites attributes with new absolute values. Use it rarely.
- newSkills only when the player has truly learned something. Never repeat a skill they already have.
- newItems need a unique id, a name, a description and a type (weapon, armor, consumable, misc). Add equipSlot only if the item can be worn or wielded.
- removedItemIds lists ids from the current inventory that are consumed, lost or given away.

### Output
Reply with a single JSON object only, no prose around it. "narrative" is required and may use markdown. Every other field is optional; leave it out when nothing changes.`

// ResponseFormatPrompt lists the reply fields for providers without structured output.
const ResponseFormatPrompt = `Reply format:
{"narrative": string, "checkRequest"?: {"attribute": "strength|dexterity|constitution|intelligence|wisdom|charisma", "difficulty": int, "reason": string}, "hpChange"?: int, "spChange"?: int, "statUpdates"?: {attribute: int}, "newSkills"?: [{"name", "description"}], "newItems"?: [{"id", "name", "description", "type", "effect"?, "equipSlot"?}], "removedItemIds"?: [string]}`

const (
	fallbackWorld  = "A standard medieval sword-and-sorcery world."
	fallbackScript = "Free exploration."
)

// BuildSettingsPrompt renders the world and script blocks. Blank blocks fall
// back to generic text.
func BuildSettingsPrompt(s gm.Settings) string {
	world := strings.TrimSpace(s.WorldSetting)
	if world == "" {
		world = fallbackWorld
	}
	script := strings.TrimSpace(s.ScriptContent)
	if script == "" {
		script = fallbackScript
	}
	return "### World\n" + world + "\n\n### Script\n" + script
}

// BuildCharacterPrompt describes the player character for the system prompt.
//
// Example output:
//
//	### Player Character
//	Eric (male), Level 1 Wandering Adventurer
//	HP 35/35, SP 24/24
//	...
func BuildCharacterPrompt(c character.Character) string {
	sb := strings.Builder{}
	sb.WriteString("### Player Character\n")
	sb.WriteString(c.Name)
	if c.Gender != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", c.Gender))
	}
	sb.WriteString(fmt.Sprintf(", Level %d %s\n", c.Level, c.Class))
	sb.WriteString(fmt.Sprintf("HP %d/%d, SP %d/%d\n",
		c.CurrentStats.HP, c.CurrentStats.MaxHP, c.CurrentStats.SP, c.CurrentStats.MaxSP))

	attrs := make([]string, 0, len(character.Attributes))
	for _, a := range character.Attributes {
		v, _ := c.Stats.Get(a)
		attrs = append(attrs, fmt.Sprintf("%s %d (%+d)", check.DisplayName(a), v, check.Modifier(v)))
	}
	sb.WriteString("Attributes: " + strings.Join(attrs, ", ") + "\n")

	if len(c.Skills) > 0 {
		names := make([]string, len(c.Skills))
		for i, s := range c.Skills {
			names[i] = s.Name
		}
		sb.WriteString("Skills: " + strings.Join(names, ", ") + "\n")
	}

	equipped := []string{}
	for _, slot := range character.Slots {
		if it := c.Equipment.Get(slot); it != nil {
			equipped = append(equipped, fmt.Sprintf("%s: %s", slot, it.Name))
		}
	}
	if len(equipped) > 0 {
		sb.WriteString("Equipped: " + strings.Join(equipped, ", ") + "\n")
	} else {
		sb.WriteString("Equipped: nothing\n")
	}

	if len(c.Inventory) > 0 {
		items := make([]string, len(c.Inventory))
		for i, it := range c.Inventory {
			items[i] = fmt.Sprintf("%s [id %s]", it.Name, it.ID)
		}
		sb.WriteString("Inventory: " + strings.Join(items, ", "))
	} else {
		sb.WriteString("Inventory: empty")
	}
	return sb.String()
}
