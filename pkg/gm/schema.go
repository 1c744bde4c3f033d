package gm

import (
	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
)

// ResponseSchema returns the JSON schema of Response for providers that
// support structured output.
func ResponseSchema() map[string]interface{} {
	attrs := make([]string, 0, len(character.Attributes))
	for _, a := range character.Attributes {
		attrs = append(attrs, string(a))
	}
	slots := make([]string, 0, len(character.Slots))
	for _, s := range character.Slots {
		slots = append(slots, string(s))
	}
	statProps := make(map[string]interface{}, len(attrs))
	for _, a := range attrs {
		statProps[a] = map[string]interface{}{"type": "integer"}
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"narrative": map[string]interface{}{
				"type":        "string",
				"description": "Story narration in markdown, describing the scene and the outcome of the player's action.",
			},
			"checkRequest": map[string]interface{}{
				"type":        "object",
				"description": "Only when the player's action has an uncertain outcome that requires a roll.",
				"properties": map[string]interface{}{
					"attribute":  map[string]interface{}{"type": "string", "enum": attrs},
					"difficulty": map[string]interface{}{"type": "integer", "description": "DC: 10 easy, 15 medium, 20 hard, 25 very hard"},
					"reason":     map[string]interface{}{"type": "string"},
				},
				"required": []string{"attribute", "difficulty", "reason"},
			},
			"hpChange": map[string]interface{}{"type": "integer", "description": "HP delta, negative for damage"},
			"spChange": map[string]interface{}{"type": "integer", "description": "SP delta, negative for exertion"},
			"statUpdates": map[string]interface{}{
				"type":       "object",
				"properties": statProps,
			},
			"newSkills": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":        map[string]interface{}{"type": "string"},
						"description": map[string]interface{}{"type": "string"},
					},
					"required": []string{"name", "description"},
				},
			},
			"newItems": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"id":          map[string]interface{}{"type": "string"},
						"name":        map[string]interface{}{"type": "string"},
						"description": map[string]interface{}{"type": "string"},
						"type": map[string]interface{}{
							"type": "string",
							"enum": []string{
								string(character.ItemWeapon),
								string(character.ItemArmor),
								string(character.ItemConsumable),
								string(character.ItemMisc),
							},
						},
						"effect":    map[string]interface{}{"type": "string"},
						"equipSlot": map[string]interface{}{"type": "string", "enum": slots},
					},
					"required": []string{"id", "name", "description", "type"},
				},
			},
			"removedItemIds": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required": []string{"narrative"},
	}
}
