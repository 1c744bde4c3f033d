// Package gm defines the Game Master contract: the request sent each turn,
// the structured reply, and the reducer that applies a reply to a character.
package gm

import (
	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
)

const (
	DefaultWorldSetting  = "A sword-and-sorcery medieval world. Strange things stir in the misty forest on the kingdom's border; something old and evil seems to be waking."
	DefaultScriptContent = "The player is an adventurer who has just arrived in a border town and hears rumors of the 'Forgotten Ruins' in the tavern. The mayor will reward whoever investigates them."
)

// Settings is the free-text world context supplied on every turn.
type Settings struct {
	WorldSetting  string `json:"worldSetting"`
	ScriptContent string `json:"scriptContent"`
}

// DefaultSettings returns the starting world and hook.
func DefaultSettings() Settings {
	return Settings{
		WorldSetting:  DefaultWorldSetting,
		ScriptContent: DefaultScriptContent,
	}
}

// Request is everything the Game Master sees for one turn.
type Request struct {
	Prompt     string              `json:"prompt"`
	PriorTurns []chat.Turn         `json:"priorTurns"`
	Character  character.Character `json:"character"`
	Settings   Settings            `json:"settings"`
}
