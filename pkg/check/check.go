// Package check resolves attribute checks and free dice rolls.
package check

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
)

var ErrInvalidDie = errors.New("die must have at least two sides")

// Request asks the player to roll against one of their attributes.
type Request struct {
	Attribute  character.Attribute `json:"attribute"`
	Difficulty int                 `json:"difficulty"`
	Reason     string              `json:"reason"`
}

// Validate checks the request shape.
func (r Request) Validate() error {
	if !r.Attribute.Valid() {
		return fmt.Errorf("check attribute %q is not a known attribute", r.Attribute)
	}
	if strings.TrimSpace(r.Reason) == "" {
		return errors.New("check reason is required")
	}
	return nil
}

// Result is a resolved check.
type Result struct {
	Attribute character.Attribute `json:"attribute"`
	Roll      int                 `json:"roll"`
	Modifier  int                 `json:"modifier"`
	Total     int                 `json:"total"`
	DC        int                 `json:"dc"`
	Success   bool                `json:"success"`
}

// Modifier returns floor((score-10)/2).
func Modifier(score int) int {
	return character.FloorDiv(score-10, 2)
}

// Resolve applies a d20 roll to a check against the given score.
// Meeting the DC succeeds.
func Resolve(req Request, score, roll int) Result {
	mod := Modifier(score)
	total := roll + mod
	return Result{
		Attribute: req.Attribute,
		Roll:      roll,
		Modifier:  mod,
		Total:     total,
		DC:        req.Difficulty,
		Success:   total >= req.Difficulty,
	}
}

func (r Result) outcome() string {
	if r.Success {
		return "Success"
	}
	return "Failure"
}

// AuditMessage is the system log line for the resolved check.
//
// Example: [System] Dexterity check: 1d20(14) + modifier(1) = 15 (DC 15) -> [Success]
func (r Result) AuditMessage() string {
	return fmt.Sprintf("[System] %s check: 1d20(%d) + modifier(%d) = %d (DC %d) -> [%s]",
		DisplayName(r.Attribute), r.Roll, r.Modifier, r.Total, r.DC, r.outcome())
}

// FollowUpPrompt is sent to the Game Master after a check resolves.
func (r Result) FollowUpPrompt() string {
	return fmt.Sprintf("[System message] The player completed a %s check. Total: %d (DC: %d). Result: %s. Narrate what happens next based on this result.",
		r.Attribute, r.Total, r.DC, r.outcome())
}

// DisplayName title-cases an attribute for display.
func DisplayName(attr character.Attribute) string {
	return cases.Title(language.English).String(string(attr))
}

// RollD20 rolls a single d20.
func RollD20(roller dice.Roller) (int, error) {
	n, err := roller.Roll(20)
	if err != nil {
		return 0, fmt.Errorf("failed to roll d20: %w", err)
	}
	return n, nil
}

// LooseRoll is a free roll made outside any check.
type LooseRoll struct {
	Sides  int `json:"sides"`
	Result int `json:"result"`
}

// RollLoose rolls one die with the given number of sides.
func RollLoose(roller dice.Roller, sides int) (LooseRoll, error) {
	if sides < 2 {
		return LooseRoll{}, fmt.Errorf("%w: d%d", ErrInvalidDie, sides)
	}
	n, err := roller.Roll(sides)
	if err != nil {
		return LooseRoll{}, fmt.Errorf("failed to roll d%d: %w", sides, err)
	}
	return LooseRoll{Sides: sides, Result: n}, nil
}

func (l LooseRoll) AuditMessage() string {
	return fmt.Sprintf("[System] Player freely rolled a D%d, result: %d", l.Sides, l.Result)
}

// Prompt forwards the roll to the Game Master.
func (l LooseRoll) Prompt() string {
	return fmt.Sprintf("I rolled a D%d and got %d. Decide the outcome based on the current situation.", l.Sides, l.Result)
}
