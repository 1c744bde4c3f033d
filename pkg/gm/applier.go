package gm

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/check"
)

// Result is the outcome of applying one reply.
type Result struct {
	Character    character.Character
	Narrative    string
	PendingCheck *check.Request
	Notice       string // empty when nothing worth reporting changed
}

// Applier applies a Game Master reply to a copy of a character.
type Applier struct {
	char   character.Character
	resp   *Response
	logger *slog.Logger
}

// NewApplier creates an applier. The given character is cloned and never
// modified.
func NewApplier(c character.Character, resp *Response, logger *slog.Logger) *Applier {
	return &Applier{
		char:   c.Clone(),
		resp:   resp,
		logger: logger,
	}
}

// Apply is shorthand for NewApplier(c, resp, logger).Apply().
func Apply(c character.Character, resp *Response, logger *slog.Logger) Result {
	return NewApplier(c, resp, logger).Apply()
}

// Apply runs the reducer. A check request preempts every other field.
func (a *Applier) Apply() Result {
	if a.resp == nil {
		return Result{Character: a.char}
	}

	res := Result{Narrative: a.resp.Narrative}

	if a.resp.CheckRequest != nil {
		req := *a.resp.CheckRequest
		res.PendingCheck = &req
		res.Character = a.char
		if a.resp.HasStateChanges() && a.logger != nil {
			a.logger.Debug("Check requested, discarding simultaneous state changes",
				"attribute", req.Attribute,
				"difficulty", req.Difficulty)
		}
		return res
	}

	a.handleHPChange()
	a.handleSPChange()
	a.handleStatUpdates()
	a.handleNewSkills()
	a.handleNewItems()
	a.handleRemovedItems()

	res.Character = a.char
	res.Notice = Notice(a.resp)
	return res
}

func (a *Applier) handleHPChange() {
	if a.resp.HPChange == nil {
		return
	}
	d := &a.char.CurrentStats
	d.HP = character.Clamp(d.HP+*a.resp.HPChange, 0, d.MaxHP)
}

func (a *Applier) handleSPChange() {
	if a.resp.SPChange == nil {
		return
	}
	d := &a.char.CurrentStats
	d.SP = character.Clamp(d.SP+*a.resp.SPChange, 0, d.MaxSP)
}

// handleStatUpdates overwrites named stats and recomputes derived vitals
func (a *Applier) handleStatUpdates() {
	if len(a.resp.StatUpdates) == 0 {
		return
	}
	for k, v := range a.resp.StatUpdates {
		if err := a.char.Stats.Set(character.Attribute(k), v); err != nil && a.logger != nil {
			a.logger.Warn("Ignoring stat update", "stat", k, "error", err)
		}
	}
	a.char.RecomputeDerived()
}

// handleNewSkills appends skills whose name is not already known
func (a *Applier) handleNewSkills() {
	for _, s := range a.resp.NewSkills {
		if a.char.HasSkill(s.Name) {
			continue
		}
		a.char.Skills = append(a.char.Skills, s)
	}
}

// handleNewItems appends new items. An id already carried or equipped is
// replaced with a fresh one so later removals stay unambiguous.
func (a *Applier) handleNewItems() {
	for _, it := range a.resp.NewItems {
		if a.char.HasItem(it.ID) {
			fresh := uuid.NewString()
			if a.logger != nil {
				a.logger.Warn("New item id collides with an existing item, assigning a new id",
					"item", it.Name,
					"id", it.ID,
					"new_id", fresh)
			}
			it.ID = fresh
		}
		a.char.Inventory = append(a.char.Inventory, it)
	}
}

// handleRemovedItems filters the inventory. Unknown ids are ignored.
func (a *Applier) handleRemovedItems() {
	if len(a.resp.RemovedItemIDs) == 0 {
		return
	}
	before := len(a.char.Inventory)
	a.char.Inventory = slices.DeleteFunc(a.char.Inventory, func(it character.Item) bool {
		return slices.Contains(a.resp.RemovedItemIDs, it.ID)
	})
	if missing := len(a.resp.RemovedItemIDs) - (before - len(a.char.Inventory)); missing > 0 && a.logger != nil {
		a.logger.Debug("Some removed item ids were not in the inventory", "missing", missing)
	}
}

// Notice summarizes the reply's HP, SP, gained items, learned skills and
// stat updates. Removals are not reported.
//
// Example: Status update: HP -3 | Items gained: Rope | Attributes updated
func Notice(resp *Response) string {
	if resp == nil {
		return ""
	}
	var parts []string
	if resp.HPChange != nil && *resp.HPChange != 0 {
		parts = append(parts, fmt.Sprintf("HP %+d", *resp.HPChange))
	}
	if resp.SPChange != nil && *resp.SPChange != 0 {
		parts = append(parts, fmt.Sprintf("SP %+d", *resp.SPChange))
	}
	if len(resp.NewItems) > 0 {
		names := make([]string, len(resp.NewItems))
		for i, it := range resp.NewItems {
			names[i] = it.Name
		}
		parts = append(parts, "Items gained: "+strings.Join(names, ", "))
	}
	if len(resp.NewSkills) > 0 {
		names := make([]string, len(resp.NewSkills))
		for i, s := range resp.NewSkills {
			names[i] = s.Name
		}
		parts = append(parts, "Skills learned: "+strings.Join(names, ", "))
	}
	if len(resp.StatUpdates) > 0 {
		parts = append(parts, "Attributes updated")
	}
	if len(parts) == 0 {
		return ""
	}
	return "Status update: " + strings.Join(parts, " | ")
}
