package character

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/d20"
)

var (
	ErrItemNotFound     = errors.New("item not found in inventory")
	ErrNotEquipable     = errors.New("item cannot be equipped")
	ErrInvalidSlot      = errors.New("invalid equipment slot")
	ErrUnknownAttribute = errors.New("unknown attribute")
)

// Skill is a named ability. Names are unique within a character.
type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Character is the player's sheet.
type Character struct {
	Name         string       `json:"name"`
	Gender       string       `json:"gender"`
	Class        string       `json:"class"`
	Level        int          `json:"level"`
	Stats        Stats        `json:"stats"`
	CurrentStats DerivedStats `json:"currentStats"`
	Skills       []Skill      `json:"skills"`
	Inventory    []Item       `json:"inventory"`
	Equipment    Equipment    `json:"equipment"`
}

// Default returns the starting adventurer at full health.
func Default() Character {
	c := Character{
		Name:   "Eric",
		Gender: "male",
		Class:  "Wandering Adventurer",
		Level:  1,
		Stats: Stats{
			Strength:     14,
			Dexterity:    12,
			Constitution: 14,
			Intelligence: 10,
			Wisdom:       10,
			Charisma:     8,
		},
		Skills: []Skill{
			{Name: "Wilderness Survival", Description: "You can find food, water and your bearings in the wild. Survival checks in forests and mountains have advantage."},
			{Name: "Simple Weapon Training", Description: "You are trained with short swords, daggers and clubs and fight at full strength with them."},
		},
		Inventory: []Item{
			{ID: "1", Name: "Worn Short Sword", Description: "An ordinary iron sword, good enough for self defense.", Type: ItemWeapon, Effect: "Attack 1d6", EquipSlot: SlotMainHand},
			{ID: "2", Name: "Traveler's Coat", Description: "Threadbare, but it keeps off wind and rain.", Type: ItemArmor, Effect: "AC +1", EquipSlot: SlotChest},
			{ID: "3", Name: "Rations", Description: "Hard bread that keeps well.", Type: ItemConsumable, Effect: "Restores 5 HP"},
			{ID: "4", Name: "Leather Boots", Description: "Sturdy boots for long journeys.", Type: ItemArmor, Effect: "Dexterity checks +1", EquipSlot: SlotFeet},
		},
	}
	c.RecomputeDerived()
	return c
}

// Clone returns a deep copy.
func (c Character) Clone() Character {
	out := c
	out.Skills = slices.Clone(c.Skills)
	out.Inventory = slices.Clone(c.Inventory)
	out.Equipment = c.Equipment.clone()
	return out
}

// RecomputeDerived refreshes CurrentStats from Stats.
func (c *Character) RecomputeDerived() {
	c.CurrentStats = Recompute(c.Stats, c.CurrentStats)
}

// HasSkill reports whether a skill with the given name is known.
func (c *Character) HasSkill(name string) bool {
	return slices.ContainsFunc(c.Skills, func(s Skill) bool { return s.Name == name })
}

// HasItem reports whether an item with id is carried or equipped.
func (c *Character) HasItem(id string) bool {
	if c.inventoryIndex(id) >= 0 {
		return true
	}
	return slices.ContainsFunc(c.Equipment.Items(), func(it Item) bool { return it.ID == id })
}

// ItemCount counts inventory plus equipped items.
func (c *Character) ItemCount() int {
	return len(c.Inventory) + len(c.Equipment.Items())
}

func (c *Character) inventoryIndex(id string) int {
	return slices.IndexFunc(c.Inventory, func(it Item) bool { return it.ID == id })
}

// ProfileUpdate carries optional profile edits. Nil fields are untouched.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Class  *string `json:"class,omitempty"`
	Gender *string `json:"gender,omitempty"`
}

// ApplyProfile applies u and returns an audit line for each changed name or
// class. Empty values are ignored.
func (c *Character) ApplyProfile(u ProfileUpdate) []string {
	var notices []string
	if u.Class != nil && *u.Class != "" && *u.Class != c.Class {
		c.Class = *u.Class
		notices = append(notices, fmt.Sprintf("[Profile] Class changed to: %s", c.Class))
	}
	if u.Name != nil && *u.Name != "" && *u.Name != c.Name {
		c.Name = *u.Name
		notices = append(notices, fmt.Sprintf("[Profile] Name changed to: %s", c.Name))
	}
	if u.Gender != nil && *u.Gender != "" {
		c.Gender = *u.Gender
	}
	return notices
}

// Actor builds a d20 actor from the sheet.
func (c *Character) Actor() (*d20.Actor, error) {
	id := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(c.Name), " ", "_"))
	if id == "" {
		id = "pc"
	}
	actor, err := d20.NewActor(id).
		WithHP(max(1, c.CurrentStats.MaxHP)).
		WithAC(10).
		WithAttributes(c.Stats.ToAttributes()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}
	if c.CurrentStats.HP != c.CurrentStats.MaxHP && c.CurrentStats.HP > 0 {
		if err := actor.SetHP(c.CurrentStats.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return actor, nil
}

// Score returns the ability score for attr. It reads through the d20 actor
// and falls back to Stats if the actor cannot be built.
func (c *Character) Score(attr Attribute) (int, error) {
	if !attr.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAttribute, attr)
	}
	if actor, err := c.Actor(); err == nil {
		if v, ok := actor.Attribute(string(attr)); ok {
			return v, nil
		}
	}
	v, _ := c.Stats.Get(attr)
	return v, nil
}
