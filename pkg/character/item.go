package character

// ItemType classifies an item.
type ItemType string

const (
	ItemWeapon     ItemType = "weapon"
	ItemArmor      ItemType = "armor"
	ItemConsumable ItemType = "consumable"
	ItemMisc       ItemType = "misc"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemWeapon, ItemArmor, ItemConsumable, ItemMisc:
		return true
	}
	return false
}

// Slot names one of the eight equipment slots.
type Slot string

const (
	SlotMainHand  Slot = "mainHand"
	SlotOffHand   Slot = "offHand"
	SlotHead      Slot = "head"
	SlotChest     Slot = "chest"
	SlotHands     Slot = "hands"
	SlotLegs      Slot = "legs"
	SlotFeet      Slot = "feet"
	SlotAccessory Slot = "accessory"
)

// Slots lists every equipment slot in display order.
var Slots = []Slot{SlotMainHand, SlotOffHand, SlotHead, SlotChest, SlotHands, SlotLegs, SlotFeet, SlotAccessory}

func (s Slot) Valid() bool {
	switch s {
	case SlotMainHand, SlotOffHand, SlotHead, SlotChest, SlotHands, SlotLegs, SlotFeet, SlotAccessory:
		return true
	}
	return false
}

// Item is something the character carries or wears. An empty EquipSlot
// means the item cannot be equipped.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Effect      string   `json:"effect,omitempty"`
	Type        ItemType `json:"type"`
	EquipSlot   Slot     `json:"equipSlot,omitempty"`
}

// Equipable reports whether the item names a valid slot.
func (i Item) Equipable() bool {
	return i.EquipSlot != "" && i.EquipSlot.Valid()
}

// Equipment holds at most one item per slot.
type Equipment struct {
	MainHand  *Item `json:"mainHand,omitempty"`
	OffHand   *Item `json:"offHand,omitempty"`
	Head      *Item `json:"head,omitempty"`
	Chest     *Item `json:"chest,omitempty"`
	Hands     *Item `json:"hands,omitempty"`
	Legs      *Item `json:"legs,omitempty"`
	Feet      *Item `json:"feet,omitempty"`
	Accessory *Item `json:"accessory,omitempty"`
}

func (e *Equipment) slot(s Slot) **Item {
	switch s {
	case SlotMainHand:
		return &e.MainHand
	case SlotOffHand:
		return &e.OffHand
	case SlotHead:
		return &e.Head
	case SlotChest:
		return &e.Chest
	case SlotHands:
		return &e.Hands
	case SlotLegs:
		return &e.Legs
	case SlotFeet:
		return &e.Feet
	case SlotAccessory:
		return &e.Accessory
	}
	return nil
}

// Get returns the item in slot s, or nil when empty or unknown.
func (e *Equipment) Get(s Slot) *Item {
	p := e.slot(s)
	if p == nil {
		return nil
	}
	return *p
}

// Items returns the equipped items in slot order.
func (e *Equipment) Items() []Item {
	var items []Item
	for _, s := range Slots {
		if it := e.Get(s); it != nil {
			items = append(items, *it)
		}
	}
	return items
}

func (e Equipment) clone() Equipment {
	var out Equipment
	for _, s := range Slots {
		if it := e.Get(s); it != nil {
			cp := *it
			*out.slot(s) = &cp
		}
	}
	return out
}
