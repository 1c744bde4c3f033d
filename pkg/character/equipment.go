package character

import (
	"fmt"
	"slices"
)

// Equip moves an item from the inventory into its slot. An item already in
// that slot goes back to the end of the inventory. On error nothing changes.
func (c *Character) Equip(itemID string) error {
	idx := c.inventoryIndex(itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	item := c.Inventory[idx]
	if !item.Equipable() {
		return fmt.Errorf("%w: %s", ErrNotEquipable, item.Name)
	}

	c.Inventory = slices.Delete(c.Inventory, idx, idx+1)
	slot := c.Equipment.slot(item.EquipSlot)
	if displaced := *slot; displaced != nil {
		c.Inventory = append(c.Inventory, *displaced)
	}
	*slot = &item
	return nil
}

// Unequip moves the item in slot to the end of the inventory. An empty slot
// is a no-op.
func (c *Character) Unequip(s Slot) error {
	slot := c.Equipment.slot(s)
	if slot == nil {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}
	if *slot == nil {
		return nil
	}
	c.Inventory = append(c.Inventory, **slot)
	*slot = nil
	return nil
}
