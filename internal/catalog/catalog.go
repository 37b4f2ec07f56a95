package catalog

// Catalog is an immutable snapshot of the items on offer. A nil *Catalog means
// no snapshot has been received yet; its methods behave like an empty catalog.
type Catalog struct {
	items     []Item
	byID      map[int64]int
	index     Index
	inventory bool
}

// New builds a shop catalog indexed by category.
func New(items []Item) *Catalog {
	c := build(items)
	c.index = Categorize(c.items)
	return c
}

// NewInventory builds the player's inventory-as-catalog, filed under a single
// InventoryCategory tab.
func NewInventory(items []Item) *Catalog {
	c := build(items)
	c.index = singleBucket(InventoryCategory, c.items)
	c.inventory = true
	return c
}

func build(items []Item) *Catalog {
	c := &Catalog{
		items: make([]Item, 0, len(items)),
		byID:  make(map[int64]int, len(items)),
	}
	for _, item := range items {
		// ids are unique per snapshot; a duplicate keeps the first entry for lookups
		if _, seen := c.byID[item.ID]; !seen {
			c.byID[item.ID] = len(c.items)
		}
		c.items = append(c.items, item.clone())
	}
	return c
}

// IsInventory reports whether the catalog mirrors the player's inventory.
func (c *Catalog) IsInventory() bool {
	return c != nil && c.inventory
}

// Loaded reports whether a snapshot exists.
func (c *Catalog) Loaded() bool {
	return c != nil
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Items returns a copy of the items in snapshot order.
func (c *Catalog) Items() []Item {
	if c == nil {
		return nil
	}
	out := make([]Item, len(c.items))
	for i, item := range c.items {
		out[i] = item.clone()
	}
	return out
}

// Lookup finds an item by id.
func (c *Catalog) Lookup(id int64) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	pos, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[pos].clone(), true
}

// Index returns the category index.
func (c *Catalog) Index() Index {
	if c == nil {
		return Index{}
	}
	return c.index
}

// WithSold returns a new catalog whose counts are reduced by the given
// quantities. Unlimited items are untouched. When dropEmpty is set, items
// whose count reaches zero are removed, which is how sold inventory rows
// disappear. The receiver is not modified.
func (c *Catalog) WithSold(quantities map[int64]int, dropEmpty bool) *Catalog {
	if c == nil {
		return nil
	}
	items := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		sold, hit := quantities[item.ID]
		if !hit {
			items = append(items, item)
			continue
		}
		if item.Count == nil && !dropEmpty {
			items = append(items, item)
			continue
		}
		remaining := sold * -1
		if item.Count != nil {
			remaining += *item.Count
		}
		if remaining < 0 {
			remaining = 0
		}
		if remaining == 0 && dropEmpty {
			continue
		}
		next := item.clone()
		next.Count = &remaining
		items = append(items, next)
	}
	if c.inventory {
		return NewInventory(items)
	}
	return New(items)
}
