package catalog

// Category is one tab of the catalog.
type Category struct {
	Name  string
	Items []Item
}

// Index groups items by category, keeping the order in which each category
// was first seen.
type Index struct {
	categories []Category
	positions  map[string]int
}

// Categorize partitions items into categories. Items without a category land
// in MiscCategory. An empty input yields an empty index.
func Categorize(items []Item) Index {
	idx := Index{positions: map[string]int{}}
	for _, item := range items {
		idx.add(item.CategoryOrMisc(), item)
	}
	return idx
}

// singleBucket files every item under name, preserving order.
func singleBucket(name string, items []Item) Index {
	idx := Index{positions: map[string]int{}}
	for _, item := range items {
		idx.add(name, item)
	}
	return idx
}

func (ix *Index) add(name string, item Item) {
	pos, ok := ix.positions[name]
	if !ok {
		pos = len(ix.categories)
		ix.positions[name] = pos
		ix.categories = append(ix.categories, Category{Name: name})
	}
	ix.categories[pos].Items = append(ix.categories[pos].Items, item)
}

// Len returns the number of categories.
func (ix Index) Len() int {
	return len(ix.categories)
}

// Names returns category names in first-occurrence order.
func (ix Index) Names() []string {
	names := make([]string, len(ix.categories))
	for i, category := range ix.categories {
		names[i] = category.Name
	}
	return names
}

// Items returns the items filed under name, or nil when the category is unknown.
func (ix Index) Items(name string) []Item {
	pos, ok := ix.positions[name]
	if !ok {
		return nil
	}
	return ix.categories[pos].Items
}

// Categories returns every category in order.
func (ix Index) Categories() []Category {
	return ix.categories
}

// First returns the name of the first category, falling back to MiscCategory
// for an empty index.
func (ix Index) First() string {
	if len(ix.categories) == 0 {
		return MiscCategory
	}
	return ix.categories[0].Name
}
