package domain

// Category is a user-defined label grouping for transactions.
// Subcategories are an ordered list of unique strings. A transaction's
// category field may match the category name or any subcategory; no
// referential integrity is enforced.
type Category struct {
	CategoryID    string   `json:"categoryID"` // Primary Key (e.g., UUID)
	UserID        string   `json:"userID"`     // Owning user (NON-NULL)
	Name          string   `json:"name"`
	Type          FlowType `json:"type"`
	Subcategories []string `json:"subcategories"`

	AuditFields
}

// Matches reports whether label refers to this category, either by its
// top-level name or one of its subcategories.
func (c Category) Matches(label string) bool {
	if label == c.Name {
		return true
	}
	for _, sub := range c.Subcategories {
		if label == sub {
			return true
		}
	}
	return false
}
