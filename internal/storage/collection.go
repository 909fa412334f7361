package storage

// TimeField is a column holding UTC unix milliseconds.
type TimeField struct{ Column string }

// AmountField is a column holding integer minor currency units.
type AmountField struct{ Column string }

// BoolField is a nullable boolean column; NULL reads as false.
type BoolField struct{ Column string }

// TextField is a text column.
type TextField struct{ Column string }

// TagSet describes a child table of ordered string tags.
type TagSet struct {
	Table    string
	ParentID string
	Position string
	Value    string
}

// Collection describes a table of dated money records and the columns that
// filters address.
type Collection struct {
	Table       string
	ID          TextField
	Date        TimeField
	Amount      AmountField
	Description TextField
	Currency    TextField
	Recurring   BoolField
	CreatedAt   TimeField
	UpdatedAt   TimeField
	Categories  TagSet
}

// Col qualifies a column with the collection's table.
func (c Collection) Col(column string) string {
	return c.Table + "." + column
}

// IncomesCollection is the collection of the incomes module.
func IncomesCollection() Collection {
	mod := ModuleContext{Module: "Incomes"}
	return Collection{
		Table:       mod.Table("items"),
		ID:          TextField{"id"},
		Date:        TimeField{"date"},
		Amount:      AmountField{"amount_minor"},
		Description: TextField{"description"},
		Currency:    TextField{"currency"},
		Recurring:   BoolField{"recurring"},
		CreatedAt:   TimeField{"created_at"},
		UpdatedAt:   TimeField{"updated_at"},
		Categories: TagSet{
			Table:    mod.Table("item_categories"),
			ParentID: "income_id",
			Position: "position",
			Value:    "name",
		},
	}
}
