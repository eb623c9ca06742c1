package model

type EditState string

const (
	EditableField EditState = "editable"
	ReadOnlyField EditState = "readonly"
)

// FieldSpec is an explicit form descriptor: field name mapped to label,
// edit state and validation hints, built at compile time instead of
// discovered by reflection.
type FieldSpec struct {
	Name  string            `json:"name"`
	Label string            `json:"label"`
	State EditState         `json:"state"`
	Hints map[string]string `json:"hints"`
}

// AccountFieldSpecs describes the account create/edit form in order.
var AccountFieldSpecs = []FieldSpec{
	{Name: "name", Label: "Account Name", State: EditableField,
		Hints: map[string]string{"MAX_CHARS": "32", "NOT_EMPTY": "true"}},
	{Name: "description", Label: "Description", State: EditableField,
		Hints: map[string]string{"MAX_CHARS": "256", "DISPLAY_LINES": "2"}},
	{Name: "initial_balance", Label: "Initial Balance", State: ReadOnlyField,
		Hints: map[string]string{"NON_NEGATIVE": "true", "HIDE_CENTS": "true"}},
	{Name: "strategy", Label: "Strategy", State: ReadOnlyField, Hints: map[string]string{}},
	{Name: "exclude_from_totals", Label: "Exclude From Totals", State: ReadOnlyField, Hints: map[string]string{}},
}

// OrderFieldSpecs describes the order submission form.
var OrderFieldSpecs = []FieldSpec{
	{Name: "symbol", Label: "Symbol", State: EditableField,
		Hints: map[string]string{"MAX_CHARS": "12", "NOT_EMPTY": "true"}},
	{Name: "side", Label: "Side", State: EditableField, Hints: map[string]string{}},
	{Name: "kind", Label: "Order Type", State: EditableField, Hints: map[string]string{}},
	{Name: "quantity", Label: "Shares", State: EditableField,
		Hints: map[string]string{"POSITIVE": "true"}},
	{Name: "trigger_price", Label: "Trigger Price", State: EditableField,
		Hints: map[string]string{"NON_NEGATIVE": "true"}},
}
