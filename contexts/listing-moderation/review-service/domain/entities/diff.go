package entities

type ChangeType string

const (
	ChangeTypeAdd    ChangeType = "add"
	ChangeTypeUpdate ChangeType = "update"
	ChangeTypeRemove ChangeType = "remove"
)

type Change struct {
	Field      string
	OldValue   Value
	NewValue   Value
	ChangeType ChangeType
}

// Diff classifies the delta between two values of one field. The boolean is
// false when the values are semantically equal and no Change is recorded.
func Diff(field string, oldValue Value, newValue Value) (Change, bool) {
	if oldValue.Equal(newValue) {
		return Change{}, false
	}
	change := Change{
		Field:    field,
		OldValue: oldValue.clone(),
		NewValue: newValue.clone(),
	}
	switch {
	case oldValue.IsEmpty() && !newValue.IsEmpty():
		change.ChangeType = ChangeTypeAdd
	case newValue.IsEmpty() && !oldValue.IsEmpty():
		change.ChangeType = ChangeTypeRemove
	default:
		change.ChangeType = ChangeTypeUpdate
	}
	return change, true
}

// DiffAll diffs every key of newFields against the same key in oldFields, in
// newFields order. A key missing from oldFields diffs against an empty value.
func DiffAll(oldFields []FieldValue, newFields []FieldValue) []Change {
	previous := make(map[string]Value, len(oldFields))
	for _, item := range oldFields {
		previous[item.Key] = item.Value
	}
	changes := make([]Change, 0, len(newFields))
	for _, item := range newFields {
		if change, ok := Diff(item.Key, previous[item.Key], item.Value); ok {
			changes = append(changes, change)
		}
	}
	return changes
}
