package entities

import "strings"

// Value is the content of a reviewable field or one side of a Change. It is
// either a scalar (Text) or an ordered sequence (Items). Display carries a
// human readable rendering for structured content such as a place and does
// not take part in equality.
type Value struct {
	Text    string
	Items   []string
	Display string
}

func TextValue(text string) Value {
	return Value{Text: text}
}

func ListValue(items ...string) Value {
	return Value{Items: append([]string(nil), items...)}
}

func (v Value) IsEmpty() bool {
	return strings.TrimSpace(v.Text) == "" && len(v.Items) == 0
}

// Equal compares content. Two empty values are equal even when one holds
// only whitespace, matching IsEmpty.
func (v Value) Equal(other Value) bool {
	if v.IsEmpty() && other.IsEmpty() {
		return true
	}
	if v.Text != other.Text || len(v.Items) != len(other.Items) {
		return false
	}
	for i := range v.Items {
		if v.Items[i] != other.Items[i] {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	if v.Display != "" {
		return v.Display
	}
	if v.Text != "" || len(v.Items) == 0 {
		return v.Text
	}
	return strings.Join(v.Items, ", ")
}

func (v Value) clone() Value {
	if v.Items != nil {
		v.Items = append([]string(nil), v.Items...)
	}
	return v
}

// FieldValue pairs a field key with its content. Ordered slices of FieldValue
// are the input to DiffAll.
type FieldValue struct {
	Key   string
	Value Value
}
