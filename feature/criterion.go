package feature

import (
	"sort"
	"strings"
)

// Assignment requires the named feature to have Value.
type Assignment struct {
	Name  string
	Value bool
}

// Criterion is a partial assignment of features; features not mentioned
// are "don't care". Criteria are immutable values kept in canonical
// (name-sorted) order, so two criteria with the same assignments have the
// same Key.
type Criterion struct {
	items []Assignment
}

// NewCriterion builds a criterion from a name -> value map.
func NewCriterion(m map[string]bool) Criterion {
	c := Criterion{items: make([]Assignment, 0, len(m))}
	for name, v := range m {
		c.items = append(c.items, Assignment{Name: name, Value: v})
	}
	sort.Slice(c.items, func(i, j int) bool { return c.items[i].Name < c.items[j].Name })
	return c
}

// With returns a copy of c with name assigned to v.
func (c Criterion) With(name string, v bool) Criterion {
	idx := sort.Search(len(c.items), func(i int) bool { return c.items[i].Name >= name })
	items := make([]Assignment, 0, len(c.items)+1)
	items = append(items, c.items[:idx]...)
	items = append(items, Assignment{Name: name, Value: v})
	if idx < len(c.items) && c.items[idx].Name == name {
		idx++
	}
	items = append(items, c.items[idx:]...)
	return Criterion{items: items}
}

// Value returns the required value of name and whether it is assigned.
func (c Criterion) Value(name string) (bool, bool) {
	idx := sort.Search(len(c.items), func(i int) bool { return c.items[i].Name >= name })
	if idx < len(c.items) && c.items[idx].Name == name {
		return c.items[idx].Value, true
	}
	return false, false
}

func (c Criterion) Len() int {
	return len(c.items)
}

func (c Criterion) Assignments() []Assignment {
	out := make([]Assignment, len(c.items))
	copy(out, c.items)
	return out
}

// Key is a canonical encoding suitable as a map key.
func (c Criterion) Key() string {
	var sb strings.Builder
	for _, a := range c.items {
		sb.WriteString(a.Name)
		if a.Value {
			sb.WriteString("\x1f1\x1e")
		} else {
			sb.WriteString("\x1f0\x1e")
		}
	}
	return sb.String()
}

func (c Criterion) String() string {
	parts := make([]string, len(c.items))
	for i, a := range c.items {
		if a.Value {
			parts[i] = a.Name
		} else {
			parts[i] = "!" + a.Name
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
