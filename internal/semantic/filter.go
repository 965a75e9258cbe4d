package semantic

import (
	"fmt"
	"strings"
)

// Metadata field names shared between the filter builder and the
// vector-retrieval collaborator.
const (
	FieldOrganizationID = "organization_id"
	FieldOwnerUserID    = "owner_user_id"
	FieldLocation       = "location"
	FieldCategory       = "category"
)

// Condition is a single equality predicate on a metadata field.
type Condition struct {
	Field string
	Value string
}

func (c Condition) String() string {
	return fmt.Sprintf("%s==%q", c.Field, c.Value)
}

// Expr is the structured filter handed to the vector-retrieval collaborator:
// either a single Condition or an And of several. A lone condition is emitted
// directly rather than wrapped in a one-element conjunction; the downstream
// representation expects that shape.
type Expr interface {
	fmt.Stringer
	isExpr()
}

func (Condition) isExpr() {}

// And is an ordered conjunction of equality conditions.
type And struct {
	Conditions []Condition
}

func (And) isExpr() {}

func (a And) String() string {
	parts := make([]string, len(a.Conditions))
	for i, c := range a.Conditions {
		parts[i] = c.String()
	}
	return "AND(" + strings.Join(parts, ", ") + ")"
}

// Filter is the ordered condition list produced by the builder.
type Filter struct {
	conditions []Condition
}

// Conditions returns the conditions in builder order.
func (f Filter) Conditions() []Condition {
	return f.conditions
}

// Expr returns the collaborator-facing representation: the lone condition
// itself when there is exactly one, an And otherwise.
func (f Filter) Expr() Expr {
	if len(f.conditions) == 1 {
		return f.conditions[0]
	}
	return And{Conditions: f.conditions}
}

// Where flattens the filter into the field→value map shape the collaborator's
// where clause accepts. All conditions are equality, so no information is lost.
func (f Filter) Where() map[string]string {
	if len(f.conditions) == 0 {
		return nil
	}
	w := make(map[string]string, len(f.conditions))
	for _, c := range f.conditions {
		w[c.Field] = c.Value
	}
	return w
}
