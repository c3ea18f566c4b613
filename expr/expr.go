// Package expr defines the boolean predicate trees a query engine hands to a
// scan: column references, literals and the operators combining them.
//
// Expressions are immutable values. Rewrites build new trees with
// TransformDown and never modify the input.
package expr

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Expr is a node of a predicate tree
type Expr interface {
	fmt.Stringer
	// Children returns the direct sub-expressions in evaluation order
	Children() []Expr
	// WithChildren returns a copy of the node with its children replaced.
	// len(children) must equal len(Children()).
	WithChildren(children []Expr) Expr
}

// Column references a column by name, optionally qualified by a relation
type Column struct {
	Relation string
	Name     string
}

// Col returns an unqualified column reference
func Col(name string) *Column { return &Column{Name: name} }

// QualifiedCol returns a column reference qualified by relation
func QualifiedCol(relation, name string) *Column { return &Column{Relation: relation, Name: name} }

func (c *Column) Children() []Expr           { return nil }
func (c *Column) WithChildren(_ []Expr) Expr { return c }
func (c *Column) String() string {
	if c.Relation != "" {
		return c.Relation + "." + c.Name
	}
	return c.Name
}

// Literal is a constant value. Supported values are nil, bool, all Go integer
// and float kinds, string, []byte and time.Time.
type Literal struct {
	Value any
}

// Lit returns a literal
func Lit(v any) *Literal { return &Literal{Value: v} }

func (l *Literal) Children() []Expr           { return nil }
func (l *Literal) WithChildren(_ []Expr) Expr { return l }
func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case []byte:
		return fmt.Sprintf("X'%X'", v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return "'" + v.Format(time.RFC3339Nano) + "'"
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// BinaryExpr applies a binary operator
type BinaryExpr struct {
	Left  Expr
	Op    Operator
	Right Expr
}

// Binary returns left op right
func Binary(left Expr, op Operator, right Expr) *BinaryExpr {
	return &BinaryExpr{Left: left, Op: op, Right: right}
}

func (b *BinaryExpr) Children() []Expr { return []Expr{b.Left, b.Right} }
func (b *BinaryExpr) WithChildren(children []Expr) Expr {
	return &BinaryExpr{Left: children[0], Op: b.Op, Right: children[1]}
}
func (b *BinaryExpr) String() string {
	return wrap(b.Left, b.Op.Precedence()) + " " + b.Op.String() + " " + wrap(b.Right, b.Op.Precedence()+1)
}

// wrap parenthesizes child binary expressions binding looser than prec
func wrap(e Expr, prec int) string {
	if b, ok := e.(*BinaryExpr); ok && b.Op.Precedence() < prec {
		return "(" + b.String() + ")"
	}
	return e.String()
}

// Not negates a boolean expression
type Not struct {
	Expr Expr
}

func (n *Not) Children() []Expr                  { return []Expr{n.Expr} }
func (n *Not) WithChildren(children []Expr) Expr { return &Not{Expr: children[0]} }
func (n *Not) String() string                    { return "NOT " + wrap(n.Expr, maxPrecedence) }

// IsNull tests an expression for NULL
type IsNull struct {
	Expr    Expr
	Negated bool
}

func (n *IsNull) Children() []Expr { return []Expr{n.Expr} }
func (n *IsNull) WithChildren(children []Expr) Expr {
	return &IsNull{Expr: children[0], Negated: n.Negated}
}
func (n *IsNull) String() string {
	if n.Negated {
		return wrap(n.Expr, maxPrecedence) + " IS NOT NULL"
	}
	return wrap(n.Expr, maxPrecedence) + " IS NULL"
}

// InList tests membership in a list of expressions
type InList struct {
	Expr    Expr
	List    []Expr
	Negated bool
}

func (in *InList) Children() []Expr {
	return append([]Expr{in.Expr}, in.List...)
}
func (in *InList) WithChildren(children []Expr) Expr {
	list := make([]Expr, len(children)-1)
	copy(list, children[1:])
	return &InList{Expr: children[0], List: list, Negated: in.Negated}
}
func (in *InList) String() string {
	items := make([]string, len(in.List))
	for i, e := range in.List {
		items[i] = e.String()
	}
	op := " IN "
	if in.Negated {
		op = " NOT IN "
	}
	return wrap(in.Expr, maxPrecedence) + op + "(" + strings.Join(items, ", ") + ")"
}

// Between tests low <= expr <= high
type Between struct {
	Expr    Expr
	Low     Expr
	High    Expr
	Negated bool
}

func (b *Between) Children() []Expr { return []Expr{b.Expr, b.Low, b.High} }
func (b *Between) WithChildren(children []Expr) Expr {
	return &Between{Expr: children[0], Low: children[1], High: children[2], Negated: b.Negated}
}
func (b *Between) String() string {
	op := " BETWEEN "
	if b.Negated {
		op = " NOT BETWEEN "
	}
	return wrap(b.Expr, maxPrecedence) + op + wrap(b.Low, maxPrecedence) + " AND " + wrap(b.High, maxPrecedence)
}

// Like matches a string pattern
type Like struct {
	Expr            Expr
	Pattern         Expr
	Negated         bool
	CaseInsensitive bool
}

func (l *Like) Children() []Expr { return []Expr{l.Expr, l.Pattern} }
func (l *Like) WithChildren(children []Expr) Expr {
	return &Like{Expr: children[0], Pattern: children[1], Negated: l.Negated, CaseInsensitive: l.CaseInsensitive}
}
func (l *Like) String() string {
	op := "LIKE"
	if l.CaseInsensitive {
		op = "ILIKE"
	}
	if l.Negated {
		op = "NOT " + op
	}
	return wrap(l.Expr, maxPrecedence) + " " + op + " " + wrap(l.Pattern, maxPrecedence)
}

// ScalarFunction calls a named function
type ScalarFunction struct {
	Name string
	Args []Expr
}

// Func returns a scalar function call
func Func(name string, args ...Expr) *ScalarFunction {
	return &ScalarFunction{Name: name, Args: args}
}

func (f *ScalarFunction) Children() []Expr { return f.Args }
func (f *ScalarFunction) WithChildren(children []Expr) Expr {
	args := make([]Expr, len(children))
	copy(args, children)
	return &ScalarFunction{Name: f.Name, Args: args}
}
func (f *ScalarFunction) String() string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.String()
	}
	return f.Name + "(" + strings.Join(args, ", ") + ")"
}
