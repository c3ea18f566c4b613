package expr

// Operator is a binary operator
type Operator int

const (
	OpEq Operator = iota
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpAnd
	OpOr
	OpPlus
	OpMinus
	OpMultiply
	OpDivide
	OpModulo
)

const maxPrecedence = 100

var operatorNames = [...]string{
	OpEq:       "=",
	OpNotEq:    "!=",
	OpLt:       "<",
	OpLtEq:     "<=",
	OpGt:       ">",
	OpGtEq:     ">=",
	OpAnd:      "AND",
	OpOr:       "OR",
	OpPlus:     "+",
	OpMinus:    "-",
	OpMultiply: "*",
	OpDivide:   "/",
	OpModulo:   "%",
}

func (op Operator) String() string {
	if int(op) < len(operatorNames) {
		return operatorNames[op]
	}
	return "?"
}

// Precedence orders operators from loosest (OR) to tightest (* / %)
func (op Operator) Precedence() int {
	switch op {
	case OpOr:
		return 5
	case OpAnd:
		return 10
	case OpEq, OpNotEq, OpLt, OpLtEq, OpGt, OpGtEq:
		return 20
	case OpPlus, OpMinus:
		return 30
	default:
		return 40
	}
}

// IsComparison reports whether op compares its operands
func (op Operator) IsComparison() bool {
	return op >= OpEq && op <= OpGtEq
}

func Eq(l, r Expr) *BinaryExpr    { return Binary(l, OpEq, r) }
func NotEq(l, r Expr) *BinaryExpr { return Binary(l, OpNotEq, r) }
func Lt(l, r Expr) *BinaryExpr    { return Binary(l, OpLt, r) }
func LtEq(l, r Expr) *BinaryExpr  { return Binary(l, OpLtEq, r) }
func Gt(l, r Expr) *BinaryExpr    { return Binary(l, OpGt, r) }
func GtEq(l, r Expr) *BinaryExpr  { return Binary(l, OpGtEq, r) }

// And folds exprs with AND; a single expression is returned as is
func And(exprs ...Expr) Expr { return fold(OpAnd, exprs) }

// Or folds exprs with OR
func Or(exprs ...Expr) Expr { return fold(OpOr, exprs) }

func fold(op Operator, exprs []Expr) Expr {
	if len(exprs) == 0 {
		return nil
	}
	acc := exprs[0]
	for _, e := range exprs[1:] {
		acc = Binary(acc, op, e)
	}
	return acc
}
