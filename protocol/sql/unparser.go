package sql

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guileen/remotetable/expr"
)

// ErrUnsupportedExpression is returned when an expression has no rendering
// in the target dialect
var ErrUnsupportedExpression = errors.New("expression not supported by remote dialect")

// pushableFunctions lists scalar functions every supported dialect understands
var pushableFunctions = map[string]bool{
	"lower":    true,
	"upper":    true,
	"length":   true,
	"abs":      true,
	"coalesce": true,
	"trim":     true,
}

// Unparse renders e as SQL text for the dialect
func (t DatabaseType) Unparse(e expr.Expr) (string, error) {
	u := unparser{dialect: t}
	return u.unparse(e, 0)
}

type unparser struct {
	dialect DatabaseType
}

func (u unparser) unparse(e expr.Expr, parentPrec int) (string, error) {
	switch n := e.(type) {
	case *expr.Column:
		if n.Relation != "" {
			return u.dialect.QuoteIdentifier(n.Relation) + "." + u.dialect.QuoteIdentifier(n.Name), nil
		}
		return u.dialect.QuoteIdentifier(n.Name), nil
	case *expr.Literal:
		return u.literal(n.Value)
	case *expr.BinaryExpr:
		return u.binary(n, parentPrec)
	case *expr.Not:
		inner, err := u.unparse(n.Expr, 0)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case *expr.IsNull:
		inner, err := u.operand(n.Expr)
		if err != nil {
			return "", err
		}
		if n.Negated {
			return inner + " IS NOT NULL", nil
		}
		return inner + " IS NULL", nil
	case *expr.InList:
		return u.inList(n)
	case *expr.Between:
		return u.between(n)
	case *expr.Like:
		return u.like(n)
	case *expr.ScalarFunction:
		return u.function(n)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedExpression, e)
	}
}

// operand renders e for use as an operand of a postfix or keyword operator
func (u unparser) operand(e expr.Expr) (string, error) {
	s, err := u.unparse(e, 0)
	if err != nil {
		return "", err
	}
	if _, ok := e.(*expr.BinaryExpr); ok {
		return "(" + s + ")", nil
	}
	return s, nil
}

func (u unparser) binary(b *expr.BinaryExpr, parentPrec int) (string, error) {
	prec := b.Op.Precedence()
	left, err := u.unparse(b.Left, prec)
	if err != nil {
		return "", err
	}
	right, err := u.unparse(b.Right, prec+1)
	if err != nil {
		return "", err
	}

	var s string
	switch {
	case b.Op == expr.OpModulo && u.dialect == Oracle:
		return "MOD(" + left + ", " + right + ")", nil
	case b.Op == expr.OpNotEq:
		s = left + " <> " + right
	default:
		s = left + " " + b.Op.String() + " " + right
	}
	if prec < parentPrec {
		return "(" + s + ")", nil
	}
	return s, nil
}

func (u unparser) inList(in *expr.InList) (string, error) {
	if len(in.List) == 0 {
		return "", fmt.Errorf("%w: empty IN list", ErrUnsupportedExpression)
	}
	target, err := u.operand(in.Expr)
	if err != nil {
		return "", err
	}
	items := make([]string, len(in.List))
	for i, item := range in.List {
		if items[i], err = u.unparse(item, 0); err != nil {
			return "", err
		}
	}
	op := " IN ("
	if in.Negated {
		op = " NOT IN ("
	}
	return target + op + strings.Join(items, ", ") + ")", nil
}

func (u unparser) between(b *expr.Between) (string, error) {
	target, err := u.operand(b.Expr)
	if err != nil {
		return "", err
	}
	low, err := u.operand(b.Low)
	if err != nil {
		return "", err
	}
	high, err := u.operand(b.High)
	if err != nil {
		return "", err
	}
	op := " BETWEEN "
	if b.Negated {
		op = " NOT BETWEEN "
	}
	return target + op + low + " AND " + high, nil
}

func (u unparser) like(l *expr.Like) (string, error) {
	target, err := u.operand(l.Expr)
	if err != nil {
		return "", err
	}
	pattern, err := u.operand(l.Pattern)
	if err != nil {
		return "", err
	}
	op := "LIKE"
	if l.CaseInsensitive {
		if u.dialect == Postgres {
			op = "ILIKE"
		} else {
			target = "LOWER(" + target + ")"
			pattern = "LOWER(" + pattern + ")"
		}
	}
	if l.Negated {
		op = "NOT " + op
	}
	return target + " " + op + " " + pattern, nil
}

func (u unparser) function(f *expr.ScalarFunction) (string, error) {
	name := strings.ToLower(f.Name)
	if !pushableFunctions[name] {
		return "", fmt.Errorf("%w: function %s", ErrUnsupportedExpression, f.Name)
	}
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		s, err := u.unparse(a, 0)
		if err != nil {
			return "", err
		}
		args[i] = s
	}
	return strings.ToUpper(name) + "(" + strings.Join(args, ", ") + ")", nil
}

func (u unparser) literal(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if u.dialect == Oracle || u.dialect == DM {
			if x {
				return "1", nil
			}
			return "0", nil
		}
		if x {
			return "TRUE", nil
		}
		return "FALSE", nil
	case string:
		return u.quoteString(x), nil
	case []byte:
		return u.bytesLiteral(x), nil
	case time.Time:
		return u.timestampLiteral(x), nil
	case float32:
		return u.floatLiteral(float64(x), 32)
	case float64:
		return u.floatLiteral(x, 64)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x), nil
	default:
		return "", fmt.Errorf("%w: literal of type %T", ErrUnsupportedExpression, v)
	}
}

func (u unparser) quoteString(s string) string {
	s = strings.ReplaceAll(s, "'", "''")
	if u.dialect == MySQL {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + s + "'"
}

func (u unparser) bytesLiteral(b []byte) string {
	h := hex.EncodeToString(b)
	switch u.dialect {
	case Postgres:
		return `'\x` + h + `'::bytea`
	case Oracle, DM:
		return "HEXTORAW('" + strings.ToUpper(h) + "')"
	default:
		return "X'" + strings.ToUpper(h) + "'"
	}
}

func (u unparser) timestampLiteral(ts time.Time) string {
	text := ts.UTC().Format("2006-01-02 15:04:05.999999")
	switch u.dialect {
	case Postgres, Oracle, DM:
		return "TIMESTAMP '" + text + "'"
	default:
		return "'" + text + "'"
	}
}

func (u unparser) floatLiteral(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: non-finite float %v", ErrUnsupportedExpression, f)
	}
	return strconv.FormatFloat(f, 'g', -1, bits), nil
}
