package sex

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-recutils/recsel/recfile"
)

var errDivideByZero = errors.New("division by zero")

// EvalOptions configures a single evaluation. CaseInsensitive mirrors the
// recsel -i flag: string equality, ordering, and regex matching all fold
// case when set.
type EvalOptions struct {
	CaseInsensitive bool
}

// Eval evaluates the compiled expression against r. Evaluation is total: it
// never panics, and a missing field or type mismatch surfaces as an Error
// Value rather than aborting. Callers filtering records should use
// Value.Truthy() as the final step, exactly as the top-level filter loop in
// the query package does.
func (e *Expr) Eval(r recfile.Record, opts EvalOptions) Value {
	return evalNode(e.root, r, opts)
}

func evalNode(n node, r recfile.Record, opts EvalOptions) Value {
	switch t := n.(type) {
	case literalNode:
		return t.value

	case fieldRefNode:
		if t.count {
			return IntValue(int64(r.Count(t.name)))
		}
		if t.indexed {
			v, ok := r.At(t.name, t.index)
			if !ok {
				return ErrorValue(MissingField)
			}
			return coerceField(t.name, v, r.Descriptor)
		}
		v, ok := r.Get(t.name)
		if !ok {
			return ErrorValue(MissingField)
		}
		return coerceField(t.name, v, r.Descriptor)

	case negNode:
		v := evalNode(t.operand, r, opts)
		if v.IsError() {
			return v
		}
		n, isReal, ok := numeric(v)
		if !ok {
			return ErrorValue(TypeMismatch)
		}
		if isReal {
			return RealValue(-n)
		}
		return IntValue(-int64(n))

	case notNode:
		v := evalNode(t.operand, r, opts).Truthy()
		if v.IsError() {
			return v
		}
		return BoolValue(!v.B)

	case andNode:
		l := evalNode(t.left, r, opts).Truthy()
		if l.IsError() {
			return l
		}
		if !l.B {
			return BoolValue(false)
		}
		rv := evalNode(t.right, r, opts).Truthy()
		if rv.IsError() {
			return rv
		}
		return BoolValue(rv.B)

	case orNode:
		l := evalNode(t.left, r, opts).Truthy()
		if l.IsError() {
			return l
		}
		if l.B {
			return BoolValue(true)
		}
		rv := evalNode(t.right, r, opts).Truthy()
		if rv.IsError() {
			return rv
		}
		return BoolValue(rv.B)

	case impliesNode:
		l := evalNode(t.left, r, opts).Truthy()
		if l.IsError() {
			return l
		}
		if !l.B {
			return BoolValue(true)
		}
		rv := evalNode(t.right, r, opts).Truthy()
		if rv.IsError() {
			return rv
		}
		return BoolValue(rv.B)

	case ternaryNode:
		c := evalNode(t.cond, r, opts).Truthy()
		if c.IsError() {
			return c
		}
		if c.B {
			return evalNode(t.then, r, opts)
		}
		return evalNode(t.els, r, opts)

	case compareNode:
		l := evalNode(t.left, r, opts)
		rv := evalNode(t.right, r, opts)
		return compareValues(t.op, l, rv, opts.CaseInsensitive)

	case concatNode:
		l := evalNode(t.left, r, opts)
		if l.IsError() {
			return l
		}
		rv := evalNode(t.right, r, opts)
		if rv.IsError() {
			return rv
		}
		return StringValue(l.String() + rv.String())

	case addsubNode:
		l := evalNode(t.left, r, opts)
		rv := evalNode(t.right, r, opts)
		switch t.op {
		case opAdd:
			return arith(l, rv, func(a, b float64) (float64, bool, error) { return a + b, false, nil })
		default:
			return arith(l, rv, func(a, b float64) (float64, bool, error) { return a - b, false, nil })
		}

	case muldivNode:
		l := evalNode(t.left, r, opts)
		rv := evalNode(t.right, r, opts)
		switch t.op {
		case opMul:
			return arith(l, rv, func(a, b float64) (float64, bool, error) { return a * b, false, nil })
		case opDiv:
			return arith(l, rv, func(a, b float64) (float64, bool, error) {
				if b == 0 {
					return 0, false, errDivideByZero
				}
				return a / b, true, nil
			})
		default:
			return arith(l, rv, func(a, b float64) (float64, bool, error) {
				if b == 0 {
					return 0, false, errDivideByZero
				}
				return math.Mod(a, b), false, nil
			})
		}

	default:
		return ErrorValue(TypeMismatch)
	}
}

// coerceField converts a raw field value to the Value its descriptor's
// declared %type calls for (§4.6): int/range become Int, real becomes Real,
// bool becomes Bool, and a value that fails to parse as its declared type is
// Error(TypeMismatch) rather than silently falling back to a string. Every
// other type (including no descriptor, or no %type declared for name) is
// left as a plain String.
func coerceField(name, value string, d *recfile.Descriptor) Value {
	if d == nil {
		return StringValue(value)
	}
	ts, ok := d.TypeOf(name)
	if !ok {
		return StringValue(value)
	}
	switch ts.Kind {
	case recfile.TypeInt, recfile.TypeRange:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return ErrorValue(TypeMismatch)
		}
		return IntValue(n)
	case recfile.TypeReal:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return ErrorValue(TypeMismatch)
		}
		return RealValue(f)
	case recfile.TypeBool:
		b, ok := parseBoolValue(value)
		if !ok {
			return ErrorValue(TypeMismatch)
		}
		return BoolValue(b)
	default:
		return StringValue(value)
	}
}

// parseBoolValue implements §4.1's bool type-spec: yes|no|true|false|0|1,
// case-insensitive.
func parseBoolValue(value string) (b bool, ok bool) {
	switch strings.ToLower(value) {
	case "yes", "true", "1":
		return true, true
	case "no", "false", "0":
		return false, true
	default:
		return false, false
	}
}

// arith applies op to l and r after coercing both to numeric, propagating
// any Error operand and reporting TypeMismatch when either side cannot be
// coerced. The callback reports whether its result should be treated as
// Real even when both inputs were Int (used by / which always yields Real).
func arith(l, r Value, op func(a, b float64) (result float64, forceReal bool, err error)) Value {
	if l.IsError() {
		return l
	}
	if r.IsError() {
		return r
	}
	ln, lReal, lok := numeric(l)
	rn, rReal, rok := numeric(r)
	if !lok || !rok {
		return ErrorValue(TypeMismatch)
	}
	result, forceReal, err := op(ln, rn)
	if err != nil {
		return ErrorValue(DivideByZero)
	}
	if lReal || rReal || forceReal {
		return RealValue(result)
	}
	return IntValue(int64(result))
}

// compareValues implements the comparison family: numeric comparison
// when both sides coerce to a number, case-sensitive or case-folded string
// comparison otherwise, and unanchored regex search for ~ / !~.
func compareValues(op compareOp, l, r Value, ci bool) Value {
	if l.IsError() {
		return l
	}
	if r.IsError() {
		return r
	}
	if op == opMatch || op == opNotMatch {
		pattern := r.String()
		if ci {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return ErrorValue(BadRegex)
		}
		matched := re.MatchString(l.String())
		if op == opNotMatch {
			return BoolValue(!matched)
		}
		return BoolValue(matched)
	}

	ln, lReal, lok := numeric(l)
	rn, rReal, rok := numeric(r)
	if lok && rok {
		switch op {
		case opEq:
			if lReal == rReal {
				return BoolValue(ln == rn)
			}
		case opNe:
			if lReal == rReal {
				return BoolValue(ln != rn)
			}
		case opLt:
			return BoolValue(ln < rn)
		case opLe:
			return BoolValue(ln <= rn)
		case opGt:
			return BoolValue(ln > rn)
		case opGe:
			return BoolValue(ln >= rn)
		}
	}

	ls, rs := l.String(), r.String()
	if ci {
		ls, rs = strings.ToLower(ls), strings.ToLower(rs)
	}
	switch op {
	case opEq:
		return BoolValue(ls == rs)
	case opNe:
		return BoolValue(ls != rs)
	case opLt:
		return BoolValue(ls < rs)
	case opLe:
		return BoolValue(ls <= rs)
	case opGt:
		return BoolValue(ls > rs)
	case opGe:
		return BoolValue(ls >= rs)
	default:
		return ErrorValue(TypeMismatch)
	}
}
