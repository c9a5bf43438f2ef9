package query

import (
	"regexp"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/oakwood-commons/tbx/internal/table"
)

// Filter predicates are CEL expressions evaluated once per row with every
// column of the step's input schema bound as a variable of its CEL type.
// Compilation happens once per step application; evaluation is pure, so the
// whole pipeline stays deterministic.

func celType(d table.DType) *cel.Type {
	switch d {
	case table.DTypeInt:
		return cel.IntType
	case table.DTypeFloat:
		return cel.DoubleType
	case table.DTypeBool:
		return cel.BoolType
	case table.DTypeString:
		return cel.StringType
	case table.DTypeTime:
		return cel.TimestampType
	default:
		return cel.DynType
	}
}

func newFilterEnv(schema []table.Field) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(schema)+3)
	for _, f := range schema {
		opts = append(opts, cel.Variable(f.Name, celType(f.Type)))
	}
	opts = append(opts,
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
	return cel.NewEnv(opts...)
}

var undeclaredRefRe = regexp.MustCompile(`undeclared reference to '([^']+)'`)

// compileFilter compiles the predicate against the input schema, mapping CEL
// compile failures onto the query error taxonomy. The returned set names the
// columns the expression actually reads; nil means the set is unknown and
// every column must be bound.
func compileFilter(expr string, schema []table.Field) (cel.Program, map[string]bool, error) {
	env, err := newFilterEnv(schema)
	if err != nil {
		return nil, nil, &Error{Kind: ErrBadExpression, Detail: "filter environment", Err: err}
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		msg := issues.Err().Error()
		if m := undeclaredRefRe.FindStringSubmatch(msg); m != nil {
			return nil, nil, unknownColumn(m[1])
		}
		if strings.Contains(msg, "found no matching overload") {
			return nil, nil, &Error{Kind: ErrTypeMismatch, Detail: expr, Err: issues.Err()}
		}
		return nil, nil, &Error{Kind: ErrBadExpression, Detail: expr, Err: issues.Err()}
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, nil, &Error{Kind: ErrBadExpression, Detail: expr, Err: err}
	}
	return prg, referencedIdents(ast), nil
}

// referencedIdents walks the parsed expression proto and collects the
// identifiers it reads. Binding only those columns keeps per-row evaluation
// cost proportional to the predicate, not the schema width.
func referencedIdents(ast *cel.Ast) map[string]bool {
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil
	}
	idents := make(map[string]bool)
	collectIdents(parsed.GetExpr(), idents)
	return idents
}

func collectIdents(e *exprpb.Expr, idents map[string]bool) {
	if e == nil {
		return
	}
	switch k := e.GetExprKind().(type) {
	case *exprpb.Expr_IdentExpr:
		idents[k.IdentExpr.GetName()] = true
	case *exprpb.Expr_SelectExpr:
		collectIdents(k.SelectExpr.GetOperand(), idents)
	case *exprpb.Expr_CallExpr:
		collectIdents(k.CallExpr.GetTarget(), idents)
		for _, arg := range k.CallExpr.GetArgs() {
			collectIdents(arg, idents)
		}
	case *exprpb.Expr_ListExpr:
		for _, el := range k.ListExpr.GetElements() {
			collectIdents(el, idents)
		}
	case *exprpb.Expr_StructExpr:
		for _, entry := range k.StructExpr.GetEntries() {
			collectIdents(entry.GetMapKey(), idents)
			collectIdents(entry.GetValue(), idents)
		}
	case *exprpb.Expr_ComprehensionExpr:
		c := k.ComprehensionExpr
		collectIdents(c.GetIterRange(), idents)
		collectIdents(c.GetAccuInit(), idents)
		collectIdents(c.GetLoopCondition(), idents)
		collectIdents(c.GetLoopStep(), idents)
		collectIdents(c.GetResult(), idents)
	}
}

func (s FilterStep) apply(in *table.Table) (*table.Table, error) {
	schema := in.Schema()
	prg, referenced, err := compileFilter(s.Expr, schema)
	if err != nil {
		return nil, err
	}

	activation := make(map[string]any, len(schema))
	var keep []int
	for r := 0; r < in.NumRows(); r++ {
		rowHasNull := false
		for c, f := range schema {
			if referenced != nil && !referenced[f.Name] {
				continue
			}
			v := in.Cell(r, c)
			if v.IsNull() {
				rowHasNull = true
				activation[f.Name] = types.NullValue
				continue
			}
			activation[f.Name] = v.Native()
		}
		out, _, err := prg.Eval(activation)
		if err != nil {
			// Comparisons against nulls have no overload; such rows simply
			// do not match. Any other runtime failure is a real mismatch.
			if rowHasNull {
				continue
			}
			return nil, &Error{Kind: ErrTypeMismatch, Detail: s.Expr, Err: err}
		}
		b, ok := resultBool(out)
		if !ok {
			return nil, &Error{Kind: ErrTypeMismatch, Detail: "filter must produce a boolean, got " + out.Type().TypeName()}
		}
		if b {
			keep = append(keep, r)
		}
	}
	return in.Gather(keep), nil
}

func resultBool(v ref.Val) (bool, bool) {
	if b, ok := v.(types.Bool); ok {
		return bool(b), true
	}
	return false, false
}
