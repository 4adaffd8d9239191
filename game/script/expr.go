package script

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
	"go.uber.org/zap"
)

// ErrNotAllowed is returned when an expression references anything outside
// the whitelist.
var ErrNotAllowed = errors.New("script: identifier not allowed")

// ExprEngine evaluates the common RMMV script idioms with govaluate instead
// of a JS runtime. Only whitelisted functions and parameters are accepted.
type ExprEngine struct {
	logger *zap.Logger
}

// NewExprEngine creates an ExprEngine.
func NewExprEngine(logger *zap.Logger) *ExprEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExprEngine{logger: logger}
}

// allowedParams are the only free identifiers an expression may use.
var allowedParams = map[string]bool{"mapId": true, "eventId": true}

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// rewrites map RMMV accessor calls onto whitelist functions. Order matters:
// the self-switch forms strip the array brackets of their key.
var rewrites = []rewrite{
	{regexp.MustCompile(`\$gameSelfSwitches\.value\(\s*\[([^\]]*)\]\s*\)`), `ss($1)`},
	{regexp.MustCompile(`\$gameSelfSwitches\.setValue\(\s*\[([^\]]*)\]\s*,`), `setSS($1,`},
	{regexp.MustCompile(`\$gameVariables\.value\(`), `v(`},
	{regexp.MustCompile(`\$gameVariables\.setValue\(`), `setV(`},
	{regexp.MustCompile(`\$gameSwitches\.value\(`), `s(`},
	{regexp.MustCompile(`\$gameSwitches\.setValue\(`), `setS(`},
	{regexp.MustCompile(`\$gameMap\.mapId\(\s*\)`), `mapId`},
	{regexp.MustCompile(`this\._eventId`), `eventId`},
	{regexp.MustCompile(`Math\.(floor|ceil|round|abs|min|max|randomInt)\(`), `$1(`},
	{regexp.MustCompile(`===`), `==`},
	{regexp.MustCompile(`!==`), `!=`},
}

// Translate rewrites src into govaluate syntax.
func Translate(src string) string {
	out := strings.TrimSpace(src)
	out = strings.TrimSuffix(out, ";")
	for _, r := range rewrites {
		out = r.re.ReplaceAllString(out, r.repl)
	}
	return out
}

func (e *ExprEngine) functions(sc *ScriptContext) map[string]govaluate.ExpressionFunction {
	num := func(args []interface{}, i int) float64 {
		if i >= len(args) {
			return 0
		}
		switch v := args[i].(type) {
		case float64:
			return v
		case bool:
			if v {
				return 1
			}
		}
		return 0
	}
	str := func(args []interface{}, i int) string {
		if i >= len(args) {
			return ""
		}
		s, _ := args[i].(string)
		return s
	}
	truthy := func(args []interface{}, i int) bool {
		if i >= len(args) {
			return false
		}
		switch v := args[i].(type) {
		case bool:
			return v
		case float64:
			return v != 0
		case string:
			return v != ""
		}
		return false
	}
	need := func(ok bool, name string) error {
		if !ok {
			return fmt.Errorf("%w: %s unavailable", ErrNotAllowed, name)
		}
		return nil
	}

	return map[string]govaluate.ExpressionFunction{
		"v": func(args ...interface{}) (interface{}, error) {
			if err := need(sc != nil && sc.GetVariable != nil, "v"); err != nil {
				return nil, err
			}
			return float64(sc.GetVariable(int(num(args, 0)))), nil
		},
		"setV": func(args ...interface{}) (interface{}, error) {
			if err := need(sc != nil && sc.SetVariable != nil, "setV"); err != nil {
				return nil, err
			}
			sc.SetVariable(int(num(args, 0)), int(num(args, 1)))
			return num(args, 1), nil
		},
		"s": func(args ...interface{}) (interface{}, error) {
			if err := need(sc != nil && sc.GetSwitch != nil, "s"); err != nil {
				return nil, err
			}
			return sc.GetSwitch(int(num(args, 0))), nil
		},
		"setS": func(args ...interface{}) (interface{}, error) {
			if err := need(sc != nil && sc.SetSwitch != nil, "setS"); err != nil {
				return nil, err
			}
			sc.SetSwitch(int(num(args, 0)), truthy(args, 1))
			return truthy(args, 1), nil
		},
		"ss": func(args ...interface{}) (interface{}, error) {
			if err := need(sc != nil && sc.GetSelfSwitch != nil, "ss"); err != nil {
				return nil, err
			}
			return sc.GetSelfSwitch(int(num(args, 0)), int(num(args, 1)), str(args, 2)), nil
		},
		"setSS": func(args ...interface{}) (interface{}, error) {
			if err := need(sc != nil && sc.SetSelfSwitch != nil, "setSS"); err != nil {
				return nil, err
			}
			sc.SetSelfSwitch(int(num(args, 0)), int(num(args, 1)), str(args, 2), truthy(args, 3))
			return truthy(args, 3), nil
		},
		"floor": func(args ...interface{}) (interface{}, error) { return math.Floor(num(args, 0)), nil },
		"ceil":  func(args ...interface{}) (interface{}, error) { return math.Ceil(num(args, 0)), nil },
		"round": func(args ...interface{}) (interface{}, error) { return math.Floor(num(args, 0) + 0.5), nil },
		"abs":   func(args ...interface{}) (interface{}, error) { return math.Abs(num(args, 0)), nil },
		"min": func(args ...interface{}) (interface{}, error) {
			return math.Min(num(args, 0), num(args, 1)), nil
		},
		"max": func(args ...interface{}) (interface{}, error) {
			return math.Max(num(args, 0), num(args, 1)), nil
		},
		"randomInt": func(args ...interface{}) (interface{}, error) {
			return float64(sc.randomInt(int(num(args, 0)))), nil
		},
	}
}

func (e *ExprEngine) compile(src string, sc *ScriptContext) (*govaluate.EvaluableExpression, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(Translate(src), e.functions(sc))
	if err != nil {
		return nil, fmt.Errorf("script: parse %q: %w", src, err)
	}
	for _, tok := range expr.Tokens() {
		if tok.Kind != govaluate.VARIABLE {
			continue
		}
		name, _ := tok.Value.(string)
		if strings.Contains(name, ".") || !allowedParams[name] {
			return nil, fmt.Errorf("%w: %v", ErrNotAllowed, tok.Value)
		}
	}
	return expr, nil
}

// Eval evaluates a single expression. Numbers come back as float64.
func (e *ExprEngine) Eval(ctx context.Context, src string, sc *ScriptContext) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	expr, err := e.compile(src, sc)
	if err != nil {
		e.logger.Warn("expression rejected", zap.String("src_preview", truncate(src, 80)), zap.Error(err))
		return nil, err
	}
	params := map[string]interface{}{"mapId": 0.0, "eventId": 0.0}
	if sc != nil {
		params["mapId"] = float64(sc.MapID)
		params["eventId"] = float64(sc.EventID)
	}
	out, err := expr.Evaluate(params)
	if err != nil {
		return nil, fmt.Errorf("script: eval %q: %w", src, err)
	}
	return out, nil
}

// Exec runs each statement of src in order; statements are separated by
// newlines or by semicolons outside string literals.
func (e *ExprEngine) Exec(ctx context.Context, src string, sc *ScriptContext) error {
	for _, stmt := range splitStatements(src) {
		if strings.HasPrefix(stmt, "//") {
			continue
		}
		if _, err := e.Eval(ctx, stmt, sc); err != nil {
			return err
		}
	}
	return nil
}

// splitStatements splits src on newlines and on semicolons that are not
// inside a quoted string. Empty statements are dropped.
func splitStatements(src string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if stmt := strings.TrimSpace(cur.String()); stmt != "" {
			out = append(out, stmt)
		}
		cur.Reset()
	}
	escaped := false
	for _, r := range src {
		if r == '\n' {
			// a newline also ends an unterminated string
			quote, escaped = 0, false
			flush()
			continue
		}
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
		case r == '"' || r == '\'':
			quote = r
		case r == ';':
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}
