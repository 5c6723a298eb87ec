package reactive

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprPresenterOption configures an expr-backed presenter.
type ExprPresenterOption func(*exprPresenter)

// ExprWithProgramCache wires a ProgramCache into the expr presenter.
func ExprWithProgramCache(cache ProgramCache) ExprPresenterOption {
	return func(p *exprPresenter) {
		p.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr presenter.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprPresenterOption {
	return func(p *exprPresenter) {
		if registry == nil {
			return
		}
		p.registry = registry.Clone()
	}
}

// exprPresenter evaluates a fixed expression against the present context
// using github.com/expr-lang/expr.
type exprPresenter struct {
	expression string
	cache      ProgramCache
	registry   *FunctionRegistry
}

// NewExprPresenter constructs a Presenter backed by expr-lang/expr. The
// expression sees `value`, `state`, `now`, `args` and `metadata`, plus any
// registered functions.
func NewExprPresenter(expression string, opts ...ExprPresenterOption) (Presenter, error) {
	if expression == "" {
		return nil, wrapPresenterError("expr", fmt.Errorf("expression must not be empty"))
	}
	p := &exprPresenter{expression: expression}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Present implements Presenter.
func (p *exprPresenter) Present(ctx PresentContext) (any, error) {
	ctx = ctx.withDefaultNow().withDefaultMaps()
	env := p.environment(ctx)
	if p.cache == nil {
		result, err := exprlang.Eval(p.expression, env)
		if err != nil {
			return nil, wrapPresentationError("expr", p.expression, ctx.WidgetID, err)
		}
		return result, nil
	}
	program, err := p.loadOrCompile()
	if err != nil {
		return nil, wrapPresentationError("expr", p.expression, ctx.WidgetID, err)
	}
	result, err := exprlang.Run(program, env)
	if err != nil {
		return nil, wrapPresentationError("expr", p.expression, ctx.WidgetID, err)
	}
	return result, nil
}

func (p *exprPresenter) loadOrCompile() (*exprvm.Program, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(p.expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range p.registryNames() {
		fn := p.registryFunction(name)
		options = append(options, exprlang.Function(name, fn))
	}
	program, err := exprlang.Compile(p.expression, options...)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		p.cache.Set(p.expression, program)
	}
	return program, nil
}

func (p *exprPresenter) environment(ctx PresentContext) map[string]any {
	env := map[string]any{
		"value":    ctx.Value,
		"state":    ctx.State,
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
	if p.registry != nil {
		env["call"] = func(name string, arguments ...any) (any, error) {
			return p.registry.Call(name, arguments...)
		}
		for _, name := range p.registry.Names() {
			fn := name
			env[fn] = func(arguments ...any) (any, error) {
				return p.registry.Call(fn, arguments...)
			}
		}
	}
	return env
}

func (p *exprPresenter) registryNames() []string {
	if p == nil || p.registry == nil {
		return nil
	}
	return p.registry.Names()
}

func (p *exprPresenter) registryFunction(name string) func(...any) (any, error) {
	if p == nil || p.registry == nil {
		return nil
	}
	return func(arguments ...any) (any, error) {
		return p.registry.Call(name, arguments...)
	}
}
