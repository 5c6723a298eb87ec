//go:build js_eval

package reactive

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsPresenter struct {
	expression string
	cache      ProgramCache
	registry   *FunctionRegistry
}

// NewJSPresenter constructs a Presenter backed by goja. The expression sees
// `value`, `state`, `now`, `args` and `metadata` as globals.
func NewJSPresenter(expression string, opts ...JSPresenterOption) (Presenter, error) {
	if expression == "" {
		return nil, fmt.Errorf("reactive: js presenter: expression must not be empty")
	}
	cfg := applyJSPresenterOptions(opts)
	return &jsPresenter{
		expression: expression,
		cache:      cfg.cache,
		registry:   cfg.registry,
	}, nil
}

func (p *jsPresenter) engineName() string { return "js" }

// Present implements Presenter.
func (p *jsPresenter) Present(ctx PresentContext) (any, error) {
	ctx = ctx.withDefaultNow().withDefaultMaps()
	if p.cache == nil {
		return p.run(ctx, nil)
	}
	program, err := p.loadOrCompile()
	if err != nil {
		return nil, wrapPresentationError("js", p.expression, ctx.WidgetID, err)
	}
	return p.run(ctx, program)
}

func (p *jsPresenter) loadOrCompile() (*goja.Program, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(p.expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", p.wrapExpression(), false)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		p.cache.Set(p.expression, program)
	}
	return program, nil
}

func (p *jsPresenter) run(ctx PresentContext, program *goja.Program) (any, error) {
	vm := goja.New()
	p.injectContext(vm, ctx)
	if program != nil {
		value, err := vm.RunProgram(program)
		if err != nil {
			return nil, wrapPresentationError("js", p.expression, ctx.WidgetID, err)
		}
		return value.Export(), nil
	}
	value, err := vm.RunString(p.wrapExpression())
	if err != nil {
		return nil, wrapPresentationError("js", p.expression, ctx.WidgetID, err)
	}
	return value.Export(), nil
}

func (p *jsPresenter) injectContext(vm *goja.Runtime, ctx PresentContext) {
	vm.Set("value", ctx.Value)
	vm.Set("state", ctx.State)
	vm.Set("now", ctx.timestamp())
	vm.Set("args", ctx.Args)
	vm.Set("metadata", ctx.Metadata)
	if p.registry != nil {
		vm.Set("call", func(name string, arguments ...any) (any, error) {
			return p.registry.Call(name, arguments...)
		})
		for _, name := range p.registry.Names() {
			fn := name
			vm.Set(fn, func(arguments ...any) (any, error) {
				return p.registry.Call(fn, arguments...)
			})
		}
	}
}

func (p *jsPresenter) wrapExpression() string {
	return fmt.Sprintf("(function(){ return (%s); })()", p.expression)
}

func jsPresenterAvailable() bool {
	return true
}
