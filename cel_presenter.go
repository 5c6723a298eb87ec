package reactive

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// CELPresenterOption configures a CEL-backed presenter.
type CELPresenterOption func(*celPresenter)

// CELWithProgramCache wires a ProgramCache into the CEL presenter.
func CELWithProgramCache(cache ProgramCache) CELPresenterOption {
	return func(p *celPresenter) {
		p.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL presenter.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELPresenterOption {
	return func(p *celPresenter) {
		if registry == nil {
			return
		}
		p.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celPresenter struct {
	expression string
	cache      ProgramCache
	registry   *FunctionRegistry
}

// NewCELPresenter constructs a Presenter backed by cel-go. The expression
// sees `value`, `state`, `now`, `args` and `metadata`, plus a
// `call(name, [args])` function when a registry is configured.
func NewCELPresenter(expression string, opts ...CELPresenterOption) (Presenter, error) {
	if expression == "" {
		return nil, fmt.Errorf("reactive: cel presenter: expression must not be empty")
	}
	p := &celPresenter{expression: expression}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Present implements Presenter.
func (p *celPresenter) Present(ctx PresentContext) (any, error) {
	ctx = ctx.withDefaultNow().withDefaultMaps()
	program, err := p.loadOrCompile()
	if err != nil {
		return nil, wrapPresentationError("cel", p.expression, ctx.WidgetID, err)
	}
	out, _, err := program.program.Eval(p.activation(ctx))
	if err != nil {
		return nil, wrapPresentationError("cel", p.expression, ctx.WidgetID, err)
	}
	return out.Value(), nil
}

func (p *celPresenter) loadOrCompile() (*celProgram, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(p.expression); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := p.buildEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(p.expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if p.cache != nil {
		p.cache.Set(p.expression, bundle)
	}
	return bundle, nil
}

func (p *celPresenter) buildEnv() (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("value", celgo.DynType),
		celgo.Variable("state", celgo.DynType),
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("metadata", celgo.DynType),
	}
	if p.registry != nil {
		opts = append(opts, celgo.Function("call", celgo.Overload(
			"call_string_list",
			[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
			celgo.DynType,
			celgo.BinaryBinding(p.callBinding()),
		)))
	}
	return celgo.NewEnv(opts...)
}

func (p *celPresenter) activation(ctx PresentContext) map[string]any {
	activation := map[string]any{
		"value":    ctx.Value,
		"state":    ctx.State,
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
	return activation
}

// callBinding bridges call(name, [args]) into the function registry. CEL
// overloads have fixed arity, so variadic arguments travel as one list.
func (p *celPresenter) callBinding() func(ref.Val, ref.Val) ref.Val {
	return func(nameVal, argsVal ref.Val) ref.Val {
		if p.registry == nil {
			return types.NewErr("reactive: function registry not configured")
		}
		name, ok := nameVal.Value().(string)
		if !ok {
			return types.NewErr("reactive: call name must be string")
		}
		lister, ok := argsVal.(traits.Lister)
		if !ok {
			return types.NewErr("reactive: call arguments must be a list")
		}
		size, ok := lister.Size().Value().(int64)
		if !ok {
			return types.NewErr("reactive: call arguments list size unknown")
		}
		args := make([]any, 0, size)
		for i := int64(0); i < size; i++ {
			args = append(args, lister.Get(types.Int(i)).Value())
		}
		result, err := p.registry.Call(name, args...)
		if err != nil {
			return types.WrapErr(err)
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
