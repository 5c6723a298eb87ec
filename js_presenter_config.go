package reactive

type jsPresenterConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// JSPresenterOption configures the JS presenter.
type JSPresenterOption func(*jsPresenterConfig)

// JSWithProgramCache applies a ProgramCache to the JS presenter.
func JSWithProgramCache(cache ProgramCache) JSPresenterOption {
	return func(cfg *jsPresenterConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry applies a FunctionRegistry to the JS presenter.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSPresenterOption {
	return func(cfg *jsPresenterConfig) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

func applyJSPresenterOptions(opts []JSPresenterOption) jsPresenterConfig {
	cfg := jsPresenterConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
