//go:build !js_eval

package reactive

import "fmt"

// NewJSPresenter is unavailable without the js_eval build tag.
func NewJSPresenter(expression string, opts ...JSPresenterOption) (Presenter, error) {
	_ = applyJSPresenterOptions(opts)
	return nil, fmt.Errorf("reactive: js presenter requires the js_eval build tag")
}

func jsPresenterAvailable() bool {
	return false
}
