package ganggames

import (
	"errors"

	"github.com/gang-games/ganggames/view"
)

// errorHandlerView renders view, and the fallback view in its place if view fails.
type errorHandlerView struct {
	// view is the view to render in Render.
	view view.View

	// fallback is the view to render when view.Render returns an error. It receives the
	// failure in the "error" variable and the view errors in "errors".
	fallback view.View

	// err is the error returned by view. It is nil if the view succeeded.
	err error
}

var _ view.View = (*errorHandlerView)(nil)

func newErrorHandlerView(v, fallback view.View) *errorHandlerView {
	return &errorHandlerView{
		view:     v,
		fallback: fallback,
	}
}

func (eh *errorHandlerView) Render(s view.Scope) (any, error) {
	rr, err := eh.view.Render(s)
	if err == nil {
		return rr, nil
	}
	eh.err = err

	errs := []error{err}
	if multierr, ok := err.(interface{ Unwrap() []error }); ok {
		errs = multierr.Unwrap()
	}

	var viewErrs []*view.ViewError
	for _, err := range errs {
		var ve *view.ViewError
		if errors.As(err, &ve) {
			viewErrs = append(viewErrs, ve)
		}
	}

	if eh.fallback == nil {
		return nil, err
	}

	ss := s.Spawn(map[string]any{
		"error":  err.Error(),
		"errors": viewErrs,
	})

	return eh.fallback.Render(ss)
}

// Err returns the error of the wrapped view, if the last Render call failed.
func (eh *errorHandlerView) Err() error {
	return eh.err
}
