package ganggames

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gang-games/ganggames/view"
)

type mockView struct {
	renderResult any
	renderErr    error
	captureScope bool
	scope        view.Scope
}

func (m *mockView) Render(s view.Scope) (any, error) {
	if m.captureScope {
		m.scope = s
	}
	return m.renderResult, m.renderErr
}

func viewErr(t *testing.T, n int) error {
	t.Helper()
	tpl, err := view.Parse(strings.NewReader(strings.Repeat(`<i g-for="x in n">${x}</i>`, n)), "broken")
	require.NoError(t, err)
	_, err = tpl.Render(view.NewScope(map[string]any{"n": 42}))
	require.Error(t, err)
	return err
}

func TestErrorHandlerView_Render(t *testing.T) {
	tests := []struct {
		name          string
		v             *mockView
		fallback      *mockView
		wantResult    any
		wantErr       bool
		wantFallback  bool
		wantViewErrs  int
		wantErrorText string
	}{
		{
			name:       "successful render - no errors",
			v:          &mockView{renderResult: "success"},
			fallback:   &mockView{renderResult: "fallback", captureScope: true},
			wantResult: "success",
		},
		{
			name:          "render error - renders fallback",
			v:             &mockView{renderErr: errors.New("render failed")},
			fallback:      &mockView{renderResult: "fallback", captureScope: true},
			wantResult:    "fallback",
			wantFallback:  true,
			wantErrorText: "render failed",
		},
		{
			name:          "view error - renders fallback with view errors",
			v:             &mockView{renderErr: viewErr(t, 1)},
			fallback:      &mockView{renderResult: "fallback", captureScope: true},
			wantResult:    "fallback",
			wantFallback:  true,
			wantViewErrs:  1,
			wantErrorText: "cannot iterate over int",
		},
		{
			name:          "multiple view errors",
			v:             &mockView{renderErr: errors.Join(viewErr(t, 1), errors.New("other"), viewErr(t, 1))},
			fallback:      &mockView{renderResult: "fallback", captureScope: true},
			wantResult:    "fallback",
			wantFallback:  true,
			wantViewErrs:  2,
			wantErrorText: "other",
		},
		{
			name:    "no fallback - returns error",
			v:       &mockView{renderErr: errors.New("render failed")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fallback view.View
			if tt.fallback != nil {
				fallback = tt.fallback
			}

			eh := newErrorHandlerView(tt.v, fallback)
			rr, err := eh.Render(view.NewScope(map[string]any{"path": "/gang-games/"}))

			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, tt.v.renderErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantResult, rr)

			if !tt.wantFallback {
				require.NoError(t, eh.Err())
				if tt.fallback != nil {
					require.Nil(t, tt.fallback.scope)
				}
				return
			}

			require.ErrorIs(t, eh.Err(), tt.v.renderErr)

			vars := tt.fallback.scope.Vars()
			require.Equal(t, "/gang-games/", vars["path"], "parent variables are visible")
			require.Contains(t, vars["error"], tt.wantErrorText)
			require.Len(t, vars["errors"], tt.wantViewErrs)
		})
	}
}
