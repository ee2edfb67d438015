package view

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterpol(t *testing.T) {
	args := map[string]any{
		"foo": "bar",
		"n":   3,
	}
	tests := []struct {
		name    string
		s       string
		want    any
		wantErr bool
	}{
		{"interpol1", "${foo}", "bar", false},
		{"interpol2", "${foo}bar", "barbar", false},
		{"interpol3", "foo${foo}", "foobar", false},
		{"interpol4", "foo${foo}bar${foo}baz", "foobarbarbarbaz", false},
		{"raw value", "${n + 1}", 4, false},
		{"string literal with brace", `${"}" + foo}`, "}bar", false},
		{"map literal", `${ {"a": 1}.a }`, 1, false},
		{"undefined", "x${missing}y", "xy", false},
		{"unclosed", "${foo", nil, true},
		{"unclosed after text", "text ${", nil, true},
		{"empty expression", "${}", nil, true},
		{"bad expression", "${foo +}", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := Interpol(tt.s)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, in)

			got, err := in.Eval(args)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestInterpol_PlainText(t *testing.T) {
	for _, s := range []string{"", "foo", "100$ {not} an expression"} {
		in, err := Interpol(s)
		require.NoError(t, err)
		require.Nil(t, in, "text %q", s)
	}
}

func TestParseLoop(t *testing.T) {
	tests := []struct {
		s        string
		wantVars []string
		wantErr  bool
	}{
		{"item in items", []string{"item"}, false},
		{"i, item in items", []string{"i", "item"}, false},
		{"  row   in 1..6 ", []string{"row"}, false},
		{"a, b, c in items", nil, true},
		{"item in", nil, true},
		{"in items", nil, true},
		{"item", nil, true},
		{"$x in items", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			lp, err := ParseLoop(tt.s)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantVars, lp.Vars)
		})
	}
}
