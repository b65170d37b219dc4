package template

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_Styles(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		params   map[string]any
		expected string
	}{
		{
			name:     "brace",
			input:    "age > ${min_age}",
			params:   map[string]any{"min_age": 30},
			expected: "age > 30",
		},
		{
			name:     "dollar",
			input:    "age > $min_age",
			params:   map[string]any{"min_age": 30},
			expected: "age > 30",
		},
		{
			name:     "mixed",
			input:    "age > ${min_age} AND department = $dept",
			params:   map[string]any{"min_age": 30, "dept": "Sales"},
			expected: "age > 30 AND department = Sales",
		},
		{
			name:     "adjacent to parentheses",
			input:    "($cond_a = 1)",
			params:   map[string]any{"cond_a": "x"},
			expected: "(x = 1)",
		},
		{
			name:     "no placeholders",
			input:    "age > 30",
			params:   map[string]any{"unused": 1},
			expected: "age > 30",
		},
		{
			name:     "empty rule",
			input:    "",
			expected: "",
		},
		{
			name:     "repeated parameter",
			input:    "a = ${v} OR b = ${v}",
			params:   map[string]any{"v": 7},
			expected: "a = 7 OR b = 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewExpander().Expand(tt.input, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExpand_DollarIsGreedy(t *testing.T) {
	got, err := NewExpander().Expand("x = $portNumber", map[string]any{"port": 80})
	require.NoError(t, err)
	assert.Equal(t, "x = $portNumber", got)
}

func TestExpand_SinglePass(t *testing.T) {
	params := map[string]any{"a": "$b", "b": "never"}
	got, err := NewExpander(WithQuoting(false)).Expand("x = ${a}", params)
	require.NoError(t, err)
	assert.Equal(t, "x = $b", got)
}

func TestExpand_ValueFormatting(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"int", 50000, "x = 50000"},
		{"int64", int64(7), "x = 7"},
		{"float", 2.5, "x = 2.5"},
		{"large float has no exponent", 1e7, "x = 10000000"},
		{"bool", true, "x = true"},
		{"word", "Sales", "x = Sales"},
		{"underscored word", "north_east", "x = north_east"},
		{"spaces are quoted", "Sales Ops", "x = 'Sales Ops'"},
		{"empty string is quoted", "", "x = ''"},
		{"punctuation is quoted", "a-b", "x = 'a-b'"},
		{"negative int is quoted", -5, "x = '-5'"},
		{"negative float is quoted", -0.25, "x = '-0.25'"},
		{"negative json number is quoted", json.Number("-12"), "x = '-12'"},
		{"AND is quoted", "AND", "x = 'AND'"},
		{"OR is quoted", "OR", "x = 'OR'"},
		{"lowercase or is a word", "or", "x = or"},
		{"ORDER is a word", "ORDER", "x = ORDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewExpander().Expand("x = ${v}", map[string]any{"v": tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExpand_Unquotable(t *testing.T) {
	_, err := NewExpander().Expand("name = ${v}", map[string]any{"v": "O'Brien"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnquotable)
	assert.Contains(t, err.Error(), "parameter v")
}

func TestExpand_QuotingDisabled(t *testing.T) {
	exp := NewExpander(WithQuoting(false))
	got, err := exp.Expand("${cond} AND x = 1", map[string]any{"cond": "age > 30"})
	require.NoError(t, err)
	assert.Equal(t, "age > 30 AND x = 1", got)
}

func TestExpand_UnsupportedValue(t *testing.T) {
	_, err := NewExpander().Expand("x = ${v}", map[string]any{"v": []int{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter v")
}

func TestExpand_MissingParameters(t *testing.T) {
	tests := []struct {
		name     string
		action   MissingAction
		input    string
		expected string
		missing  []string
	}{
		{
			name:     "keep",
			action:   MissingKeep,
			input:    "age > ${min_age} AND x = $y",
			expected: "age > ${min_age} AND x = $y",
		},
		{
			name:     "empty",
			action:   MissingEmpty,
			input:    "age > ${min_age}",
			expected: "age > ",
		},
		{
			name:     "error lists names once",
			action:   MissingError,
			input:    "a = ${p} OR b = $q OR c = ${p}",
			expected: "a = ${p} OR b = $q OR c = ${p}",
			missing:  []string{"p", "q"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewExpander(WithMissingAction(tt.action)).Expand(tt.input, nil)
			assert.Equal(t, tt.expected, got)
			if tt.missing == nil {
				require.NoError(t, err)
				return
			}
			var undef *UndefinedParamError
			require.ErrorAs(t, err, &undef)
			assert.Equal(t, tt.missing, undef.Names)
			assert.ErrorIs(t, err, ErrUndefinedParam)
		})
	}
}

func TestUndefinedParamError(t *testing.T) {
	assert.Equal(t, "undefined parameter: a", (&UndefinedParamError{Names: []string{"a"}}).Error())
	assert.Equal(t, "undefined parameters: a, b", (&UndefinedParamError{Names: []string{"a", "b"}}).Error())
}

func TestMustExpand(t *testing.T) {
	exp := NewExpander(WithMissingAction(MissingError))

	assert.Equal(t, "x = 1", exp.MustExpand("x = $v", map[string]any{"v": 1}))
	assert.Panics(t, func() {
		exp.MustExpand("x = $v", nil)
	})
}

func TestExpandAll(t *testing.T) {
	exp := NewExpander(WithMissingAction(MissingError))
	params := map[string]any{"min": 30}

	got, err := exp.ExpandAll([]string{"age > $min", "salary > 50000"}, params)
	require.NoError(t, err)
	assert.Equal(t, []string{"age > 30", "salary > 50000"}, got)

	_, err = exp.ExpandAll([]string{"age > $min", "x = $missing"}, params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule 1")

	got, err = exp.ExpandAll(nil, params)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExpandNamed(t *testing.T) {
	exp := NewExpander(WithMissingAction(MissingError))
	params := map[string]any{"dept": "Sales"}

	got, err := exp.ExpandNamed(map[string]string{"sales": "department = $dept"}, params)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"sales": "department = Sales"}, got)

	_, err = exp.ExpandNamed(map[string]string{"bad": "x = $nope"}, params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule bad")
}

func TestMissingAction_String(t *testing.T) {
	assert.Equal(t, "keep", MissingKeep.String())
	assert.Equal(t, "empty", MissingEmpty.String())
	assert.Equal(t, "error", MissingError.String())
}

func TestPackageLevelExpand(t *testing.T) {
	got, err := Expand("age > ${min} AND x = $unset", map[string]any{"min": 18})
	require.NoError(t, err)
	assert.Equal(t, "age > 18 AND x = $unset", got)
}
