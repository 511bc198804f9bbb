package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_BraceStyle(t *testing.T) {
	exp := NewExpander()

	result, err := exp.Expand("Error executing ${name}: ${detail}", map[string]any{
		"name":   "get_timeseries",
		"detail": "asset not found",
	})

	require.NoError(t, err)
	assert.Equal(t, "Error executing get_timeseries: asset not found", result)
}

func TestExpand_DollarStyle(t *testing.T) {
	exp := NewExpander()

	result, err := exp.Expand("Tool $name not found", map[string]any{"name": "get_data"})

	require.NoError(t, err)
	assert.Equal(t, "Tool get_data not found", result)
}

func TestExpand_DollarStyle_WordBoundary(t *testing.T) {
	exp := NewExpander()

	// $tool must not match inside $toolName.
	result, err := exp.Expand("$tool and $toolName", map[string]any{
		"tool":     "get_data",
		"toolName": "get_statistics",
	})

	require.NoError(t, err)
	assert.Equal(t, "get_data and get_statistics", result)
}

func TestExpand_NonStringValues(t *testing.T) {
	exp := NewExpander()

	result, err := exp.Expand("iterations: ${count}, confidence: ${score}", map[string]any{
		"count": 5,
		"score": 0.95,
	})

	require.NoError(t, err)
	assert.Equal(t, "iterations: 5, confidence: 0.95", result)
}

func TestExpand_MissingActions(t *testing.T) {
	vars := map[string]any{}

	keep, err := NewExpander().Expand("hello ${name}", vars)
	require.NoError(t, err)
	assert.Equal(t, "hello ${name}", keep)

	empty, err := NewExpander(WithMissingAction(MissingEmpty)).Expand("hello ${name}", vars)
	require.NoError(t, err)
	assert.Equal(t, "hello ", empty)

	_, err = NewExpander(WithMissingAction(MissingError)).Expand("hello ${name}", vars)
	var undefErr *UndefinedVariableError
	require.ErrorAs(t, err, &undefErr)
	assert.Equal(t, []string{"name"}, undefErr.Names)
}

func TestExpand_StylesDisabled(t *testing.T) {
	exp := NewExpander(WithDollarStyle(false))

	result, err := exp.Expand("${a} and $b", map[string]any{"a": "one", "b": "two"})

	require.NoError(t, err)
	assert.Equal(t, "one and $b", result)
}

func TestExpand_Empty(t *testing.T) {
	result, err := NewExpander().Expand("", map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestExpandAll(t *testing.T) {
	results, err := NewExpander().ExpandAll(
		[]string{"${a}", "literal", "${b}"},
		map[string]any{"a": "x", "b": "y"},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"x", "literal", "y"}, results)
}

func TestExpandMap_Nested(t *testing.T) {
	result, err := NewExpander().ExpandMap(map[string]any{
		"url":  "http://${host}/scan",
		"port": 8000,
		"nested": map[string]any{
			"key": "${host}",
		},
	}, map[string]any{"host": "localhost"})

	require.NoError(t, err)
	assert.Equal(t, "http://localhost/scan", result["url"])
	assert.Equal(t, 8000, result["port"])
	assert.Equal(t, "localhost", result["nested"].(map[string]any)["key"])
}

func TestUndefinedVariableError_Message(t *testing.T) {
	one := &UndefinedVariableError{Names: []string{"a"}}
	assert.Equal(t, "undefined variable: a", one.Error())

	many := &UndefinedVariableError{Names: []string{"a", "b"}}
	assert.Equal(t, "undefined variables: a, b", many.Error())
}

func TestPackageLevelExpand(t *testing.T) {
	assert.Equal(t, "hi world", Expand("hi ${name}", map[string]any{"name": "world"}))
	assert.Equal(t, "hi ${name}", Expand("hi ${name}", nil))
}
