package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testValidator() *Validator {
	return NewValidator(Definition{
		"Name":   {Kind: KindScalar},
		"Age":    {Kind: KindScalar},
		"Avatar": {Kind: KindObject},
		"profile": {
			Kind: KindObject,
			Fields: map[string]Field{
				"city": {Kind: KindScalar},
				"address": {
					Kind:   KindObject,
					Fields: map[string]Field{"zip": {Kind: KindScalar}},
				},
			},
		},
		"orders": {
			Kind: KindArray,
			Items: &Field{
				Kind: KindObject,
				Fields: map[string]Field{
					"total":  {Kind: KindScalar},
					"status": {Kind: KindScalar},
				},
			},
		},
	})
}

func TestValidateScalarPaths(t *testing.T) {
	v := testValidator()

	require.NoError(t, v.Validate([]string{"Name"}, OperationFilter))
	require.NoError(t, v.Validate([]string{"profile", "city"}, OperationFilter))
	require.NoError(t, v.Validate([]string{"profile", "address", "zip"}, OperationSelect))
	require.NoError(t, v.Validate([]string{"orders", "total"}, OperationFilter))
}

func TestValidateUnknownPaths(t *testing.T) {
	v := testValidator()

	err := v.Validate([]string{"Nickname"}, OperationFilter)
	require.Error(t, err)
	pathErr, ok := err.(*PathError)
	require.True(t, ok)
	assert.Equal(t, "Nickname", pathErr.Path)
	assert.Equal(t, OperationFilter, pathErr.Operation)
	assert.Contains(t, pathErr.Error(), "$filter")

	err = v.Validate([]string{"profile", "country"}, OperationOrderBy)
	require.Error(t, err)
	pathErr, ok = err.(*PathError)
	require.True(t, ok)
	assert.Equal(t, "profile.country", pathErr.Path)
	assert.Equal(t, OperationOrderBy, pathErr.Operation)

	// An unknown prefix fails even if the suffix text happens to exist
	// elsewhere in the schema.
	err = v.Validate([]string{"missing", "city"}, OperationFilter)
	require.Error(t, err)
}

func TestValidateObjectTerminal(t *testing.T) {
	v := testValidator()

	// An object with declared children cannot terminate a path.
	err := v.Validate([]string{"profile"}, OperationSelect)
	require.Error(t, err)

	// An opaque object without declared children is addressable as a whole.
	require.NoError(t, v.Validate([]string{"Avatar"}, OperationSelect))
}

func TestIsCollection(t *testing.T) {
	v := testValidator()

	assert.True(t, v.IsCollection([]string{"orders"}))
	assert.False(t, v.IsCollection([]string{"Name"}))
	assert.False(t, v.IsCollection([]string{"profile"}))
	assert.False(t, v.IsCollection([]string{"nope"}))
}

func TestKnown(t *testing.T) {
	v := testValidator()

	assert.True(t, v.Known([]string{"orders", "status"}))
	assert.False(t, v.Known([]string{"orders", "missing"}))
}

func TestNilValidatorAcceptsEverything(t *testing.T) {
	var v *Validator

	require.NoError(t, v.Validate([]string{"anything", "at", "all"}, OperationFilter))
	assert.True(t, v.IsCollection([]string{"whatever"}))
	assert.True(t, v.Known([]string{"whatever"}))
}
