package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseItemID(t *testing.T) {
	assert.True(t, ParseItemID("temp_123").Draft)
	assert.False(t, ParseItemID("m4x1-a1b2c3").Draft)
	assert.False(t, ParseItemID("").Draft)
	assert.Equal(t, "temp_123", ParseItemID("temp_123").Raw)
}

func TestAccountPatch_Merge(t *testing.T) {
	a := Account{Username: "priya", Role: RoleEditor, Email: "old@example.com"}

	role := RoleViewer
	email := "new@example.com"
	merged := AccountPatch{Role: &role, Email: &email}.Merge(a)
	assert.Equal(t, RoleViewer, merged.Role)
	assert.Equal(t, "new@example.com", merged.Email)
	assert.Equal(t, "priya", merged.Username)

	// незаданные поля не трогаются
	merged = AccountPatch{Email: &email}.Merge(a)
	assert.Equal(t, RoleEditor, merged.Role)
}

func TestContentDoc_Overlay(t *testing.T) {
	d := ContentDoc{"a": "old", "keep": 1, "nested": map[string]any{"x": 1, "y": 2}}

	out := d.Overlay(map[string]any{"a": "new", "nested": map[string]any{"x": 9}})
	assert.Equal(t, "new", out["a"])
	assert.Equal(t, 1, out["keep"])
	// слияние неглубокое: вложенный объект заменён целиком
	assert.Equal(t, map[string]any{"x": 9}, out["nested"])

	// исходный документ не изменился
	assert.Equal(t, "old", d["a"])
}

func TestValidUsername(t *testing.T) {
	for _, ok := range []string{"abc", "priya.s", "a1_b-c", "admin"} {
		assert.True(t, ValidUsername(ok), ok)
	}
	for _, bad := range []string{"", "ab", "Capital", "_lead", "has space", "почта"} {
		assert.False(t, ValidUsername(bad), bad)
	}
}

func TestMarshalCanonical_Stable(t *testing.T) {
	a, err := MarshalCanonical(map[string]any{"b": 2, "a": 1})
	assert.NoError(t, err)
	b, err := MarshalCanonical(map[string]any{"a": 1, "b": 2})
	assert.NoError(t, err)
	// порядок ключей детерминированный, хвостовой перевод строки на месте
	assert.True(t, EqualCanonical(a, b))
	assert.Equal(t, byte('\n'), a[len(a)-1])
}
