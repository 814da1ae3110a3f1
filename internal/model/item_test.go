package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeType(t *testing.T) {
	require.Equal(t, TypeEmail, NormalizeType("email"))
	require.Equal(t, TypeEmail, NormalizeType("Email"))
	require.Equal(t, TypeEmail, NormalizeType("  EMAIL  "))
	require.Equal(t, TypeOther, NormalizeType("carrier-pigeon"))
	require.Equal(t, TypeOther, NormalizeType(""))
}

func TestValidType(t *testing.T) {
	for _, it := range ItemTypes {
		require.True(t, ValidType(it))
	}
	require.False(t, ValidType(ItemType("carrier-pigeon")))
}

func TestIconForCoversAllTypes(t *testing.T) {
	seen := make(map[string]bool)
	for _, it := range ItemTypes {
		icon := IconFor(it)
		require.NotEmpty(t, icon)
		require.False(t, seen[icon], "icon %s reused", icon)
		seen[icon] = true
	}
	require.Equal(t, IconFor(TypeOther), IconFor(ItemType("carrier-pigeon")))
}
