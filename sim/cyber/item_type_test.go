package cyber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItemType(t *testing.T) {
	tests := []struct {
		in   string
		want ItemType
	}{
		{"Server", ItemServer},
		{"subnet", ItemSubnet},
		{"ROUTER", ItemRouter},
	}
	for _, tc := range tests {
		got, err := ParseItemType(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, tc.want.String(), itemTypeNames[got])
	}

	_, err := ParseItemType("switch")
	assert.Error(t, err)
}

func TestItemType_Validity(t *testing.T) {
	for _, it := range ItemTypes {
		assert.True(t, it.Valid())
	}
	assert.False(t, ItemType(3).Valid())
	assert.Equal(t, "ItemType(7)", ItemType(7).String())
	assert.Len(t, DefaultAffectsWeights, len(ItemTypes))
}

func TestItemTypeSet(t *testing.T) {
	var empty ItemTypeSet
	assert.True(t, empty.Empty())
	assert.Equal(t, "{}", empty.String())

	s := NewItemTypeSet(ItemRouter, ItemServer)
	assert.False(t, s.Empty())
	assert.True(t, s.Has(ItemServer))
	assert.True(t, s.Has(ItemRouter))
	assert.False(t, s.Has(ItemSubnet))
	assert.False(t, s.Has(ItemType(5)))
	assert.Equal(t, []ItemType{ItemServer, ItemRouter}, s.Types())
	assert.Equal(t, "{Server,Router}", s.String())

	assert.Equal(t, s, s.With(ItemServer))
	assert.Panics(t, func() { s.With(ItemType(4)) })
}
