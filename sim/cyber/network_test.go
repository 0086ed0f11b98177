package cyber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetwork_GroupsItemsByType(t *testing.T) {
	ctx := newTestContext(t, 1)
	s1 := newTestItem(t, ctx, ItemServer, "s1")
	r1 := newTestItem(t, ctx, ItemRouter, "r1")
	s2 := newTestItem(t, ctx, ItemServer, "s2")

	n := NewNetwork(ctx, s1, r1, s2)

	assert.Equal(t, []*Item{s1, r1, s2}, n.Items())
	assert.Equal(t, []*Item{s1, s2}, n.ItemsOfType(ItemServer))
	assert.Equal(t, []*Item{r1}, n.ItemsOfType(ItemRouter))
	assert.Empty(t, n.ItemsOfType(ItemSubnet))
	assert.Equal(t, map[string]int{"s1": 0, "r1": 0, "s2": 0}, n.OpenVulnerabilities())
}

func TestItem_AddAndRemoveVulnerability(t *testing.T) {
	// GIVEN an item and a vulnerability
	ctx := newTestContext(t, 1)
	item := newTestItem(t, ctx, ItemSubnet, "")
	v := NewVulnerability(ctx, VulnerabilityOptions{Name: "v", Affects: NewItemTypeSet(ItemSubnet)})

	// THEN the default name is the type name
	assert.Equal(t, "Subnet", item.Name())

	// WHEN added twice
	assert.True(t, item.addVulnerability(v))
	assert.False(t, item.addVulnerability(v))
	// THEN it is open once
	assert.Equal(t, []*Vulnerability{v}, item.Vulnerabilities())

	// WHEN removed twice
	assert.True(t, item.removeVulnerability(v))
	assert.False(t, item.removeVulnerability(v))
	// THEN it is gone and the second removal was a no-op
	assert.False(t, item.HasVulnerability(v))
	assert.Zero(t, item.VulnerabilityQueue().Len())
}

func TestNewItem_InvalidType(t *testing.T) {
	ctx := newTestContext(t, 1)
	_, err := NewItem(ctx, ItemType(9), "bad")
	require.Error(t, err)
}
