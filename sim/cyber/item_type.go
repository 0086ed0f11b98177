package cyber

import (
	"fmt"
	"strings"
)

// ItemType is the closed set of vulnerable network item kinds.
type ItemType uint8

const (
	ItemServer ItemType = iota
	ItemSubnet
	ItemRouter
	numItemTypes
)

var itemTypeNames = [numItemTypes]string{
	ItemServer: "Server",
	ItemSubnet: "Subnet",
	ItemRouter: "Router",
}

// ItemTypes lists every item type in declaration order.
var ItemTypes = []ItemType{ItemServer, ItemSubnet, ItemRouter}

// DefaultAffectsWeights is the probability that a new vulnerability affects
// each item type, indexed like ItemTypes.
var DefaultAffectsWeights = []float64{0.3, 0.1, 0.6}

func (t ItemType) String() string {
	if t < numItemTypes {
		return itemTypeNames[t]
	}
	return fmt.Sprintf("ItemType(%d)", uint8(t))
}

// Valid reports whether t is a member of the enumeration.
func (t ItemType) Valid() bool {
	return t < numItemTypes
}

// ParseItemType maps a name such as "Server" (case-insensitive) to its ItemType.
func ParseItemType(s string) (ItemType, error) {
	for i, name := range itemTypeNames {
		if strings.EqualFold(name, s) {
			return ItemType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown item type %q; valid: Server, Subnet, Router", s)
}

// ItemTypeSet is a set of item types, stored as a bitmask.
type ItemTypeSet uint8

// NewItemTypeSet builds a set from the given types. Invalid types panic.
func NewItemTypeSet(types ...ItemType) ItemTypeSet {
	var s ItemTypeSet
	for _, t := range types {
		s = s.With(t)
	}
	return s
}

// With returns s plus t.
func (s ItemTypeSet) With(t ItemType) ItemTypeSet {
	if !t.Valid() {
		panic(fmt.Sprintf("ItemTypeSet.With: invalid item type %d", uint8(t)))
	}
	return s | 1<<t
}

// Has is the explicit membership test used when matching vulnerabilities to items.
func (s ItemTypeSet) Has(t ItemType) bool {
	return t.Valid() && s&(1<<t) != 0
}

// Empty reports whether the set has no members.
func (s ItemTypeSet) Empty() bool { return s == 0 }

// Types returns the members in declaration order.
func (s ItemTypeSet) Types() []ItemType {
	var out []ItemType
	for _, t := range ItemTypes {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s ItemTypeSet) String() string {
	names := make([]string, 0, numItemTypes)
	for _, t := range s.Types() {
		names = append(names, t.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
