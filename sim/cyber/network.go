package cyber

import (
	"fmt"

	"github.com/vuln-sim/vuln-sim/sim"
)

// Item is a vulnerable network element. Its vulnerability set is a
// FilterQueue so that other agents can block on it.
type Item struct {
	name            string
	kind            ItemType
	vulnerabilities *sim.FilterQueue[*Vulnerability]
}

// NewItem creates an item of the given type with an empty vulnerability set.
func NewItem(ctx *Context, kind ItemType, name string) (*Item, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("item %q: invalid item type %d", name, uint8(kind))
	}
	if name == "" {
		name = kind.String()
	}
	return &Item{
		name:            name,
		kind:            kind,
		vulnerabilities: sim.NewFilterQueue[*Vulnerability](ctx.Env, name+"/vulnerabilities"),
	}, nil
}

func (i *Item) String() string { return fmt.Sprintf("<%s>", i.name) }

// Name returns the item name.
func (i *Item) Name() string { return i.name }

// Type returns the item type.
func (i *Item) Type() ItemType { return i.kind }

// VulnerabilityQueue exposes the underlying vulnerability set.
func (i *Item) VulnerabilityQueue() *sim.FilterQueue[*Vulnerability] { return i.vulnerabilities }

// Vulnerabilities returns a snapshot of the open vulnerabilities.
func (i *Item) Vulnerabilities() []*Vulnerability { return i.vulnerabilities.Items() }

// HasVulnerability reports whether v is currently open on the item.
func (i *Item) HasVulnerability(v *Vulnerability) bool {
	ok, _ := i.vulnerabilities.Contains(same(v))
	return ok
}

// addVulnerability opens v on the item. Returns false if v was already open.
func (i *Item) addVulnerability(v *Vulnerability) bool {
	if i.HasVulnerability(v) {
		return false
	}
	i.vulnerabilities.Put(v)
	return true
}

// removeVulnerability closes v on the item. Absent vulnerabilities are a no-op.
func (i *Item) removeVulnerability(v *Vulnerability) bool {
	_, ok, _ := i.vulnerabilities.TryGet(same(v))
	return ok
}

func same(v *Vulnerability) sim.Predicate[*Vulnerability] {
	return func(o *Vulnerability) bool { return o == v }
}

// Network groups the protected items by type and hosts the users queue.
type Network struct {
	items  []*Item
	byType map[ItemType][]*Item
	users  *sim.FilterQueue[*User]
}

// NewNetwork groups items by type, preserving their order.
func NewNetwork(ctx *Context, items ...*Item) *Network {
	n := &Network{
		byType: make(map[ItemType][]*Item),
		users:  sim.NewFilterQueue[*User](ctx.Env, "users"),
	}
	for _, item := range items {
		if item == nil {
			panic("NewNetwork: item must not be nil")
		}
		n.items = append(n.items, item)
		n.byType[item.kind] = append(n.byType[item.kind], item)
	}
	return n
}

// Items returns every item in insertion order.
func (n *Network) Items() []*Item {
	return append([]*Item(nil), n.items...)
}

// ItemsOfType returns the items of type t in insertion order.
func (n *Network) ItemsOfType(t ItemType) []*Item {
	return append([]*Item(nil), n.byType[t]...)
}

// Users returns the queue of users currently working on the network.
func (n *Network) Users() *sim.FilterQueue[*User] {
	return n.users
}

// OpenVulnerabilities returns the number of open vulnerabilities per item name.
func (n *Network) OpenVulnerabilities() map[string]int {
	out := make(map[string]int, len(n.items))
	for _, item := range n.items {
		out[item.name] = item.vulnerabilities.Len()
	}
	return out
}
