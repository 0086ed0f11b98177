// Package cyber models the defended network on top of the sim kernel:
// vulnerabilities evolving through discovery states, patches, network items,
// sensors raising alarms, users, and the administrator that patches, monitors
// and upgrades the network.
//
// Every entity receives a *Context at construction. Entities never reach for
// globals; the Context carries the Environment, the partitioned RNG, the
// journal and the default vulnerability lifecycle.
package cyber
