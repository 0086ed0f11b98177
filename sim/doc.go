// Package sim provides the discrete-event simulation kernel for vuln-sim.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: the (due, seq) ordered event queue and the delay contract
//   - environment.go: the virtual clock, the event loop and process bookkeeping
//   - process.go: cooperative processes and their suspension points
//   - filter_queue.go: the predicate-filtered blocking queue used for pub/sub
//
// # Execution model
//
// Every process body runs on its own goroutine, but control is handed over
// through unbuffered channels: the scheduler resumes exactly one process and
// blocks until that process suspends (Timeout, FilterQueue.Get, Signal.Wait)
// or returns. Process bodies therefore never need locks, and a run is fully
// deterministic for a fixed seed.
//
// # Architecture
//
// Domain entities live in sub-packages:
//   - sim/cyber/: vulnerabilities, patches, network items, sensors, users and the administrator
//   - sim/trace/: the event journal consumed by reporting
//   - sim/scenario/: YAML scenario loading, wiring and run reports
//
// Randomness flows through PartitionedRNG so that adding a subsystem never
// perturbs the streams of the others.
package sim
