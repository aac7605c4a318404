// Package widget owns every frame of a UI session.
//
// The Registry is an arena keyed by numeric identity. It is the only owner of
// Widget values: parents, children, anchor targets and global names are all
// plain IDs resolved through the Registry on each use, so a stale ID held by a
// script degrades to "not found" instead of reaching freed state.
//
// # Identity and names
//
// IDs are assigned monotonically from 1 and never reused. Global names are a
// side table with last-write-wins semantics: registering a name that is
// already bound moves the binding to the new widget and leaves the old
// widget alive and reachable by ID.
//
// # Ordering
//
// Every widget carries a Strata and a Level. Children inherit their parent's
// stratum and parent level + 1 unless they explicitly override either value;
// see Registry.Propagate.
//
// # Concurrency
//
// A Registry is not safe for concurrent use. Callers follow the pattern
// "borrow, mutate, release, then call out": pointers returned by Get must not
// be held across a call into the script host, which may re-enter the kernel.
package widget
