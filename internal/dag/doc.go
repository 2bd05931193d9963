// Package dag implements a small directed graph with cycle detection. The
// fragment catalog uses it to statically validate that no slug's reference
// graph contains a cycle, ahead of and independent from the resolver's own
// runtime resolution-stack check.
package dag
