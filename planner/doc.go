// Package planner turns a flat list of call descriptors into a dependency-
// respecting execution plan: a sequence of stages where every stage's
// calls are pairwise independent and safe to run concurrently, subject to
// a resource limit on stage size.
package planner
