package planner

import "errors"

// ErrCyclicDependency is returned by Plan when the call descriptors form a
// dependency cycle that no ordering of stages could satisfy.
var ErrCyclicDependency = errors.New("planner: cyclic dependency among call descriptors")
