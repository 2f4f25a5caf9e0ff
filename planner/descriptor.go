package planner

import "strconv"

// CallDescriptor is a single planned tool invocation. Inputs may reference
// the output of another call by a "$id" or "$id.field" string value.
type CallDescriptor struct {
	ID     string
	Inputs map[string]any
}

// normalizeIDs returns a copy of calls with missing IDs synthesized from
// their ordinal position ("$0" is never produced here — the ordinal itself
// has no "$" prefix, only dependency references do).
func normalizeIDs(calls []CallDescriptor) []CallDescriptor {
	out := make([]CallDescriptor, len(calls))
	for i, c := range calls {
		if c.ID == "" {
			c.ID = strconv.Itoa(i)
		}
		out[i] = c
	}
	return out
}
