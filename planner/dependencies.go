package planner

import "strings"

// DetectDependencies scans each call's Inputs for string values prefixed
// "$"; the substring between "$" and the first "." (or the end of string)
// names the dependency's call id. Returns a map of call id -> dependency
// ids, in no particular order.
func DetectDependencies(calls []CallDescriptor) map[string][]string {
	deps := make(map[string][]string, len(calls))
	for _, c := range calls {
		for _, v := range c.Inputs {
			ref, ok := v.(string)
			if !ok || !strings.HasPrefix(ref, "$") {
				continue
			}
			body := ref[1:]
			if dot := strings.IndexByte(body, '.'); dot >= 0 {
				body = body[:dot]
			}
			if body == "" {
				continue
			}
			deps[c.ID] = append(deps[c.ID], body)
		}
	}
	return deps
}
