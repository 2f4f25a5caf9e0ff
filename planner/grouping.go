package planner

// GroupParallel partitions order into stages by greedy first-fit: a call
// joins the first existing group that comes after the groups of its
// already-placed dependencies, where none of the group's members is a
// dependency of it, and it is not a dependency of any member of that
// group; otherwise it opens a new group. The result groups are pairwise
// independent internally.
func GroupParallel(deps map[string][]string, order []string) [][]string {
	var groups [][]string
	groupOf := make(map[string]int, len(order))

	dependsOn := func(id, candidate string) bool {
		for _, d := range deps[id] {
			if d == candidate {
				return true
			}
		}
		return false
	}

	for _, id := range order {
		minGroup := 0
		for _, d := range deps[id] {
			if g, ok := groupOf[d]; ok && g+1 > minGroup {
				minGroup = g + 1
			}
		}
		placed := false
		for gi, group := range groups {
			if gi < minGroup {
				continue
			}
			fits := true
			for _, member := range group {
				if dependsOn(id, member) || dependsOn(member, id) {
					fits = false
					break
				}
			}
			if fits {
				groups[gi] = append(groups[gi], id)
				groupOf[id] = gi
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []string{id})
			groupOf[id] = len(groups) - 1
		}
	}
	return groups
}

// ApplyResourceLimit keeps groups of size <= maxParallel as-is; larger
// groups are expanded into that many sequential single-call stages,
// preserving the group's original (input) order. maxParallel<=0 defaults
// to 5.
func ApplyResourceLimit(groups [][]string, maxParallel int) [][]string {
	if maxParallel <= 0 {
		maxParallel = 5
	}

	var stages [][]string
	for _, group := range groups {
		if len(group) <= maxParallel {
			stages = append(stages, group)
			continue
		}
		for _, id := range group {
			stages = append(stages, []string{id})
		}
	}
	return stages
}
