package ftl

// fatherIndex finds the parent of group child: the nearest earlier group
// whose member list contains the child's origin vertex. Groups are
// written parents-first, so scanning backward picks the most recently
// populated candidate, which keeps round-trips stable. Returns -1 for
// roots.
func fatherIndex(groups []Group, child int) int {
	origin := groups[child].Origin
	for i := child - 1; i >= 0; i-- {
		for _, v := range groups[i].Indices {
			if v == origin {
				return i
			}
		}
	}
	return -1
}

// InferParents recomputes every group's Parent from vertex containment.
// It is a pure function of Origin and Indices, so running it twice gives
// the same assignment, and because parents always have smaller indices
// the result is a forest.
func InferParents(groups []Group) {
	for i := range groups {
		groups[i].Parent = fatherIndex(groups, i)
	}
}

// VertexGroupAssignment maps each vertex listed in at least one group to
// exactly one owning group: the smallest-index group containing it, with
// implicit weight 1.0. This is the single-influence skin the engine uses;
// there is no multi-bone blending.
func VertexGroupAssignment(groups []Group) map[int32]int {
	owner := make(map[int32]int)
	for i := len(groups) - 1; i >= 0; i-- {
		for _, v := range groups[i].Indices {
			owner[v] = i
		}
	}
	return owner
}
