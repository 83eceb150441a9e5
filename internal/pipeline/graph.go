package pipeline

import "slices"

// Linearize orders stages so that every stage comes after the stages it
// depends on. It uses Kahn's algorithm; whenever several stages are ready the
// one declared first wins, so a pipeline without dependencies keeps its
// declared order.
//
// A dependency on an ID missing from stages yields *UnknownDependencyError.
// Stages that can never become ready yield *CyclicDependencyError.
func Linearize(stages []Stage) ([]Stage, error) {
	index := make(map[string]int, len(stages))
	for i, s := range stages {
		if _, dup := index[s.ID]; dup {
			return nil, &DuplicateStageError{ID: s.ID}
		}
		index[s.ID] = i
	}

	indegree := make([]int, len(stages))
	dependents := make([][]int, len(stages))
	for i, s := range stages {
		seen := make(map[string]bool, len(s.Dependencies))
		for _, dep := range s.Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			j, ok := index[dep]
			if !ok {
				return nil, &UnknownDependencyError{Stage: s.ID, Dependency: dep}
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	// ready is kept sorted by declaration index.
	ready := make([]int, 0, len(stages))
	for i := range stages {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	ordered := make([]Stage, 0, len(stages))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		ordered = append(ordered, stages[i])
		for _, j := range dependents[i] {
			indegree[j]--
			if indegree[j] == 0 {
				pos, _ := slices.BinarySearch(ready, j)
				ready = slices.Insert(ready, pos, j)
			}
		}
	}

	if len(ordered) < len(stages) {
		var stuck []string
		for i, s := range stages {
			if indegree[i] > 0 {
				stuck = append(stuck, s.ID)
			}
		}
		return nil, &CyclicDependencyError{Stages: stuck}
	}
	return ordered, nil
}

// Dependents returns the IDs of stages that declare id as a dependency, in
// pipeline order.
func Dependents(stages []Stage, id string) []string {
	var out []string
	for _, s := range stages {
		if slices.Contains(s.Dependencies, id) {
			out = append(out, s.ID)
		}
	}
	return out
}
