package pipeline

import (
	"math/rand"

	"kbqa/internal/model"
)

// Sample caps each author's candidate list at perAuthorCap articles,
// drawing uniformly without replacement when an author exceeds the cap.
// Authors at or under the cap keep their full ordered list. The input set
// is not modified.
func Sample(candidates model.CandidateSet, perAuthorCap int, rng *rand.Rand) model.CandidateSet {
	selected := make(model.CandidateSet, len(candidates))
	for author, list := range candidates {
		if len(list) <= perAuthorCap {
			selected[author] = append([]model.Candidate(nil), list...)
			continue
		}
		picked := make([]model.Candidate, 0, perAuthorCap)
		for _, idx := range rng.Perm(len(list))[:perAuthorCap] {
			picked = append(picked, list[idx])
		}
		selected[author] = picked
	}
	return selected
}
