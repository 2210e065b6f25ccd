package services

import "peer-eval-api/models"

// Pair is one ordered evaluator -> evaluatee assignment within a team.
type Pair struct {
	Evaluator models.Student
	Evaluatee models.Student
}

// GeneratePairs groups students by team and emits every ordered pair within
// each team, excluding self-pairs. A team of n members yields n*(n-1) pairs;
// teams of one (or empty rosters) yield none. Cross-team pairs are never
// generated. Pure function, no persistence.
func GeneratePairs(students []models.Student) []Pair {
	byTeam := make(map[string][]models.Student)
	for _, s := range students {
		byTeam[s.Team] = append(byTeam[s.Team], s)
	}

	var pairs []Pair
	for _, members := range byTeam {
		for _, evaluator := range members {
			for _, evaluatee := range members {
				if evaluator.StudentID == evaluatee.StudentID {
					continue
				}
				pairs = append(pairs, Pair{Evaluator: evaluator, Evaluatee: evaluatee})
			}
		}
	}
	return pairs
}
