package app

import (
	"math/rand"

	"globetrotter-service/internal/domain"
)

const (
	optionsPerQuestion = 4
	maxCluesRevealed   = 2
)

// BuildQuestion picks one destination uniformly, reveals one or two of its
// clues and mixes its name with up to three distinct distractor names.
func BuildQuestion(rnd *rand.Rand, catalog []domain.Destination) (domain.Question, error) {
	if len(catalog) == 0 {
		return domain.Question{}, domain.ErrCatalogEmpty
	}

	answer := catalog[rnd.Intn(len(catalog))]

	seen := map[string]struct{}{answer.Name: {}}
	distractors := make([]string, 0, len(catalog)-1)
	for _, i := range rnd.Perm(len(catalog)) {
		name := catalog[i].Name
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		distractors = append(distractors, name)
		if len(distractors) == optionsPerQuestion-1 {
			break
		}
	}

	options := append([]string{answer.Name}, distractors...)
	rnd.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	return domain.Question{
		ID:      answer.ID,
		Clues:   pickClues(rnd, answer.Clues),
		Options: options,
	}, nil
}

func pickClues(rnd *rand.Rand, clues []string) []string {
	n := 1 + rnd.Intn(maxCluesRevealed)
	if n > len(clues) {
		n = len(clues)
	}
	picked := make([]string, 0, n)
	for _, i := range rnd.Perm(len(clues))[:n] {
		picked = append(picked, clues[i])
	}
	return picked
}
