package app

import "globetrotter-service/internal/domain"

// StarterDestinations is the catalog a fresh install is seeded with.
func StarterDestinations() []domain.Destination {
	return []domain.Destination{
		{
			Alias:      domain.Alias(1),
			Name:       "Paris",
			Clues:      []string{"Home to a famous tower finished in 1889", "Called the City of Light"},
			FunFacts:   []string{"The Louvre is the world's largest art museum.", "Famous for café culture and haute cuisine."},
			Difficulty: domain.DifficultyEasy,
			Continent:  domain.Europe,
			Country:    "France",
		},
		{
			Alias:      domain.Alias(2),
			Name:       "Tokyo",
			Clues:      []string{"Capital city with over 13 million residents", "Known for high-tech, anime, and cherry blossoms"},
			FunFacts:   []string{"It's the most populous metropolitan area in the world.", "Tsukiji once was the world's largest fish market."},
			Difficulty: domain.DifficultyMedium,
			Continent:  domain.Asia,
			Country:    "Japan",
		},
		{
			Alias:      domain.Alias(3),
			Name:       "New York City",
			Clues:      []string{"Known as the Big Apple", "Home to a famous statue gifted by France"},
			FunFacts:   []string{"More than 800 languages are spoken in this city.", "The subway system has 472 stations."},
			Difficulty: domain.DifficultyEasy,
			Continent:  domain.NorthAmerica,
			Country:    "United States",
		},
	}
}
