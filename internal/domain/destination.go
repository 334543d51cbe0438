package domain

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty grades how hard a destination is to guess.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Continent is one of the seven continents.
type Continent string

const (
	Africa       Continent = "Africa"
	Antarctica   Continent = "Antarctica"
	Asia         Continent = "Asia"
	Europe       Continent = "Europe"
	NorthAmerica Continent = "North America"
	Oceania      Continent = "Oceania"
	SouthAmerica Continent = "South America"
)

// Continents lists every accepted continent.
var Continents = []Continent{Africa, Antarctica, Asia, Europe, NorthAmerica, Oceania, SouthAmerica}

// Valid reports whether c is one of Continents.
func (c Continent) Valid() bool {
	for _, known := range Continents {
		if c == known {
			return true
		}
	}
	return false
}

// Destination is a catalog entry that questions are built from.
type Destination struct {
	ID         string     `json:"id"`
	Alias      string     `json:"alias"`
	Name       string     `json:"name"`
	Clues      []string   `json:"clues"`
	FunFacts   []string   `json:"funFacts"`
	Difficulty Difficulty `json:"difficulty"`
	Continent  Continent  `json:"continent"`
	Country    string     `json:"country"`
	ImageURL   string     `json:"imageUrl,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Alias returns the sequential short alias for the n-th destination.
func Alias(n int) string {
	return fmt.Sprintf("dst%d", n)
}

// Normalize trims text fields and applies the default difficulty.
func (d *Destination) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Country = strings.TrimSpace(d.Country)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	if d.Difficulty == "" {
		d.Difficulty = DifficultyMedium
	}
}

// Validate checks the catalog invariants for a destination.
func (d Destination) Validate() error {
	if d.Name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(d.Clues) == 0 {
		return ValidationError{Field: "clues", Message: "at least one clue is required"}
	}
	if len(d.FunFacts) == 0 {
		return ValidationError{Field: "funFacts", Message: "at least one fun fact is required"}
	}
	if !d.Difficulty.Valid() {
		return ValidationError{Field: "difficulty", Message: fmt.Sprintf("unknown difficulty %q", d.Difficulty)}
	}
	if !d.Continent.Valid() {
		return ValidationError{Field: "continent", Message: fmt.Sprintf("unknown continent %q", d.Continent)}
	}
	if d.Country == "" {
		return ValidationError{Field: "country", Message: "country is required"}
	}
	return nil
}

// Names returns the destination names in catalog order.
func Names(destinations []Destination) []string {
	names := make([]string, len(destinations))
	for i, d := range destinations {
		names[i] = d.Name
	}
	return names
}
