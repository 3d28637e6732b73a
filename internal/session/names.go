package session

import (
	"fmt"
	"math/rand"
	"time"
)

// adjectives for generated session names
var adjectives = []string{
	"azure", "crimson", "emerald", "golden", "silver", "violet", "amber", "coral",
	"indigo", "jade", "onyx", "pearl", "ruby", "sapphire", "topaz", "bronze",
	"misty", "silent", "swift", "brave", "clever", "gentle", "noble", "bold",
}

// animals for generated session names
var animals = []string{
	"tiger", "falcon", "wolf", "eagle", "bear", "hawk", "lion", "panther",
	"raven", "fox", "deer", "owl", "crane", "dolphin", "otter", "badger",
	"heron", "sparrow", "lynx", "puma", "turtle", "salmon", "finch", "wren",
}

// NameGenerator produces readable default names for new sessions.
type NameGenerator struct {
	rng *rand.Rand
}

// NewNameGenerator creates a name generator.
func NewNameGenerator() *NameGenerator {
	return &NameGenerator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate creates a name in the format "adjective-animal-number".
func (g *NameGenerator) Generate() string {
	adj := adjectives[g.rng.Intn(len(adjectives))]
	animal := animals[g.rng.Intn(len(animals))]
	return fmt.Sprintf("%s-%s-%02d", adj, animal, g.rng.Intn(100))
}
