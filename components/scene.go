package components

// Organism links a scene entity back to its entry.
type Organism struct {
	Index int // position in the garden's entry list
	Type  OrganismType
}

// Position is an entity's world position.
type Position struct {
	X, Y, Z float64
}

// Appearance is the per-frame render state of a live organism.
type Appearance struct {
	Scale   float64
	Opacity float64

	// Eased growth phase values driving part scale.
	Stem   float64
	Leaves float64
	Bloom  float64
}
