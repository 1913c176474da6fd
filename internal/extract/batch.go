package extract

import (
	"strings"

	"clues/internal/portals"
	"clues/internal/schema"
)

type BatchID string

const (
	BatchPublicRecords BatchID = "public_records"
	BatchNeighborhood  BatchID = "neighborhood"
	BatchPortals       BatchID = "portals"
)

// Batch is one specialist extraction prompt and the schema its answer
// must satisfy.
type Batch struct {
	ID     BatchID
	Name   string
	Schema *schema.Object

	hint         func(fullAddress, county string) string
	instructions func(reg *portals.Registry, county string) string
}

var batches = []Batch{
	{
		ID:     BatchPublicRecords,
		Name:   "Public Records",
		Schema: PublicRecordsSchema,
		hint:   publicRecordsHint,
		instructions: func(reg *portals.Registry, county string) string {
			if reg == nil {
				reg = portals.Default()
			}
			return publicRecordsInstructions(reg.SearchInstructions(CountyName(county)))
		},
	},
	{
		ID:           BatchNeighborhood,
		Name:         "Neighborhood",
		Schema:       NeighborhoodSchema,
		hint:         neighborhoodHint,
		instructions: func(*portals.Registry, string) string { return neighborhoodInstructions },
	},
	{
		ID:           BatchPortals,
		Name:         "Portals",
		Schema:       PortalSchema,
		hint:         portalHint,
		instructions: func(*portals.Registry, string) string { return portalInstructions },
	},
}

// Batches returns the extraction batches in execution order.
func Batches() []Batch {
	out := make([]Batch, len(batches))
	copy(out, batches)
	return out
}

// LookupBatch accepts a batch id ("portals") or its 1-based position ("3").
func LookupBatch(name string) (Batch, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "batch")
	for i, b := range batches {
		if string(b.ID) == name || string(rune('1'+i)) == name {
			return b, true
		}
	}
	return Batch{}, false
}

// SearchHint is the address line the prompt opens with.
func (b Batch) SearchHint(fullAddress, county string) string {
	return b.hint(fullAddress, county)
}

func (b Batch) Instructions(reg *portals.Registry, county string) string {
	return b.instructions(reg, county)
}

// Prompt renders the user prompt for one property.
func (b Batch) Prompt(reg *portals.Registry, fullAddress, county string) string {
	return buildUserPrompt(b.SearchHint(fullAddress, county), b.Instructions(reg, county))
}
