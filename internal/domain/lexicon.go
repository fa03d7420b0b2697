package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Fixed values written to every metadata row.
const (
	MetadataRelatedTable = "definitions"
	MetadataAttrSource   = "info"
)

// Headword is one lexical entry of a migrated document.
// Position is the 1-based sequence number of the entry in the source document.
type Headword struct {
	ID        uuid.UUID
	EntryType string
	Key1      string
	Key2      *string
	Homonym   *string
	Position  int
	PageRef   *string
	LineRef   *string
}

// Definition holds the body of a headword: cleaned text plus the JSON
// snapshot of the original markup subtree.
type Definition struct {
	ID           uuid.UUID
	HeadwordID   uuid.UUID
	Content      string
	RawContent   json.RawMessage
	DisplayOrder int
}

// SanskritForm is a Sanskrit spelling found inside a definition body.
type SanskritForm struct {
	ID           uuid.UUID
	DefinitionID uuid.UUID
	Text         string
	DisplayOrder int
}

// Abbreviation is an abbreviation found inside a definition body.
type Abbreviation struct {
	ID           uuid.UUID
	DefinitionID uuid.UUID
	AbbrText     string
	DisplayOrder int
}

// Source is a literary source citation found inside a definition body.
type Source struct {
	ID           uuid.UUID
	DefinitionID uuid.UUID
	SourceText   string
	DisplayOrder int
}

// LexicalCategory is a grammatical category marker found inside a definition body.
type LexicalCategory struct {
	ID           uuid.UUID
	DefinitionID uuid.UUID
	Category     string
	DisplayOrder int
}

// Metadata is one attribute of an annotation element. RelatedID points at a
// definition without an enforced foreign key.
type Metadata struct {
	ID           uuid.UUID
	RelatedID    uuid.UUID
	RelatedTable string
	MetaKey      string
	MetaValue    string
	AttrSource   string
}

// EntryRecords is everything produced from a single source entry.
// Child slices are empty when Definition is nil.
type EntryRecords struct {
	Headword          Headword
	Definition        *Definition
	SanskritForms     []SanskritForm
	Abbreviations     []Abbreviation
	Sources           []Source
	LexicalCategories []LexicalCategory
	Metadata          []Metadata
}

// RowCount returns the number of rows the entry occupies across all tables.
func (e EntryRecords) RowCount() int {
	n := 1
	if e.Definition != nil {
		n++
	}
	return n + len(e.SanskritForms) + len(e.Abbreviations) + len(e.Sources) +
		len(e.LexicalCategories) + len(e.Metadata)
}

// TableCounts holds row counts of the seven lexicon tables.
type TableCounts struct {
	Headwords         int
	Definitions       int
	SanskritForms     int
	Abbreviations     int
	Sources           int
	LexicalCategories int
	Metadata          int
}

// Add accumulates the rows of one entry.
func (c *TableCounts) Add(e EntryRecords) {
	c.Headwords++
	if e.Definition != nil {
		c.Definitions++
	}
	c.SanskritForms += len(e.SanskritForms)
	c.Abbreviations += len(e.Abbreviations)
	c.Sources += len(e.Sources)
	c.LexicalCategories += len(e.LexicalCategories)
	c.Metadata += len(e.Metadata)
}

// Total returns the sum over all tables.
func (c TableCounts) Total() int {
	return c.Headwords + c.Definitions + c.SanskritForms + c.Abbreviations +
		c.Sources + c.LexicalCategories + c.Metadata
}
