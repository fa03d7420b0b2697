// Package flatten turns one lexicon entry element into the relational
// records stored by the migrator: a headword, an optional definition and the
// definition's ordered dependent rows.
package flatten

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/sanskrit-lexicon/internal/domain"
	"github.com/heartmarshall/sanskrit-lexicon/internal/markup"
)

// Vocabulary names the tags the flattener looks for inside an entry.
type Vocabulary struct {
	Head    string
	Key1    string
	Key2    string
	Homonym string
	Tail    string
	LineRef string
	PageRef string
	Body    string

	SanskritForm    string
	Abbreviation    string
	Source          string
	LexicalCategory string
	Annotation      string
}

// DefaultVocabulary returns the tag set of Cologne-style digitizations.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Head:    "h",
		Key1:    "key1",
		Key2:    "key2",
		Homonym: "hom",
		Tail:    "tail",
		LineRef: "L",
		PageRef: "pc",
		Body:    "body",

		SanskritForm:    "s",
		Abbreviation:    "ab",
		Source:          "ls",
		LexicalCategory: "lex",
		Annotation:      "info",
	}
}

// IDFunc produces a fresh record id.
type IDFunc func() uuid.UUID

// Flattener converts entry elements into records. It holds no per-document
// state; positions are supplied by the caller.
type Flattener struct {
	vocab Vocabulary
	newID IDFunc
}

// New creates a Flattener. A nil newID falls back to uuid.New.
func New(vocab Vocabulary, newID IDFunc) *Flattener {
	if newID == nil {
		newID = uuid.New
	}
	return &Flattener{vocab: vocab, newID: newID}
}

// Flatten extracts the records of one entry. position is the 1-based
// sequence number of the entry in its document.
//
// ok is false when the entry has no head element or an empty key1; such
// entries are skipped and yield no records. The error is reserved for a
// failure to encode the body snapshot.
func (f *Flattener) Flatten(entry markup.Node, position int) (rec domain.EntryRecords, ok bool, err error) {
	head := markup.FirstByTag(entry, f.vocab.Head)
	if head == nil {
		return domain.EntryRecords{}, false, nil
	}
	key1 := markup.TextOf(markup.FirstByTag(*head, f.vocab.Key1))
	if key1 == nil || *key1 == "" {
		return domain.EntryRecords{}, false, nil
	}

	hw := domain.Headword{
		ID:        f.newID(),
		EntryType: entry.Tag(),
		Key1:      *key1,
		Key2:      markup.TextOf(markup.FirstByTag(*head, f.vocab.Key2)),
		Homonym:   markup.TextOf(markup.FirstByTag(*head, f.vocab.Homonym)),
		Position:  position,
	}
	if tail := markup.FirstByTag(entry, f.vocab.Tail); tail != nil {
		hw.LineRef = markup.TextOf(markup.FirstByTag(*tail, f.vocab.LineRef))
		hw.PageRef = markup.TextOf(markup.FirstByTag(*tail, f.vocab.PageRef))
	}
	rec.Headword = hw

	body := markup.FirstByTag(entry, f.vocab.Body)
	if body == nil {
		return rec, true, nil
	}

	raw, err := json.Marshal(markup.Serialize(*body))
	if err != nil {
		return domain.EntryRecords{}, false, fmt.Errorf("encode body of %q: %w", hw.Key1, err)
	}
	def := &domain.Definition{
		ID:           f.newID(),
		HeadwordID:   hw.ID,
		Content:      *markup.CleanText(markup.TextOf(body)),
		RawContent:   raw,
		DisplayOrder: 1,
	}
	rec.Definition = def

	rec.SanskritForms = collect(*body, f.vocab.SanskritForm, func(text string, order int) domain.SanskritForm {
		return domain.SanskritForm{ID: f.newID(), DefinitionID: def.ID, Text: text, DisplayOrder: order}
	})
	rec.Abbreviations = collect(*body, f.vocab.Abbreviation, func(text string, order int) domain.Abbreviation {
		return domain.Abbreviation{ID: f.newID(), DefinitionID: def.ID, AbbrText: text, DisplayOrder: order}
	})
	rec.Sources = collect(*body, f.vocab.Source, func(text string, order int) domain.Source {
		return domain.Source{ID: f.newID(), DefinitionID: def.ID, SourceText: text, DisplayOrder: order}
	})
	rec.LexicalCategories = collect(*body, f.vocab.LexicalCategory, func(text string, order int) domain.LexicalCategory {
		return domain.LexicalCategory{ID: f.newID(), DefinitionID: def.ID, Category: text, DisplayOrder: order}
	})
	rec.Metadata = f.metadata(*body, def.ID)

	return rec, true, nil
}

// collect builds one record per descendant named tag with non-empty text.
// Display order counts only the kept elements.
func collect[T any](body markup.Node, tag string, build func(text string, order int) T) []T {
	var out []T
	order := 0
	for _, el := range markup.AllByTag(body, tag) {
		text := el.Text()
		if text == "" {
			continue
		}
		order++
		out = append(out, build(text, order))
	}
	return out
}

func (f *Flattener) metadata(body markup.Node, definitionID uuid.UUID) []domain.Metadata {
	var out []domain.Metadata
	for _, info := range markup.AllByTag(body, f.vocab.Annotation) {
		for _, a := range info.Attrs() {
			out = append(out, domain.Metadata{
				ID:           f.newID(),
				RelatedID:    definitionID,
				RelatedTable: domain.MetadataRelatedTable,
				MetaKey:      a.Name,
				MetaValue:    a.Value,
				AttrSource:   domain.MetadataAttrSource,
			})
		}
	}
	return out
}
