package lexicon

// Table is a lexicon table with its insert column order.
type Table struct {
	Name    string
	Columns []string
}

var (
	Headwords = Table{
		Name:    "headwords",
		Columns: []string{"id", "type", "key1", "key2", "homonym", "position", "page_ref", "line_ref"},
	}
	Definitions = Table{
		Name:    "definitions",
		Columns: []string{"id", "headword_id", "content", "raw_content", "display_order"},
	}
	SanskritForms = Table{
		Name:    "sanskrit_forms",
		Columns: []string{"id", "definition_id", "text", "display_order"},
	}
	Abbreviations = Table{
		Name:    "abbreviations",
		Columns: []string{"id", "definition_id", "abbr_text", "display_order"},
	}
	Sources = Table{
		Name:    "sources",
		Columns: []string{"id", "definition_id", "source_text", "display_order"},
	}
	LexicalCategories = Table{
		Name:    "lexical_categories",
		Columns: []string{"id", "definition_id", "category", "display_order"},
	}
	Metadata = Table{
		Name:    "metadata",
		Columns: []string{"id", "related_id", "related_table", "meta_key", "meta_value", "attr_source"},
	}
)

// Tables lists all lexicon tables, parents before children.
var Tables = []Table{
	Headwords, Definitions, SanskritForms, Abbreviations, Sources, LexicalCategories, Metadata,
}
