package query

import (
	"github.com/skeema/mybase"
)

// AddCommandOptions registers every option the query driver understands
// onto cmd, grouped into named sections so --help renders them together.
func AddCommandOptions(cmd *mybase.Command) {
	cmd.AddOptions("Selection",
		mybase.StringOption("type", 't', "", "Restrict the query to records of this record type"),
		mybase.StringOption("indexes", 0, "", "Comma-separated list of record positions or inclusive ranges (e.g. \"0,2-3\") to keep, applied after --type"),
		mybase.StringOption("quick-search", 'q', "", "Keep only records containing this substring in any field"),
		mybase.StringOption("expr", 'e', "", "SEX selection expression; keep only records it evaluates true for"),
		mybase.BoolOption("case-insensitive", 'i', false, "Fold case in quick search and expression evaluation"),
		mybase.StringOption("random", 0, "", "Select a random sample of at most N matching records"),
	)
	cmd.AddOptions("Arrangement",
		mybase.StringOption("sort-by", 'S', "", "Comma-separated field names to sort ascending by"),
		mybase.StringOption("group-by", 'G', "", "Comma-separated field names to group records by"),
		mybase.StringOption("uniq", 'U', "", "Comma-separated field names defining record identity for deduplication"),
	)
	cmd.AddOptions("Output",
		mybase.StringOption("print-fields", 'p', "", "Comma-separated field names to project, in order"),
		mybase.BoolOption("print-values", 'v', false, "Print only field values, one per line, with no field names"),
		mybase.BoolOption("print-row", 'R', false, "Print one record per output line, fields space-separated"),
		mybase.BoolOption("count", 'c', false, "Print only the number of matching records"),
		mybase.BoolOption("strict", 0, false, "Reject combining print-fields, print-values, and print-row instead of prioritizing one"),
		mybase.BoolOption("include-descriptors", 0, false, "Emit each record type's %rec descriptor ahead of its records"),
		mybase.BoolOption("collapse", 0, false, "Suppress the blank line between records in the output"),
	)
}

// SpecFromConfig builds a Spec from a parsed mybase.Config, converting CLI
// option values into a typed struct before any domain logic runs.
func SpecFromConfig(cfg *mybase.Config) (*Spec, error) {
	random := 0
	if raw := cfg.Get("random"); raw != "" {
		n, err := cfg.GetInt("random")
		if err != nil {
			return nil, err
		}
		random = n
	}

	return &Spec{
		Type:               cfg.Get("type"),
		Indexes:            cfg.Get("indexes"),
		QuickSearch:        cfg.Get("quick-search"),
		Expr:               cfg.Get("expr"),
		CaseInsensitive:    cfg.GetBool("case-insensitive"),
		Random:             random,
		SortBy:             cfg.GetSlice("sort-by", ',', true),
		GroupBy:            cfg.GetSlice("group-by", ',', true),
		UniqBy:             cfg.GetSlice("uniq", ',', true),
		PrintFields:        cfg.GetSlice("print-fields", ',', true),
		PrintValues:        cfg.GetBool("print-values"),
		PrintRow:           cfg.GetBool("print-row"),
		Count:              cfg.GetBool("count"),
		Strict:             cfg.GetBool("strict"),
		IncludeDescriptors: cfg.GetBool("include-descriptors"),
		Collapse:           cfg.GetBool("collapse"),
	}, nil
}
