// Package query implements the recsel query driver: the pipeline that
// narrows a recfile.RecordSet down to the records and fields a caller asked
// for, per the type filter -> index filter -> quick search -> expression
// filter -> sampling -> sort -> group -> uniq -> projection stages.
package query

// Spec describes one query against a RecordSet, gathering every selection
// and projection knob recsel exposes into a single value so the driver
// itself stays a pure function of (RecordSet, Spec).
type Spec struct {
	// Type restricts the query to records of this record type. Empty means
	// no restriction.
	Type string

	// Indexes, when non-empty, keeps only the records at the given
	// zero-based positions among the records surviving the type filter. Its
	// grammar is a comma-separated list of single integers or inclusive
	// ranges ("a-b"); an out-of-range index silently yields no record.
	Indexes string

	// QuickSearch, when non-empty, keeps only records containing this
	// substring in at least one field value (case-insensitive when
	// CaseInsensitive is set).
	QuickSearch string

	// Expr is a SEX selection expression string. Empty means no filtering by
	// expression.
	Expr string

	// CaseInsensitive governs both QuickSearch and Expr evaluation.
	CaseInsensitive bool

	// Random, when > 0, selects a random sample of at most this many
	// records from the post-filter set instead of all of them.
	Random int

	// SortBy names fields to sort ascending by, applied in order (the first
	// name is the primary sort key).
	SortBy []string

	// GroupBy names fields to group records by. Without SortBy, grouping is
	// a stable partition over the existing order rather than a sort.
	GroupBy []string

	// UniqBy names fields defining record identity for deduplication: a
	// record is dropped when its combination of values equals that of the
	// record kept just before it; non-adjacent repeats are all kept. Empty
	// means no deduplication.
	UniqBy []string

	// PrintFields, if non-empty, projects output to exactly these fields in
	// order (recsel's -p).
	PrintFields []string

	// PrintValues, if true, prints only field values with no field names
	// (recsel's -v). PrintFields takes priority over PrintValues when both
	// are set.
	PrintValues bool

	// PrintRow, if true, prints one record per line with fields
	// space-separated (recsel's -R). PrintFields and PrintValues both take
	// priority over PrintRow when set.
	PrintRow bool

	// Count, if true, suppresses record output and reports only the number
	// of matching records (recsel's -c).
	Count bool

	// Strict rejects a Spec that combines more than one of PrintFields,
	// PrintValues, and PrintRow instead of silently applying the priority
	// order PrintFields > PrintValues > PrintRow.
	Strict bool

	// IncludeDescriptors, if true, emits each record type's %rec descriptor
	// ahead of its data records in the default (non-projected) rendering.
	IncludeDescriptors bool

	// Collapse, if true, suppresses the blank line that otherwise separates
	// records in the default rendering and in print_values output.
	Collapse bool
}

// validateProjection enforces Strict: at most one of PrintRow, PrintValues,
// and a non-empty PrintFields list may be requested at once.
func (s *Spec) validateProjection() error {
	if !s.Strict {
		return nil
	}
	set := 0
	if s.PrintRow {
		set++
	}
	if s.PrintValues {
		set++
	}
	if len(s.PrintFields) > 0 {
		set++
	}
	if set > 1 {
		return &ProjectionConflictError{}
	}
	return nil
}

// ProjectionConflictError is returned by Project when Spec.Strict is set and
// more than one of print-row/print-values/print-fields was requested.
type ProjectionConflictError struct{}

func (*ProjectionConflictError) Error() string {
	return "print-row, print-values, and print-fields are mutually exclusive in strict mode"
}
