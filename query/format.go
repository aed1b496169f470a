package query

import (
	"strconv"
	"strings"

	"github.com/go-recutils/recsel/recfile"
)

// Project renders result according to the projection priority:
// print-fields beats print-values, which beats print-row, which beats the
// plain recfile rendering; count beats all of them and returns only the
// matching record count as a decimal string. In Strict mode, combining more
// than one of print-fields/print-values/print-row is rejected instead of
// silently resolved by priority.
func Project(result *Result, spec *Spec) (string, error) {
	if err := spec.validateProjection(); err != nil {
		return "", err
	}
	if spec.Count {
		return strconv.Itoa(len(result.Records)), nil
	}
	switch {
	case len(spec.PrintFields) > 0:
		return projectFields(result.Records, spec.PrintFields), nil
	case spec.PrintValues:
		return projectValues(result.Records, spec.PrintFields, spec.Collapse), nil
	case spec.PrintRow:
		return projectRow(result.Records, spec.PrintFields), nil
	default:
		rs := &recfile.RecordSet{Records: result.Records, Descriptors: result.Descriptors}
		opts := recfile.FormatOptions{IncludeDescriptors: spec.IncludeDescriptors, Collapse: spec.Collapse}
		return recfile.Format(rs, opts), nil
	}
}

func fieldsFor(r recfile.Record, names []string) []string {
	if len(names) == 0 {
		out := make([]string, len(r.Fields))
		for i, f := range r.Fields {
			out[i] = f.Value
		}
		return out
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if v, ok := r.Get(name); ok {
			out = append(out, v)
		}
	}
	return out
}

func projectFields(records []recfile.Record, names []string) string {
	var b strings.Builder
	for _, r := range records {
		for _, name := range names {
			if v, ok := r.Get(name); ok {
				b.WriteString(name)
				b.WriteString(": ")
				b.WriteString(v)
				b.WriteByte('\n')
			}
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// projectValues prints each record's values one per line, separating
// records by a blank line unless collapse suppresses it.
func projectValues(records []recfile.Record, names []string, collapse bool) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 && !collapse {
			b.WriteByte('\n')
		}
		for _, v := range fieldsFor(r, names) {
			b.WriteString(v)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func projectRow(records []recfile.Record, names []string) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(strings.Join(fieldsFor(r, names), " "))
		b.WriteByte('\n')
	}
	return b.String()
}
