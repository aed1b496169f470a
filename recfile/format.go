package recfile

import "strings"

// FormatOptions controls recfile.Format's output. The query driver (package
// query) has its own richer projection formats (print_fields, print_values,
// print_row); Format implements only the plain rec-format default and is
// exercised by the round-trip property against Parse.
type FormatOptions struct {
	IncludeDescriptors bool
	Collapse           bool // suppress blank-line separators between records
}

// Format renders a RecordSet back to recfile text. Multi-line field values
// are normalized to '+'-continuation syntax; comments are never reproduced,
// and trailing whitespace on rendered lines is always trimmed. These are the
// three respects in which Format round-trips Parse.
func Format(rs *RecordSet, opts FormatOptions) string {
	var b strings.Builder
	first := true

	writeRecord := func(r Record) {
		if !first && !opts.Collapse {
			b.WriteString("\n")
		}
		first = false
		for _, f := range r.Fields {
			writeField(&b, f)
		}
	}

	if opts.IncludeDescriptors {
		// Descriptors have no fixed position in RecordSet (they're stored in a
		// map, not inline); emit them all up front, each as its own record.
		for _, d := range rs.Descriptors {
			writeRecord(descriptorRecord(d))
		}
	}
	for _, r := range rs.Records {
		writeRecord(r)
	}
	return b.String()
}

func writeField(b *strings.Builder, f Field) {
	lines := strings.Split(f.Value, "\n")
	b.WriteString(strings.TrimRight(f.Name, " \t"))
	b.WriteString(":")
	if lines[0] != "" {
		b.WriteString(" ")
		b.WriteString(strings.TrimRight(lines[0], " \t"))
	}
	b.WriteString("\n")
	for _, l := range lines[1:] {
		b.WriteString("+ ")
		b.WriteString(strings.TrimRight(l, " \t"))
		b.WriteString("\n")
	}
}

// descriptorRecord reconstructs a Record representation of a Descriptor
// sufficient to re-render it as rec-format text. It is a lossy reassembly
// (unique/mandatory/etc. field ordering is not preserved from the original
// input) used only for IncludeDescriptors output.
func descriptorRecord(d *Descriptor) Record {
	fields := []Field{{Name: "%rec", Value: d.RecordType}}
	if len(d.mandatory) > 0 {
		fields = append(fields, Field{Name: "%mandatory", Value: strings.Join(d.Mandatory(), " ")})
	}
	for name, ts := range d.types {
		fields = append(fields, Field{Name: "%type", Value: name + " " + ts.Raw})
	}
	if d.key != "" {
		fields = append(fields, Field{Name: "%key", Value: d.key})
	}
	if len(d.unique) > 0 {
		fields = append(fields, Field{Name: "%unique", Value: strings.Join(d.unique, " ")})
	}
	for name := range d.prohibited {
		fields = append(fields, Field{Name: "%prohibit", Value: name})
	}
	for _, doc := range d.docs {
		fields = append(fields, Field{Name: "%doc", Value: doc})
	}
	return Record{Fields: fields}
}
