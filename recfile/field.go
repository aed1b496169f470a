// Package recfile implements the parser and in-memory model for recfiles: a
// line-oriented, human-editable record format in which a file is a sequence
// of records, each an ordered multiset of named string fields. Some records
// are descriptors that declare a schema for the records of a given type that
// follow them.
package recfile

import "fmt"

// Field is a single (name, value) pair within a Record. Names are not unique
// within a Record; both order and multiplicity are preserved.
type Field struct {
	Name  string
	Value string
}

// Record is an ordered sequence of Fields, plus the Descriptor in scope for
// it (nil if no descriptor applies). A Record always has at least one Field;
// the zero Record is never produced by Parse.
type Record struct {
	Fields     []Field
	Descriptor *Descriptor
}

// Get returns the value of the first Field named name, and whether it was
// found at all.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// GetAll returns the values of every occurrence of name, in Record order.
func (r Record) GetAll(name string) []string {
	var out []string
	for _, f := range r.Fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}

// At returns the k-th (zero-based) occurrence of name.
func (r Record) At(name string, k int) (string, bool) {
	if k < 0 {
		return "", false
	}
	n := 0
	for _, f := range r.Fields {
		if f.Name == name {
			if n == k {
				return f.Value, true
			}
			n++
		}
	}
	return "", false
}

// Count returns the number of occurrences of name in the Record. It is
// always defined: an absent field has a count of zero.
func (r Record) Count(name string) int {
	n := 0
	for _, f := range r.Fields {
		if f.Name == name {
			n++
		}
	}
	return n
}

// IsDescriptor returns true if this Record's first field declares a record
// type (its name is "%rec").
func (r Record) IsDescriptor() bool {
	return len(r.Fields) > 0 && r.Fields[0].Name == "%rec"
}

// RecordSet is an ordered sequence of Records, along with every Descriptor
// encountered while parsing, keyed by record-type name. A RecordSet is
// immutable once built: the query driver only ever reads it or projects
// copies of its Records.
type RecordSet struct {
	Records     []Record
	Descriptors map[string]*Descriptor
}

// DescriptorFor returns the Descriptor declared for recordType, if any.
func (rs RecordSet) DescriptorFor(recordType string) (*Descriptor, bool) {
	d, ok := rs.Descriptors[recordType]
	return d, ok
}

// String renders f as "name: value" for diagnostics; it does not perform
// rec-format escaping or folding (see Format for that).
func (f Field) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Value)
}
