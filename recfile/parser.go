package recfile

import (
	"fmt"
	"io"
	"strings"
)

// Parse parses the entirety of text as a recfile, returning a RecordSet.
func Parse(text string) (*RecordSet, error) {
	return ParseStream(strings.NewReader(text))
}

// ParseStream parses a recfile from r. It streams: only one logical line's
// worth of state is buffered at a time (see Tokenizer).
func ParseStream(r io.Reader) (*RecordSet, error) {
	tok := NewTokenizer(r)
	rs := &RecordSet{Descriptors: map[string]*Descriptor{}}

	var current []Field
	var firstLineNo int
	var currentDescriptor *Descriptor

	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		fields := current
		current = nil

		if fields[0].Name[0] == '%' && fields[0].Name != "%rec" {
			return &ParseError{Kind: MissingRecField, Line: firstLineNo, Message: "a record whose first field begins with '%' must declare %rec"}
		}
		for _, f := range fields[1:] {
			if f.Name == "%rec" {
				return &ParseError{Kind: BadDescriptorSyntax, Line: firstLineNo, Message: "%rec may only appear as the first field of a record"}
			}
		}

		rec := Record{Fields: fields}
		if rec.IsDescriptor() {
			d, err := NewDescriptorFromRecord(rec, firstLineNo)
			if err != nil {
				return err
			}
			if _, exists := rs.Descriptors[d.RecordType]; exists {
				return &ParseError{Kind: DuplicateDescriptor, Line: firstLineNo, Message: fmt.Sprintf("record type %q already has a descriptor", d.RecordType)}
			}
			rs.Descriptors[d.RecordType] = d
			currentDescriptor = d
			return nil
		}

		rec.Descriptor = currentDescriptor
		rs.Records = append(rs.Records, rec)
		return nil
	}

	for {
		ll, err := tok.Next()
		if err == io.EOF {
			if ferr := flush(); ferr != nil {
				return nil, ferr
			}
			return rs, nil
		}
		if err != nil {
			return nil, err
		}

		switch ll.Kind {
		case Blank:
			if ferr := flush(); ferr != nil {
				return nil, ferr
			}
		case Comment:
			// Comments are never stored.
		case FieldLine:
			if len(current) == 0 {
				firstLineNo = ll.LineNo
			}
			current = append(current, Field{Name: ll.Name, Value: ll.Value})
		}
	}
}
