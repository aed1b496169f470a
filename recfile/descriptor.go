package recfile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TypeKind enumerates the %type specifications the core enforces. Type
// specs not in this list (size, date, email, field, uuid) are accepted
// syntactically but treated as plain strings.
type TypeKind int

// Constants enumerating the TypeKind values a TypeSpec can carry.
const (
	TypeString TypeKind = iota
	TypeInt
	TypeReal
	TypeBool
	TypeRange
	TypeRegexp
	TypeEnum
	TypeLine
)

// TypeSpec is a parsed %type declaration for one field.
type TypeSpec struct {
	Kind       TypeKind
	RangeMin   int
	RangeMax   int
	Pattern    *regexp.Regexp
	EnumValues []string
	Raw        string // the text following the field name in the %type declaration
}

var (
	intRe  = regexp.MustCompile(`^[+-]?[0-9]+$`)
	realRe = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
)

// parseTypeSpec parses the text following "name" in a "%type: name spec" line.
func parseTypeSpec(spec string) (*TypeSpec, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return &TypeSpec{Kind: TypeString, Raw: spec}, nil
	}
	switch strings.ToLower(fields[0]) {
	case "int":
		return &TypeSpec{Kind: TypeInt, Raw: spec}, nil
	case "real":
		return &TypeSpec{Kind: TypeReal, Raw: spec}, nil
	case "bool":
		return &TypeSpec{Kind: TypeBool, Raw: spec}, nil
	case "line":
		return &TypeSpec{Kind: TypeLine, Raw: spec}, nil
	case "range":
		if len(fields) != 3 {
			return nil, fmt.Errorf("range type-spec requires exactly two integer bounds, got %q", spec)
		}
		lo, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("range type-spec lower bound %q is not an integer", fields[1])
		}
		hi, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("range type-spec upper bound %q is not an integer", fields[2])
		}
		return &TypeSpec{Kind: TypeRange, RangeMin: lo, RangeMax: hi, Raw: spec}, nil
	case "regexp":
		pat := strings.TrimSpace(spec[len(fields[0]):])
		pat = strings.TrimPrefix(pat, "/")
		pat = strings.TrimSuffix(pat, "/")
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("regexp type-spec %q does not compile: %w", pat, err)
		}
		return &TypeSpec{Kind: TypeRegexp, Pattern: re, Raw: spec}, nil
	case "enum":
		if len(fields) < 2 {
			return nil, fmt.Errorf("enum type-spec requires at least one value, got %q", spec)
		}
		return &TypeSpec{Kind: TypeEnum, EnumValues: fields[1:], Raw: spec}, nil
	case "size", "date", "email", "field", "uuid":
		// Accepted syntactically; the core treats these as plain strings.
		return &TypeSpec{Kind: TypeString, Raw: spec}, nil
	default:
		return &TypeSpec{Kind: TypeString, Raw: spec}, nil
	}
}

// Matches reports whether value satisfies the TypeSpec.
func (ts *TypeSpec) Matches(value string) bool {
	switch ts.Kind {
	case TypeInt:
		return intRe.MatchString(value)
	case TypeReal:
		return realRe.MatchString(value)
	case TypeBool:
		switch strings.ToLower(value) {
		case "yes", "no", "true", "false", "0", "1":
			return true
		}
		return false
	case TypeRange:
		if !intRe.MatchString(value) {
			return false
		}
		n, err := strconv.Atoi(value)
		return err == nil && n >= ts.RangeMin && n <= ts.RangeMax
	case TypeRegexp:
		return ts.Pattern.MatchString(value)
	case TypeEnum:
		for _, v := range ts.EnumValues {
			if v == value {
				return true
			}
		}
		return false
	case TypeLine:
		return !strings.Contains(value, "\n")
	default:
		return true
	}
}

// Descriptor represents a %rec declaration and the meta-fields that follow
// it, exposing the schema rules for every record of RecordType.
type Descriptor struct {
	RecordType string
	mandatory  map[string]bool
	prohibited map[string]bool
	allowed    map[string]bool
	types      map[string]*TypeSpec
	key        string
	unique     []string
	docs       []string
	extra      map[string][]string // unrecognized %-fields, preserved verbatim
}

// NewDescriptorFromRecord builds a Descriptor from a Record whose first
// field is "%rec". Returns a BadDescriptorSyntax / MissingRecField
// *ParseError if the record does not qualify.
func NewDescriptorFromRecord(r Record, lineNo int) (*Descriptor, error) {
	if len(r.Fields) == 0 || r.Fields[0].Name != "%rec" {
		return nil, &ParseError{Kind: MissingRecField, Line: lineNo, Message: "descriptor record's first field must be %rec"}
	}
	recType := strings.TrimSpace(r.Fields[0].Value)
	if recType == "" {
		return nil, &ParseError{Kind: MissingRecField, Line: lineNo, Message: "%rec field has no type name"}
	}

	d := &Descriptor{
		RecordType: recType,
		mandatory:  map[string]bool{},
		prohibited: map[string]bool{},
		allowed:    map[string]bool{},
		types:      map[string]*TypeSpec{},
		extra:      map[string][]string{},
	}

	for _, f := range r.Fields[1:] {
		switch f.Name {
		case "%mandatory":
			for _, name := range strings.Fields(f.Value) {
				d.mandatory[name] = true
			}
		case "%prohibit":
			for _, name := range strings.Fields(f.Value) {
				d.prohibited[name] = true
			}
		case "%allowed":
			for _, name := range strings.Fields(f.Value) {
				d.allowed[name] = true
			}
		case "%type":
			parts := strings.SplitN(strings.TrimSpace(f.Value), " ", 2)
			if len(parts) == 0 || parts[0] == "" {
				return nil, &ParseError{Kind: BadDescriptorSyntax, Line: lineNo, Message: "%type field requires a field name"}
			}
			var rest string
			if len(parts) == 2 {
				rest = parts[1]
			}
			ts, err := parseTypeSpec(rest)
			if err != nil {
				return nil, &ParseError{Kind: BadDescriptorSyntax, Line: lineNo, Message: err.Error()}
			}
			d.types[parts[0]] = ts
		case "%key":
			if d.key != "" {
				return nil, &ParseError{Kind: BadDescriptorSyntax, Line: lineNo, Message: "at most one %key field is permitted per record type"}
			}
			d.key = strings.TrimSpace(f.Value)
		case "%unique":
			d.unique = append(d.unique, strings.Fields(f.Value)...)
		case "%doc":
			d.docs = append(d.docs, f.Value)
		case "%rec":
			return nil, &ParseError{Kind: BadDescriptorSyntax, Line: lineNo, Message: "%rec may only appear as the first field of a descriptor"}
		default:
			d.extra[f.Name] = append(d.extra[f.Name], f.Value)
		}
	}
	return d, nil
}

// Mandatory returns the set of field names this record type requires.
func (d *Descriptor) Mandatory() []string {
	out := make([]string, 0, len(d.mandatory))
	for name := range d.mandatory {
		out = append(out, name)
	}
	return out
}

// TypeOf returns the TypeSpec declared for name, if any.
func (d *Descriptor) TypeOf(name string) (*TypeSpec, bool) {
	ts, ok := d.types[name]
	return ts, ok
}

// Key returns the declared %key field name, or "" if none was declared.
func (d *Descriptor) Key() string {
	return d.key
}

// Unique returns the field names declared unique via %unique, plus the %key
// field (a key is implicitly unique).
func (d *Descriptor) Unique() []string {
	out := append([]string{}, d.unique...)
	if d.key != "" {
		out = append(out, d.key)
	}
	return out
}

// Doc returns the concatenation of every %doc field's text.
func (d *Descriptor) Doc() string {
	return strings.Join(d.docs, "\n")
}

// Extra returns the raw values of an unrecognized %-prefixed meta-field.
func (d *Descriptor) Extra(name string) ([]string, bool) {
	v, ok := d.extra[name]
	return v, ok
}

// ViolationKind enumerates the descriptor-violation taxonomy.
type ViolationKind int

// Constants enumerating the ViolationKind values a Violation can carry.
const (
	MissingMandatory ViolationKind = iota
	TypeMismatch
	ProhibitedField
	DuplicateKey
	UniquenessViolation
)

// Violation is one schema problem found by Validate or ValidateUniqueness.
type Violation struct {
	Kind     ViolationKind
	Field    string
	Value    string
	Expected string
}

func (v Violation) String() string {
	switch v.Kind {
	case MissingMandatory:
		return fmt.Sprintf("missing mandatory field %q", v.Field)
	case TypeMismatch:
		return fmt.Sprintf("field %q value %q does not match type %s", v.Field, v.Value, v.Expected)
	case ProhibitedField:
		return fmt.Sprintf("prohibited field %q is present", v.Field)
	case DuplicateKey:
		return fmt.Sprintf("key field %q appears more than once in the same record", v.Field)
	case UniquenessViolation:
		return fmt.Sprintf("field %q value %q is not unique", v.Field, v.Value)
	default:
		return "unknown violation"
	}
}

// Validate checks a single Record against d, returning MissingMandatory,
// TypeMismatch, ProhibitedField, and DuplicateKey violations. Cross-record
// uniqueness is checked separately by ValidateUniqueness.
func (d *Descriptor) Validate(r Record) []Violation {
	var out []Violation

	for name := range d.mandatory {
		if _, ok := r.Get(name); !ok {
			out = append(out, Violation{Kind: MissingMandatory, Field: name})
		}
	}
	for name := range d.prohibited {
		if _, ok := r.Get(name); ok {
			out = append(out, Violation{Kind: ProhibitedField, Field: name})
		}
	}
	if d.key != "" && r.Count(d.key) > 1 {
		out = append(out, Violation{Kind: DuplicateKey, Field: d.key})
	}
	for _, f := range r.Fields {
		if ts, ok := d.types[f.Name]; ok && !ts.Matches(f.Value) {
			out = append(out, Violation{Kind: TypeMismatch, Field: f.Name, Value: f.Value, Expected: ts.Raw})
		}
	}
	return out
}

// ValidateUniqueness checks UniquenessViolation across every Record of this
// record type, for every %key and %unique field.
func (d *Descriptor) ValidateUniqueness(records []Record) []Violation {
	var out []Violation
	for _, name := range d.Unique() {
		seen := map[string]bool{}
		for _, r := range records {
			v, ok := r.Get(name)
			if !ok {
				continue
			}
			if seen[v] {
				out = append(out, Violation{Kind: UniquenessViolation, Field: name, Value: v})
			}
			seen[v] = true
		}
	}
	return out
}
