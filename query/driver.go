package query

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/go-recutils/recsel/recfile"
	"github.com/go-recutils/recsel/sex"
)

// Result is the outcome of running a Spec against a RecordSet: the records
// that survived the pipeline, in final display order, alongside the source
// RecordSet's descriptors for callers that project with IncludeDescriptors.
type Result struct {
	Records     []recfile.Record
	Descriptors map[string]*recfile.Descriptor
}

// Run drives a RecordSet through the full selection pipeline: type filter,
// index filter, quick search, expression filter, random sampling, sort,
// group-by, and uniq, in that order. Expression evaluation errors other
// than a missing field are logged at Warn level and treated as a non-match,
// rather than aborting the query, matching SEX's total-evaluation design.
func Run(rs *recfile.RecordSet, spec *Spec) (*Result, error) {
	records := rs.Records

	records = filterByType(records, spec.Type)
	records, err := filterByIndexes(records, spec.Indexes)
	if err != nil {
		return nil, err
	}
	records = filterByQuickSearch(records, spec.QuickSearch, spec.CaseInsensitive)

	var expr *sex.Expr
	if spec.Expr != "" {
		var err error
		expr, err = sex.Compile(spec.Expr)
		if err != nil {
			return nil, err
		}
		records = filterByExpr(records, expr, spec.CaseInsensitive)
	}

	if spec.Random > 0 {
		records = randomSample(records, spec.Random)
	}

	if len(spec.SortBy) > 0 {
		records = sortRecords(records, spec.SortBy)
	}

	if len(spec.GroupBy) > 0 {
		records = groupRecords(records, spec.GroupBy)
	}

	if len(spec.UniqBy) > 0 {
		records = uniqRecords(records, spec.UniqBy)
	}

	return &Result{Records: records, Descriptors: rs.Descriptors}, nil
}

func filterByType(records []recfile.Record, recordType string) []recfile.Record {
	if recordType == "" {
		return records
	}
	out := make([]recfile.Record, 0, len(records))
	for _, r := range records {
		if r.Descriptor != nil && r.Descriptor.RecordType == recordType {
			out = append(out, r)
		}
	}
	return out
}

// indexRange is one "N" or "a-b" term of an index spec, inclusive of both
// ends.
type indexRange struct {
	lo, hi int
}

func (r indexRange) contains(i int) bool {
	return i >= r.lo && i <= r.hi
}

// parseIndexSpec parses the comma-separated list of single integers or
// inclusive ranges ("a-b") described in §6's `indexes` option.
func parseIndexSpec(spec string) ([]indexRange, error) {
	parts := strings.Split(spec, ",")
	ranges := make([]indexRange, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if dash := strings.IndexByte(p, '-'); dash > 0 {
			lo, err := strconv.Atoi(strings.TrimSpace(p[:dash]))
			if err != nil {
				return nil, &IndexSpecError{Spec: p}
			}
			hi, err := strconv.Atoi(strings.TrimSpace(p[dash+1:]))
			if err != nil {
				return nil, &IndexSpecError{Spec: p}
			}
			ranges = append(ranges, indexRange{lo: lo, hi: hi})
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, &IndexSpecError{Spec: p}
		}
		ranges = append(ranges, indexRange{lo: n, hi: n})
	}
	return ranges, nil
}

// IndexSpecError reports a malformed term of an `indexes` spec string.
type IndexSpecError struct {
	Spec string
}

func (e *IndexSpecError) Error() string {
	return "malformed index term: " + e.Spec
}

// filterByIndexes keeps the k-th record (zero-based, among records already
// surviving the type filter) for every k named by spec. An out-of-range
// index silently contributes no record, per §4.7.
func filterByIndexes(records []recfile.Record, spec string) ([]recfile.Record, error) {
	if spec == "" {
		return records, nil
	}
	ranges, err := parseIndexSpec(spec)
	if err != nil {
		return nil, err
	}
	out := make([]recfile.Record, 0, len(records))
	for i, r := range records {
		for _, rg := range ranges {
			if rg.contains(i) {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func filterByQuickSearch(records []recfile.Record, term string, ci bool) []recfile.Record {
	if term == "" {
		return records
	}
	needle := term
	if ci {
		needle = strings.ToLower(needle)
	}
	out := make([]recfile.Record, 0, len(records))
	for _, r := range records {
		for _, f := range r.Fields {
			hay := f.Value
			if ci {
				hay = strings.ToLower(hay)
			}
			if strings.Contains(hay, needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// filterByExpr keeps a record when expr evaluates truthy against it. A
// silent MissingField failure drops the record without comment, since a
// query naming a field absent from some records is routine; any other
// evaluation error is logged, since it usually indicates a malformed field
// value or a bad regex literal worth the operator's attention.
func filterByExpr(records []recfile.Record, expr *sex.Expr, ci bool) []recfile.Record {
	out := make([]recfile.Record, 0, len(records))
	opts := sex.EvalOptions{CaseInsensitive: ci}
	for _, r := range records {
		v := expr.Eval(r, opts).Truthy()
		if v.IsError() {
			if !v.IsMissingField() {
				log.WithField("record", summarize(r)).Warnf("expression evaluation error: %s", v)
			}
			continue
		}
		if v.Kind == sex.Bool && v.B {
			out = append(out, r)
		}
	}
	return out
}

func summarize(r recfile.Record) string {
	if len(r.Fields) == 0 {
		return "<empty record>"
	}
	return r.Fields[0].Name + ": " + r.Fields[0].Value
}

func randomSample(records []recfile.Record, n int) []recfile.Record {
	if n >= len(records) {
		return records
	}
	shuffled := make([]recfile.Record, len(records))
	copy(shuffled, records)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

func sortRecords(records []recfile.Record, fields []string) []recfile.Record {
	out := make([]recfile.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		for _, f := range fields {
			vi, _ := out[i].Get(f)
			vj, _ := out[j].Get(f)
			if vi == vj {
				continue
			}
			return lessValue(vi, vj)
		}
		return false
	})
	return out
}

// lessValue orders two raw field strings numerically when both parse as
// numbers, falling back to a byte-wise string comparison otherwise. This
// mirrors the comparison operators' own numeric-then-string fallback in the
// sex package, without importing its unexported coercion helper.
func lessValue(a, b string) bool {
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		return af < bf
	}
	return a < b
}

// groupRecords stably partitions records so that records sharing the same
// combination of field values become contiguous, in order of each group's
// first appearance. Applied after an explicit sort, this is a no-op since
// the sort already made matching groups contiguous; applied without one, it
// is the "contiguous partition, not a sort" behavior the grouping field
// calls for.
func groupRecords(records []recfile.Record, fields []string) []recfile.Record {
	type group struct {
		key     string
		members []recfile.Record
	}
	var groups []*group
	index := make(map[string]*group)
	for _, r := range records {
		key := groupKey(r, fields)
		g, ok := index[key]
		if !ok {
			g = &group{key: key}
			index[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, r)
	}
	out := make([]recfile.Record, 0, len(records))
	for _, g := range groups {
		out = append(out, g.members...)
	}
	return out
}

func groupKey(r recfile.Record, fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		v, _ := r.Get(f)
		parts[i] = v
	}
	return strings.Join(parts, "\x00")
}

// uniqRecords drops a record when its key matches the immediately preceding
// kept record's key, per §4.7 step 8's "adjacent duplicates" wording. A
// prior sort or group-by makes equal keys contiguous; without one, repeats
// separated by a different record are both kept.
func uniqRecords(records []recfile.Record, fields []string) []recfile.Record {
	out := make([]recfile.Record, 0, len(records))
	havePrev := false
	var prevKey string
	for _, r := range records {
		key := groupKey(r, fields)
		if havePrev && key == prevKey {
			continue
		}
		out = append(out, r)
		prevKey = key
		havePrev = true
	}
	return out
}
