package query

import (
	"strings"
	"testing"

	"github.com/go-recutils/recsel/recfile"
)

const booksFixture = `%rec: Book
%key: Title
%type: Year int
%type: Rating real

Title: The Go Programming Language
Author: Donovan
Year: 2015
Rating: 4.8

Title: The C Programming Language
Author: Kernighan
Year: 1978
Rating: 4.6

Title: The Pragmatic Programmer
Author: Hunt
Year: 1999
Rating: 4.2
`

func parseBooks(t *testing.T) *recfile.RecordSet {
	t.Helper()
	rs, err := recfile.Parse(booksFixture)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return rs
}

func TestRunTypeFilterMatchesAllThreeBooks(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{Type: "Book"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("expected 3 books, got %d", len(result.Records))
	}
}

func TestRunExprFiltersByYear(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{Type: "Book", Expr: "Year > 2000"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 book published after 2000, got %d", len(result.Records))
	}
	if v, _ := result.Records[0].Get("Author"); v != "Donovan" {
		t.Errorf("Author = %q, want Donovan", v)
	}
}

func TestRunQuickSearch(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{QuickSearch: "Kernighan"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Records))
	}
}

func TestRunIndexesKeepsListedPositions(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{Indexes: "0,2"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(result.Records))
	}
	if v, _ := result.Records[0].Get("Title"); v != "The Go Programming Language" {
		t.Errorf("Records[0].Title = %q, want %q", v, "The Go Programming Language")
	}
	if v, _ := result.Records[1].Get("Title"); v != "The Pragmatic Programmer" {
		t.Errorf("Records[1].Title = %q, want %q", v, "The Pragmatic Programmer")
	}
}

func TestRunIndexesRange(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{Indexes: "1-2"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(result.Records))
	}
	if v, _ := result.Records[0].Get("Title"); v != "The C Programming Language" {
		t.Errorf("Records[0].Title = %q, want %q", v, "The C Programming Language")
	}
}

func TestRunIndexesOutOfRangeYieldsNoRecord(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{Indexes: "9"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Records) != 0 {
		t.Fatalf("expected 0 matches, got %d", len(result.Records))
	}
}

func TestRunIndexesMalformedSpecIsError(t *testing.T) {
	rs := parseBooks(t)
	_, err := Run(rs, &Spec{Indexes: "abc"})
	if err == nil {
		t.Fatal("expected an error for a malformed index spec")
	}
	if _, ok := err.(*IndexSpecError); !ok {
		t.Fatalf("expected *IndexSpecError, got %T", err)
	}
}

func TestRunSortBy(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{SortBy: []string{"Year"}})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	years := []string{"1978", "1999", "2015"}
	for i, want := range years {
		got, _ := result.Records[i].Get("Year")
		if got != want {
			t.Errorf("Records[%d].Year = %q, want %q", i, got, want)
		}
	}
}

func TestRunUniqByAuthor(t *testing.T) {
	rs := parseBooks(t)
	// No two books here share an author, so Uniq by Author should keep all 3.
	result, err := Run(rs, &Spec{UniqBy: []string{"Author"}})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(result.Records))
	}
}

func TestUniqRecordsOnlyDropsAdjacentDuplicates(t *testing.T) {
	records := []recfile.Record{
		{Fields: []recfile.Field{{Name: "Group", Value: "A"}}},
		{Fields: []recfile.Field{{Name: "Group", Value: "B"}}},
		{Fields: []recfile.Field{{Name: "Group", Value: "A"}}},
	}
	out := uniqRecords(records, []string{"Group"})
	if len(out) != 3 {
		t.Fatalf("expected non-adjacent repeat to survive, got %d records", len(out))
	}
}

func TestUniqRecordsDropsAdjacentDuplicate(t *testing.T) {
	records := []recfile.Record{
		{Fields: []recfile.Field{{Name: "Group", Value: "A"}}},
		{Fields: []recfile.Field{{Name: "Group", Value: "A"}}},
		{Fields: []recfile.Field{{Name: "Group", Value: "B"}}},
	}
	out := uniqRecords(records, []string{"Group"})
	if len(out) != 2 {
		t.Fatalf("expected adjacent repeat to be dropped, got %d records", len(out))
	}
}

func TestRunCountProjection(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{Expr: "Year > 1990"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	out, err := Project(result, &Spec{Count: true})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	if out != "2" {
		t.Errorf("Project(Count) = %q, want \"2\"", out)
	}
}

func TestRunPrintFieldsProjection(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{Indexes: "1"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	spec := &Spec{PrintFields: []string{"Author", "Year"}}
	out, err := Project(result, spec)
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	want := "Author: Kernighan\nYear: 1978\n"
	if out != want {
		t.Errorf("Project(PrintFields) = %q, want %q", out, want)
	}
}

func TestRunPrintValuesProjection(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{Indexes: "1"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	out, err := Project(result, &Spec{PrintValues: true})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	want := "The C Programming Language\nKernighan\n1978\n4.6\n"
	if out != want {
		t.Errorf("Project(PrintValues) = %q, want %q", out, want)
	}
}

func TestRunPrintRowProjection(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{Indexes: "1"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	out, err := Project(result, &Spec{PrintRow: true})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	want := "The C Programming Language Kernighan 1978 4.6\n"
	if out != want {
		t.Errorf("Project(PrintRow) = %q, want %q", out, want)
	}
}

func TestRunDefaultProjectionIncludesDescriptors(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{Indexes: "0"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	out, err := Project(result, &Spec{IncludeDescriptors: true})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	if !strings.Contains(out, "%rec: Book") {
		t.Errorf("Project(IncludeDescriptors) = %q, want it to contain the %%rec descriptor", out)
	}
}

func TestRunPrintValuesCollapseSuppressesBlankLines(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	collapsed, err := Project(result, &Spec{PrintValues: true, Collapse: true})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	if strings.Contains(collapsed, "\n\n") {
		t.Errorf("Project(PrintValues, Collapse) = %q, want no blank-line separators", collapsed)
	}
	spaced, err := Project(result, &Spec{PrintValues: true})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	if !strings.Contains(spaced, "\n\n") {
		t.Errorf("Project(PrintValues) = %q, want blank-line separators between records", spaced)
	}
}

func TestRunStrictRejectsConflictingProjection(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	_, err = Project(result, &Spec{Strict: true, PrintValues: true, PrintFields: []string{"Author"}, PrintRow: true})
	if err == nil {
		t.Fatal("expected a ProjectionConflictError, got nil")
	}
	if _, ok := err.(*ProjectionConflictError); !ok {
		t.Fatalf("expected *ProjectionConflictError, got %T", err)
	}
}

func TestRunMissingFieldExpressionFailsSilently(t *testing.T) {
	rs := parseBooks(t)
	result, err := Run(rs, &Spec{Expr: "ISBN = '0-13-110362-8'"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Records) != 0 {
		t.Errorf("expected 0 matches for a field no record has, got %d", len(result.Records))
	}
}
