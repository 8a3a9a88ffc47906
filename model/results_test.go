package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"testing/quick"
)

func rec(text string, conf float64, x, y, w, h int) Record {
	return Record{Text: text, Confidence: conf, BoundingBox: NewBoundingBox(x, y, w, h)}
}

func sampleResults() *Results {
	return NewResults([]Record{
		rec("Invoice", 0.95, 10, 10, 80, 20),
		rec("Number: 1234", 0.80, 10, 40, 120, 20),
		rec("Total", 0.99, 10, 400, 50, 20),
		rec("$12.50", 0.60, 300, 400, 60, 20),
		rec("thank you", 0.40, 10, 700, 90, 20),
	})
}

func TestNewResults(t *testing.T) {
	rs := sampleResults()
	if rs.Len() != 5 {
		t.Errorf("Len() = %d, want 5", rs.Len())
	}
	if rs.IsEmpty() || !rs.Exists() {
		t.Error("non-empty collection reported as empty")
	}
}

func TestNewResults_CopiesInput(t *testing.T) {
	records := []Record{rec("a", 1, 0, 0, 1, 1)}
	rs := NewResults(records)
	records[0].Text = "changed"

	if got := rs.Texts()[0]; got != "a" {
		t.Errorf("collection changed with caller slice: %q", got)
	}
}

func TestResults_RecordsAndItemsInLockstep(t *testing.T) {
	rs := sampleResults()
	items := rs.Items()
	records := rs.Records()
	if len(items) != len(records) {
		t.Fatalf("items %d != records %d", len(items), len(records))
	}
	for i := range items {
		if !items[i].Equals(records[i].Result()) {
			t.Errorf("item %d = %v, record %v", i, items[i], records[i])
		}
	}

	// Returned slices are copies.
	items[0].Text = "x"
	records[0].Text = "y"
	if rs.First().Text != "Invoice" || rs.Records()[0].Text != "Invoice" {
		t.Error("mutating returned slices changed the collection")
	}
}

func TestResultsGet(t *testing.T) {
	rs := sampleResults()

	tests := []struct {
		index   int
		want    string
		wantErr bool
	}{
		{0, "Invoice", false},
		{4, "thank you", false},
		{-1, "thank you", false},
		{-5, "Invoice", false},
		{5, "", true},
		{-6, "", true},
	}

	for _, tt := range tests {
		got, err := rs.Get(tt.index)
		if tt.wantErr {
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("Get(%d) error = %v, want ErrIndexOutOfRange", tt.index, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Get(%d) error = %v", tt.index, err)
			continue
		}
		if got.Text != tt.want {
			t.Errorf("Get(%d) = %q, want %q", tt.index, got.Text, tt.want)
		}
	}
}

func TestResultsGet_ErrorNamesRequestedIndex(t *testing.T) {
	rs := NewResults([]Record{rec("a", 1, 0, 0, 1, 1), rec("b", 1, 0, 0, 1, 1), rec("c", 1, 0, 0, 1, 1)})

	_, err := rs.Get(-5)
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "index -5, length 3"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q, want it to contain %q", err, want)
	}
}

func TestParseResults_Null(t *testing.T) {
	for _, data := range []string{"null", " null\n"} {
		rs, err := ParseResults([]byte(data))
		if !errors.Is(err, ErrMalformedRecord) {
			t.Errorf("ParseResults(%q) error = %v, want ErrMalformedRecord", data, err)
		}
		if rs != nil {
			t.Errorf("ParseResults(%q) = %v, want nil", data, rs)
		}
	}
}

func TestResultsSlice(t *testing.T) {
	rs := sampleResults()

	tests := []struct {
		name   string
		lo, hi int
		want   []string
	}{
		{"middle", 1, 3, []string{"Number: 1234", "Total"}},
		{"negative bounds", -2, 5, []string{"$12.50", "thank you"}},
		{"clamped", 3, 100, []string{"$12.50", "thank you"}},
		{"reversed", 3, 1, []string{}},
		{"all", 0, 5, rs.Texts()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rs.Slice(tt.lo, tt.hi).Texts()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Slice(%d, %d) = %v, want %v", tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestResultsSlice_IsChainable(t *testing.T) {
	got := sampleResults().Slice(1, 3).MinimumConfidence(0.9).Texts()
	if !reflect.DeepEqual(got, []string{"Total"}) {
		t.Errorf("Slice().MinimumConfidence() = %v", got)
	}
}

func TestResultsAt(t *testing.T) {
	rs := sampleResults()

	v, err := rs.At(2)
	if err != nil {
		t.Fatalf("At(2) error = %v", err)
	}
	if r, ok := v.(Result); !ok || r.Text != "Total" {
		t.Errorf("At(2) = %#v", v)
	}

	v, err = rs.At(Span{Lo: 0, Hi: 2})
	if err != nil {
		t.Fatalf("At(Span) error = %v", err)
	}
	if sub, ok := v.(*Results); !ok || sub.Len() != 2 {
		t.Errorf("At(Span) = %#v", v)
	}

	if _, err := rs.At(10); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("At(10) error = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := rs.At("Total"); !errors.Is(err, ErrUnsupportedKey) {
		t.Errorf("At(string) error = %v, want ErrUnsupportedKey", err)
	}
	if _, err := rs.At(1.5); !errors.Is(err, ErrUnsupportedKey) {
		t.Errorf("At(float) error = %v, want ErrUnsupportedKey", err)
	}
}

func TestResultsContainsText(t *testing.T) {
	rs := sampleResults()
	if !rs.ContainsText("1234") {
		t.Error("ContainsText(1234) = false")
	}
	if rs.ContainsText("invoice") {
		t.Error("ContainsText is case-sensitive")
	}
	if NewResults(nil).ContainsText("") {
		t.Error("empty collection contains nothing")
	}
}

func TestResultsFirstLast(t *testing.T) {
	rs := sampleResults()
	if rs.First().Text != "Invoice" {
		t.Errorf("First() = %v", rs.First())
	}
	if rs.Last().Text != "thank you" {
		t.Errorf("Last() = %v", rs.Last())
	}

	empty := NewResults(nil)
	if empty.First() != nil || empty.Last() != nil {
		t.Error("First/Last on empty collection should be nil")
	}
}

func TestResultsMinimumConfidence(t *testing.T) {
	got := sampleResults().MinimumConfidence(0.8).Texts()
	want := []string{"Invoice", "Number: 1234", "Total"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MinimumConfidence(0.8) = %v, want %v", got, want)
	}
}

func TestResultsWithin(t *testing.T) {
	got := sampleResults().Within(0, 380, 400, 60).Texts()
	want := []string{"Total", "$12.50"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Within() = %v, want %v", got, want)
	}
}

func TestResultsWithin_Containment(t *testing.T) {
	x, y, w, h := 100, 100, 50, 40
	rs := NewResults([]Record{
		rec("inside", 1, x+1, y+1, w-2, h-2),
		rec("shifted left", 1, x-1, y, w, h),
		rec("exact", 1, x, y, w, h),
	})

	got := rs.Within(x, y, w, h).Texts()
	want := []string{"inside", "exact"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Within() = %v, want %v", got, want)
	}
}

func TestResultsContaining(t *testing.T) {
	rs := sampleResults()

	if got := rs.Containing("o", false).Texts(); !reflect.DeepEqual(got, []string{"Invoice", "Total", "thank you"}) {
		t.Errorf("Containing(o) = %v", got)
	}
	if got := rs.Containing("TOTAL", false); !got.IsEmpty() {
		t.Errorf("Containing(TOTAL) = %v, want empty", got)
	}
	if got := rs.Containing("TOTAL", true).Texts(); !reflect.DeepEqual(got, []string{"Total"}) {
		t.Errorf("Containing(TOTAL, lowercase) = %v", got)
	}
}

func TestResultsExactly(t *testing.T) {
	rs := sampleResults()

	if got := rs.Exactly("Total", false).Texts(); !reflect.DeepEqual(got, []string{"Total"}) {
		t.Errorf("Exactly(Total) = %v", got)
	}
	if got := rs.Exactly("Tot", false); !got.IsEmpty() {
		t.Errorf("Exactly(Tot) = %v, want empty", got)
	}
	if got := rs.Exactly("THANK YOU", true).Texts(); !reflect.DeepEqual(got, []string{"thank you"}) {
		t.Errorf("Exactly(THANK YOU, lowercase) = %v", got)
	}
}

func TestResultsMatching(t *testing.T) {
	rs := sampleResults()

	tests := []struct {
		name    string
		pattern string
		flags   MatchFlag
		want    []string
	}{
		{"prefix", `Num`, 0, []string{"Number: 1234"}},
		{"anchored at start", `\d+`, 0, []string{}},
		{"anywhere via wildcard", `.*\d+`, 0, []string{"Number: 1234", "$12.50"}},
		{"ignore case", `total`, IgnoreCase, []string{"Total"}},
		{"case-sensitive", `total`, 0, []string{}},
		{"currency", `\$\d+\.\d{2}$`, 0, []string{"$12.50"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rs.Matching(tt.pattern, tt.flags)
			if err != nil {
				t.Fatalf("Matching() error = %v", err)
			}
			if texts := got.Texts(); !reflect.DeepEqual(texts, tt.want) {
				t.Errorf("Matching(%q) = %v, want %v", tt.pattern, texts, tt.want)
			}
		})
	}
}

func TestResultsMatching_InvalidPattern(t *testing.T) {
	if _, err := sampleResults().Matching(`(unclosed`, 0); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestMatchFlagPrefix(t *testing.T) {
	tests := []struct {
		flags MatchFlag
		want  string
	}{
		{0, ""},
		{IgnoreCase, "(?i)"},
		{IgnoreCase | Multiline | DotAll, "(?ims)"},
		{DotAll, "(?s)"},
	}
	for _, tt := range tests {
		if got := tt.flags.prefix(); got != tt.want {
			t.Errorf("prefix(%d) = %q, want %q", tt.flags, got, tt.want)
		}
	}
}

func TestResultsFilter(t *testing.T) {
	got := sampleResults().Filter(func(r Record) bool {
		return r.BoundingBox.X > 100
	}).Texts()
	if !reflect.DeepEqual(got, []string{"$12.50"}) {
		t.Errorf("Filter() = %v", got)
	}
}

func TestResults_FiltersDoNotMutate(t *testing.T) {
	rs := sampleResults()
	before := rs.Texts()

	rs.MinimumConfidence(0.9)
	rs.Within(0, 0, 10, 10)
	rs.Containing("o", true)
	rs.Exactly("Total", false)
	rs.Filter(func(Record) bool { return false })
	rs.Search("total")

	if after := rs.Texts(); !reflect.DeepEqual(before, after) {
		t.Errorf("collection changed: %v -> %v", before, after)
	}
}

// isSubsequence reports whether sub appears in full in the same order.
func isSubsequence(sub, full []string) bool {
	i := 0
	for _, s := range full {
		if i < len(sub) && sub[i] == s {
			i++
		}
	}
	return i == len(sub)
}

func TestResults_FiltersPreserveOrder(t *testing.T) {
	f := func(texts []string, confs []float64, threshold float64) bool {
		records := make([]Record, len(texts))
		for i, s := range texts {
			c := 0.5
			if i < len(confs) {
				c = confs[i]
			}
			records[i] = rec(s, c, i, i, 1, 1)
		}
		rs := NewResults(records)
		all := rs.Texts()

		outs := []*Results{
			rs.MinimumConfidence(threshold),
			rs.Within(0, 0, len(records)/2, len(records)/2),
			rs.Containing("a", false),
			rs.Exactly("a", true),
			rs.Filter(func(r Record) bool { return len(r.Text)%2 == 0 }),
		}
		for _, out := range outs {
			if !isSubsequence(out.Texts(), all) {
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestResults_FiltersAreIdempotent(t *testing.T) {
	f := func(texts []string, threshold float64) bool {
		records := make([]Record, len(texts))
		for i, s := range texts {
			records[i] = rec(s, float64(i%10)/10, 0, 0, 1, 1)
		}
		rs := NewResults(records)

		once := rs.MinimumConfidence(threshold)
		if !reflect.DeepEqual(once.Records(), once.MinimumConfidence(threshold).Records()) {
			return false
		}
		c := rs.Containing("e", true)
		if !reflect.DeepEqual(c.Records(), c.Containing("e", true).Records()) {
			return false
		}
		e := rs.Exactly("", false)
		return reflect.DeepEqual(e.Records(), e.Exactly("", false).Records())
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestResults_EmptyCollectionClosure(t *testing.T) {
	empty := NewResults(nil)

	outs := map[string]*Results{
		"MinimumConfidence": empty.MinimumConfidence(0),
		"Within":            empty.Within(0, 0, 100, 100),
		"Containing":        empty.Containing("a", true),
		"Exactly":           empty.Exactly("a", false),
		"Filter":            empty.Filter(func(Record) bool { return true }),
		"Search":            empty.Search("a"),
		"Slice":             empty.Slice(0, 10),
	}
	matched, err := empty.Matching(`.*`, 0)
	if err != nil {
		t.Fatalf("Matching() error = %v", err)
	}
	outs["Matching"] = matched

	for name, out := range outs {
		if !out.IsEmpty() {
			t.Errorf("%s on empty collection returned %v", name, out)
		}
	}
	if len(empty.SearchAndScore("a")) != 0 {
		t.Error("SearchAndScore on empty collection should be empty")
	}
	if _, err := empty.Get(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Get(0) on empty error = %v", err)
	}
}

func TestResultsBounds(t *testing.T) {
	got := sampleResults().Bounds()
	want := NewBoundingBox(10, 10, 350, 710)
	if got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if (NewResults(nil).Bounds() != BoundingBox{}) {
		t.Error("Bounds() of empty collection should be zero")
	}
}

func TestResultsStatistics(t *testing.T) {
	stats := NewResults([]Record{
		rec("a", 0.2, 0, 0, 1, 1),
		rec("b", 0.6, 0, 0, 1, 1),
		rec("c", 1.0, 0, 0, 1, 1),
	}).Statistics()

	if stats.Count != 3 || stats.MinConfidence != 0.2 || stats.MaxConfidence != 1.0 {
		t.Errorf("Statistics() = %+v", stats)
	}
	if diff := stats.AverageConfidence - 0.6; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AverageConfidence = %v, want 0.6", stats.AverageConfidence)
	}

	if got := NewResults(nil).Statistics(); got != (Stats{}) {
		t.Errorf("Statistics() of empty = %+v", got)
	}
}

func TestResultsTextAndString(t *testing.T) {
	rs := sampleResults().Slice(0, 2)
	if got := rs.Text(" "); got != "Invoice Number: 1234" {
		t.Errorf("Text() = %q", got)
	}
	if got := rs.String(); got != `OCRResults(["Invoice", "Number: 1234"])` {
		t.Errorf("String() = %q", got)
	}
}

func TestResultsMarshalJSON(t *testing.T) {
	rs := sampleResults().Slice(0, 1)
	data, err := json.Marshal(rs)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `[{"text":"Invoice","confidence":0.95,"boundingBox":{"x":10,"y":10,"width":80,"height":20}}]`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	data, err = json.Marshal(NewResults(nil).Containing("x", false))
	if err != nil {
		t.Fatalf("Marshal(empty) error = %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Marshal(empty) = %s, want []", data)
	}

	back, err := ParseResults([]byte(want))
	if err != nil {
		t.Fatalf("ParseResults() error = %v", err)
	}
	if !back.First().Equals(*rs.First()) {
		t.Errorf("ParseResults() = %v", back.First())
	}
}
