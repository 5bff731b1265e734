package report

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestAddKeepsOrder(t *testing.T) {
	r := New()
	r.Add(Success, "m1")
	r.Add("A", "m2")
	r.Add("A", "m3")

	if got := r.Categories(); !reflect.DeepEqual(got, []string{Success, "A"}) {
		t.Errorf("Categories = %v", got)
	}
	if got := r.Codes(Success); !reflect.DeepEqual(got, []string{"m1"}) {
		t.Errorf("Success = %v", got)
	}
	if got := r.Codes("A"); !reflect.DeepEqual(got, []string{"m2", "m3"}) {
		t.Errorf("A = %v", got)
	}
	if r.Total() != 3 {
		t.Errorf("Total = %d", r.Total())
	}
}

func TestTableFooterCounts(t *testing.T) {
	r := New()
	r.Add(Success, "m1")
	r.Add("A", "m2")
	r.Add("A", "m3")

	tbl := r.Table()
	if !reflect.DeepEqual(tbl.Footer, []string{"1", "2"}) {
		t.Errorf("Footer = %v", tbl.Footer)
	}
}

func TestTablePadsRaggedColumns(t *testing.T) {
	r := New()
	r.Add("A", "a1")
	r.Add("B", "b1")
	r.Add("B", "b2")
	r.Add("B", "b3")
	r.Add("C", "c1")
	r.Add("C", "c2")

	want := [][]string{
		{"a1", "b1", "c1"},
		{"", "b2", "c2"},
		{"", "b3", ""},
	}
	tbl := r.Table()
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Errorf("Rows = %q, want %q", tbl.Rows, want)
	}
	for i, row := range tbl.Rows {
		if len(row) != len(tbl.Headers) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(tbl.Headers))
		}
	}
}

func TestTableDoesNotMutateReport(t *testing.T) {
	r := New()
	r.Add("A", "a1")
	r.Add("A", "a2")

	_ = r.Table()
	_ = r.Table()

	if r.Count("A") != 2 {
		t.Errorf("Count = %d after rendering", r.Count("A"))
	}
}

func TestRender(t *testing.T) {
	r := New()
	r.Add(Success, "vendor.first")
	r.Add("ModuleInstallFailed", "vendor.second")

	var buf bytes.Buffer
	if err := Render(&buf, r); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{Success, "ModuleInstallFailed", "vendor.first", "vendor.second"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, New()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
