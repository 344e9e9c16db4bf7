package portset

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "simple range", input: "20-25", want: []int{20, 21, 22, 23, 24, 25}},
		{name: "list preserves order", input: "443,80,8080", want: []int{443, 80, 8080}},
		{name: "single port list", input: "22", want: []int{22}},
		{name: "range lo == hi rejected", input: "80-80", wantErr: true},
		{name: "range lo > hi rejected", input: "80-22", wantErr: true},
		{name: "duplicate port rejected", input: "80,80", wantErr: true},
		{name: "out of range port rejected", input: "70000", wantErr: true},
		{name: "empty selector rejected", input: "", wantErr: true},
		{name: "trailing comma rejected", input: "80,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got.Ports(), tt.want) {
				t.Errorf("Parse(%q).Ports() = %v, want %v", tt.input, got.Ports(), tt.want)
			}
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	tests := []string{"20-25", "443,80,8080", "22"}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			p, err := Parse(in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", in, err)
			}
			if got := p.Format(); got != in {
				t.Errorf("Parse(%q).Format() = %q, want %q", in, got, in)
			}
			p2, err := Parse(p.Format())
			if err != nil {
				t.Fatalf("re-parse error: %v", err)
			}
			if !reflect.DeepEqual(p.Ports(), p2.Ports()) {
				t.Errorf("round-trip mismatch: %v != %v", p.Ports(), p2.Ports())
			}
		})
	}
}

func TestRangeRejectsLoEqualsHi(t *testing.T) {
	if _, err := Range(80, 80); err != ErrEmptyRange {
		t.Errorf("Range(80, 80) error = %v, want %v", err, ErrEmptyRange)
	}
}

func TestListRejectsDuplicate(t *testing.T) {
	if _, err := List([]int{80, 443, 80}); err == nil {
		t.Error("List with duplicate should error")
	}
}

func TestEmpty(t *testing.T) {
	var p PortSet
	if !p.Empty() {
		t.Error("zero value PortSet should be Empty")
	}
	if p.Len() != 0 {
		t.Errorf("zero value PortSet.Len() = %d, want 0", p.Len())
	}
}

func TestLen(t *testing.T) {
	r, err := Range(100, 110)
	if err != nil {
		t.Fatalf("Range error: %v", err)
	}
	if r.Len() != 11 {
		t.Errorf("Len() = %d, want 11", r.Len())
	}
}
