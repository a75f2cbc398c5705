package version

import (
	"sort"
	"testing"
)

func TestParseCanonicalForms(t *testing.T) {
	cases := []struct {
		in   string
		want Version
	}{
		{"3.6.3", Version{Major: 3, Minor: 6, Patch: 3}},
		{"3.6.3-rc0", Version{Major: 3, Minor: 6, Patch: 3, Tag: "rc0"}},
		{"4.0.0-ent", Version{Major: 4, Minor: 0, Patch: 0, Enterprise: true}},
		{"4.0.0-rc1-ent", Version{Major: 4, Minor: 0, Patch: 0, Tag: "rc1", Enterprise: true}},
		{"v2.6.12", Version{Major: 2, Minor: 6, Patch: 12}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
		round, err := Parse(got.String())
		if err != nil || round != got {
			t.Fatalf("Parse(String) not stable for %q: %+v / %v", tc.in, round, err)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "3.6", "3.6.x", "latest", "3.6.3-", "a.b.c"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) unexpectedly succeeded", in)
		}
	}
}

func TestCompareIsStrictTotalOrder(t *testing.T) {
	ordered := []Version{
		MustParse("2.6.12"),
		MustParse("3.6.1"),
		MustParse("3.6.3-rc0"),
		MustParse("3.6.3-rc1"),
		MustParse("3.6.3"),
		MustParse("3.7.0-rc1"),
		MustParse("4.0.0"),
	}
	for i, a := range ordered {
		for j, b := range ordered {
			got := Compare(a, b)
			switch {
			case i < j && got >= 0:
				t.Fatalf("Compare(%s, %s) = %d, want < 0", a, b, got)
			case i > j && got <= 0:
				t.Fatalf("Compare(%s, %s) = %d, want > 0", a, b, got)
			case i == j && got != 0:
				t.Fatalf("Compare(%s, %s) = %d, want 0", a, b, got)
			}
		}
	}
}

func TestReleaseOutranksPrereleaseAtSameTriple(t *testing.T) {
	rel := MustParse("3.6.3")
	rc := MustParse("3.6.3-rc0")
	if Compare(rel, rc) <= 0 {
		t.Fatalf("expected %s > %s", rel, rc)
	}
}

func TestEnterpriseDoesNotAffectOrdering(t *testing.T) {
	a := MustParse("3.6.3-ent")
	b := MustParse("3.6.3")
	if Compare(a, b) != 0 {
		t.Fatalf("expected enterprise flag to be neutral in ordering")
	}
}

func TestSortUsesLess(t *testing.T) {
	vs := []Version{
		MustParse("3.6.3"),
		MustParse("2.6.12"),
		MustParse("3.6.3-rc0"),
	}
	sort.Slice(vs, func(i, j int) bool { return Less(vs[i], vs[j]) })
	want := []string{"2.6.12", "3.6.3-rc0", "3.6.3"}
	for i, w := range want {
		if vs[i].String() != w {
			t.Fatalf("sorted[%d] = %s, want %s", i, vs[i], w)
		}
	}
}

func TestMax(t *testing.T) {
	if _, ok := Max(nil); ok {
		t.Fatalf("Max(nil) should report no result")
	}
	got, ok := Max([]Version{MustParse("3.6.1"), MustParse("3.6.3"), MustParse("3.6.3-rc0")})
	if !ok || got.String() != "3.6.3" {
		t.Fatalf("Max = %s, want 3.6.3", got)
	}
}

func TestParseSpec(t *testing.T) {
	cases := []struct {
		in   string
		want Spec
	}{
		{"latest", Spec{Kind: KindLatest}},
		{"Stable", Spec{Kind: KindStable}},
		{"stable-ent", Spec{Kind: KindStable, Enterprise: true}},
		{"3.6", Spec{Kind: KindSeries, Major: 3, Minor: 6}},
		{"3.6-ent", Spec{Kind: KindSeries, Major: 3, Minor: 6, Enterprise: true}},
		{"3.6.3", Spec{Kind: KindExact, Exact: MustParse("3.6.3")}},
		{"3.6.3-ent", Spec{Kind: KindExact, Exact: MustParse("3.6.3-ent"), Enterprise: true}},
	}
	for _, tc := range cases {
		got, err := ParseSpec(tc.in)
		if err != nil {
			t.Fatalf("ParseSpec(%q) failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseSpec(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
	for _, in := range []string{"", "newest", "3", "3.6.x"} {
		if _, err := ParseSpec(in); err == nil {
			t.Fatalf("ParseSpec(%q) unexpectedly succeeded", in)
		}
	}
}
