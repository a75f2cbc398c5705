package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const listingPage = `
<a href="mongodb-src-r3.6.1.tar.gz">mongodb-src-r3.6.1.tar.gz</a>
<a href="mongodb-src-r3.6.3.tar.gz">mongodb-src-r3.6.3.tar.gz</a>
<a href="mongodb-src-r3.6.3-rc0.tar.gz">mongodb-src-r3.6.3-rc0.tar.gz</a>
<a href="mongodb-src-r3.7.0-rc1.tar.gz">mongodb-src-r3.7.0-rc1.tar.gz</a>
duplicate mention: 3.6.3
`

func TestParseListingDeduplicatesAndSorts(t *testing.T) {
	got := ParseListing(listingPage)
	want := []string{"3.6.1", "3.6.3-rc0", "3.6.3", "3.7.0-rc1"}
	if len(got) != len(want) {
		t.Fatalf("got %d versions, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].String() != w {
			t.Fatalf("versions[%d] = %s, want %s", i, got[i], w)
		}
	}
}

func TestVersionsFetchesListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	vs, err := c.Versions(context.Background())
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}
	if len(vs) != 4 {
		t.Fatalf("got %d versions, want 4", len(vs))
	}
}

func TestVersionsSurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	if _, err := c.Versions(context.Background()); err == nil {
		t.Fatalf("expected error on non-200 listing")
	}
}
