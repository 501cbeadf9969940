package domain

import "testing"

func TestSnippet(t *testing.T) {
	doc := ContextDocument{Metadata: map[string]string{SnippetField: "Two-bed flat"}}
	if got := doc.Snippet(); got != "Two-bed flat" {
		t.Errorf("got %q", got)
	}
}

func TestSnippet_FallbackIsDeterministic(t *testing.T) {
	doc := ContextDocument{Metadata: map[string]string{"city": "Lagos", "bedrooms": "3"}}

	want := `{"bedrooms":"3","city":"Lagos"}`
	for i := 0; i < 5; i++ {
		if got := doc.Snippet(); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestSnippet_EmptySnippetFieldFallsBack(t *testing.T) {
	doc := ContextDocument{Metadata: map[string]string{SnippetField: "", "city": "Lagos"}}
	if got := doc.Snippet(); got != `{"city":"Lagos","snippet":""}` {
		t.Errorf("got %q", got)
	}
}
