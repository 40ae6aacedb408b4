package summary

import (
	"strings"
	"testing"
)

func TestTextContent_ExtractsVisibleText(t *testing.T) {
	got := TextContent("<h1>Title</h1><ul><li>point one</li><li>point two</li></ul>")
	for _, want := range []string{"Title", "point one", "point two"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}

func TestIsEmptyArtifact(t *testing.T) {
	if !IsEmptyArtifact("<div>   </div>") {
		t.Error("expected markup-only artifact to be empty")
	}
	if IsEmptyArtifact("<p>content</p>") {
		t.Error("expected artifact with text to be non-empty")
	}
	if !IsEmptyArtifact("") {
		t.Error("expected empty string to be empty")
	}
}
