package fileid

import (
	"strings"
	"testing"
)

func TestFileDocID(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"identical paths", "/content/recipes/winter.md", "/content/recipes/winter.md", true},
		{"trailing slash", "/content/recipes", "/content/recipes/", true},
		{"dot segment", "/content/recipes/winter.md", "/content/./recipes/winter.md", true},
		{"parent segment", "/content/recipes/winter.md", "/content/pages/../recipes/winter.md", true},
		{"different files", "/content/recipes/winter.md", "/content/recipes/summer.md", false},
		{"case differs", "/content/Winter.md", "/content/winter.md", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := FileDocID(tt.a), FileDocID(tt.b)
			if (a == b) != tt.same {
				t.Errorf("FileDocID(%q) = %q, FileDocID(%q) = %q, same = %v, want %v", tt.a, a, tt.b, b, a == b, tt.same)
			}
			if !strings.HasPrefix(a, prefix) {
				t.Errorf("FileDocID(%q) = %q, want prefix %q", tt.a, a, prefix)
			}
		})
	}
}

func TestIsFileDocID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{FileDocID("/docs/a.md"), true},
		{FileDocID("relative/b.txt"), true},
		{"file:abc", false},
		{"file:" + strings.Repeat("z", 64), false},
		{strings.TrimPrefix(FileDocID("/docs/a.md"), prefix), false},
		{"8d3c0b5e-0000-4000-8000-000000000000", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsFileDocID(tt.id); got != tt.want {
			t.Errorf("IsFileDocID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
