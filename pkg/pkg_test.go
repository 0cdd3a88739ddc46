package pkg

import (
	"os"
	"regexp"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "criteria" {
		t.Errorf("Name = %q, want %q", Name, "criteria")
	}

	if Description == "" {
		t.Error("Description is empty")
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("reading VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version != want {
		t.Errorf("Version = %q, want %q", Version, want)
	}

	if !regexp.MustCompile(`^\d+\.\d+\.\d+`).MatchString(Version) {
		t.Errorf("Version %q is not semantic", Version)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Author is empty")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}
