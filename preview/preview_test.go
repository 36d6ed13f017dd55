package preview

import (
	"errors"
	"strings"
	"testing"

	"voicecode/model"
)

func TestAssembleInjectsStyleAndScript(t *testing.T) {
	files := []model.FileArtifact{
		{Name: "Index.HTML", Content: "<html><head></head><body><p>x</p></body></html>"},
		{Name: "style.css", Content: "p{color:red}"},
		{Name: "app.js", Content: "console.log(1)"},
	}
	got, err := Assemble(files)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	want := "<html><head><style>\np{color:red}\n</style>\n</head><body><p>x</p><script>\nconsole.log(1)\n</script>\n</body></html>"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestAssembleFallbacks(t *testing.T) {
	files := []model.FileArtifact{
		{Name: "index.html", Content: "<p>bare</p>"},
		{Name: "style.css", Content: "p{}"},
		{Name: "app.js", Content: "go()"},
	}
	got, err := Assemble(files)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !strings.HasPrefix(got, "<style>\np{}\n</style>\n<p>bare</p>") {
		t.Fatalf("style not prepended: %q", got)
	}
	if !strings.HasSuffix(got, "<script>\ngo()\n</script>\n") {
		t.Fatalf("script not appended: %q", got)
	}
}

func TestAssembleRequiresIndex(t *testing.T) {
	_, err := Assemble([]model.FileArtifact{{Name: "style.css", Content: ""}})
	if !errors.Is(err, ErrNoIndex) {
		t.Fatalf("expected ErrNoIndex, got %v", err)
	}
}

func TestRenderExplanation(t *testing.T) {
	got, err := RenderExplanation("A **bold** move.")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<p>A <strong>bold</strong> move.</p>\n" {
		t.Fatalf("unexpected html %q", got)
	}
	if empty, _ := RenderExplanation("  "); empty != "" {
		t.Fatalf("expected empty output, got %q", empty)
	}
}
