package walker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// sampleDir builds a small document tree for traversal tests.
func sampleDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "README.md", "# Sample\n\nSome docs.")
	writeFile(t, dir, "notes.txt", "plain notes")
	writeFile(t, dir, "guides/setup.md", "# Setup\n\nSteps.")
	writeFile(t, dir, "guides/faq.html", "<html><body>FAQ</body></html>")

	return dir
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func relPaths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	sort.Strings(out)
	return out
}

func TestWalk_BasicTraversal(t *testing.T) {
	files, err := Walk(WalkerConfig{RootDir: sampleDir(t)})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	got := relPaths(files)
	want := []string{"README.md", "guides/faq.html", "guides/setup.md", "notes.txt"}
	if len(got) != len(want) {
		t.Fatalf("Walk() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Walk()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalk_FileInfoFields(t *testing.T) {
	files, err := Walk(WalkerConfig{RootDir: sampleDir(t)})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	for _, f := range files {
		if f.Path == "" || f.RelPath == "" {
			t.Errorf("incomplete FileInfo: %+v", f)
		}
		if f.Size <= 0 {
			t.Errorf("FileInfo.Size for %s is %d, expected > 0", f.RelPath, f.Size)
		}
		if f.DocumentType == "" {
			t.Errorf("FileInfo.DocumentType for %s is empty", f.RelPath)
		}
		if len(f.ContentHash) != 64 {
			t.Errorf("FileInfo.ContentHash for %s has length %d, expected 64", f.RelPath, len(f.ContentHash))
		}
	}
}

func TestWalk_IncludeFilter(t *testing.T) {
	files, err := Walk(WalkerConfig{
		RootDir: sampleDir(t),
		Include: []string{"**/*.md"},
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	for _, f := range files {
		if !strings.HasSuffix(f.RelPath, ".md") {
			t.Errorf("include filter **/*.md let through: %s", f.RelPath)
		}
	}
	if len(files) != 2 {
		t.Errorf("expected 2 markdown files, got %d", len(files))
	}
}

func TestWalk_ExcludeFilter(t *testing.T) {
	files, err := Walk(WalkerConfig{
		RootDir: sampleDir(t),
		Exclude: []string{"*.html"},
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	for _, f := range files {
		if strings.HasSuffix(f.RelPath, ".html") {
			t.Errorf("exclude filter *.html did not exclude: %s", f.RelPath)
		}
	}
}

func TestWalk_SkipsBinaryFiles(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, "readme.md", "# Hello")

	binary := make([]byte, 100)
	binary[50] = 0x00
	if err := os.WriteFile(filepath.Join(tmpDir, "image.bin"), binary, 0644); err != nil {
		t.Fatal(err)
	}

	files, err := Walk(WalkerConfig{RootDir: tmpDir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if len(files) != 1 || files[0].RelPath != "readme.md" {
		t.Errorf("expected only readme.md, got %v", relPaths(files))
	}
}

func TestWalk_SkipsLargeFiles(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, "small.txt", "small")
	writeFile(t, tmpDir, "big.txt", strings.Repeat("A", 200))

	files, err := Walk(WalkerConfig{
		RootDir:     tmpDir,
		MaxFileSize: 100,
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	for _, f := range files {
		if f.RelPath == "big.txt" {
			t.Error("big.txt should have been skipped (exceeds MaxFileSize)")
		}
	}
}

func TestWalk_DefaultExcludeDirs(t *testing.T) {
	tmpDir := t.TempDir()

	for _, dir := range []string{"node_modules", ".git", ".ragserve", "__pycache__"} {
		writeFile(t, tmpDir, dir+"/file.md", "content")
	}
	writeFile(t, tmpDir, "doc.md", "# Doc")

	files, err := Walk(WalkerConfig{RootDir: tmpDir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if len(files) != 1 {
		t.Errorf("expected 1 file, got %d: %v", len(files), relPaths(files))
	}
}

func TestWalk_Gitignore(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, ".gitignore", "*.log\nsecret.txt\n")
	writeFile(t, tmpDir, "doc.md", "# Doc")
	writeFile(t, tmpDir, "debug.log", "log data")
	writeFile(t, tmpDir, "secret.txt", "password")

	files, err := Walk(WalkerConfig{RootDir: tmpDir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	got := relPaths(files)
	for _, excluded := range []string{"debug.log", "secret.txt"} {
		for _, rp := range got {
			if rp == excluded {
				t.Errorf("file %q should be excluded by .gitignore", excluded)
			}
		}
	}

	foundDoc := false
	for _, rp := range got {
		if rp == "doc.md" {
			foundDoc = true
		}
	}
	if !foundDoc {
		t.Error("doc.md should not be excluded")
	}
}

func TestWalk_ContentHashConsistency(t *testing.T) {
	dir := sampleDir(t)

	files1, err := Walk(WalkerConfig{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	files2, err := Walk(WalkerConfig{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	hash1 := make(map[string]string)
	for _, f := range files1 {
		hash1[f.RelPath] = f.ContentHash
	}
	for _, f := range files2 {
		if h, ok := hash1[f.RelPath]; ok && h != f.ContentHash {
			t.Errorf("content hash mismatch for %s: %s vs %s", f.RelPath, h, f.ContentHash)
		}
	}
}

func TestDetectDocumentType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"README.md", "markdown"},
		{"guide.markdown", "markdown"},
		{"notes.mdown", "markdown"},
		{"page.html", "html"},
		{"page.htm", "html"},
		{"notes.txt", "text"},
		{"LICENSE", "text"},
		{"data.csv", "text"},
	}

	for _, tc := range tests {
		t.Run(tc.filename, func(t *testing.T) {
			got := DetectDocumentType(tc.filename)
			if got != tc.want {
				t.Errorf("DetectDocumentType(%q) = %q, want %q", tc.filename, got, tc.want)
			}
		})
	}
}

func TestMatchesInclude_Empty(t *testing.T) {
	if !MatchesInclude("anything.md", nil) {
		t.Error("empty include patterns should include everything")
	}
}

func TestMatchesInclude_Pattern(t *testing.T) {
	if !MatchesInclude("guide.md", []string{"*.md"}) {
		t.Error("*.md should match guide.md")
	}
	if MatchesInclude("guide.txt", []string{"*.md"}) {
		t.Error("*.md should not match guide.txt")
	}
}

func TestMatchesExclude_Empty(t *testing.T) {
	if MatchesExclude("anything.md", nil) {
		t.Error("empty exclude patterns should exclude nothing")
	}
}

func TestMatchesExclude_Pattern(t *testing.T) {
	if !MatchesExclude("debug.log", []string{"*.log"}) {
		t.Error("*.log should match debug.log")
	}
	if MatchesExclude("guide.md", []string{"*.log"}) {
		t.Error("*.log should not match guide.md")
	}
}

func TestMatchesInclude_DoubleStarPattern(t *testing.T) {
	if !MatchesInclude("docs/guides/setup.md", []string{"**/*.md"}) {
		t.Error("**/*.md should match docs/guides/setup.md")
	}
}
