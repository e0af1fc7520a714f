package hook

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "plain message unchanged",
			message: "feat: add thing\n\nLonger body here.",
			want:    "feat: add thing\n\nLonger body here.",
		},
		{
			name: "template comments removed",
			message: `add thing
# Please enter the commit message for your changes. Lines starting
# with '#' will be ignored, and an empty message aborts the commit.
#
# On branch main
`,
			want: "add thing",
		},
		{
			name:    "comment between paragraphs removed",
			message: "subject\n# note to self\nbody line",
			want:    "subject\nbody line",
		},
		{
			name: "scissors region dropped",
			message: `add thing
# ------------------------ >8 ------------------------
# Do not modify or remove the line above.
diff --git a/main.go b/main.go
+not a comment line
`,
			want: "add thing",
		},
		{
			name:    "indented scissors line still recognized",
			message: "add thing\n  # ------------------------ >8 ------------------------\ndiff --git a/x b/x",
			want:    "add thing",
		},
		{
			name:    "surrounding blank lines trimmed",
			message: "\n\nadd thing\n\n\n",
			want:    "add thing",
		},
		{
			name:    "interior blank line kept",
			message: "subject\n\nbody",
			want:    "subject\n\nbody",
		},
		{
			name:    "trailing whitespace per line trimmed",
			message: "subject  \t\n\nbody ",
			want:    "subject\n\nbody",
		},
		{
			name:    "only comments",
			message: "# nothing here\n# at all\n",
			want:    "",
		},
		{
			name:    "empty",
			message: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strip(tt.message); got != tt.want {
				t.Errorf("Strip() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasSkipPrefix(t *testing.T) {
	prefixes := []string{"fixup!", "squash!", "amend!", "Merge", "Revert"}

	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"fixup commit", "fixup! feat: add thing", true},
		{"squash commit", "squash! feat: add thing", true},
		{"amend commit", "amend! feat: add thing", true},
		{"merge commit", "Merge branch 'main' into feature", true},
		{"revert commit", "Revert \"feat: add thing\"", true},
		{"ordinary message", "add thing", false},
		{"prefix mid-line", "apply fixup! later", false},
		{"prefix on second line only", "add thing\nMerge note", false},
		{"leading whitespace before prefix", "  Merge branch 'x'", true},
		{"empty message", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasSkipPrefix(tt.message, prefixes); got != tt.want {
				t.Errorf("HasSkipPrefix(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}

	t.Run("no prefixes configured", func(t *testing.T) {
		if HasSkipPrefix("fixup! x", nil) {
			t.Error("expected false with no prefixes")
		}
	})
}

func TestMessageFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "COMMIT_EDITMSG")

	if err := WriteMessageFile(path, "feat: add thing"); err != nil {
		t.Fatalf("WriteMessageFile() error = %v", err)
	}

	got, err := ReadMessageFile(path)
	if err != nil {
		t.Fatalf("ReadMessageFile() error = %v", err)
	}
	if got != "feat: add thing\n" {
		t.Errorf("ReadMessageFile() = %q, want trailing newline added", got)
	}

	// A message already terminated stays single-terminated.
	if err := WriteMessageFile(path, "feat: add thing\n"); err != nil {
		t.Fatalf("WriteMessageFile() error = %v", err)
	}
	got, err = ReadMessageFile(path)
	if err != nil {
		t.Fatalf("ReadMessageFile() error = %v", err)
	}
	if got != "feat: add thing\n" {
		t.Errorf("ReadMessageFile() = %q", got)
	}
}

func TestReadMessageFile_Missing(t *testing.T) {
	_, err := ReadMessageFile(filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestWriteMessageFile_Unwritable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions are not enforced on Windows")
	}
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0500); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0755)

	if err := WriteMessageFile(filepath.Join(dir, "msg"), "x"); err == nil {
		t.Fatal("expected an error for an unwritable directory")
	}
}
