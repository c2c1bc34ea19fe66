package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	safeDir := filepath.Join(tmpDir, "runs")
	outside := filepath.Join(tmpDir, "elsewhere")
	require.NoError(t, os.MkdirAll(safeDir, 0755))
	require.NoError(t, os.MkdirAll(outside, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "scans.json"), []byte("[]"), 0644))

	link := filepath.Join(safeDir, "link")
	require.NoError(t, os.Symlink(outside, link))

	tests := []struct {
		name      string
		filePath  string
		wantError bool
	}{
		{"file in directory", filepath.Join(safeDir, "scans.json"), false},
		{"missing nested file", filepath.Join(safeDir, "2024", "scans.json"), false},
		{"dot-dot escape", filepath.Join(safeDir, "..", "scans.json"), true},
		{"relative escape", "../../../etc/passwd", true},
		{"absolute outside", "/etc/passwd", true},
		{"through symlink", filepath.Join(link, "scans.json"), true},
		{"new file through symlink", filepath.Join(link, "new.json"), true},
		{"symlink itself", link, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, safeDir)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePathWithinAllowedDirs(t *testing.T) {
	dir1, dir2 := t.TempDir(), t.TempDir()

	assert.NoError(t, ValidatePathWithinAllowedDirs(filepath.Join(dir1, "a.json"), []string{dir1, dir2}))
	assert.NoError(t, ValidatePathWithinAllowedDirs(filepath.Join(dir2, "b.json"), []string{dir1, dir2}))
	assert.Error(t, ValidatePathWithinAllowedDirs("/etc/passwd", []string{dir1, dir2}))
	assert.Error(t, ValidatePathWithinAllowedDirs(filepath.Join(dir1, "a.json"), nil))
}

func TestValidateExportPath(t *testing.T) {
	assert.NoError(t, ValidateExportPath(filepath.Join(os.TempDir(), "scans.json")))
	assert.NoError(t, ValidateExportPath("scans.json"))
	assert.Error(t, ValidateExportPath("/etc/scans.json"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"pier survey":      "pier_survey",
		"run 2024/06/01":   "run_2024_06_01",
		"../../etc/passwd": "etc_passwd",
		"  leading":        "leading",
		"ok-name_1.v2":     "ok-name_1.v2",
		"":                 "unknown",
		"///":              "unknown",
		"émission":         "mission",
		"a   b":            "a_b",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}
