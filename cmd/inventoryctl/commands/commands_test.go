package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { exportOutput = "" })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestImportStatsExport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_FILE", filepath.Join(dir, "inventory.db"))
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "uploads"))

	csvPath := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,category,stock\nBolt,Hardware,40\nNut,Hardware,0\nBolt,Hardware,3\n"), 0o644))

	out, err := run(t, "import", csvPath)
	require.NoError(t, err)
	var result struct {
		Added   int `json:"added"`
		Skipped int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.Skipped)

	out, err = run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, `"totalStock": 40`)
	assert.Contains(t, out, `"outOfStockCount": 1`)

	exportPath := filepath.Join(dir, "out.csv")
	_, err = run(t, "export", "-o", exportPath)
	require.NoError(t, err)
	b, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Equal(t, "id,name,unit,category,brand,stock,status,image\n1,Bolt,,Hardware,,40,,\n2,Nut,,Hardware,,0,,", string(b))
}

func TestResetPasswordUnknownUser(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_FILE", filepath.Join(dir, "inventory.db"))

	_, err := run(t, "reset-password", "nobody@example.com", "secret1")
	assert.ErrorContains(t, err, "user not found")
}
