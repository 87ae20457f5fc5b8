package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "hash-password", "--cost", "4", "s3cret!")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret!")))
}

func TestImportIntoMemoryStore(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), "statement.csv")
	csv := "Date,Description,Amount\n25/12/2024,Coffee,-4.50\nbad,Row,1\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	out, err := run(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 staged, 1 skipped")
}

func TestImportMissingFile(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("LOG_LEVEL", "error")

	_, err := run(t, "import", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorContains(t, err, "opening statement")
}

func TestMigrateNeedsPostgres(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("LOG_LEVEL", "error")

	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "migrate needs STORE=postgres")
}
