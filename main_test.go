package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against db and returns stdout.
func run(t *testing.T, db, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--db", db, "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRulesAddListRemove(t *testing.T) {
	db := filepath.Join(t.TempDir(), "save.db")

	out, err := run(t, db, "", "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no rules defined")

	out, err = run(t, db, "", "rules", "add", "secondary", ">=", "100", "Train")
	require.NoError(t, err)
	assert.Contains(t, out, "added rule")

	out, err = run(t, db, "", "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "dataPoints >= 100")
	assert.Contains(t, out, "train")

	_, err = run(t, db, "", "rules", "add", "gold", ">=", "1", "train")
	assert.ErrorContains(t, err, "invalid rule")

	_, err = run(t, db, "", "rules", "remove", "12345")
	assert.ErrorContains(t, err, "no rule with id")
}

func TestImportThenExport(t *testing.T) {
	db := filepath.Join(t.TempDir(), "save.db")

	_, err := run(t, db, "", "export")
	assert.ErrorContains(t, err, "no saved game")

	blob := `{"clicks":42,"dataPoints":7,"efficiency":1.5,"autoClickRate":800,"upgradeLevel":1,"rules":[]}`
	out, err := run(t, db, blob+"\n", "import")
	require.NoError(t, err)
	assert.Contains(t, out, "imported: 42 clicks, 7 data points, 0 rules")

	out, err = run(t, db, "", "export")
	require.NoError(t, err)
	assert.Equal(t, blob+"\n", out)
}

func TestImportMalformedIsStoredButReported(t *testing.T) {
	db := filepath.Join(t.TempDir(), "save.db")

	out, err := run(t, db, "", "import", "not json")
	require.NoError(t, err)
	assert.Contains(t, out, "next game starts fresh")

	out, err = run(t, db, "", "export")
	require.NoError(t, err)
	assert.Equal(t, "not json\n", out)
}

func TestResetWithYes(t *testing.T) {
	db := filepath.Join(t.TempDir(), "save.db")
	_, err := run(t, db, "", "import", `{"clicks":900,"dataPoints":0,"efficiency":1,"autoClickRate":1000,"upgradeLevel":0}`)
	require.NoError(t, err)

	out, err := run(t, db, "", "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "game reset")

	out, err = run(t, db, "", "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"clicks":0`)
}
