package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingredient-scanner/pkg/geometry"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"REDIS_URL", "DATABASE_URL", "SCANNER_STORE_DRIVER"} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "lists.json")
	t.Setenv("SCANNER_STORE_PATH", path)
	t.Setenv("SCANNER_LOG_LEVEL", "error")
	return path
}

func TestParseRect(t *testing.T) {
	r, err := parseRect("10, 20,300,40.5")
	require.NoError(t, err)
	assert.Equal(t, geometry.NewRect(10, 20, 300, 40.5), r)

	_, err = parseRect("1,2,3")
	assert.Error(t, err)
	_, err = parseRect("1,2,0,5")
	assert.Error(t, err)
	_, err = parseRect("a,2,3,4")
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	s, err := parseSize("400X300")
	require.NoError(t, err)
	assert.Equal(t, geometry.NewSize(400, 300), s)

	_, err = parseSize("400")
	assert.Error(t, err)
	_, err = parseSize("0x3")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ingredient-scanner")
}

func TestListsAddShowRemove(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "lists", "add", "suspicious", "  Beetle Dye ", "whey")
	require.NoError(t, err)
	assert.Contains(t, out, `added "beetle dye" to suspicious`)
	assert.Contains(t, out, `"whey" already on suspicious list`)

	out, err = run(t, "", "lists", "show", "suspicious", "--json")
	require.NoError(t, err)
	var m map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Contains(t, m["suspicious"], "beetle dye")

	_, err = run(t, "", "lists", "remove", "suspicious", "beetle dye")
	require.NoError(t, err)
	_, err = run(t, "", "lists", "remove", "suspicious", "beetle dye")
	assert.Error(t, err)

	_, err = run(t, "", "lists", "remove", "prohibited", "0")
	require.NoError(t, err)
	out, err = run(t, "", "lists", "show", "prohibited", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.NotContains(t, m["prohibited"], "pork")
}

func TestListsResetAsksForConfirmation(t *testing.T) {
	isolate(t)
	_, err := run(t, "", "lists", "add", "prohibited", "isinglass")
	require.NoError(t, err)

	out, err := run(t, "n\n", "lists", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "aborted")

	_, err = run(t, "", "lists", "reset", "--yes")
	require.NoError(t, err)

	out, err = run(t, "", "lists", "show", "prohibited", "--json")
	require.NoError(t, err)
	assert.NotContains(t, out, "isinglass")
}

func TestListsUnknownCategory(t *testing.T) {
	isolate(t)
	_, err := run(t, "", "lists", "add", "forbidden", "x")
	assert.Error(t, err)
}
