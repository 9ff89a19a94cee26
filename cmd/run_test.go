//go:build !integration

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/newswatch-cli/internal/model"
)

// newRunFlagsCmd creates a fresh cobra.Command with the same flags as
// runCmd, so tests don't share mutable flag state.
func newRunFlagsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test-run"}
	cmd.Flags().String("input", "", "")
	cmd.Flags().StringSlice("url", nil, "")
	cmd.Flags().String("query", "", "")
	cmd.Flags().Int("max-pages", model.DefaultMaxPages, "")
	return cmd
}

func writeRunInputFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildInput_NoURLs(t *testing.T) {
	cmd := newRunFlagsCmd()

	_, err := buildInput(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no urls given")
}

func TestBuildInput_FromURLFlags(t *testing.T) {
	cmd := newRunFlagsCmd()
	require.NoError(t, cmd.Flags().Set("url", "https://www.adnoc.ae/en/search"))
	require.NoError(t, cmd.Flags().Set("url", "https://www.aljazeera.com/search"))
	require.NoError(t, cmd.Flags().Set("query", "oil production"))

	in, err := buildInput(cmd)
	require.NoError(t, err)
	assert.Len(t, in.URLs, 2)
	assert.Equal(t, "oil production", in.Query)
	assert.Equal(t, 0, in.MaxPages) // default applied later by ClampedMaxPages
}

func TestBuildInput_FromFile(t *testing.T) {
	path := writeRunInputFile(t, `{
		"urls": ["https://english.ahram.org.eg/Search/Result.aspx"],
		"query": "gas",
		"maxPages": 4
	}`)

	cmd := newRunFlagsCmd()
	require.NoError(t, cmd.Flags().Set("input", path))

	in, err := buildInput(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://english.ahram.org.eg/Search/Result.aspx"}, []string(in.URLs))
	assert.Equal(t, "gas", in.Query)
	assert.Equal(t, 4, in.MaxPages)
}

func TestBuildInput_FlagsOverrideFile(t *testing.T) {
	path := writeRunInputFile(t, `{
		"urls": ["https://english.ahram.org.eg/Search/Result.aspx"],
		"query": "gas",
		"maxPages": 4
	}`)

	cmd := newRunFlagsCmd()
	require.NoError(t, cmd.Flags().Set("input", path))
	require.NoError(t, cmd.Flags().Set("url", "https://www.almonitor.com/search"))
	require.NoError(t, cmd.Flags().Set("query", "opec"))
	require.NoError(t, cmd.Flags().Set("max-pages", "2"))

	in, err := buildInput(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.almonitor.com/search"}, []string(in.URLs))
	assert.Equal(t, "opec", in.Query)
	assert.Equal(t, 2, in.MaxPages)
}

func TestBuildInput_UnsetMaxPagesKeepsFileValue(t *testing.T) {
	path := writeRunInputFile(t, `{"urls": ["https://www.adnoc.ae/en/search"], "maxPages": 7}`)

	cmd := newRunFlagsCmd()
	require.NoError(t, cmd.Flags().Set("input", path))

	in, err := buildInput(cmd)
	require.NoError(t, err)
	assert.Equal(t, 7, in.MaxPages)
}

func TestBuildInput_BadFile(t *testing.T) {
	cmd := newRunFlagsCmd()
	require.NoError(t, cmd.Flags().Set("input", filepath.Join(t.TempDir(), "missing.json")))

	_, err := buildInput(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read input")
}

func TestBuildInput_InvalidURL(t *testing.T) {
	cmd := newRunFlagsCmd()
	require.NoError(t, cmd.Flags().Set("url", "ftp://files.example.com"))

	_, err := buildInput(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid url")
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer

	res := &model.RunResult{
		Report: model.RunReport{
			RunID:        "run-xyz",
			TotalRecords: 5,
			TargetsDone:  1,
			Elapsed:      1200,
			Targets: []model.TargetResult{
				{URL: "https://www.adnoc.ae/en/search", Strategy: "adnoc", Status: model.TargetStatusDone, Records: 5, PagesFetched: 2},
				{URL: "https://www.aljazeera.com/search", Status: model.TargetStatusFailed, Error: "fetch: http 500 from https://www.aljazeera.com/search"},
			},
		},
	}

	writeSummary(&buf, res)
	out := buf.String()

	assert.Contains(t, out, "Run run-xyz: 5 articles from 1/2 targets in 1200ms")
	assert.Contains(t, out, "ok   https://www.adnoc.ae/en/search")
	assert.Contains(t, out, "(adnoc)")
	assert.Contains(t, out, "FAIL https://www.aljazeera.com/search")
	assert.Contains(t, out, "http 500")
}

func TestRunCmd_Flags_Exist(t *testing.T) {
	for _, name := range []string{"input", "url", "query", "max-pages", "out", "store", "concurrency", "timeout"} {
		require.NotNil(t, runCmd.Flags().Lookup(name), "flag --%s should be registered", name)
	}
}
