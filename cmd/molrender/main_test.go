package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sketch.mol")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestRenderSVGToStdout(t *testing.T) {
	out, err := execute(t, "../../examples/water.mol")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, ">O</text>")
}

func TestRenderPNGAndSnapshot(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "water.png")
	snap := filepath.Join(dir, "water.yaml")
	_, err := execute(t, "../../examples/water.mol", "-o", img, "--snapshot", snap, "--scale", "1")
	require.NoError(t, err)

	f, err := os.Open(img)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	require.NoError(t, err)

	data, err := os.ReadFile(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: atom")
	assert.Contains(t, string(data), "kind: label")
}

func TestScriptErrorsReported(t *testing.T) {
	_, err := execute(t, writeScript(t, `(atom "C" :bogus 1)`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keyword :bogus")
}

func TestArgumentErrors(t *testing.T) {
	_, err := execute(t)
	assert.Error(t, err)

	_, err = execute(t, writeScript(t, `(atom)`), "--format", "gif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")

	_, err = execute(t, filepath.Join(t.TempDir(), "missing.mol"))
	assert.Error(t, err)
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		format, output, want string
	}{
		{"", "", "svg"},
		{"", "a.PNG", "png"},
		{"", "a.svg", "svg"},
		{"png", "a.svg", "png"},
	}
	for _, tt := range tests {
		got, err := outputFormat(tt.format, tt.output)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := outputFormat("", "a.txt")
	assert.Error(t, err)
}
