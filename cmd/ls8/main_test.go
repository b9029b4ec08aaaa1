package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, lines ...string) (path string) {
	path = filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return
}

func runArgs(args ...string) (status int, stdout string, stderr string) {
	var out, errs bytes.Buffer
	status = run(args, &out, &errs)
	stdout = out.String()
	stderr = errs.String()
	return
}

var multImage = []string{
	"10000010 # LDI R0,8",
	"00000000",
	"00001000",
	"10000010 # LDI R1,9",
	"00000001",
	"00001001",
	"10100010 # MUL R0,R1",
	"00000000",
	"00000001",
	"01000111 # PRN R0",
	"00000000",
	"00000001 # HLT",
}

func TestRun_Usage(t *testing.T) {
	assert := assert.New(t)

	table := [][]string{
		{},
		{"a.ls8", "b.ls8"},
		{"-q", "a.ls8"},
	}

	for _, args := range table {
		status, stdout, stderr := runArgs(args...)
		assert.Equal(EXIT_USAGE, status, args)
		assert.Empty(stdout, args)
		assert.Contains(stderr, "usage", args)
	}
}

func TestRun_NotFound(t *testing.T) {
	assert := assert.New(t)

	missing := filepath.Join(t.TempDir(), "missing.ls8")

	status, _, stderr := runArgs(missing)
	assert.Equal(EXIT_NOT_FOUND, status)
	assert.Contains(stderr, missing)

	status, _, _ = runArgs("-a", missing)
	assert.Equal(EXIT_NOT_FOUND, status)
}

func TestRun_Image(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "mult.ls8", multImage...)

	status, stdout, stderr := runArgs(path)
	assert.Equal(EXIT_OK, status)
	assert.Equal("72\n", stdout)
	assert.Empty(stderr)
}

func TestRun_Errors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		name  string
		flags []string
		lines []string
	}{
		{"malformed", nil, []string{"1000001"}},
		{"illegal", nil, []string{"11111111"}},
		{"asm", []string{"-a"}, []string{"JMP R0"}},
		{"ticks", []string{"-m", "2"}, multImage},
	}

	for _, entry := range table {
		path := writeFile(t, entry.name+".ls8", entry.lines...)
		args := append(append([]string{}, entry.flags...), path)

		status, stdout, stderr := runArgs(args...)
		assert.Equal(EXIT_ERROR, status, entry.name)
		assert.Empty(stdout, entry.name)
		assert.Contains(stderr, path, entry.name)
	}
}

func TestRun_Assemble(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	source := writeFile(t, "mult.asm",
		"; mult.asm",
		"  LDI R0, 8",
		"  LDI R1, 9",
		"  MUL R0, R1",
		"  PRN R0",
		"  HLT",
	)

	status, stdout, _ := runArgs("-a", source)
	assert.Equal(EXIT_OK, status)
	assert.Equal("72\n", stdout)

	// -o writes the image instead of running it.
	image := filepath.Join(t.TempDir(), "mult.ls8")
	status, stdout, _ = runArgs("-a", "-o", image, source)
	assert.Equal(EXIT_OK, status)
	assert.Empty(stdout)

	data, err := os.ReadFile(image)
	require.NoError(err)
	assert.True(strings.HasPrefix(string(data), "10000010 # LDI R0 8\n"))

	// And the image runs.
	status, stdout, _ = runArgs(image)
	assert.Equal(EXIT_OK, status)
	assert.Equal("72\n", stdout)
}

func TestRun_Verbose(t *testing.T) {
	assert := assert.New(t)

	path := writeFile(t, "mult.ls8", multImage...)

	status, stdout, _ := runArgs("-v", path)
	assert.Equal(EXIT_OK, status)
	assert.Equal("72\n", stdout)
}
