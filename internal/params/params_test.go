package params

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := "threads: 8\n  mem :16gb  \n\nurl: http://example.org:8080/x\nempty:\n"
	m, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, Mapping{
		"threads": "8",
		"mem":     "16gb",
		"url":     "http://example.org:8080/x",
		"empty":   "",
	}, m)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader("threads: 8\nmem 16gb\n"))
	require.Error(t, err)
	assert.True(t, IsMalformedError(err))

	var me *MalformedError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 2, me.Line)
	assert.Equal(t, "mem 16gb", me.Content)
}

func TestParseFileNotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "params.txt"))
	assert.True(t, errors.Is(err, ErrParameterFileNotFound))
}

func TestResolveCompleteness(t *testing.T) {
	tests := []struct {
		name         string
		placeholders []string
		keys         []string
		wantMissing  []string
	}{
		{"all present", []string{"mem", "threads"}, []string{"mem", "threads"}, nil},
		{"reserved need no value", []string{"job_id", "mem", "samples_fp"}, []string{"mem"}, nil},
		{"extra keys ignored", []string{"mem"}, []string{"mem", "queue"}, nil},
		{"reserved in file accepted", []string{"job_id", "mem"}, []string{"job_id", "mem"}, nil},
		{"one missing", []string{"mem", "threads"}, []string{"mem"}, []string{"threads"}},
		{"missing sorted", []string{"walltime", "mem", "account", "job_id"}, nil, []string{"account", "mem", "walltime"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := make(Mapping)
			for _, k := range tt.keys {
				m[k] = "v"
			}
			err := Resolve(tt.placeholders, m)
			if tt.wantMissing == nil {
				assert.NoError(t, err)
				return
			}
			var me *MissingError
			require.True(t, errors.As(err, &me), "expected MissingError, got %v", err)
			assert.Equal(t, tt.wantMissing, me.Names)
		})
	}
}

func TestMissingErrorMessage(t *testing.T) {
	err := &MissingError{Names: []string{"mem", "threads"}}
	assert.Equal(t, "No values found for the following parameters:\n  mem\n  threads", err.Error())
	assert.True(t, IsMissingError(err))
}

func TestWithChunkDoesNotLeak(t *testing.T) {
	base := Mapping{"mem": "16gb"}

	first := base.WithChunk(1, "out/run_samples_1.txt")
	second := base.WithChunk(2, "out/run_samples_2.txt")

	assert.Equal(t, "1", first["job_id"])
	assert.Equal(t, "out/run_samples_1.txt", first["samples_fp"])
	assert.Equal(t, "2", second["job_id"])
	assert.Equal(t, "16gb", second["mem"])

	_, hasJobID := base["job_id"]
	assert.False(t, hasJobID, "base mapping must not be mutated")
}

func TestWithChunkOverridesFileValues(t *testing.T) {
	base := Mapping{"job_id": "99", "samples_fp": "stale.txt"}
	m := base.WithChunk(3, "fresh.txt")
	assert.Equal(t, "3", m["job_id"])
	assert.Equal(t, "fresh.txt", m["samples_fp"])
	assert.Equal(t, "99", base["job_id"])
}

func TestFormatAndSaveRoundTrip(t *testing.T) {
	m := Mapping{"threads": "8", "mem": "16gb", "job_id": "3", "samples_fp": "x.txt"}
	assert.Equal(t, "mem: 16gb\nthreads: 8\n", Format(m))

	path := filepath.Join(t.TempDir(), "params.txt")
	require.NoError(t, Save(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mem: 16gb\nthreads: 8\n", string(data))

	back, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.WithoutReserved(), back)
}

func TestPrompt(t *testing.T) {
	in := strings.NewReader("16gb\n  8 \n")
	var out bytes.Buffer

	m, err := Prompt(in, &out, []string{"job_id", "mem", "samples_fp", "threads"})
	require.NoError(t, err)

	assert.Equal(t, Mapping{"mem": "16gb", "threads": "  8 "}, m)
	assert.Contains(t, out.String(), "The following 4 parameters were found")
	assert.Contains(t, out.String(), "mem: ")
	assert.NotContains(t, out.String(), "job_id: ")
}

func TestPromptLastLineWithoutNewline(t *testing.T) {
	m, err := Prompt(strings.NewReader("a\r\nb"), &bytes.Buffer{}, []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, Mapping{"x": "a", "y": "b"}, m)
}

func TestPromptEOF(t *testing.T) {
	_, err := Prompt(strings.NewReader("only-one\n"), &bytes.Buffer{}, []string{"a", "b"})
	assert.True(t, errors.Is(err, ErrPromptAborted))
}
