package reconcile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// fixture lays out job_3 (failed, samples A,B) and job_7 (ok, samples C,D).
func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write(t, filepath.Join(dir, "job_3.out"), "starting\nError: out of memory\n")
	write(t, filepath.Join(dir, "job_7.out"), "starting\ndone\n")
	write(t, filepath.Join(dir, "job_samples_3.txt"), "A\nB\n")
	write(t, filepath.Join(dir, "job_samples_7.txt"), "C\nD\n")
	return dir
}

func baseOptions(dir string) Options {
	return Options{
		LogPattern:     filepath.Join(dir, "job_*.out"),
		FailMarker:     "Error",
		SamplesPattern: filepath.Join(dir, "job_samples_*.txt"),
	}
}

func TestRunWithoutCompleted(t *testing.T) {
	dir := fixture(t)

	res, err := Run(baseOptions(dir))
	require.NoError(t, err)

	assert.Equal(t, []string{"3"}, res.FailedRuns)
	assert.Equal(t, 2, res.Implicated)
	assert.Equal(t, []string{"A", "B"}, res.Residual)
	assert.Empty(t, res.Problems)
}

func TestRunWithCompleted(t *testing.T) {
	dir := fixture(t)
	write(t, filepath.Join(dir, "final", "A_final.fna"), ">contig\nACGT\n")

	opts := baseOptions(dir)
	opts.CompletedPattern = filepath.Join(dir, "final", "*.fna")

	res, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, res.Residual)
	assert.Equal(t, 1, res.Completed)
}

func TestRunCompletedDirectories(t *testing.T) {
	dir := fixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "out", "A_megahit"), 0755))

	opts := baseOptions(dir)
	opts.CompletedPattern = filepath.Join(dir, "out", "*_megahit")

	res, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Completed)
	assert.Equal(t, []string{"B"}, res.Residual)
}

func TestGlobFilesOnly(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "job_1.out"), "ok\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "job_2.out"), 0755))

	files, err := Glob(filepath.Join(dir, "job_*.out"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "job_1.out")}, files)

	paths, err := GlobPaths(filepath.Join(dir, "job_*.out"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "job_1.out"), filepath.Join(dir, "job_2.out")}, paths)
}

func TestRunFailedRunWithoutSampleFile(t *testing.T) {
	dir := fixture(t)
	write(t, filepath.Join(dir, "job_9.out"), "Error\n")

	res, err := Run(baseOptions(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "9"}, res.FailedRuns)
	assert.Equal(t, []string{"A", "B"}, res.Residual)
}

func TestRunDeduplicatesSamples(t *testing.T) {
	dir := fixture(t)
	write(t, filepath.Join(dir, "job_7.out"), "Error\n")
	write(t, filepath.Join(dir, "job_samples_7.txt"), "B\nC\n\n")

	res, err := Run(baseOptions(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, res.Residual)
	assert.Equal(t, 3, res.Implicated)
}

func TestRunIdempotent(t *testing.T) {
	dir := fixture(t)
	opts := baseOptions(dir)

	first, err := Run(opts)
	require.NoError(t, err)
	second, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, first.Residual, second.Residual)
}

func TestRunMonotonic(t *testing.T) {
	dir := t.TempDir()
	for _, run := range []string{"1", "2", "3"} {
		write(t, filepath.Join(dir, "job_samples_"+run+".txt"), "S"+run+"a\nS"+run+"b\n")
	}
	write(t, filepath.Join(dir, "job_1.out"), "FAILED\n")
	write(t, filepath.Join(dir, "job_2.out"), "ok\n")
	write(t, filepath.Join(dir, "job_3.out"), "ok\n")

	opts := Options{
		LogPattern:       filepath.Join(dir, "job_*.out"),
		FailMarker:       "FAILED",
		SamplesPattern:   filepath.Join(dir, "job_samples_*.txt"),
		CompletedPattern: filepath.Join(dir, "out", "*_done.txt"),
	}

	base, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1a", "S1b"}, base.Residual)

	// more failed logs never shrink the residual set
	write(t, filepath.Join(dir, "job_2.out"), "FAILED\n")
	moreFailed, err := Run(opts)
	require.NoError(t, err)
	assert.Subset(t, moreFailed.Residual, base.Residual)
	assert.Equal(t, []string{"S1a", "S1b", "S2a", "S2b"}, moreFailed.Residual)

	// more completed outputs never grow it
	write(t, filepath.Join(dir, "out", "S1a_done.txt"), "")
	write(t, filepath.Join(dir, "out", "S2b_done.txt"), "")
	moreDone, err := Run(opts)
	require.NoError(t, err)
	assert.Subset(t, moreFailed.Residual, moreDone.Residual)
	assert.Equal(t, []string{"S1b", "S2a"}, moreDone.Residual)
}

func TestRunMarkerModes(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "job_1.out"), "exit code [1]\n")
	write(t, filepath.Join(dir, "job_2.out"), "exit code 1\n")
	write(t, filepath.Join(dir, "job_samples_1.txt"), "A\n")
	write(t, filepath.Join(dir, "job_samples_2.txt"), "B\n")

	opts := baseOptions(dir)

	opts.FailMarker = `exit code [1-9]`
	res, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, res.Residual)

	opts.FailMarker = `[1]`
	opts.Literal = true
	res, err = Run(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, res.Residual)
}

func TestRunInvalidMarker(t *testing.T) {
	opts := baseOptions(t.TempDir())
	opts.FailMarker = "("
	_, err := Run(opts)
	assert.True(t, errors.Is(err, ErrInvalidMarker))
}

func TestRunRequiresPatterns(t *testing.T) {
	_, err := Run(Options{SamplesPattern: "x"})
	assert.True(t, errors.Is(err, ErrNoLogPattern))
	_, err = Run(Options{LogPattern: "x"})
	assert.True(t, errors.Is(err, ErrNoSamplesPattern))
}

func TestRunNoMatches(t *testing.T) {
	dir := t.TempDir()
	res, err := Run(baseOptions(dir))
	require.NoError(t, err)
	assert.Empty(t, res.FailedRuns)
	assert.Empty(t, res.Residual)
}

func TestRunContinuesPastUnreadableFile(t *testing.T) {
	dir := fixture(t)
	write(t, filepath.Join(dir, "job_5.out"), "Error\n")
	// a line longer than the reader's limit makes this file unreadable
	write(t, filepath.Join(dir, "job_samples_5.txt"), strings.Repeat("x", 2*1024*1024)+"\n")

	res, err := Run(baseOptions(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, res.Residual)
	require.Len(t, res.Problems, 1)

	var fe *FileError
	require.True(t, errors.As(res.Problems[0], &fe))
	assert.Equal(t, "samples", fe.Kind)
	assert.Error(t, res.ProblemsError())
}

func TestRunRecursiveGlob(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "logs", "batch1", "job_1.out"), "Error\n")
	write(t, filepath.Join(dir, "logs", "batch2", "job_2.out"), "Error\n")
	write(t, filepath.Join(dir, "job_samples_1.txt"), "A\n")
	write(t, filepath.Join(dir, "job_samples_2.txt"), "B\n")

	res, err := Run(Options{
		LogPattern:     filepath.Join(dir, "logs", "**", "job_*.out"),
		FailMarker:     "Error",
		SamplesPattern: filepath.Join(dir, "job_samples_*.txt"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, res.FailedRuns)
	assert.Equal(t, []string{"A", "B"}, res.Residual)
}

func TestRunCustomTokenRules(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "job-4.log"), "Error\n")
	write(t, filepath.Join(dir, "samples-4.txt"), "A\nB\n")
	write(t, filepath.Join(dir, "done", "A.contigs.fa"), "")

	res, err := Run(Options{
		LogPattern:       filepath.Join(dir, "job-*.log"),
		FailMarker:       "Error",
		SamplesPattern:   filepath.Join(dir, "samples-*.txt"),
		CompletedPattern: filepath.Join(dir, "done", "*.fa"),
		RunToken:         TokenRule{Sep: "-", Position: Last},
		SampleToken:      TokenRule{Sep: ".", Position: First},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, res.Residual)
}

func TestWriteSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultOutput)
	require.NoError(t, WriteSamples(path, []string{"A", "B"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\nB\n", string(data))

	require.NoError(t, WriteSamples(path, nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
