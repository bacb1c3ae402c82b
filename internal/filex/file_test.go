package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDataDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDataDir(".gophauth")
	require.NoError(t, err)

	// macOS temp dirs resolve through /private
	want, err := filepath.EvalSymlinks(tmp)
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(want, ".gophauth"), gotResolved)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsureDataDir_Absolute(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "data")

	got, err := EnsureDataDir(want)
	require.NoError(t, err)
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureDataDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	first, err := EnsureDataDir("data")
	require.NoError(t, err)

	second, err := EnsureDataDir("data")
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestEnsureDataDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("data", []byte("x"), 0o600))

	_, err := EnsureDataDir("data")
	require.Error(t, err, "should fail when a file exists with the same name")
}
