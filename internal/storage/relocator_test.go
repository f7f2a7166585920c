package storage

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelocateMovesFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "temp_upload.webm")
	dst := filepath.Join(dir, "001_dani.webm")
	require.NoError(t, os.WriteFile(src, []byte("audio data"), 0o644))

	require.NoError(t, Relocate(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio data"), data)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source must be gone after relocation")
}

func TestRelocateMissingSource(t *testing.T) {
	dir := t.TempDir()

	err := Relocate(filepath.Join(dir, "nope.webm"), filepath.Join(dir, "dst.webm"))
	require.Error(t, err)
}

func TestRelocateIntoMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "temp_upload.webm")
	require.NoError(t, os.WriteFile(src, []byte("audio data"), 0o644))

	err := Relocate(src, filepath.Join(dir, "missing", "dst.webm"))
	require.Error(t, err)

	// Source survives a failed relocation.
	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestRelocateCopyFallbackOnCrossDevice(t *testing.T) {
	orig := renameFile
	renameFile = func(src, dst string) error {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: syscall.EXDEV}
	}
	defer func() { renameFile = orig }()

	dir := t.TempDir()
	src := filepath.Join(dir, "temp_upload.webm")
	dst := filepath.Join(dir, "001_dani.webm")
	require.NoError(t, os.WriteFile(src, []byte("audio data"), 0o644))

	require.NoError(t, Relocate(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio data"), data)

	// The source is deleted once the copy is confirmed; only one live
	// copy remains.
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestCopyFilePreservesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.webm")
	dst := filepath.Join(dir, "dst.webm")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	require.NoError(t, copyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	// copyFile does not remove the source; Relocate does that after
	// the copy is confirmed.
	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestCopyFileFailureLeavesNoPartial(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dst.webm")

	err := copyFile(filepath.Join(dir, "nope.webm"), dst)
	require.Error(t, err)

	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}
