package dupefilehash

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

// failingReadFs opens files normally but fails every read after the first
type failingReadFs struct {
	afero.Fs
}

func (fs failingReadFs) Open(name string) (afero.File, error) {
	f, err := fs.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &failingReadFile{File: f}, nil
}

type failingReadFile struct {
	afero.File
	reads int
}

func (f *failingReadFile) Read(p []byte) (int, error) {
	f.reads++
	if f.reads > 1 {
		return 0, io.ErrUnexpectedEOF
	}
	return f.File.Read(p)
}

// closeCountingFs records every file it opens so tests can check each one
// is closed exactly once
type closeCountingFs struct {
	afero.Fs
	opened []*closeCountingFile
}

func (fs *closeCountingFs) Open(name string) (afero.File, error) {
	f, err := fs.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	counted := &closeCountingFile{File: f}
	fs.opened = append(fs.opened, counted)
	return counted, nil
}

type closeCountingFile struct {
	afero.File
	closes int
}

func (f *closeCountingFile) Close() error {
	f.closes++
	return f.File.Close()
}

func mustAlgorithm(t *testing.T, name string) *HashAlgorithm {
	t.Helper()
	alg, err := GetHashAlgorithm(name)
	require.NoError(t, err)
	return alg
}

func TestContentHasher_SHA256(t *testing.T) {
	content := []byte("test content for hashing")
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test.txt")
	require.NoError(t, os.WriteFile(tmpFile, content, 0644))

	hasher := NewContentHasher(afero.NewOsFs(), mustAlgorithm(t, "sha256"), 0, nil)

	digest, err := hasher.Hash(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, Digest(sha256.Sum256(content)), digest)
	assert.Equal(t, int64(len(content)), hasher.BytesRead())

	again, err := hasher.Hash(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, digest, again)
}

func TestContentHasher_Algorithms(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789abcdef"), 1000)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data.bin", content, 0644))

	tests := []struct {
		name     string
		expected Digest
	}{
		{"sha256", Digest(sha256.Sum256(content))},
		{"sha512_256", Digest(sha512.Sum512_256(content))},
		{"sha512/256", Digest(sha512.Sum512_256(content))},
		{"blake3", Digest(blake3.Sum256(content))},
		{"BLAKE3", Digest(blake3.Sum256(content))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alg := mustAlgorithm(t, tt.name)
			hasher := NewContentHasher(fs, alg, 4096, nil)
			digest, err := hasher.Hash("/data.bin")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, digest)
			assert.Equal(t, tt.expected, HashBytes(content, alg))
		})
	}
}

func TestContentHasher_TinyBuffer(t *testing.T) {
	content := []byte("a buffer of one byte still sees every byte")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tiny.txt", content, 0644))

	hasher := NewContentHasher(fs, mustAlgorithm(t, "sha256"), 1, nil)
	digest, err := hasher.Hash("/tiny.txt")
	require.NoError(t, err)
	assert.Equal(t, Digest(sha256.Sum256(content)), digest)
}

func TestContentHasher_EmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/empty", nil, 0644))

	hasher := NewContentHasher(fs, mustAlgorithm(t, "sha256"), 0, nil)
	digest, err := hasher.Hash("/empty")
	require.NoError(t, err)
	assert.Equal(t, Digest(sha256.Sum256(nil)), digest)
}

func TestContentHasher_OpenFailure(t *testing.T) {
	hasher := NewContentHasher(afero.NewMemMapFs(), mustAlgorithm(t, "sha256"), 0, nil)

	_, err := hasher.Hash("/missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileOpenFailed))
	assert.False(t, errors.Is(err, ErrFileReadFailed))

	var hashErr *HashError
	require.True(t, errors.As(err, &hashErr))
	assert.Equal(t, "/missing", hashErr.Path)
	assert.Equal(t, "open", errorKindName(err))
}

func TestContentHasher_ReadFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/flaky", bytes.Repeat([]byte("x"), 64), 0644))

	hasher := NewContentHasher(failingReadFs{base}, mustAlgorithm(t, "sha256"), 8, nil)
	digest, err := hasher.Hash("/flaky")
	require.Error(t, err)
	assert.True(t, digest.IsZero())
	assert.True(t, errors.Is(err, ErrFileReadFailed))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "read", errorKindName(err))
}

func TestContentHasher_Interrupted(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/big", bytes.Repeat([]byte("y"), 1<<16), 0644))

	shutdown := make(chan struct{})
	close(shutdown)

	hasher := NewContentHasher(fs, mustAlgorithm(t, "sha256"), 1024, shutdown)
	_, err := hasher.Hash("/big")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInterrupted))
	assert.Equal(t, "interrupted", errorKindName(err))
	assert.Equal(t, int64(0), hasher.BytesRead())
}

func TestGetHashAlgorithm_Unsupported(t *testing.T) {
	for _, name := range []string{"md5", "sha1", ""} {
		_, err := GetHashAlgorithm(name)
		assert.True(t, errors.Is(err, ErrUnsupportedAlgorithm), "algorithm %q", name)
	}
}

func TestContentHasher_ClosesFile(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/data", bytes.Repeat([]byte("z"), 4096), 0644))

	closed := make(chan struct{})
	close(closed)

	testCases := []struct {
		name     string
		fs       afero.Fs
		shutdown chan struct{}
		path     string
		kind     error
		opens    int
	}{
		{"success", base, nil, "/data", nil, 1},
		{"read failure", failingReadFs{base}, nil, "/data", ErrFileReadFailed, 1},
		{"interrupted", base, closed, "/data", ErrInterrupted, 1},
		{"open failure", base, nil, "/missing", ErrFileOpenFailed, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := &closeCountingFs{Fs: tc.fs}
			hasher := NewContentHasher(fs, mustAlgorithm(t, "sha256"), 512, tc.shutdown)

			_, err := hasher.Hash(tc.path)
			if tc.kind == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.kind)
			}

			require.Len(t, fs.opened, tc.opens)
			for _, f := range fs.opened {
				assert.Equal(t, 1, f.closes)
			}
		})
	}
}
