package dupefilehash

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDupeFinder_FindDuplicates(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]string{
		"/data/photos/img1.jpg":   "jpeg bytes",
		"/data/backup/img1.jpg":   "jpeg bytes",
		"/data/backup/img10.jpg":  "jpeg bytes",
		"/data/notes.txt":         "some notes",
		"/data/other/unique.bin":  "nothing else is this long",
		"/data/other/similar.txt": "same notes",
	})

	finder, err := NewDupeFinder("/data/", nil, fs)
	require.NoError(t, err)
	assert.Equal(t, "/data", finder.RootDir)
	assert.Equal(t, "sha256", finder.Algorithm().Name)

	report, err := finder.FindDuplicates(nil)
	require.NoError(t, err)

	assert.Equal(t, "/data", report.Root)
	assert.Equal(t, "sha256", report.Algorithm)
	require.Len(t, report.Groups, 1)

	group := report.Groups[0]
	assert.Equal(t, digestOf("jpeg bytes").String(), group.Hash)
	assert.Equal(t, []string{"/data/backup/img1.jpg", "/data/backup/img10.jpg", "/data/photos/img1.jpg"}, group.Files)
	assert.Equal(t, 2, report.DuplicateFiles())
	assert.Equal(t, int64(20), report.WastedBytes())

	assert.Equal(t, int64(6), report.Scan.FilesIndexed)
	assert.Equal(t, int64(6), report.Index.Files)
	// jpeg and the two ten-byte notes share a size, unique.bin never hashed
	assert.Equal(t, int64(5), report.Index.HashOps)
	assert.Equal(t, int64(50), report.BytesRead)
}

func TestDupeFinder_Config(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]string{
		"/data/a":           "twin",
		"/data/b":           "twin",
		"/data/cache/c":     "twin",
		"/etc/dfhdupes.ign": "^cache/\n",
	})

	config := DefaultConfig()
	require.NoError(t, config.ApplyOverrides([]string{
		"default:blake3",
		"ignore_file:/etc/dfhdupes.ign",
		"hash_workers:2",
		"hash_buffer:1K",
	}))

	finder, err := NewDupeFinder("/data", config, fs)
	require.NoError(t, err)

	report, err := finder.FindDuplicates(nil)
	require.NoError(t, err)
	assert.Equal(t, "blake3", report.Algorithm)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, []string{"/data/a", "/data/b"}, report.Groups[0].Files)
	assert.Equal(t, int64(1), report.Scan.Ignored)

	require.NoError(t, finder.AddIgnorePattern(`^b$`))
	report, err = finder.FindDuplicates(nil)
	require.NoError(t, err)
	assert.Empty(t, report.Groups)
}

func TestDupeFinder_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]string{"/data/file": "x"})

	finder, err := NewDupeFinder("/missing", nil, fs)
	require.NoError(t, err)
	report, err := finder.FindDuplicates(nil)
	assert.ErrorIs(t, err, ErrPathNotFound)
	assert.Nil(t, report)

	finder, err = NewDupeFinder("/data/file", nil, fs)
	require.NoError(t, err)
	_, err = finder.FindDuplicates(nil)
	assert.ErrorIs(t, err, ErrNotADirectory)

	config := DefaultConfig()
	require.NoError(t, config.ApplyOverrides([]string{"default:crc32"}))
	_, err = NewDupeFinder("/data", config, fs)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	config = DefaultConfig()
	require.NoError(t, config.ApplyOverrides([]string{"ignore_file:/no/such/file"}))
	_, err = NewDupeFinder("/data", config, fs)
	assert.Error(t, err)
}

func TestDupeFinder_Interrupted(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, map[string]string{"/data/a": "x", "/data/b": "x"})

	shutdown := make(chan struct{})
	close(shutdown)

	finder, err := NewDupeFinder("/data", nil, fs)
	require.NoError(t, err)
	report, err := finder.FindDuplicates(shutdown)
	assert.ErrorIs(t, err, ErrInterrupted)
	require.NotNil(t, report)
	assert.Empty(t, report.Groups)
}
