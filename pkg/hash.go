package dupefilehash

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

// HashAlgorithm represents a hash algorithm configuration
type HashAlgorithm struct {
	Name    string
	NewFunc func() hash.Hash
}

// Hasher computes the content digest of a file. The duplicate index only
// depends on this interface.
type Hasher interface {
	Hash(path string) (Digest, error)
}

// GetHashAlgorithm returns the hash algorithm configuration for the given name.
// Every supported algorithm produces a DigestSize digest.
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	switch strings.ToLower(name) {
	case "sha256":
		return &HashAlgorithm{
			Name:    "sha256",
			NewFunc: sha256.New,
		}, nil
	case "sha512_256", "sha512/256":
		return &HashAlgorithm{
			Name:    "sha512_256",
			NewFunc: sha512.New512_256,
		}, nil
	case "blake3":
		return &HashAlgorithm{
			Name:    "blake3",
			NewFunc: func() hash.Hash { return blake3.New() },
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, name)
	}
}

// HashBytes hashes an in-memory buffer with the given algorithm
func HashBytes(data []byte, algorithm *HashAlgorithm) Digest {
	hasher := algorithm.NewFunc()
	hasher.Write(data)
	var d Digest
	copy(d[:], hasher.Sum(nil))
	return d
}

// ContentHasher streams whole files through a HashAlgorithm in bounded chunks
type ContentHasher struct {
	fs           afero.Fs
	algorithm    *HashAlgorithm
	bufferSize   int
	shutdownChan <-chan struct{}

	bytesRead atomic.Int64
}

// NewContentHasher creates a hasher reading from fs. A non-positive
// bufferSize falls back to the default hash buffer.
func NewContentHasher(fs afero.Fs, algorithm *HashAlgorithm, bufferSize int, shutdownChan <-chan struct{}) *ContentHasher {
	if bufferSize <= 0 {
		bufferSize, _ = ParseHumanSize(DefaultHashBuffer)
	}
	return &ContentHasher{
		fs:           fs,
		algorithm:    algorithm,
		bufferSize:   bufferSize,
		shutdownChan: shutdownChan,
	}
}

// Algorithm returns the configured algorithm
func (ch *ContentHasher) Algorithm() *HashAlgorithm {
	return ch.algorithm
}

// BytesRead returns the total number of content bytes read so far
func (ch *ContentHasher) BytesRead() int64 {
	return ch.bytesRead.Load()
}

// Hash opens path, reads it to EOF and returns its digest. On any failure no
// digest is returned and the file is closed.
func (ch *ContentHasher) Hash(path string) (Digest, error) {
	file, err := ch.fs.Open(path)
	if err != nil {
		return Digest{}, &HashError{Path: path, Kind: ErrFileOpenFailed, Err: err}
	}
	defer file.Close()

	if osFile, ok := file.(*os.File); ok {
		adviseSequential(osFile)
	}

	hasher := ch.algorithm.NewFunc()
	buffer := make([]byte, ch.bufferSize)

	for {
		// Check for shutdown signal before each read
		select {
		case <-ch.shutdownChan:
			return Digest{}, &HashError{Path: path, Kind: ErrInterrupted}
		default:
		}

		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
			ch.bytesRead.Add(int64(n))
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return Digest{}, &HashError{Path: path, Kind: ErrFileReadFailed, Err: err}
		}
	}

	digest, err := digestFromSum(hasher.Sum(nil))
	if err != nil {
		return Digest{}, fmt.Errorf("hashing %s with %s: %w", path, ch.algorithm.Name, err)
	}
	if IsDebugEnabled(DebugHash) {
		VerboseLog(3, "hashed %s: %s", path, digest)
	}
	return digest, nil
}
