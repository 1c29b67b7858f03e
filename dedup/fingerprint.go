package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"math/bits"
	"os"
	"sort"

	"github.com/disintegration/imaging"
)

const (
	resampleSize = 32
	blockSize    = 8
)

// Fingerprint is a file's identity for duplicate detection: an exact
// byte-content digest and a 64-bit perceptual hash.
type Fingerprint struct {
	Path   string
	SHA256 string
	PHash  uint64
}

// ComputeFingerprint hashes a file's bytes and derives its perceptual hash
// in a single pass over the decoded image (spec.md §4.5).
func ComputeFingerprint(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	digest := sha256.New()
	img, _, err := image.Decode(io.TeeReader(f, digest))
	if err != nil {
		return Fingerprint{}, fmt.Errorf("decode %s: %w", path, err)
	}
	// Hash any bytes the decoder left unread so the digest covers the whole file.
	if _, err := io.Copy(digest, f); err != nil {
		return Fingerprint{}, fmt.Errorf("read %s: %w", path, err)
	}

	hash, err := perceptualHash(img)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("hash %s: %w", path, err)
	}

	return Fingerprint{
		Path:   path,
		SHA256: hex.EncodeToString(digest.Sum(nil)),
		PHash:  hash,
	}, nil
}

// perceptualHash resamples the image to a fixed 32x32 grid by stretching
// (no aspect-ratio preservation), converts it to grayscale, runs a 2D DCT-II,
// and derives a 64-bit hash from the sign of the 63 lowest non-DC
// frequencies of the upper-left 8x8 block relative to their median. The DC
// bit (position 0) is always cleared.
func perceptualHash(img image.Image) (uint64, error) {
	resized := imaging.Resize(img, resampleSize, resampleSize, imaging.CatmullRom)
	gray := imaging.Grayscale(resized)

	matrix := make([][]float64, resampleSize)
	for y := 0; y < resampleSize; y++ {
		matrix[y] = make([]float64, resampleSize)
		for x := 0; x < resampleSize; x++ {
			r, _, _, _ := gray.At(x, y).RGBA()
			matrix[y][x] = float64(r >> 8)
		}
	}

	spectrum := dct2D(matrix)

	values := make([]float64, 0, blockSize*blockSize-1)
	for row := 0; row < blockSize; row++ {
		for col := 0; col < blockSize; col++ {
			if row == 0 && col == 0 {
				continue
			}
			values = append(values, spectrum[row][col])
		}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	median := sorted[len(sorted)/2]

	var hash uint64
	for row := 0; row < blockSize; row++ {
		for col := 0; col < blockSize; col++ {
			bit := row*blockSize + col
			if row == 0 && col == 0 {
				continue
			}
			if spectrum[row][col] > median {
				hash |= 1 << uint(bit)
			}
		}
	}

	return hash, nil
}

// hammingDistance counts differing bits between two 64-bit hashes.
func hammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
