package scanner

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"io"
	"os"
)

// hashResult is the outcome of streaming a file once for both its content
// digests and its decoded pixel dimensions. DimensionsOK is false when the
// header could not be identified; Width/Height are zero in that case.
type hashResult struct {
	MD5          string
	SHA256       string
	Width        int
	Height       int
	DimensionsOK bool
}

// hashAndMeasure streams path exactly once, computing MD5 and SHA-256 over
// the whole file and reading pixel dimensions from the decoded header only,
// without a full pixel decode (spec.md §4.1 steps 1-2). A header that
// cannot be identified is tolerated: the digests still cover the whole
// file, and DimensionsOK is false. Only a failure to open or fully read the
// file (spec.md §7's "unreadable" case) is returned as an error.
func hashAndMeasure(path string) (hashResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return hashResult{}, err
	}
	defer f.Close()

	md5Sum := md5.New()
	sha256Sum := sha256.New()
	tee := io.TeeReader(f, io.MultiWriter(md5Sum, sha256Sum))

	cfg, _, decodeErr := image.DecodeConfig(tee)

	// Drain any remaining bytes past whatever image.DecodeConfig consumed
	// so the digests cover the whole file, regardless of decodeErr. The tee
	// already feeds every byte it reads into both digests.
	if _, err := io.Copy(io.Discard, tee); err != nil {
		return hashResult{}, err
	}

	result := hashResult{
		MD5:    hex.EncodeToString(md5Sum.Sum(nil)),
		SHA256: hex.EncodeToString(sha256Sum.Sum(nil)),
	}
	if decodeErr == nil {
		result.Width = cfg.Width
		result.Height = cfg.Height
		result.DimensionsOK = true
	}
	return result, nil
}
