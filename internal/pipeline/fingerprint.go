package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"hash"
	"io/fs"
	"os"

	"github.com/specialistvlad/shaderbuild/internal/fsutil"
)

// Fingerprint identifies the artifact listing a synthesis pass was run
// against. Any added, removed, resized or touched artifact, or a change in
// the synthesizer settings, yields a different value.
type Fingerprint string

func writeField(h hash.Hash, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}

func writeInt(h hash.Hash, v int64) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(v))
	h.Write(n[:])
}

// ComputeFingerprint hashes the artifacts directly inside generatedDir,
// excluding the aggregator, together with settings.
func ComputeFingerprint(generatedDir, ext, reservedStem, settings string) (Fingerprint, error) {
	files, err := fsutil.ListFiles(generatedDir, ext)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	writeField(h, settings)
	for _, file := range files {
		if file.Stem == reservedStem {
			continue
		}
		writeField(h, file.Name)
		writeInt(h, file.Info.Size())
		writeInt(h, file.Info.ModTime().UnixNano())
	}
	return Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}

// ReadFingerprint returns the stored fingerprint, or "" when none was
// written yet.
func ReadFingerprint(path string) (Fingerprint, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return Fingerprint(bytes.TrimSpace(data)), nil
}

// WriteFingerprint stores fp at path.
func WriteFingerprint(path string, fp Fingerprint) error {
	return os.WriteFile(path, []byte(string(fp)+"\n"), 0o644)
}
