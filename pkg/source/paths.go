package source

import (
	"path/filepath"
	"strings"

	"github.com/ssargent/minfmt/pkg/codec"
)

const (
	// MinExt is the extension of encoded files.
	MinExt = ".min"
	// DedupedSuffix marks files written by compress.
	DedupedSuffix = "_deduped"
	// DecompressedSuffix marks files written by decompress.
	DecompressedSuffix = "_decompressed"
)

// DetectFileType returns CSV for .csv paths and text for everything else.
func DetectFileType(path string) codec.FileType {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return codec.FileTypeCSV
	}
	return codec.FileTypeText
}

// Extension returns the file extension used for decoded output of ft.
func Extension(ft codec.FileType) string {
	if ft == codec.FileTypeCSV {
		return ".csv"
	}
	return ".txt"
}

// CompressedPath returns <base>_deduped.min, placed in outDir when set and
// next to the input otherwise.
func CompressedPath(input, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dirFor(input, outDir), base+DedupedSuffix+MinExt)
}

// DecompressedPath returns <base>_decompressed.<ext> for a .min input, with
// any _deduped suffix removed from base.
func DecompressedPath(input string, ft codec.FileType, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	base = strings.TrimSuffix(base, DedupedSuffix)
	return filepath.Join(dirFor(input, outDir), base+DecompressedSuffix+Extension(ft))
}

func dirFor(input, outDir string) string {
	if outDir != "" {
		return outDir
	}
	return filepath.Dir(input)
}
