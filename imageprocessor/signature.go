package imageprocessor

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
)

// ErrUnknownType is returned when no known signature matches a file
var ErrUnknownType = errors.New("unrecognized file type")

// headerSize is the number of leading bytes inspected for signatures
const headerSize = 12

// diagnosticHeaderSize is the number of leading bytes reported for failed files
const diagnosticHeaderSize = 10

var (
	heifSignature = []byte{0x00, 0x00, 0x00, 0x1c, 0x66, 0x74, 0x79, 0x70, 0x68, 0x65}
	jpegSignature = []byte{0xff, 0xd8, 0xff}
	pngSignature  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	gif87a        = []byte("GIF87a")
	gif89a        = []byte("GIF89a")
)

// DetectFormat classifies header bytes against the known signatures
func DetectFormat(header []byte) FormatType {
	switch {
	case bytes.HasPrefix(header, heifSignature):
		return FormatHEIF
	case bytes.HasPrefix(header, jpegSignature):
		return FormatJPEG
	case bytes.HasPrefix(header, pngSignature):
		return FormatPNG
	case bytes.HasPrefix(header, gif87a), bytes.HasPrefix(header, gif89a):
		return FormatGIF
	default:
		return FormatUnknown
	}
}

// ReadHeader returns up to n leading bytes of the file
func ReadHeader(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:read], nil
}

// DetectFileFormat reads the header of path and classifies it
func DetectFileFormat(path string) (FormatType, error) {
	header, err := ReadHeader(path, headerSize)
	if err != nil {
		return FormatUnknown, fmt.Errorf("cannot read header of %s: %w", path, err)
	}
	return DetectFormat(header), nil
}

// FileDiagnostics describes a file that failed to decode or hash
type FileDiagnostics struct {
	Size      int64
	HumanSize string
	HeaderHex string
}

// DescribeFile collects the size and leading bytes of path for failure logs
func DescribeFile(path string) (FileDiagnostics, error) {
	var diag FileDiagnostics

	info, err := os.Stat(path)
	if err != nil {
		return diag, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	diag.Size = info.Size()
	diag.HumanSize = humanize.Bytes(uint64(info.Size()))

	header, err := ReadHeader(path, diagnosticHeaderSize)
	if err != nil {
		return diag, fmt.Errorf("cannot read header of %s: %w", path, err)
	}
	diag.HeaderHex = hex.EncodeToString(header)
	return diag, nil
}
