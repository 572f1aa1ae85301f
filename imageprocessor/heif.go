package imageprocessor

import (
	"encoding/base64"
	"fmt"
	"strings"

	"imagededup/logging"

	"github.com/barasher/go-exiftool"
)

// Embedded preview tags tried in order when extracting a HEIF rendition
var heifPreviewTags = []string{
	"PreviewImage",
	"ThumbnailImage",
	"OtherImage",
}

// ExtractHEIFPreview returns the bytes of the first embedded JPEG preview
// exiftool finds in a HEIF container
func ExtractHEIFPreview(path string) ([]byte, error) {
	et, err := exiftool.NewExiftool(exiftool.ExtractAllBinaryMetadata())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize exiftool: %w", err)
	}
	defer et.Close()

	fileInfos := et.ExtractMetadata(path)
	if len(fileInfos) == 0 {
		return nil, fmt.Errorf("no metadata extracted from %s", path)
	}
	fileInfo := fileInfos[0]
	if fileInfo.Err != nil {
		return nil, fmt.Errorf("error extracting metadata from %s: %w", path, fileInfo.Err)
	}

	for _, tag := range heifPreviewTags {
		value, err := fileInfo.GetString(tag)
		if err != nil || value == "" {
			continue
		}
		data, err := decodeBinaryField(value)
		if err != nil {
			logging.DebugLog("HEIF preview tag %s of %s is not decodable: %v", tag, path, err)
			continue
		}
		if len(data) > 0 {
			logging.DebugLog("Extracted %s (%d bytes) from %s", tag, len(data), path)
			return data, nil
		}
	}
	return nil, fmt.Errorf("could not extract any preview image from HEIF file %s", path)
}

// decodeBinaryField decodes exiftool's "base64:" binary field encoding
func decodeBinaryField(value string) ([]byte, error) {
	const prefix = "base64:"
	if !strings.HasPrefix(value, prefix) {
		return nil, fmt.Errorf("field is not binary")
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(value, prefix))
}
