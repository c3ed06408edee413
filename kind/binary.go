package kind

import "bytes"

var yamlHeader = []byte("%YAML")

// IsBinaryContent checks if the given byte slice appears to be binary content.
// It checks the first 512 bytes (or less) for null bytes, which indicates binary data.
func IsBinaryContent(data []byte) bool {
	checkSize := min(len(data), 512)
	return bytes.IndexByte(data[:checkSize], 0) >= 0
}

// IsYAMLSerialized reports whether data starts with the YAML directive that
// text-serialized scenes, prefabs and materials carry.
func IsYAMLSerialized(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\ufeff \t\r\n"), yamlHeader)
}
