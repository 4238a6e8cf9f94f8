package services

import (
	"regexp"
	"strings"
)

// Delimiter separates folder levels inside object keys
const Delimiter = "/"

// DefaultRegion is the region for which no location constraint is sent
const DefaultRegion = "us-east-1"

var bucketNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

// ValidBucketName checks the backend naming grammar: 3-63 characters of
// lowercase letters, digits, '.' and '-', starting and ending alphanumeric.
func ValidBucketName(name string) bool {
	return bucketNamePattern.MatchString(name)
}

// FolderKey returns the marker key for a folder name
func FolderKey(name string) string {
	if strings.HasSuffix(name, Delimiter) {
		return name
	}
	return name + Delimiter
}

// ParentPrefix returns the folder that contains key ("" for the bucket root).
// A folder marker such as "a/b/" is its own parent prefix.
func ParentPrefix(key string) string {
	idx := strings.LastIndex(key, Delimiter)
	if idx < 0 {
		return ""
	}
	return key[:idx+1]
}

// EnclosingPrefix returns the folder that contains the folder prefix,
// clamped to the bucket root.
func EnclosingPrefix(prefix string) string {
	return ParentPrefix(strings.TrimSuffix(prefix, Delimiter))
}

// BaseName returns the last path element of a key or folder prefix
func BaseName(key string) string {
	trimmed := strings.TrimSuffix(key, Delimiter)
	return trimmed[strings.LastIndex(trimmed, Delimiter)+1:]
}
