// Package models contains data structures used across handlers
package models

import "time"

// BucketInfo represents a bucket row on the bucket list
type BucketInfo struct {
	Name          string
	CreationDate  time.Time
	FormattedSize string
}

// ObjectInfo represents an object with display metadata
type ObjectInfo struct {
	Key           string
	DisplayName   string
	Size          int64
	FormattedSize string
	LastModified  time.Time
	ContentType   string
	Kind          string
}

// FolderInfo represents a folder (common prefix)
type FolderInfo struct {
	Name   string
	Prefix string
}

// Breadcrumb for navigation
type Breadcrumb struct {
	Name string
	Path string
}
