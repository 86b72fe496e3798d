package storage

import (
	"path"
	"strings"
)

// Derived-key functions. Pure string transforms, no I/O: the worker never
// records the derived keys anywhere except ThumbnailKey on the segment, so
// readers recompute them from the original video key.

// QualityKey returns the storage key for a transcoded quality variant,
// e.g. QualityKey("course/lesson1.mp4", "720p") = "course/lesson1_720p.mp4".
func QualityKey(originalKey, quality string) string {
	ext := path.Ext(originalKey)
	return strings.TrimSuffix(originalKey, ext) + "_" + quality + ext
}

// ThumbnailKey returns the storage key for a segment's extracted thumbnail,
// e.g. ThumbnailKey("course/lesson1.mp4") = "course/lesson1_thumb.jpg".
func ThumbnailKey(originalKey string) string {
	ext := path.Ext(originalKey)
	return strings.TrimSuffix(originalKey, ext) + "_thumb.jpg"
}
