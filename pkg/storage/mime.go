package storage

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	MIMEOctetStream    = "application/octet-stream"
	mimeDetectionBytes = 512 // http.DetectContentType sniffs at most 512 bytes
)

type mimeCategory uint8

const (
	catNone mimeCategory = iota
	catImage
	catDocument
	catVideo
	catAudio
)

// mimeCategories backs the Is* helpers. Detection always runs on magic
// bytes, so a renamed extension cannot smuggle a file past these.
var mimeCategories = map[string]mimeCategory{
	"image/jpeg":    catImage,
	"image/png":     catImage,
	"image/gif":     catImage,
	"image/webp":    catImage,
	"image/svg+xml": catImage,
	"image/bmp":     catImage,
	"image/tiff":    catImage,
	"image/x-icon":  catImage,
	"image/heic":    catImage,
	"image/heif":    catImage,
	"image/avif":    catImage,

	"application/pdf":    catDocument,
	"application/msword": catDocument,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": catDocument,
	"application/vnd.ms-excel": catDocument,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         catDocument,
	"application/vnd.ms-powerpoint":                                             catDocument,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": catDocument,
	"text/plain":      catDocument,
	"text/csv":        catDocument,
	"application/rtf": catDocument,

	"video/mp4":        catVideo,
	"video/webm":       catVideo,
	"video/ogg":        catVideo,
	"video/quicktime":  catVideo,
	"video/x-msvideo":  catVideo,
	"video/x-matroska": catVideo,

	"audio/mpeg": catAudio,
	"audio/wav":  catAudio,
	"audio/ogg":  catAudio,
	"audio/webm": catAudio,
	"audio/aac":  catAudio,
	"audio/flac": catAudio,
	"audio/mp4":  catAudio,
}

// mimeExtensions picks the extension appended to generated storage
// keys.
var mimeExtensions = map[string]string{
	// images
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
	"image/x-icon":  ".ico",
	"image/heic":    ".heic",
	"image/heif":    ".heif",
	"image/avif":    ".avif",
	// documents
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.ms-powerpoint":                                             ".ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
	"text/plain":      ".txt",
	"text/csv":        ".csv",
	"text/html":       ".html",
	"text/css":        ".css",
	"application/rtf": ".rtf",
	// data
	"application/json":       ".json",
	"application/xml":        ".xml",
	"application/javascript": ".js",
	// video
	"video/mp4":        ".mp4",
	"video/webm":       ".webm",
	"video/ogg":        ".ogv",
	"video/quicktime":  ".mov",
	"video/x-msvideo":  ".avi",
	"video/x-matroska": ".mkv",
	// audio
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
	"audio/ogg":  ".ogg",
	"audio/webm": ".weba",
	"audio/aac":  ".aac",
	"audio/flac": ".flac",
	"audio/mp4":  ".m4a",
	// archives
	"application/zip":              ".zip",
	"application/gzip":             ".gz",
	"application/x-tar":            ".tar",
	"application/x-7z-compressed":  ".7z",
	"application/x-rar-compressed": ".rar",
}

// DetectMIME sniffs the MIME type from the file's magic bytes, falling
// back to application/octet-stream when the file cannot be read.
func DetectMIME(fh *multipart.FileHeader) string {
	if fh == nil {
		return MIMEOctetStream
	}

	f, err := fh.Open()
	if err != nil {
		return MIMEOctetStream
	}
	defer f.Close()

	return detectMIMEFromReader(f)
}

// ExtFromMIME maps a MIME type to its preferred extension, or "" for
// unknown types.
func ExtFromMIME(mimeType string) string {
	return mimeExtensions[normalizeMIME(mimeType)]
}

// IsImage reports whether the file's magic bytes identify an image.
func IsImage(fh *multipart.FileHeader) bool {
	return isImageMIME(DetectMIME(fh))
}

// IsDocument reports whether the file's magic bytes identify a document.
func IsDocument(fh *multipart.FileHeader) bool {
	return isDocumentMIME(DetectMIME(fh))
}

// IsVideo reports whether the file's magic bytes identify a video.
func IsVideo(fh *multipart.FileHeader) bool {
	return isVideoMIME(DetectMIME(fh))
}

// IsAudio reports whether the file's magic bytes identify audio.
func IsAudio(fh *multipart.FileHeader) bool {
	return isAudioMIME(DetectMIME(fh))
}

func categoryOf(mimeType string) mimeCategory {
	return mimeCategories[normalizeMIME(mimeType)]
}

func isImageMIME(mimeType string) bool    { return categoryOf(mimeType) == catImage }
func isDocumentMIME(mimeType string) bool { return categoryOf(mimeType) == catDocument }
func isVideoMIME(mimeType string) bool    { return categoryOf(mimeType) == catVideo }
func isAudioMIME(mimeType string) bool    { return categoryOf(mimeType) == catAudio }

func detectMIMEFromReader(r io.Reader) string {
	buf := make([]byte, mimeDetectionBytes)
	n, err := r.Read(buf)
	if err != nil && n == 0 {
		return MIMEOctetStream
	}
	return http.DetectContentType(buf[:n])
}

// detectMIMEWithReader sniffs the type and hands back an io.ReadSeeker,
// which the AWS SDK needs to compute the payload hash. A seekable input
// is rewound after sniffing; anything else is buffered whole.
func detectMIMEWithReader(r io.Reader) (string, io.ReadSeeker) {
	if rs, ok := r.(io.ReadSeeker); ok {
		buf := make([]byte, mimeDetectionBytes)
		n, _ := rs.Read(buf)
		_, _ = rs.Seek(0, io.SeekStart)
		if n == 0 {
			return MIMEOctetStream, rs
		}
		return http.DetectContentType(buf[:n]), rs
	}

	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return MIMEOctetStream, bytes.NewReader(nil)
	}
	return http.DetectContentType(data), bytes.NewReader(data)
}

// normalizeMIME lowercases the type and strips parameters such as
// charset.
func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}

// matchesMIME reports whether mimeType matches any allowed pattern,
// where a trailing "/*" matches the whole major type.
func matchesMIME(mimeType string, allowed []string) bool {
	mimeType = normalizeMIME(mimeType)

	for _, pattern := range allowed {
		pattern = strings.TrimSpace(strings.ToLower(pattern))
		if mimeType == pattern {
			return true
		}
		if major, ok := strings.CutSuffix(pattern, "/*"); ok && strings.HasPrefix(mimeType, major+"/") {
			return true
		}
	}

	return false
}
