package ember

import (
	"path/filepath"
	"strings"
)

// FileUploadsConfig bounds the multipart/form-data file-upload decoder
// (§4.3, §6).
type FileUploadsConfig struct {
	MaxFileSize       int      `mapstructure:"max_file_size"`
	MaxTotalSize      int      `mapstructure:"max_total_size"`
	MaxFiles          int      `mapstructure:"max_files"`
	MaxFilenameLength int      `mapstructure:"max_filename_length"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	BlockedExtensions []string `mapstructure:"blocked_extensions"`
}

// DefaultFileUploadsConfig returns conservative defaults.
func DefaultFileUploadsConfig() FileUploadsConfig {
	return FileUploadsConfig{
		MaxFileSize:       10 << 20, // 10 MiB
		MaxTotalSize:      50 << 20, // 50 MiB
		MaxFiles:          20,
		MaxFilenameLength: 255,
	}
}

var errMissingBoundary = &securityError{message: "multipart/form-data body is missing its boundary"}

// binaryRetainedPrefixes lists the content-type prefixes whose multipart
// part content is retained as bytes rather than decoded as a string
// (§4.3).
var binaryRetainedPrefixes = []string{
	"image/", "audio/", "video/",
	"application/octet-stream", "application/pdf", "application/zip",
	"application/x-",
}

// decodeMultipart decodes raw as multipart/form-data using the given
// boundary, returning the populated fields and files per §4.3.
func decodeMultipart(raw, boundary string, cfg FileUploadsConfig) (*MultipartForm, error) {
	delimiter := "--" + boundary
	rawParts := strings.Split(raw, delimiter)

	form := &MultipartForm{Fields: map[string]string{}}

	totalFileSize := 0
	fileCount := 0

	for _, part := range rawParts {
		part = strings.TrimPrefix(part, "\r\n")
		part = strings.TrimSuffix(part, "\r\n")

		if part == "" || part == "--" || strings.TrimSpace(part) == "--" {
			continue
		}

		headerBlock, content, ok := splitPartHeaders(part)
		if !ok {
			continue
		}

		content = strings.TrimSuffix(content, "\r\n")

		headers, err := parseHeaders(headerBlock)
		if err != nil {
			continue
		}

		disposition := headers["content-disposition"]
		name, hasName := dispositionParam(disposition, "name")
		if !hasName {
			continue
		}

		filename, hasFilename := dispositionParam(disposition, "filename")
		if !hasFilename {
			form.Fields[name] = content
			continue
		}

		if cfg.MaxFilenameLength > 0 && len(filename) > cfg.MaxFilenameLength {
			return nil, &LimitError{What: "uploaded filename length", Bound: cfg.MaxFilenameLength, Value: len(filename)}
		}

		fileCount++
		if cfg.MaxFiles > 0 && fileCount > cfg.MaxFiles {
			return nil, &LimitError{What: "uploaded file count", Bound: cfg.MaxFiles, Value: fileCount}
		}

		ext := strings.ToLower(filepath.Ext(filename))
		if len(cfg.AllowedExtensions) > 0 && !stringInSlice(cfg.AllowedExtensions, ext) {
			return nil, &securityError{message: "file extension not allowed: " + ext}
		}
		if stringInSlice(cfg.BlockedExtensions, ext) {
			return nil, &securityError{message: "file extension blocked: " + ext}
		}

		contentType := headers["content-type"]
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		size := len(content)
		if cfg.MaxFileSize > 0 && size > cfg.MaxFileSize {
			return nil, &LimitError{What: "uploaded file size", Bound: cfg.MaxFileSize, Value: size}
		}

		totalFileSize += size
		if cfg.MaxTotalSize > 0 && totalFileSize > cfg.MaxTotalSize {
			return nil, &LimitError{What: "total uploaded file size", Bound: cfg.MaxTotalSize, Value: totalFileSize}
		}

		upload := FileUpload{
			FieldName:   name,
			Filename:    filename,
			ContentType: contentType,
			Size:        size,
		}

		if isBinaryRetainedType(contentType) {
			upload.Content = []byte(content)
			upload.IsBinary = true
		} else {
			upload.ContentString = content
		}

		form.Files = append(form.Files, upload)
	}

	return form, nil
}

// splitPartHeaders splits one multipart part on its own CRLF CRLF into
// headers and content (§4.3).
func splitPartHeaders(part string) (headers, content string, ok bool) {
	for _, sep := range []string{"\r\n\r\n", "\n\n"} {
		if i := strings.Index(part, sep); i >= 0 {
			return part[:i], part[i+len(sep):], true
		}
	}
	return "", "", false
}

// dispositionParam extracts a "key=value" or "key=\"value\"" parameter
// from a Content-Disposition header value.
func dispositionParam(disposition, key string) (string, bool) {
	marker := key + "="
	i := strings.Index(disposition, marker)
	if i < 0 {
		return "", false
	}

	rest := disposition[i+len(marker):]
	if strings.HasPrefix(rest, "\"") {
		rest = rest[1:]
		if j := strings.IndexByte(rest, '"'); j >= 0 {
			return rest[:j], true
		}
		return rest, true
	}

	if j := strings.IndexByte(rest, ';'); j >= 0 {
		return strings.TrimSpace(rest[:j]), true
	}

	return strings.TrimSpace(rest), true
}

func isBinaryRetainedType(contentType string) bool {
	for _, prefix := range binaryRetainedPrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

func stringInSlice(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
