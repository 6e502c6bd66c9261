package ember

import "strings"

// BodyParserConfig bundles the three body-decoder configuration records
// (§6, §9 "Configuration objects": each nested record is a separate
// struct).
type BodyParserConfig struct {
	JSON        JSONConfig        `mapstructure:"json"`
	URLEncoded  URLEncodedConfig  `mapstructure:"url_encoded"`
	FileUploads FileUploadsConfig `mapstructure:"file_uploads"`
}

// DefaultBodyParserConfig returns the body-parser configuration used when
// a Server is constructed without overrides.
func DefaultBodyParserConfig() BodyParserConfig {
	return BodyParserConfig{
		JSON:        DefaultJSONConfig(),
		URLEncoded:  DefaultURLEncodedConfig(),
		FileUploads: DefaultFileUploadsConfig(),
	}
}

// MultipartForm is the decoded value of a multipart/form-data body (§4.3).
type MultipartForm struct {
	Fields map[string]string
	Files  []FileUpload
}

// FileUpload is one file part of a decoded multipart/form-data body.
type FileUpload struct {
	FieldName   string
	Filename    string
	ContentType string
	Size        int
	// Content holds the part body either as bytes (for content types the
	// spec designates binary-retained) or, via ContentString, as a
	// string. Exactly one of Content/ContentString is populated.
	Content       []byte
	ContentString string
	IsBinary      bool
}

// decodeBody dispatches on the declared (or inferred) main content type
// and returns the decoded value per §4.3. An empty or whitespace-only body
// always yields (nil, nil).
func decodeBody(raw, declaredType, boundary string, cfg BodyParserConfig) (interface{}, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	mainType := declaredType
	if mainType == "" {
		mainType = inferContentType(raw)
	}

	switch mainType {
	case "application/json":
		return decodeJSON(raw, cfg.JSON)
	case "application/x-www-form-urlencoded":
		return decodeURLEncoded(raw, cfg.URLEncoded)
	case "multipart/form-data":
		if boundary == "" {
			return nil, errMissingBoundary
		}
		return decodeMultipart(raw, boundary, cfg.FileUploads)
	default:
		return raw, nil
	}
}

// inferContentType implements §4.3's content-type inference for a body
// with no declared Content-Type.
func inferContentType(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if looksLikeJSON(trimmed) && isValidJSON(trimmed) {
		return "application/json"
	}

	if strings.Contains(trimmed, "=") && strings.Contains(trimmed, "&") {
		return "application/x-www-form-urlencoded"
	}

	if strings.Contains(trimmed, "boundary=") {
		return "multipart/form-data"
	}

	return "text/plain"
}

func looksLikeJSON(s string) bool {
	if s == "" {
		return false
	}
	return (strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"))
}
