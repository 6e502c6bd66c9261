package ember

import (
	"net/url"
	"strings"
)

// URLEncodedConfig bounds the application/x-www-form-urlencoded body
// decoder (§4.3, §6).
type URLEncodedConfig struct {
	MaxSize            int `mapstructure:"max_size"`
	MaxFields          int `mapstructure:"max_fields"`
	MaxFieldNameLength int `mapstructure:"max_field_name_length"`
	MaxFieldLength     int `mapstructure:"max_field_length"`
}

// DefaultURLEncodedConfig returns conservative defaults.
func DefaultURLEncodedConfig() URLEncodedConfig {
	return URLEncodedConfig{
		MaxSize:            1 << 20,
		MaxFields:          1000,
		MaxFieldNameLength: 1024,
		MaxFieldLength:     1 << 16,
	}
}

// decodeURLEncoded decodes raw as application/x-www-form-urlencoded per
// §4.3: pairs split on '&', key/value split on the first '=', with
// malformed percent-escapes falling back to the original substring.
// Limits are checked both pre- and post-decode.
func decodeURLEncoded(raw string, cfg URLEncodedConfig) (interface{}, error) {
	if cfg.MaxSize > 0 && len(raw) > cfg.MaxSize {
		return nil, &LimitError{What: "form body size", Bound: cfg.MaxSize, Value: len(raw)}
	}

	pairs := strings.Split(raw, "&")
	if cfg.MaxFields > 0 && len(pairs) > cfg.MaxFields {
		return nil, &LimitError{What: "form field count", Bound: cfg.MaxFields, Value: len(pairs)}
	}

	out := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		if pair == "" {
			continue
		}

		var rawKey, rawValue string
		if i := strings.IndexByte(pair, '='); i >= 0 {
			rawKey, rawValue = pair[:i], pair[i+1:]
		} else {
			rawKey = pair
		}

		if cfg.MaxFieldNameLength > 0 && len(rawKey) > cfg.MaxFieldNameLength {
			return nil, &LimitError{What: "form field name length", Bound: cfg.MaxFieldNameLength, Value: len(rawKey)}
		}
		if cfg.MaxFieldLength > 0 && len(rawValue) > cfg.MaxFieldLength {
			return nil, &LimitError{What: "form field value length", Bound: cfg.MaxFieldLength, Value: len(rawValue)}
		}

		key := formDecode(rawKey)
		value := formDecode(rawValue)

		if cfg.MaxFieldNameLength > 0 && len(key) > cfg.MaxFieldNameLength {
			return nil, &LimitError{What: "form field name length", Bound: cfg.MaxFieldNameLength, Value: len(key)}
		}
		if cfg.MaxFieldLength > 0 && len(value) > cfg.MaxFieldLength {
			return nil, &LimitError{What: "form field value length", Bound: cfg.MaxFieldLength, Value: len(value)}
		}

		out[key] = value
	}

	return out, nil
}

// formDecode decodes a percent-escaped/plus-encoded form component,
// falling back to the original substring on a malformed escape (§4.3).
func formDecode(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}
