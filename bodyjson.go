package ember

import "encoding/json"

// JSONConfig bounds the application/json body decoder (§4.3, §6).
type JSONConfig struct {
	MaxSize                  int  `mapstructure:"max_size"`
	MaxDepth                 int  `mapstructure:"max_depth"`
	MaxKeys                  int  `mapstructure:"max_keys"`
	MaxStringLength          int  `mapstructure:"max_string_length"`
	MaxArrayLength           int  `mapstructure:"max_array_length"`
	AllowPrototypeProperties bool `mapstructure:"allow_prototype_properties"`
}

// DefaultJSONConfig returns conservative defaults generous enough for
// ordinary API payloads but bounded against pathological input.
func DefaultJSONConfig() JSONConfig {
	return JSONConfig{
		MaxSize:                  1 << 20, // 1 MiB
		MaxDepth:                 32,
		MaxKeys:                  1000,
		MaxStringLength:          1 << 16, // 64 KiB
		MaxArrayLength:           10000,
		AllowPrototypeProperties: false,
	}
}

// dangerousKeys are the object keys that, when AllowPrototypeProperties is
// false, trigger a prototype-pollution rejection (§4.3).
var dangerousKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// isValidJSON reports whether s parses as JSON, used by the content-type
// inference step (§4.3) to confirm a brace/bracket-bounded body is
// actually JSON rather than merely JSON-shaped.
func isValidJSON(s string) bool {
	var v interface{}
	return json.Unmarshal([]byte(s), &v) == nil
}

// decodeJSON decodes raw as application/json and validates it against cfg
// via a recursive walk after a standard decode (§4.3).
func decodeJSON(raw string, cfg JSONConfig) (interface{}, error) {
	if cfg.MaxSize > 0 && len(raw) > cfg.MaxSize {
		return nil, &LimitError{What: "JSON body size", Bound: cfg.MaxSize, Value: len(raw)}
	}

	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}

	if err := validateJSONValue(v, cfg, 1); err != nil {
		return nil, err
	}

	return v, nil
}

// validateJSONValue recursively walks a decoded JSON value, enforcing
// MaxDepth (root depth is 1), MaxKeys per object, MaxStringLength (keys
// and string values), MaxArrayLength, and the prototype-pollution guard.
func validateJSONValue(v interface{}, cfg JSONConfig, depth int) error {
	if cfg.MaxDepth > 0 && depth > cfg.MaxDepth {
		return &LimitError{What: "JSON nesting depth", Bound: cfg.MaxDepth, Value: depth}
	}

	switch val := v.(type) {
	case map[string]interface{}:
		if cfg.MaxKeys > 0 && len(val) > cfg.MaxKeys {
			return &LimitError{What: "JSON object key count", Bound: cfg.MaxKeys, Value: len(val)}
		}

		for key, child := range val {
			if !cfg.AllowPrototypeProperties && dangerousKeys[key] {
				return errPrototypePollution
			}

			if cfg.MaxStringLength > 0 && len(key) > cfg.MaxStringLength {
				return &LimitError{What: "JSON key length", Bound: cfg.MaxStringLength, Value: len(key)}
			}

			if err := validateJSONValue(child, cfg, depth+1); err != nil {
				return err
			}
		}

	case []interface{}:
		if cfg.MaxArrayLength > 0 && len(val) > cfg.MaxArrayLength {
			return &LimitError{What: "JSON array length", Bound: cfg.MaxArrayLength, Value: len(val)}
		}

		for _, child := range val {
			if err := validateJSONValue(child, cfg, depth+1); err != nil {
				return err
			}
		}

	case string:
		if cfg.MaxStringLength > 0 && len(val) > cfg.MaxStringLength {
			return &LimitError{What: "JSON string length", Bound: cfg.MaxStringLength, Value: len(val)}
		}
	}

	return nil
}

var errPrototypePollution = &securityError{message: "prototype pollution attempt detected"}

// securityError marks the fatal security-violation errors named in §7:
// prototype pollution, blocked file extensions, CRLF injection, and the
// CORS wildcard+credentials misconfiguration.
type securityError struct {
	message string
}

func (e *securityError) Error() string {
	return "ember: " + e.message
}
