package ember

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CORSOrigin is the tagged-variant dispatch for the `cors.origin` config
// field (§4.7, §9 "CORS config polymorphism"): literal "*", a single
// string, a list of strings, a compiled regular expression, or a
// predicate callable. Exactly one of the fields should be set; Wildcard
// takes priority, then Predicate, then Pattern, then List, then Single.
type CORSOrigin struct {
	Wildcard  bool
	Single    string
	List      []string
	Pattern   *regexp.Regexp
	Predicate func(origin string) bool
}

// WildcardOrigin returns the CORSOrigin matching any origin.
func WildcardOrigin() CORSOrigin { return CORSOrigin{Wildcard: true} }

// SingleOrigin returns a CORSOrigin matching one origin, case-insensitively.
func SingleOrigin(origin string) CORSOrigin { return CORSOrigin{Single: origin} }

// OriginList returns a CORSOrigin matching any of the given origins,
// case-insensitively.
func OriginList(origins ...string) CORSOrigin { return CORSOrigin{List: origins} }

// OriginPattern returns a CORSOrigin matching origins via a full-string
// regular expression match.
func OriginPattern(re *regexp.Regexp) CORSOrigin { return CORSOrigin{Pattern: re} }

// OriginPredicate returns a CORSOrigin delegating to an arbitrary
// predicate function.
func OriginPredicate(f func(origin string) bool) CORSOrigin { return CORSOrigin{Predicate: f} }

// isAllowed dispatches on the tagged variant (§9) to decide whether
// origin is authorized.
func (o CORSOrigin) isAllowed(origin string) bool {
	switch {
	case o.Wildcard:
		return true
	case o.Predicate != nil:
		return o.Predicate(origin)
	case o.Pattern != nil:
		full := regexp.MustCompile(`^(?:` + o.Pattern.String() + `)$`)
		return full.MatchString(origin)
	case len(o.List) > 0:
		for _, candidate := range o.List {
			if strings.EqualFold(candidate, origin) {
				return true
			}
		}
		return false
	default:
		return strings.EqualFold(o.Single, origin)
	}
}

// CORSConfig is the `cors` configuration record (§4.7, §6).
type CORSConfig struct {
	Enabled              bool       `mapstructure:"enabled"`
	Origin               CORSOrigin `mapstructure:"-"`
	Credentials          bool       `mapstructure:"credentials"`
	Methods              []string   `mapstructure:"methods"`
	AllowedHeaders       []string   `mapstructure:"allowed_headers"`
	ExposedHeaders       []string   `mapstructure:"exposed_headers"`
	MaxAge               int        `mapstructure:"max_age"`
	OptionsSuccessStatus int        `mapstructure:"options_success_status"`
	PreflightContinue    bool       `mapstructure:"preflight_continue"`
}

// DefaultCORSConfig returns CORS disabled, matching the teacher's
// opt-in posture for cross-origin behavior.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:              false,
		Origin:               SingleOrigin(""),
		OptionsSuccessStatus: 204,
	}
}

// errWildcardWithCredentials is the fatal configuration error raised
// when origin "*" is combined with credentials (§4.7, §7).
var errWildcardWithCredentials = &securityError{
	message: "CORS configuration error: origin \"*\" cannot be combined with credentials",
}

// corsGate implements §4.7's CORS handler, invoked as step 1 of the
// pipeline driver (§4.6). It returns handled=true when the pipeline
// must stop and finalize immediately (preflight short-circuit, or an
// unauthorized-origin OPTIONS rejection).
func corsGate(ctx *Context, cfg CORSConfig) (handled bool, err error) {
	if !cfg.Enabled {
		return false, nil
	}

	if cfg.Origin.Wildcard && cfg.Credentials {
		return false, errWildcardWithCredentials
	}

	origin := ctx.Request.Header("Origin")
	authorized := cfg.Origin.isAllowed(origin)

	if !authorized {
		if ctx.Request.Method == MethodOPTIONS {
			ctx.Response.SetStatusCode(403)
			ctx.Response.SetBody(JSONMap{
				"error":  "CORS: Origin not allowed",
				"origin": origin,
			})
			return true, nil
		}
		return false, nil
	}

	allowOrigin := origin
	if cfg.Origin.Wildcard {
		allowOrigin = "*"
	}

	if ctx.Request.Method != MethodOPTIONS {
		ctx.Response.AddHeaders(map[string]string{
			"Access-Control-Allow-Origin":      allowOrigin,
			"Access-Control-Allow-Credentials": strconv.FormatBool(cfg.Credentials),
		})
		return false, nil
	}

	headers := map[string]string{
		"Access-Control-Allow-Origin":      allowOrigin,
		"Access-Control-Allow-Methods":     strings.Join(cfg.Methods, ", "),
		"Access-Control-Allow-Headers":     strings.Join(cfg.AllowedHeaders, ", "),
		"Access-Control-Expose-Headers":    strings.Join(cfg.ExposedHeaders, ", "),
		"Access-Control-Allow-Credentials": strconv.FormatBool(cfg.Credentials),
		"Access-Control-Max-Age":           fmt.Sprintf("%d", cfg.MaxAge),
	}
	ctx.Response.AddHeaders(headers)

	status := cfg.OptionsSuccessStatus
	if status == 0 {
		status = 204
	}
	ctx.Response.SetStatusCode(status)

	if !cfg.PreflightContinue {
		ctx.Response.SetBody("")
		return true, nil
	}

	return false, nil
}
