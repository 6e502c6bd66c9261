package ember

// The HTTP methods recognized by the wire parser (§4.1). A request line
// naming any other token degrades to the GET default.
const (
	MethodGET     = "GET"
	MethodHEAD    = "HEAD"
	MethodPOST    = "POST"
	MethodPUT     = "PUT"
	MethodPATCH   = "PATCH"
	MethodDELETE  = "DELETE"
	MethodOPTIONS = "OPTIONS"
)

// recognizedMethods is the set the wire parser validates the request
// line's method token against.
var recognizedMethods = map[string]bool{
	MethodGET:     true,
	MethodHEAD:    true,
	MethodPOST:    true,
	MethodPUT:     true,
	MethodPATCH:   true,
	MethodDELETE:  true,
	MethodOPTIONS: true,
}
