package httpengine

// reasonPhrases maps status codes to their standard reason phrase. Only a
// subset of the standard codes is listed; any other code maps to "Unknown".
var reasonPhrases = map[int]string{
	200: "OK",
	204: "No Content",

	400: "Bad Request",
	401: "Unauthorized",
	404: "Not Found",
	405: "Method Not Allowed",
	408: "Request Timeout",
	411: "Length Required",

	500: "Internal Server Error",
	501: "Not Implemented",
	505: "HTTP Version Not Supported",
}

func reasonPhrase(code int) string {
	if p, ok := reasonPhrases[code]; ok {
		return p
	}
	return "Unknown"
}
