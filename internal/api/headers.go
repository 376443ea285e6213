package api

import "net/http"

// Version is reported in the User-Agent header.
var Version = "dev"

// Common request headers.
var baseHeaders = map[string]string{
	"accept": "application/json",
	// Note: Do NOT set Accept-Encoding manually. Go's http.Transport handles
	// gzip automatically and transparently decompresses the response body,
	// but only when Accept-Encoding is not set by the caller.
}

func setHeaders(req *http.Request) {
	for k, v := range baseHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", "voiceup/"+Version)
}
