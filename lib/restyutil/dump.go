// Package restyutil dumps the http exchanges of a resty client for debugging.
package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

const redacted = "<redacted>"

var sensitiveHeaders = []string{"Cookie", "Set-Cookie", "Authorization"}

// Dump writes every response received by client to out, along with the
// request that produced it. Credentials in headers are redacted.
func Dump(client *resty.Client, out Output) {
	var counter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		n := atomic.AddUint64(&counter, 1)
		out.Write(dumpName(n, res.Request), FormatExchange(res))
		return nil
	})
}

func dumpName(n uint64, req *resty.Request) string {
	path := req.URL
	if req.RawRequest != nil {
		path = req.RawRequest.URL.Path
	}
	path = strings.Trim(strings.ReplaceAll(path, "/", "_"), "_")
	return fmt.Sprintf("%03d_%s_%s.txt", n, strings.ToLower(req.Method), path)
}

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var out strings.Builder
	for _, k := range keys {
		for _, v := range headers[k] {
			if slices.Contains(sensitiveHeaders, http.CanonicalHeaderKey(k)) {
				v = redacted
			}
			fmt.Fprintf(&out, "%s: %s\n", k, v)
		}
	}
	return strings.TrimSuffix(out.String(), "\n")
}

func formatRequestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil || req.Body == nil || req.Body == http.NoBody {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	if body == nil {
		return ""
	}
	defer body.Close()
	read, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	return string(read)
}

// FormatExchange renders a response and its request as plain text.
func FormatExchange(res *resty.Response) string {
	var out strings.Builder

	out.WriteString("---- REQUEST ----\n\n")
	fmt.Fprintf(&out, "%s %s\n\n", res.Request.Method, res.Request.URL)
	if raw := res.Request.RawRequest; raw != nil {
		out.WriteString(formatHeaders(raw.Header))
		out.WriteString("\n\n")
		out.WriteString(formatRequestBody(raw))
		out.WriteString("\n\n")
	}

	out.WriteString("---- RESPONSE ----\n\n")
	fmt.Fprintf(&out, "%d %s\n\n", res.StatusCode(), res.Request.URL)
	out.WriteString(formatHeaders(res.Header()))
	out.WriteString("\n\n")
	out.WriteString(res.String())

	return out.String()
}
