package pagebuffer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Header names on the wire surface.
const (
	headerMaxSize        = "X-Presto-Max-Size"
	headerPageToken      = "X-Presto-Page-Token"
	headerPageNextToken  = "X-Presto-Page-Next-Token"
	headerBufferComplete = "X-Presto-Buffer-Complete"
)

// pagesMediaType is the expected Content-Type for a non-empty GET
// response. Anything else on a 200 is treated as an error page served
// under a success status.
const pagesMediaType = "application/x-presto-pages"

// PageDeserializer turns a response body into an ordered list of pages.
// It is supplied by the owner (the page format itself is out of scope for
// this package); r is closed by the caller, not by the deserializer.
type PageDeserializer func(r io.Reader) ([]Page, error)

// ErrResponseTooLarge is the sentinel a Transport should wrap or return
// when a GET response exceeds the MaxResponseSize requested via the
// X-Presto-Max-Size header. The client rewrites it to the fatal
// KindPageTooLarge error regardless of how long the current error streak
// has been running.
var ErrResponseTooLarge = fmt.Errorf("pagebuffer: response exceeded maximum size")

// Transport is the HTTP surface the Client consumes. Implementations own
// connection pooling, TLS, and per-request timeouts; a timed-out request
// should surface as any other transient error from GetPages/Delete so it
// drives the same backoff/promotion path. The default implementation is
// HTTPTransport.
type Transport interface {
	// GetPages issues "GET <uri>/<token>" with the Max-Size header set
	// to maxResponseSize, and decodes the response via decode.
	GetPages(ctx context.Context, uri *url.URL, token uint64, maxResponseSize int64, deserialize PageDeserializer) (PagesResponse, error)

	// Delete issues "DELETE <uri>" and succeeds on any 2xx status.
	Delete(ctx context.Context, uri *url.URL) error
}

// HTTPTransport is the default net/http-backed Transport: a minimal
// concrete adapter so the package is usable without the owner supplying
// their own. It splits connection handling (a plain *http.Client) from
// the decoding layered on top.
type HTTPTransport struct {
	HTTPClient *http.Client
}

// NewHTTPTransport returns an HTTPTransport using http.DefaultClient if
// client is nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{HTTPClient: client}
}

func (t *HTTPTransport) GetPages(ctx context.Context, uri *url.URL, token uint64, maxResponseSize int64, deserialize PageDeserializer) (PagesResponse, error) {
	getURI := *uri
	getURI.Path = strings.TrimSuffix(getURI.Path, "/") + "/" + strconv.FormatUint(token, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, getURI.String(), nil)
	if err != nil {
		return PagesResponse{}, err
	}
	req.Header.Set(headerMaxSize, strconv.FormatInt(maxResponseSize, 10))

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return PagesResponse{}, err
	}
	return decode(resp, &getURI, maxResponseSize, deserialize)
}

func (t *HTTPTransport) Delete(ctx context.Context, uri *url.URL) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, uri.String(), nil)
	if err != nil {
		return err
	}
	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return transportError(uri, "expected 2xx response to DELETE, got %d %s", resp.StatusCode, resp.Status)
	}
	return nil
}

// decode parses one HTTP response into a PagesResponse, enforcing
// headers, status, and content type. The response body is closed on
// every exit path.
func decode(resp *http.Response, uri *url.URL, maxResponseSize int64, deserialize PageDeserializer) (PagesResponse, error) {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		token, err := requireUintHeader(resp.Header, headerPageToken, uri)
		if err != nil {
			return PagesResponse{}, err
		}
		nextToken, err := requireUintHeader(resp.Header, headerPageNextToken, uri)
		if err != nil {
			return PagesResponse{}, err
		}
		complete, err := requireBoolHeader(resp.Header, headerBufferComplete, uri)
		if err != nil {
			return PagesResponse{}, err
		}
		return EmptyPagesResponse(token, nextToken, complete), nil
	}

	if resp.StatusCode != http.StatusOK {
		return PagesResponse{}, transportError(uri, "expected response code to be 200, but was %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || !mediaTypeMatches(contentType, pagesMediaType) {
		return PagesResponse{}, transportError(uri, "expected %s response from server but got %q", pagesMediaType, contentType)
	}

	token, err := requireUintHeader(resp.Header, headerPageToken, uri)
	if err != nil {
		return PagesResponse{}, err
	}
	nextToken, err := requireUintHeader(resp.Header, headerPageNextToken, uri)
	if err != nil {
		return PagesResponse{}, err
	}
	complete, err := requireBoolHeader(resp.Header, headerBufferComplete, uri)
	if err != nil {
		return PagesResponse{}, err
	}

	pages, err := deserialize(newLimitedReader(resp.Body, maxResponseSize))
	if err != nil {
		if errors.Is(err, ErrResponseTooLarge) {
			return PagesResponse{}, err
		}
		bodyErr := transportError(uri, "decode body from %s", uri)
		bodyErr.Err = err
		return PagesResponse{}, bodyErr
	}

	return NewPagesResponse(token, nextToken, pages, complete), nil
}

// limitedReader caps how many bytes a PageDeserializer may read from a
// response body, surfacing ErrResponseTooLarge instead of silently
// truncating once the maxResponseSize budget is exceeded. A body of
// exactly maxResponseSize bytes still ends in io.EOF. The client's
// failure continuation rewrites this into the fatal KindPageTooLarge
// error regardless of error-streak duration.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func newLimitedReader(r io.Reader, limit int64) *limitedReader {
	return &limitedReader{r: r, remaining: limit}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		var probe [1]byte
		if n, err := l.r.Read(probe[:]); n == 0 && err == io.EOF {
			return 0, io.EOF
		}
		return 0, ErrResponseTooLarge
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}

func requireUintHeader(h http.Header, name string, uri *url.URL) (uint64, error) {
	v := h.Get(name)
	if v == "" {
		return 0, transportError(uri, "expected %s header", name)
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, transportError(uri, "malformed %s header: %v", name, err)
	}
	return n, nil
}

func requireBoolHeader(h http.Header, name string, uri *url.URL) (bool, error) {
	v := h.Get(name)
	if v == "" {
		return false, transportError(uri, "expected %s header", name)
	}
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, transportError(uri, "malformed %s header: %q", name, v)
	}
}

func mediaTypeMatches(value, expected string) bool {
	parsed, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed, expected)
}
