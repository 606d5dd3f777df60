package pagebuffer

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func mustTestURL(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("http://h/t")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return u
}

func newResponse(status int, headers map[string]string, body string) *http.Response {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func countingDeserializer(pages []Page, err error) PageDeserializer {
	return func(r io.Reader) ([]Page, error) {
		io.Copy(io.Discard, r)
		return pages, err
	}
}

func TestDecode_NoContent(t *testing.T) {
	resp := newResponse(http.StatusNoContent, map[string]string{
		headerPageToken:      "3",
		headerPageNextToken:  "3",
		headerBufferComplete: "false",
	}, "")

	got, err := decode(resp, mustTestURL(t), 1<<20, countingDeserializer(nil, nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Token != 3 || got.NextToken != 3 || got.Complete || len(got.Pages) != 0 {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestDecode_NoContentMissingHeader(t *testing.T) {
	resp := newResponse(http.StatusNoContent, map[string]string{
		headerPageToken:     "3",
		headerPageNextToken: "3",
		// headerBufferComplete missing
	}, "")

	_, err := decode(resp, mustTestURL(t), 1<<20, countingDeserializer(nil, nil))
	assertTransportError(t, err, headerBufferComplete)
}

func TestDecode_NonOKStatus(t *testing.T) {
	resp := newResponse(http.StatusInternalServerError, nil, "boom")

	_, err := decode(resp, mustTestURL(t), 1<<20, countingDeserializer(nil, nil))
	var domainErr *Error
	if !errors.As(err, &domainErr) || domainErr.Kind != KindPageTransportError {
		t.Fatalf("expected KindPageTransportError, got %v", err)
	}
}

func TestDecode_WrongContentType(t *testing.T) {
	resp := newResponse(http.StatusOK, map[string]string{
		"Content-Type":       "text/plain",
		headerPageToken:      "0",
		headerPageNextToken:  "1",
		headerBufferComplete: "false",
	}, "not a page stream")

	_, err := decode(resp, mustTestURL(t), 1<<20, countingDeserializer(nil, nil))
	var domainErr *Error
	if !errors.As(err, &domainErr) || domainErr.Kind != KindPageTransportError {
		t.Fatalf("expected KindPageTransportError for mismatched content type, got %v", err)
	}
}

func TestDecode_MissingRequiredHeader(t *testing.T) {
	for _, missing := range []string{headerPageToken, headerPageNextToken, headerBufferComplete} {
		headers := map[string]string{
			"Content-Type":       pagesMediaType,
			headerPageToken:      "0",
			headerPageNextToken:  "1",
			headerBufferComplete: "false",
		}
		delete(headers, missing)

		resp := newResponse(http.StatusOK, headers, "")
		_, err := decode(resp, mustTestURL(t), 1<<20, countingDeserializer(nil, nil))
		assertTransportError(t, err, missing)
	}
}

func TestDecode_MalformedTokenHeader(t *testing.T) {
	resp := newResponse(http.StatusOK, map[string]string{
		"Content-Type":       pagesMediaType,
		headerPageToken:      "not-a-number",
		headerPageNextToken:  "1",
		headerBufferComplete: "false",
	}, "")

	_, err := decode(resp, mustTestURL(t), 1<<20, countingDeserializer(nil, nil))
	var domainErr *Error
	if !errors.As(err, &domainErr) || domainErr.Kind != KindPageTransportError {
		t.Fatalf("expected KindPageTransportError for malformed token, got %v", err)
	}
}

func TestDecode_Success(t *testing.T) {
	resp := newResponse(http.StatusOK, map[string]string{
		"Content-Type":       pagesMediaType,
		headerPageToken:      "7",
		headerPageNextToken:  "8",
		headerBufferComplete: "true",
	}, "page-body")

	want := []Page{Page("P0"), Page("P1")}
	got, err := decode(resp, mustTestURL(t), 1<<20, countingDeserializer(want, nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Token != 7 || got.NextToken != 8 || !got.Complete {
		t.Fatalf("unexpected tokens/complete: %+v", got)
	}
	if len(got.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(got.Pages))
	}
}

func TestDecode_DeserializerIOErrorWrapped(t *testing.T) {
	resp := newResponse(http.StatusOK, map[string]string{
		"Content-Type":       pagesMediaType,
		headerPageToken:      "0",
		headerPageNextToken:  "1",
		headerBufferComplete: "false",
	}, "body")

	boom := errors.New("boom")
	_, err := decode(resp, mustTestURL(t), 1<<20, countingDeserializer(nil, boom))
	if err == nil || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped deserializer error, got %v", err)
	}
	// a body I/O failure is a decode failure: it is structured as
	// KindPageTransportError, so the client treats it as fatal.
	if domainErr, ok := AsError(err); !ok || domainErr.Kind != KindPageTransportError {
		t.Fatalf("deserializer I/O error should be KindPageTransportError, got %v", err)
	}
}

func TestDecode_ResponseTooLargePropagatesUnwrapped(t *testing.T) {
	resp := newResponse(http.StatusOK, map[string]string{
		"Content-Type":       pagesMediaType,
		headerPageToken:      "0",
		headerPageNextToken:  "1",
		headerBufferComplete: "false",
	}, "body")

	_, err := decode(resp, mustTestURL(t), 1<<20, countingDeserializer(nil, ErrResponseTooLarge))
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge to propagate, got %v", err)
	}
}

func TestLimitedReader_SurfacesResponseTooLarge(t *testing.T) {
	r := newLimitedReader(bytes.NewReader([]byte("0123456789")), 4)
	buf := make([]byte, 4)
	n, err := r.Read(buf)
	if err != nil || n != 4 {
		t.Fatalf("first read: n=%d err=%v", n, err)
	}
	_, err = r.Read(buf)
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge once the limit is exhausted, got %v", err)
	}
}

func assertTransportError(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	var domainErr *Error
	if !errors.As(err, &domainErr) || domainErr.Kind != KindPageTransportError {
		t.Fatalf("expected KindPageTransportError, got %v", err)
	}
	if !strings.Contains(domainErr.Message, wantSubstr) {
		t.Fatalf("expected message to mention %q, got %q", wantSubstr, domainErr.Message)
	}
}
