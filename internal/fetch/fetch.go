// Package fetch retrieves source documents over HTTP and verifies they are
// PDFs before any stamping work starts.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxDocumentSize caps a fetched source document at 50 MB.
const maxDocumentSize = 50 << 20

var pdfMagic = []byte("%PDF-")

type Client struct {
	HTTP *http.Client
}

func New(timeout time.Duration) *Client {
	return &Client{HTTP: &http.Client{Timeout: timeout}}
}

// Document fetches url and returns its bytes after checking status,
// declared content type, and the PDF magic signature. All failures are
// fatal for the stamping operation and carry enough detail for a user
// facing message.
func (c *Client) Document(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: unexpected status %d from source", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !acceptableContentType(ct) {
		return nil, fmt.Errorf("fetch: unexpected content type %q", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetch: empty payload")
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("fetch: document exceeds %d bytes", maxDocumentSize)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("fetch: payload is not a PDF (missing signature)")
	}
	return data, nil
}

func acceptableContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "pdf") || strings.Contains(ct, "octet-stream")
}
