package validation

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/sandeepkv93/catalog-console/internal/observability"
)

var (
	ErrNotImage    = errors.New("resource is not a decodable image")
	ErrProbeStatus = errors.New("image request returned a non-success status")
)

const sniffLen = 1024

// ImageProber checks that an address serves a loadable image.
type ImageProber interface {
	Probe(ctx context.Context, rawURL string) error
}

// HTTPProber fetches the resource and decodes its header with the
// registered image decoders.
type HTTPProber struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewHTTPProber builds a prober. A zero timeout leaves probes bounded only
// by the caller's context.
func NewHTTPProber(client *http.Client, timeout time.Duration, maxBytes int64, logger *slog.Logger) *HTTPProber {
	if client == nil {
		client = &http.Client{}
	}
	if timeout > 0 {
		c := *client
		c.Timeout = timeout
		client = &c
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPProber{client: client, maxBytes: maxBytes, logger: logger}
}

func (p *HTTPProber) Probe(ctx context.Context, rawURL string) (err error) {
	start := time.Now()
	defer func() {
		outcome := "loaded"
		switch {
		case errors.Is(err, ErrNotImage):
			outcome = "not_image"
		case errors.Is(err, ErrProbeStatus):
			outcome = "http_error"
		case err != nil:
			outcome = "error"
		}
		observability.RecordProbeResult(ctx, outcome, time.Since(start))
		if err != nil {
			p.logger.DebugContext(ctx, "image probe failed", "url", rawURL, "outcome", outcome, "error", err)
		}
	}()

	target := ProbeTarget(rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrProbeStatus, resp.StatusCode)
	}

	if mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && mediaType == "text/html" {
		return fmt.Errorf("%w: content type %s", ErrNotImage, mediaType)
	}

	br := bufio.NewReaderSize(io.LimitReader(resp.Body, p.maxBytes), sniffLen)
	head, _ := br.Peek(sniffLen)
	if isSVG(head) {
		return nil
	}
	if _, _, err := image.DecodeConfig(br); err != nil {
		return fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return nil
}

// isSVG reports whether the document root is an <svg> element. Leading
// whitespace, the XML declaration, processing instructions, comments and a
// DOCTYPE naming svg may precede it.
func isSVG(head []byte) bool {
	rest := bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	for {
		rest = bytes.TrimLeft(rest, " \t\r\n")
		lower := bytes.ToLower(rest)
		switch {
		case bytes.HasPrefix(lower, []byte("<?")):
			end := bytes.Index(rest, []byte("?>"))
			if end < 0 {
				return false
			}
			rest = rest[end+2:]
		case bytes.HasPrefix(lower, []byte("<!--")):
			end := bytes.Index(rest[4:], []byte("-->"))
			if end < 0 {
				return false
			}
			rest = rest[4+end+3:]
		case bytes.HasPrefix(lower, []byte("<!doctype")):
			decl := bytes.TrimLeft(lower[len("<!doctype"):], " \t\r\n")
			if !bytes.HasPrefix(decl, []byte("svg")) {
				return false
			}
			end := doctypeEnd(rest)
			if end < 0 {
				return false
			}
			rest = rest[end:]
		default:
			if !bytes.HasPrefix(lower, []byte("<svg")) || len(lower) == len("<svg") {
				return false
			}
			switch lower[len("<svg")] {
			case ' ', '\t', '\r', '\n', '>', '/':
				return true
			}
			return false
		}
	}
}

// doctypeEnd returns the offset just past the DOCTYPE declaration, skipping
// an internal subset in brackets.
func doctypeEnd(b []byte) int {
	depth := 0
	for i, c := range b {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
		case '>':
			if depth <= 0 {
				return i + 1
			}
		}
	}
	return -1
}
