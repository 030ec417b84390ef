// Package source turns a file path or URL into the ordered URL sequence a
// run probes: read, optionally decompress and decode, then parse.
package source

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/hamed0406/pingsweep/internal/domain"
)

// Options selects the optional steps applied to the raw input.
type Options struct {
	Gzip    bool
	Sitemap bool
	Charset string
	// Client fetches remote inputs; http.DefaultClient with FetchTimeout
	// when nil.
	Client *http.Client
}

const FetchTimeout = 30 * time.Second

// Charsets accepted by Options.Charset, besides the empty string.
var Charsets = []string{"utf-8", "gbk", "gb18030"}

// Resolve reads pathOrURL and returns its URLs in input order. Every failure
// wraps domain.ErrInput.
func Resolve(ctx context.Context, pathOrURL string, opts Options) ([]string, error) {
	raw, err := Read(ctx, pathOrURL, opts.Client)
	if err != nil {
		return nil, inputErr("cannot read file", err)
	}
	if opts.Gzip {
		if raw, err = Decompress(raw); err != nil {
			return nil, inputErr("cannot unzip file", err)
		}
	}
	if opts.Sitemap {
		// a sitemap names its own encoding in the XML declaration
		urls, err := ParseSitemap(raw)
		if err != nil {
			return nil, inputErr("cannot parse file", err)
		}
		return urls, nil
	}
	if raw, err = Decode(raw, opts.Charset); err != nil {
		return nil, inputErr("cannot decode file", err)
	}
	return ParseLines(raw), nil
}

func inputErr(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrInput, step, err)
}

func isRemote(pathOrURL string) bool {
	return strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://")
}

// Read loads a local file, or fetches an http(s) URL expecting 200 OK.
func Read(ctx context.Context, pathOrURL string, client *http.Client) ([]byte, error) {
	if !isRemote(pathOrURL) {
		return os.ReadFile(pathOrURL)
	}
	if client == nil {
		client = http.DefaultClient
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, FetchTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pathOrURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", pathOrURL, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Decompress accepts a gzip stream, falling back to zlib.
func Decompress(b []byte) ([]byte, error) {
	zr, gzErr := gzip.NewReader(bytes.NewReader(b))
	if gzErr == nil {
		defer zr.Close()
		return io.ReadAll(zr)
	}
	fr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, gzErr
	}
	defer fr.Close()
	return io.ReadAll(fr)
}

// Decode converts b from charset to UTF-8. Empty or "utf-8" is a no-op.
func Decode(b []byte, charset string) ([]byte, error) {
	enc, err := lookupCharset(charset)
	if err != nil || enc == nil {
		return b, err
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), b)
	return out, err
}

// ValidCharset reports whether Decode understands charset.
func ValidCharset(charset string) bool {
	_, err := lookupCharset(charset)
	return err == nil
}

func lookupCharset(charset string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "gbk":
		return simplifiedchinese.GBK, nil
	case "gb18030":
		return simplifiedchinese.GB18030, nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
}

type urlset struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// ParseSitemap returns the <loc> of every <url> under <urlset>, in order.
func ParseSitemap(b []byte) ([]string, error) {
	var set urlset
	dec := xml.NewDecoder(bytes.NewReader(b))
	dec.CharsetReader = func(label string, in io.Reader) (io.Reader, error) {
		enc, err := lookupCharset(label)
		if err != nil || enc == nil {
			return in, err
		}
		return transform.NewReader(in, enc.NewDecoder()), nil
	}
	if err := dec.Decode(&set); err != nil {
		return nil, err
	}
	if len(set.URLs) == 0 {
		return nil, fmt.Errorf("no <url> entries in sitemap")
	}
	out := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		out = append(out, strings.TrimSpace(u.Loc))
	}
	return out, nil
}

// ParseLines returns one URL per non-blank line, trimmed.
func ParseLines(b []byte) []string {
	var out []string
	for _, line := range strings.Split(string(b), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
