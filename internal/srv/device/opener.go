package device

import (
	"bytes"
	"context"
	"fmt"
	"github.com/jypelle/solfeggio/internal/version"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
)

// SchemeOpener streams the content of a custom scheme source (ex: mifasol://).
type SchemeOpener func(source *url.URL) (io.ReadCloser, error)

// SourceOpener resolves a journey source into audio bytes.
type SourceOpener struct {
	lock       sync.RWMutex
	httpClient *http.Client
	schemes    map[string]SchemeOpener
}

func NewSourceOpener(httpClient *http.Client) *SourceOpener {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SourceOpener{
		httpClient: httpClient,
		schemes:    make(map[string]SchemeOpener),
	}
}

func (o *SourceOpener) RegisterScheme(scheme string, opener SchemeOpener) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.schemes[scheme] = opener
}

// Open returns the whole content of source, loaded in memory so that decoders can seek.
func (o *SourceOpener) Open(ctx context.Context, source string) (*bytes.Reader, error) {
	reader, err := o.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("Unable to read %s: %v", source, err)
	}
	return bytes.NewReader(content), nil
}

func (o *SourceOpener) open(ctx context.Context, source string) (io.ReadCloser, error) {
	sourceUrl, err := url.Parse(source)
	if err != nil || sourceUrl.Scheme == "" || len(sourceUrl.Scheme) == 1 {
		// Plain path (a one letter scheme is a windows drive)
		return openFile(source)
	}

	switch strings.ToLower(sourceUrl.Scheme) {
	case "file":
		return openFile(sourceUrl.Path)
	case "http", "https":
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("Unable to request %s: %v", source, err)
		}
		request.Header.Set("User-Agent", version.AppVersion.UserAgent())
		response, err := o.httpClient.Do(request)
		if err != nil {
			return nil, fmt.Errorf("Unable to request %s: %v", source, err)
		}
		if response.StatusCode != http.StatusOK {
			response.Body.Close()
			return nil, fmt.Errorf("Unable to request %s: %s", source, response.Status)
		}
		return response.Body, nil
	}

	o.lock.RLock()
	opener, ok := o.schemes[sourceUrl.Scheme]
	o.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("Unsupported source scheme %s", sourceUrl.Scheme)
	}
	return opener(sourceUrl)
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Unable to open %s: %v", path, err)
	}
	return f, nil
}
