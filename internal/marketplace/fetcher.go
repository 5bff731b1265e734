package marketplace

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/egoavara/bitrix-console/internal/version"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultTimeout bounds a single catalog request
const DefaultTimeout = 30 * time.Second

var (
	// ErrNoModulesFound is returned when no free or trial module was listed
	ErrNoModulesFound = errors.New("free or trial versions of the modules have not been found")
	// ErrFetchTimeout matches requests that exceeded the fetcher timeout
	ErrFetchTimeout = errors.New("marketplace request timed out")
)

// FetchError describes a failed catalog request
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Progress receives pagination progress
type Progress interface {
	Start(total int)
	Advance()
	Clear()
}

type nopProgress struct{}

func (nopProgress) Start(int) {}
func (nopProgress) Advance()  {}
func (nopProgress) Clear()    {}

// Catalog is the result of a full fetch
type Catalog struct {
	Category string // category name reported by the first page, if any
	Modules  *Modules
	Pages    int // number of requests issued
}

// Fetcher pages through a marketplace module listing
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	logger   *zap.Logger
	progress Progress
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithProgress sets the pagination progress sink
func WithProgress(progress Progress) Option {
	return func(f *Fetcher) {
		f.progress = progress
	}
}

// NewFetcher creates a fetcher with the given options
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   http.DefaultClient,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
		progress: nopProgress{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch requests every page of the listing at base and collects free and
// trial modules. Pagination follows the navData of each page and stops at
// the last page or at the first page without usable navData.
func (f *Fetcher) Fetch(ctx context.Context, base *url.URL) (*Catalog, error) {
	query := base.Query()
	query.Set("update_sys_new", "Y")
	query.Set(PageParamPrefix+"1", "1")

	catalog := &Catalog{Modules: NewModules()}
	started := false
	lastPage := 0

	defer f.progress.Clear()

	for {
		pageURL := *base
		pageURL.RawQuery = query.Encode()

		f.logger.Debug("fetching catalog page", zap.String("url", pageURL.String()))

		page, err := f.fetchPage(ctx, &pageURL)
		if err != nil {
			return nil, err
		}

		if catalog.Pages == 0 {
			catalog.Category = strings.TrimSpace(page.CategoryName)
		}
		catalog.Pages++

		for _, item := range page.Items {
			code := strings.TrimSpace(item.Code)
			if code == "" || !item.Eligible() {
				continue
			}
			catalog.Modules.Set(code, strings.TrimSpace(item.Name))
		}

		nav, ok := ParseNavigation(page.NavData)
		if ok {
			if !started {
				f.progress.Start(nav.PageCount)
				started = true
			}
			query.Set(nav.PageParam(), strconv.Itoa(nav.PageNumber+1))
		} else {
			f.logger.Debug("no navigation data, treating page as last", zap.String("url", pageURL.String()))
		}
		f.progress.Advance()

		if !ok || !nav.HasNext() {
			break
		}
		if nav.PageNumber <= lastPage {
			f.logger.Warn("catalog did not advance, stopping pagination",
				zap.Int("page", nav.PageNumber),
				zap.Int("pages", nav.PageCount),
			)
			break
		}
		lastPage = nav.PageNumber
	}

	if catalog.Modules.Len() == 0 {
		return nil, ErrNoModulesFound
	}
	return catalog, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, pageURL *url.URL) (*catalogPage, error) {
	reqCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL.String(), Err: err}
	}
	req.Header.Set("Accept", "application/xml, text/xml")
	req.Header.Set("User-Agent", "bitrix-console/"+version.Version)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.requestError(ctx, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: pageURL.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, f.requestError(ctx, pageURL, err)
	}

	page, err := decodePage(body)
	if err != nil {
		return nil, &FetchError{URL: pageURL.String(), Err: err}
	}
	return page, nil
}

// requestError maps transport failures, separating our own timeout from
// cancellation of the parent context.
func (f *Fetcher) requestError(ctx context.Context, pageURL *url.URL, err error) error {
	if ctx.Err() != nil {
		return &FetchError{URL: pageURL.String(), Err: ctx.Err()}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{
			URL: pageURL.String(),
			Err: fmt.Errorf("%w after %s: %w", ErrFetchTimeout, f.timeout, err),
		}
	}
	return &FetchError{URL: pageURL.String(), Err: err}
}

func decodePage(body []byte) (*catalogPage, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charsetReader

	var page catalogPage
	if err := dec.Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to parse catalog page: %w", err)
	}
	return &page, nil
}

// charsetReader decodes non UTF-8 documents, e.g. windows-1251 listings.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
