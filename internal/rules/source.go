package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	apperrors "catfill/internal/errors"
	"catfill/internal/httputil"
	"catfill/internal/logger"
)

// DefaultUsersSheet is the tab holding the authorized usernames.
const DefaultUsersSheet = "Users"

// SourceOptions configures a Source.
type SourceOptions struct {
	URL           string
	UsersSheet    string
	FallbackAdmin string
	Client        *httputil.RetryableClient
	Cache         Cache
	TTL           time.Duration
}

// Source fetches rule and user rows from a sheet published as JSON arrays.
// Concurrent fetches of the same URL share one request and successful
// payloads are cached for TTL. It is safe for concurrent use.
type Source struct {
	url           string
	usersSheet    string
	fallbackAdmin string
	client        *httputil.RetryableClient
	cache         Cache
	ttl           time.Duration
	group         singleflight.Group
}

// NewSource fills unset options with defaults: the default HTTP client, an
// in-memory cache and a five minute TTL.
func NewSource(opts SourceOptions) *Source {
	s := &Source{
		url:           opts.URL,
		usersSheet:    opts.UsersSheet,
		fallbackAdmin: strings.ToLower(strings.TrimSpace(opts.FallbackAdmin)),
		client:        opts.Client,
		cache:         opts.Cache,
		ttl:           opts.TTL,
	}
	if s.usersSheet == "" {
		s.usersSheet = DefaultUsersSheet
	}
	if s.client == nil {
		s.client = httputil.NewDefaultClient()
	}
	if s.cache == nil {
		s.cache = NewMemoryCache()
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	return s
}

// URL returns the rule sheet address.
func (s *Source) URL() string { return s.url }

// LookupResult is the outcome of a successful rule fetch. Matched is false
// when the sheet loaded but no row's keywords occur in the page.
type LookupResult struct {
	Row       Row  `json:"row"`
	Index     int  `json:"index"`
	Matched   bool `json:"matched"`
	FromCache bool `json:"from_cache"`
	RowCount  int  `json:"row_count"`
}

// Lookup fetches the rule rows and finds the first one matching values. A
// non-nil error means the rules could not be loaded; it is never returned
// just because nothing matched.
func (s *Source) Lookup(ctx context.Context, values []string) (LookupResult, error) {
	rows, fromCache, err := s.rows(ctx, s.url)
	if err != nil {
		return LookupResult{Index: -1}, apperrors.NewRuleSourceError(s.url, err)
	}

	row, idx, ok := FindMatchingRule(values, rows)
	if ok {
		logger.Rules("row %d matched (keywords %q)", idx+1, row.Keyword())
	} else {
		logger.Rules("no row matched among %d", len(rows))
	}
	return LookupResult{Row: row, Index: idx, Matched: ok, FromCache: fromCache, RowCount: len(rows)}, nil
}

// Rows returns every rule row in sheet order.
func (s *Source) Rows(ctx context.Context) ([]Row, error) {
	rows, _, err := s.rows(ctx, s.url)
	if err != nil {
		return nil, apperrors.NewRuleSourceError(s.url, err)
	}
	return rows, nil
}

// AuthorizedUsers returns the lowercased usernames from the users tab. When
// the tab cannot be loaded the fallback admin, if any, is returned together
// with the error so callers can log it and carry on.
func (s *Source) AuthorizedUsers(ctx context.Context) ([]string, error) {
	usersURL, err := UsersURL(s.url, s.usersSheet)
	if err == nil {
		var rows []Row
		if rows, _, err = s.rows(ctx, usersURL); err == nil {
			return usernames(rows), nil
		}
	}

	logger.Warn("users sheet unavailable, using fallback admin: %v", err)
	if s.fallbackAdmin == "" {
		return nil, err
	}
	return []string{s.fallbackAdmin}, err
}

// Prefetch loads the rule rows and the users tab concurrently so later calls
// are served from the cache.
func (s *Source) Prefetch(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, _, err := s.rows(ctx, s.url)
		return err
	})
	g.Go(func() error {
		usersURL, err := UsersURL(s.url, s.usersSheet)
		if err != nil {
			return err
		}
		_, _, err = s.rows(ctx, usersURL)
		return err
	})
	return g.Wait()
}

func usernames(rows []Row) []string {
	var out []string
	for _, r := range rows {
		if name := strings.ToLower(strings.TrimSpace(r.Get("username"))); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func (s *Source) rows(ctx context.Context, sheetURL string) ([]Row, bool, error) {
	if sheetURL == "" {
		return nil, false, fmt.Errorf("no sheet URL configured")
	}

	key := CacheKey(sheetURL)
	if data, err := s.cache.Get(ctx, key); err == nil {
		var rows []Row
		if err := json.Unmarshal(data, &rows); err == nil {
			logger.Rules("cache hit for %s (%d rows)", sheetURL, len(rows))
			return rows, true, nil
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		logger.Warn("rule cache read failed: %v", err)
	}

	// The shared fetch outlives any one caller; the client timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(sheetURL, func() (interface{}, error) {
		var raw json.RawMessage
		if err := s.client.GetJSON(fetchCtx, sheetURL, &raw); err != nil {
			return nil, err
		}
		var rows []Row
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("sheet is not an array of rows: %w", err)
		}
		if err := s.cache.Set(fetchCtx, key, raw, s.ttl); err != nil {
			logger.Warn("rule cache write failed: %v", err)
		}
		return rows, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		if res.Shared {
			logger.Rules("shared in-flight fetch of %s", sheetURL)
		}
		return res.Val.([]Row), false, nil
	}
}

// UsersURL swaps the last path segment of the rule sheet URL for the users
// tab name.
func UsersURL(sheetURL, usersSheet string) (string, error) {
	u, err := url.Parse(sheetURL)
	if err != nil {
		return "", err
	}
	dir := path.Dir(strings.TrimSuffix(u.Path, "/"))
	if dir == "/" || dir == "." {
		return "", fmt.Errorf("sheet URL %q has no tab segment", sheetURL)
	}
	u.Path = path.Join(dir, usersSheet)
	u.RawPath = ""
	return u.String(), nil
}

// IsAuthorized reports whether user appears in the list, ignoring case.
func IsAuthorized(user string, authorized []string) bool {
	user = strings.ToLower(strings.TrimSpace(user))
	if user == "" {
		return false
	}
	for _, a := range authorized {
		if strings.ToLower(a) == user {
			return true
		}
	}
	return false
}
