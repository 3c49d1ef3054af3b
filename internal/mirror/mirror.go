package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// articlesJob is the manifest job that carries the page-article XML stream.
const articlesJob = "articlesdump"

// maxManifestBytes caps how much of a manifest response is read.
const maxManifestBytes = 8 << 20

// FileEntry describes one dump file, either remote or on the local filesystem.
// Exactly one of URL and Path is set.
type FileEntry struct {
	// Name is the bare file name, e.g. "hrwiki-20260801-pages-articles.xml.bz2".
	Name string
	// URL is the absolute download URL for remote entries.
	URL string
	// Path is the filesystem path for local entries.
	Path string
	// Size is the advertised size in bytes, zero when unknown.
	Size int64
	// MD5 and SHA1 are hex digests advertised by the mirror, empty when unknown.
	MD5  string
	SHA1 string
}

// Remote reports whether the entry must be downloaded.
func (f FileEntry) Remote() bool {
	return f.URL != ""
}

// Dump is an ordered list of dump files making up one extraction run.
type Dump struct {
	// Language is the wiki language code, empty for local dumps.
	Language string
	// Version is the dump date stamp or "latest", empty for local dumps.
	Version string
	// Files are processed in order. Ordering matters because article IDs
	// ascend across split dump files.
	Files []FileEntry
}

// Resolver fetches and interprets dumpstatus.json manifests.
type Resolver struct {
	base      string
	client    *http.Client
	userAgent string
}

// Option sets an option on a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the HTTP client used for manifest requests.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithUserAgent sets the User-Agent header sent to the mirror.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		r.userAgent = ua
	}
}

// NewResolver creates a Resolver for the given mirror base URL,
// e.g. "https://dumps.wikimedia.org/".
func NewResolver(base string, opts ...Option) *Resolver {
	r := &Resolver{
		base:   strings.TrimRight(base, "/"),
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// manifest mirrors the subset of dumpstatus.json this program consumes.
type manifest struct {
	Jobs map[string]manifestJob `json:"jobs"`
}

type manifestJob struct {
	Status string                  `json:"status"`
	Files  map[string]manifestFile `json:"files"`
}

type manifestFile struct {
	Size int64  `json:"size"`
	URL  string `json:"url"`
	MD5  string `json:"md5"`
	SHA1 string `json:"sha1"`
}

// Resolve fetches the manifest for a language and version and returns the
// ordered article dump files. It returns ErrDumpNotReady when the mirror has
// not finished producing the dump yet.
func (r *Resolver) Resolve(ctx context.Context, lang, version string) (*Dump, error) {
	manifestURL := fmt.Sprintf("%s/%swiki/%s/dumpstatus.json", r.base, lang, version)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build manifest request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only response body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s from %s", ErrStatusNotOK, resp.Status, manifestURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	job, ok := m.Jobs[articlesJob]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoArticlesJob, lang, version)
	}
	if job.Status != "done" {
		return nil, fmt.Errorf("%w: job status %q", ErrDumpNotReady, job.Status)
	}
	if len(job.Files) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoFiles, lang, version)
	}

	dump := &Dump{
		Language: lang,
		Version:  version,
		Files:    make([]FileEntry, 0, len(job.Files)),
	}
	for name, f := range job.Files {
		fileURL, err := r.fileURL(lang, version, name, f.URL)
		if err != nil {
			return nil, err
		}
		dump.Files = append(dump.Files, FileEntry{
			Name: name,
			URL:  fileURL,
			Size: f.Size,
			MD5:  f.MD5,
			SHA1: f.SHA1,
		})
	}
	sortEntries(dump.Files)

	return dump, nil
}

// fileURL builds the absolute download URL for a dump file. Manifest URLs are
// rooted at the mirror host ("/hrwiki/20260801/..."), so they are resolved
// against the configured base rather than trusted verbatim.
func (r *Resolver) fileURL(lang, version, name, manifestURL string) (string, error) {
	if manifestURL == "" {
		return fmt.Sprintf("%s/%swiki/%s/%s", r.base, lang, version, name), nil
	}

	base, err := url.Parse(r.base + "/")
	if err != nil {
		return "", fmt.Errorf("parse mirror base: %w", err)
	}
	ref, err := url.Parse(manifestURL)
	if err != nil {
		return "", fmt.Errorf("parse manifest file url %q: %w", manifestURL, err)
	}

	return base.ResolveReference(ref).String(), nil
}

// LocalDump wraps a local dump file, or a directory of dump files, into a Dump.
// Directory entries are limited to .bz2 and .xml files and ordered the same
// way remote dump files are.
func LocalDump(path string) (*Dump, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat dump path: %w", err)
	}

	if !info.IsDir() {
		return &Dump{
			Files: []FileEntry{{
				Name: filepath.Base(path),
				Path: path,
				Size: info.Size(),
			}},
		}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dump directory: %w", err)
	}

	dump := &Dump{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".bz2" && ext != ".xml" {
			continue
		}
		var size int64
		if fi, err := entry.Info(); err == nil {
			size = fi.Size()
		}
		dump.Files = append(dump.Files, FileEntry{
			Name: entry.Name(),
			Path: filepath.Join(path, entry.Name()),
			Size: size,
		})
	}
	if len(dump.Files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, path)
	}
	sortEntries(dump.Files)

	return dump, nil
}

// sortEntries orders dump files with numeric-aware comparison so that
// "...xml-p2p100.bz2" sorts before "...xml-p101p1000.bz2".
func sortEntries(files []FileEntry) {
	c := collate.New(language.Und, collate.Numeric)
	sort.Slice(files, func(i, j int) bool {
		if cmp := c.CompareString(files[i].Name, files[j].Name); cmp != 0 {
			return cmp < 0
		}
		return files[i].Name < files[j].Name
	})
}
