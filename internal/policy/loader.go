package policy

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/modlens/modlens/internal/moderation"
	"github.com/modlens/modlens/internal/progress"
	"github.com/modlens/modlens/internal/vectordb"
)

// fileNamespace seeds ids for file-backed policies so re-ingesting the same
// file replaces its previous entry.
var fileNamespace = uuid.MustParse("6f1c2c1e-8d2a-4f43-9a55-3f7b0e0f5a11")

// FileID returns the stable document id for a policy file path relative to
// the policy directory.
func FileID(relPath string) string {
	return uuid.NewSHA1(fileNamespace, []byte(relPath)).String()
}

// Loader discovers and reads policy files under a directory.
type Loader struct {
	fsys        fs.FS
	root        string
	include     []string
	exclude     []string
	concurrency int
	reporter    progress.Reporter
	logger      *slog.Logger
	now         func() time.Time
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPatterns sets the include and exclude globs. Empty include keeps the
// default of every .txt and .md file.
func WithPatterns(include, exclude []string) LoaderOption {
	return func(l *Loader) {
		if len(include) > 0 {
			l.include = include
		}
		l.exclude = exclude
	}
}

// WithConcurrency bounds how many files are read at once.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithReporter reports per-file progress.
func WithReporter(r progress.Reporter) LoaderOption {
	return func(l *Loader) { l.reporter = r }
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(log *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = log }
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string, opts ...LoaderOption) *Loader {
	return newLoader(os.DirFS(dir), dir, opts...)
}

func newLoader(fsys fs.FS, root string, opts ...LoaderOption) *Loader {
	l := &Loader{
		fsys:        fsys,
		root:        root,
		include:     []string{"**/*.txt", "**/*.md"},
		concurrency: 4,
		reporter:    progress.Nop{},
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discover returns the sorted relative paths of every matching file.
func (l *Loader) Discover() ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range l.include {
		matches, err := doublestar.Glob(l.fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, &moderation.PolicyLoadError{Msg: fmt.Sprintf("bad include pattern %q", pattern), Err: err}
		}
		for _, m := range matches {
			if seen[m] || l.excluded(m) {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (l *Loader) excluded(rel string) bool {
	for _, pattern := range l.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

// Load reads every discovered policy file. Unreadable and empty files are
// logged and skipped; it fails only when nothing usable remains.
func (l *Loader) Load(ctx context.Context) ([]vectordb.Document, error) {
	paths, err := l.Discover()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, &moderation.PolicyLoadError{Msg: fmt.Sprintf("no policy files found in %s", l.root)}
	}

	l.logger.Info("loading policy files", "count", len(paths), "dir", l.root)
	l.reporter.Start(len(paths), "Loading policies")
	defer l.reporter.Finish()

	docs := make([]*vectordb.Document, len(paths))
	var mu sync.Mutex
	skipped := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := l.loadFile(rel)
			l.reporter.Advance(rel)
			if err != nil {
				l.logger.Warn("skipping policy file", "file", rel, "error", err)
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &moderation.PolicyLoadError{Msg: "loading interrupted", Err: err}
	}

	out := make([]vectordb.Document, 0, len(docs))
	for _, d := range docs {
		if d != nil {
			out = append(out, *d)
		}
	}
	if len(out) == 0 {
		return nil, &moderation.PolicyLoadError{Msg: "no valid policy documents found"}
	}
	l.logger.Info("loaded policy documents", "loaded", len(out), "skipped", skipped)
	return out, nil
}

func (l *Loader) loadFile(rel string) (*vectordb.Document, error) {
	raw, err := fs.ReadFile(l.fsys, rel)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("file is not valid UTF-8")
	}

	info := InfoFor(rel)
	content := strings.TrimSpace(string(raw))
	if strings.EqualFold(path.Ext(rel), ".md") {
		title, body := ParseMarkdown(raw)
		content = body
		if title != "" && info.Type == GeneralPolicyType {
			info.Title = title
		}
	}
	if content == "" {
		return nil, fmt.Errorf("empty file")
	}

	return &vectordb.Document{
		ID:      FileID(rel),
		Content: content,
		Metadata: vectordb.PolicyMetadata{
			Title:      info.Title,
			Provider:   info.Provider,
			PolicyType: info.Type,
			Filename:   path.Base(rel),
			WordCount:  len(strings.Fields(content)),
			AddedAt:    l.now().UTC(),
		},
	}, nil
}
