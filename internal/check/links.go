package check

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/eykd/docint/internal/document"
	"github.com/eykd/docint/internal/finding"
)

// LinkForm classifies how a link target locates its file.
type LinkForm int

const (
	// FormExternal is a URL with a scheme or a pure in-page anchor; never resolved.
	FormExternal LinkForm = iota
	// FormAbsolute is resolved from the repository root ("/docs/a.md").
	FormAbsolute
	// FormParentRelative climbs from the document's directory ("../a.md").
	FormParentRelative
	// FormSameDirectory is relative to the document's directory ("a.md", "./a.md").
	FormSameDirectory
)

// schemeRE matches a URL scheme prefix such as "https:" or "mailto:".
var schemeRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// ClassifyTarget returns the path form of a raw link target.
func ClassifyTarget(target string) LinkForm {
	switch {
	case target == "" || strings.HasPrefix(target, "#"):
		return FormExternal
	case schemeRE.MatchString(target):
		return FormExternal
	case strings.HasPrefix(target, "/"):
		return FormAbsolute
	case target == ".." || strings.HasPrefix(target, "../"):
		return FormParentRelative
	default:
		return FormSameDirectory
	}
}

// defaultDirCacheSize bounds the number of directory listings a Resolver keeps.
const defaultDirCacheSize = 4096

// Resolver resolves link targets against a repository root on a filesystem.
// It is safe for concurrent use; directory listings are memoized.
type Resolver struct {
	fs   afero.Fs
	root string
	dirs *lru.Cache[string, map[string]bool]
}

// NewResolver returns a Resolver for the repository rooted at root.
func NewResolver(fsys afero.Fs, root string) (*Resolver, error) {
	cache, err := lru.New[string, map[string]bool](defaultDirCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create directory cache: %w", err)
	}
	return &Resolver{fs: fsys, root: filepath.Clean(root), dirs: cache}, nil
}

// Root returns the repository root the resolver was created with.
func (r *Resolver) Root() string {
	return r.root
}

// Fs returns the filesystem the resolver reads.
func (r *Resolver) Fs() afero.Fs {
	return r.fs
}

// Resolution is the outcome of resolving one link target.
type Resolution struct {
	// Candidate is the normalized repository-relative path the target names.
	// It begins with "../" when the target escapes the repository root.
	Candidate string
	// Exists is true when Candidate names an existing file with exactly
	// matching case in every path component.
	Exists bool
	// Reason explains a failed resolution.
	Reason string
}

// Resolve resolves target as written in the document at docPath
// (repository-relative). The target's fragment is ignored; no extension is
// ever added.
func (r *Resolver) Resolve(docPath, target string) Resolution {
	raw := target
	if i := strings.IndexAny(raw, "#?"); i >= 0 {
		raw = raw[:i]
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return Resolution{Candidate: raw, Reason: "target is not a valid percent-encoded path"}
	}

	var candidate string
	if ClassifyTarget(target) == FormAbsolute {
		candidate = path.Clean(strings.TrimLeft(decoded, "/"))
	} else {
		candidate = path.Join(path.Dir(docPath), decoded)
	}

	if candidate == ".." || strings.HasPrefix(candidate, "../") {
		return Resolution{Candidate: candidate, Reason: "target escapes the repository root"}
	}
	if candidate == "." {
		return Resolution{Candidate: candidate, Reason: "target names a directory, not a file"}
	}

	ok, reason := r.existsExact(candidate)
	return Resolution{Candidate: candidate, Exists: ok, Reason: reason}
}

// existsExact walks rel component by component, requiring each name to
// appear verbatim in its parent's listing and the last to be a file.
func (r *Resolver) existsExact(rel string) (bool, string) {
	parts := strings.Split(rel, "/")
	dir := r.root
	for i, name := range parts {
		entries, err := r.listing(dir)
		if err != nil {
			return false, "file does not exist"
		}
		isDir, found := entries[name]
		if !found {
			if r.hasCaseVariant(entries, name) {
				return false, "path differs in case from an existing file"
			}
			return false, "file does not exist"
		}
		last := i == len(parts)-1
		if last && isDir {
			return false, "target names a directory, not a file"
		}
		if !last && !isDir {
			return false, "file does not exist"
		}
		dir = filepath.Join(dir, name)
	}
	return true, ""
}

func (r *Resolver) hasCaseVariant(entries map[string]bool, name string) bool {
	for e := range entries {
		if strings.EqualFold(e, name) {
			return true
		}
	}
	return false
}

// listing returns name → isDir for the entries of dir, consulting the cache.
func (r *Resolver) listing(dir string) (map[string]bool, error) {
	if entries, ok := r.dirs.Get(dir); ok {
		return entries, nil
	}
	infos, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, err
	}
	entries := make(map[string]bool, len(infos))
	for _, info := range infos {
		isDir := info.IsDir()
		if !isDir && info.Mode()&os.ModeSymlink != 0 {
			isDir = r.isDirLink(filepath.Join(dir, info.Name()))
		}
		entries[info.Name()] = isDir
	}
	r.dirs.Add(dir, entries)
	return entries, nil
}

func (r *Resolver) isDirLink(p string) bool {
	info, err := r.fs.Stat(p)
	return err == nil && info.IsDir()
}

// Links resolves every internal link in doc and reports those that do not
// name an existing file. External URLs and pure anchors are skipped.
func Links(doc *document.Document, resolver *Resolver) []finding.Finding {
	var findings []finding.Finding
	for _, link := range doc.Links {
		if ClassifyTarget(link.Target) == FormExternal {
			continue
		}
		res := resolver.Resolve(doc.Path, link.Target)
		if res.Exists {
			continue
		}
		f := finding.New(finding.LinkBroken, link.Line,
			"broken link %q: resolved to %q (%s)", link.Target, res.Candidate, res.Reason)
		f.Target = link.Target
		f.Resolved = res.Candidate
		findings = append(findings, f)
	}
	return findings
}

// InternalLinkCount returns the number of links in doc that the resolver checks.
func InternalLinkCount(doc *document.Document) int {
	n := 0
	for _, link := range doc.Links {
		if ClassifyTarget(link.Target) != FormExternal {
			n++
		}
	}
	return n
}
