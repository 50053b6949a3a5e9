// Package registrysource lets --registry accept "owner/repo[@ref]" in
// addition to a local directory, fetching registry YAML files from the
// GitHub Contents API the same way cmd/blueprint fetched dependency
// manifests in the teacher repo.
package registrysource

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

// Ref is a parsed "owner/repo[@ref]" registry source.
type Ref struct {
	Owner string
	Repo  string
	Ref   string // branch, tag, or commit SHA; empty means the repo's default branch
	Path  string // subdirectory within the repo holding the registry, default "."
}

// IsRemote reports whether s looks like "owner/repo[@ref]" rather than a
// local filesystem path: no path separators before the first "/", no
// leading "." or "/".
func IsRemote(s string) bool {
	if s == "" || strings.HasPrefix(s, ".") || strings.HasPrefix(s, "/") {
		return false
	}
	parts := strings.SplitN(s, "/", 3)
	return len(parts) >= 2 && parts[0] != "" && parts[1] != ""
}

// ParseRef parses "owner/repo[@ref][/path]" into a Ref.
func ParseRef(s string) (Ref, error) {
	parts := strings.SplitN(s, "/", 3)
	if len(parts) < 2 {
		return Ref{}, fmt.Errorf("invalid registry source %q: expected owner/repo[@ref]", s)
	}
	r := Ref{Owner: parts[0], Repo: parts[1], Path: "."}
	if len(parts) == 3 {
		r.Path = parts[2]
	}
	if idx := strings.IndexByte(r.Repo, '@'); idx >= 0 {
		r.Ref = r.Repo[idx+1:]
		r.Repo = r.Repo[:idx]
	}
	return r, nil
}

// FS fetches registry YAML files from a GitHub repository's Contents API
// and exposes them as an fs.FS, so registry.Load can walk it exactly as it
// walks a local directory.
type FS struct {
	client *github.Client
	ref    Ref
	ctx    context.Context

	cache map[string][]byte
}

// NewFS builds a remote registry filesystem. token is read from
// GITHUB_TOKEN when empty; an unauthenticated client is used if neither is
// set (subject to GitHub's lower anonymous rate limit).
func NewFS(ctx context.Context, ref Ref, token string) *FS {
	client := github.NewClient(nil)
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(ctx, ts))
	}
	return &FS{client: client, ref: ref, ctx: ctx, cache: make(map[string][]byte)}
}

var _ fs.FS = (*FS)(nil)
var _ fs.ReadDirFS = (*FS)(nil)
var _ fs.StatFS = (*FS)(nil)

// Stat implements fs.StatFS so fs.WalkDir's initial root lookup doesn't try
// to Open a directory as a regular file.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	opts := &github.RepositoryContentsOptions{}
	if f.ref.Ref != "" {
		opts.Ref = f.ref.Ref
	}
	fileContent, dirContents, _, err := f.client.Repositories.GetContents(f.ctx, f.ref.Owner, f.ref.Repo, f.remotePath(name), opts)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	if fileContent == nil {
		return dirFileInfo{name: path.Base(name), entries: len(dirContents)}, nil
	}
	return remoteFileInfo{name: path.Base(name), size: int64(fileContent.GetSize())}, nil
}

// Open implements fs.FS by fetching a single file's content.
func (f *FS) Open(name string) (fs.File, error) {
	data, err := f.readFile(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &remoteFile{name: name, data: data}, nil
}

// ReadDir implements fs.ReadDirFS by listing a directory's contents.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	opts := &github.RepositoryContentsOptions{}
	if f.ref.Ref != "" {
		opts.Ref = f.ref.Ref
	}
	_, dirContents, _, err := f.client.Repositories.GetContents(f.ctx, f.ref.Owner, f.ref.Repo, f.remotePath(name), opts)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	entries := make([]fs.DirEntry, 0, len(dirContents))
	for _, c := range dirContents {
		entries = append(entries, remoteDirEntry{content: c})
	}
	return entries, nil
}

func (f *FS) remotePath(name string) string {
	if name == "." || name == "" {
		return f.ref.Path
	}
	if f.ref.Path == "." || f.ref.Path == "" {
		return name
	}
	return f.ref.Path + "/" + name
}

func (f *FS) readFile(name string) ([]byte, error) {
	if data, ok := f.cache[name]; ok {
		return data, nil
	}
	opts := &github.RepositoryContentsOptions{}
	if f.ref.Ref != "" {
		opts.Ref = f.ref.Ref
	}
	content, _, _, err := f.client.Repositories.GetContents(f.ctx, f.ref.Owner, f.ref.Repo, f.remotePath(name), opts)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, fmt.Errorf("%s is a directory, not a file", name)
	}
	decoded, err := content.GetContent()
	if err != nil {
		return nil, err
	}
	data := []byte(decoded)
	f.cache[name] = data
	return data, nil
}

type remoteFile struct {
	name   string
	data   []byte
	offset int
}

func (r *remoteFile) Stat() (fs.FileInfo, error) {
	return remoteFileInfo{name: r.name, size: int64(len(r.data))}, nil
}

func (r *remoteFile) Read(p []byte) (int, error) {
	if r.offset >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.offset:])
	r.offset += n
	return n, nil
}

func (r *remoteFile) Close() error { return nil }

type remoteFileInfo struct {
	name string
	size int64
}

func (i remoteFileInfo) Name() string       { return i.name }
func (i remoteFileInfo) Size() int64        { return i.size }
func (i remoteFileInfo) Mode() fs.FileMode  { return 0o444 }
func (i remoteFileInfo) ModTime() time.Time { return time.Time{} }
func (i remoteFileInfo) IsDir() bool        { return false }
func (i remoteFileInfo) Sys() any           { return nil }

type dirFileInfo struct {
	name    string
	entries int
}

func (i dirFileInfo) Name() string       { return i.name }
func (i dirFileInfo) Size() int64        { return int64(i.entries) }
func (i dirFileInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o555 }
func (i dirFileInfo) ModTime() time.Time { return time.Time{} }
func (i dirFileInfo) IsDir() bool        { return true }
func (i dirFileInfo) Sys() any           { return nil }

type remoteDirEntry struct {
	content *github.RepositoryContent
}

func (e remoteDirEntry) Name() string { return e.content.GetName() }
func (e remoteDirEntry) IsDir() bool  { return e.content.GetType() == "dir" }
func (e remoteDirEntry) Type() fs.FileMode {
	if e.IsDir() {
		return fs.ModeDir
	}
	return 0
}
func (e remoteDirEntry) Info() (fs.FileInfo, error) {
	return remoteFileInfo{name: e.content.GetName(), size: int64(e.content.GetSize())}, nil
}
