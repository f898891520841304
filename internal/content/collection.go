package content

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
)

// DefaultPattern matches Markdown and MDX posts at any depth.
const DefaultPattern = "**/*.{md,mdx}"

// Collection loads posts from a directory tree.
type Collection struct {
	Base    string
	pattern glob.Glob
}

// NewCollection compiles pattern, which is matched against slash-separated
// paths relative to base.
func NewCollection(base, pattern string) (*Collection, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid content pattern %q: %w", pattern, err)
	}
	return &Collection{Base: base, pattern: g}, nil
}

// Files lists the files under Base matching the pattern, sorted.
func (c *Collection) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(c.Base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(c.Base, p)
		if err != nil {
			return err
		}
		if c.match(filepath.ToSlash(rel)) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", c.Base, err)
	}
	sort.Strings(files)
	return files, nil
}

// "**/" in the pattern needs at least one directory, so top-level files are
// also tried with a "./" prefix.
func (c *Collection) match(rel string) bool {
	return c.pattern.Match(rel) || c.pattern.Match("./"+rel)
}

// Load parses every post of the collection, newest first. Invalid posts
// are skipped and reported together in the returned error; the valid ones
// are still returned.
func (c *Collection) Load() ([]*Post, error) {
	files, err := c.Files()
	if err != nil {
		return nil, err
	}

	var (
		posts []*Post
		errs  *multierror.Error
	)
	for _, file := range files {
		post, err := c.loadFile(file)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PubDate.After(posts[j].PubDate)
	})
	return posts, errs.ErrorOrNil()
}

func (c *Collection) loadFile(file string) (*Post, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	post, err := ParsePost(src, filepath.Dir(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	rel, _ := filepath.Rel(c.Base, file)
	rel = filepath.ToSlash(rel)
	post.ID = strings.TrimSuffix(rel, path.Ext(rel))
	post.Path = file
	return post, nil
}
