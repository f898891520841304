// Package content loads and validates the blog post collection.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoFrontMatter = errors.New("missing front matter block")
	ErrUnterminated  = errors.New("front matter block is not terminated")
)

var dottedDate = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

// Post is a validated entry of the posts collection.
type Post struct {
	ID                  string     `json:"id"` // path below the collection root, without extension
	Path                string     `json:"path"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Author              string     `json:"author"`
	PubDate             time.Time  `json:"pub_date"`
	UpdatedDate         *time.Time `json:"updated_date,omitempty"`
	HeroImage           string     `json:"hero_image,omitempty"` // resolved path
	Tags                []string   `json:"tags,omitempty"`
	ShowRevisionHistory bool       `json:"show_revision_history"`
	Body                string     `json:"-"`
}

// fieldTags lists the YAML tags each front matter key may carry. Keys not
// listed are not checked.
var fieldTags = map[string][]string{
	"title":               {"!!str"},
	"description":         {"!!str"},
	"author":              {"!!str"},
	"pubDate":             {"!!str", "!!timestamp"},
	"updatedDate":         {"!!str", "!!timestamp"},
	"heroImage":           {"!!str"},
	"tags":                {"!!seq"},
	"showRevisionHistory": {"!!bool"},
}

var tagNames = map[string]string{
	"!!str":       "a string",
	"!!timestamp": "a date",
	"!!seq":       "a list",
	"!!bool":      "a boolean",
}

// checkTypes rejects values whose YAML type does not fit the field, so that
// title: 123 is an error rather than the string "123".
func checkTypes(root *yaml.Node) error {
	errs := validation.Errors{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		if val.Kind == yaml.AliasNode && val.Alias != nil {
			val = val.Alias
		}
		allowed, ok := fieldTags[key]
		if !ok {
			continue
		}
		if !hasTag(val, allowed) {
			errs[key] = fmt.Errorf("must be %s", tagNames[allowed[0]])
			continue
		}
		if key == "tags" {
			for _, item := range val.Content {
				if item.Kind == yaml.AliasNode && item.Alias != nil {
					item = item.Alias
				}
				if item.ShortTag() != "!!str" {
					errs[key] = errors.New("must be a list of strings")
					break
				}
			}
		}
	}
	return errs.Filter()
}

func hasTag(n *yaml.Node, allowed []string) bool {
	tag := n.ShortTag()
	for _, a := range allowed {
		if tag == a {
			return true
		}
	}
	return false
}

// decodeFrontMatter parses meta, checks value types and decodes it.
func decodeFrontMatter(meta []byte) (*frontMatter, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(meta, &doc); err != nil {
		return nil, err
	}
	fm := &frontMatter{}
	if len(doc.Content) == 0 {
		return fm, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("front matter must be a mapping")
	}
	if err := checkTypes(root); err != nil {
		return nil, err
	}
	if err := root.Decode(fm); err != nil {
		return nil, err
	}
	return fm, nil
}

// frontMatter is the raw YAML shape. Pointers distinguish absent fields
// from empty ones; json tags name the fields in validation errors.
type frontMatter struct {
	Title               *string  `yaml:"title" json:"title"`
	Description         *string  `yaml:"description" json:"description"`
	Author              *string  `yaml:"author" json:"author"`
	PubDate             *string  `yaml:"pubDate" json:"pubDate"`
	UpdatedDate         *string  `yaml:"updatedDate" json:"updatedDate"`
	HeroImage           *string  `yaml:"heroImage" json:"heroImage"`
	Tags                []string `yaml:"tags" json:"tags"`
	ShowRevisionHistory *bool    `yaml:"showRevisionHistory" json:"showRevisionHistory"`
}

func (fm *frontMatter) validate(dir string) error {
	return validation.ValidateStruct(fm,
		validation.Field(&fm.Title, validation.NotNil),
		validation.Field(&fm.Description, validation.NotNil),
		validation.Field(&fm.Author, validation.NotNil),
		validation.Field(&fm.PubDate, validation.NotNil, validation.By(dateRule(ParsePubDate))),
		validation.Field(&fm.UpdatedDate, validation.By(dateRule(parseDate))),
		validation.Field(&fm.HeroImage, validation.By(imageRule(dir))),
	)
}

func dateRule(parse func(string) (time.Time, error)) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(*string)
		if s == nil {
			return nil
		}
		if _, err := parse(*s); err != nil {
			return errors.New("must be a valid date")
		}
		return nil
	}
}

func imageRule(dir string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(*string)
		if s == nil {
			return nil
		}
		if _, err := os.Stat(resolveImage(dir, *s)); err != nil {
			return fmt.Errorf("image %q not found", *s)
		}
		return nil
	}
}

func resolveImage(dir, ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(dir, filepath.FromSlash(ref))
}

// ParsePubDate parses a publish date. DD.MM.YYYY is tried first and yields
// local midnight of that day; anything else goes through generic parsing.
func ParsePubDate(s string) (time.Time, error) {
	if dottedDate.MatchString(s) {
		day, _ := strconv.Atoi(s[0:2])
		month, _ := strconv.Atoi(s[3:5])
		year, _ := strconv.Atoi(s[6:10])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
	}
	return parseDate(s)
}

func parseDate(s string) (time.Time, error) {
	return dateparse.ParseLocal(s)
}

// splitFrontMatter separates the leading "---" delimited YAML block from
// the document body.
func splitFrontMatter(src []byte) (meta, body []byte, err error) {
	src = bytes.TrimPrefix(src, []byte("\ufeff"))
	lines := bytes.SplitAfter(src, []byte("\n"))
	if !isDelimiter(lines[0]) {
		return nil, nil, ErrNoFrontMatter
	}
	offset := len(lines[0])
	for _, line := range lines[1:] {
		if isDelimiter(line) {
			return src[len(lines[0]):offset], src[offset+len(line):], nil
		}
		offset += len(line)
	}
	return nil, nil, ErrUnterminated
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r\n")) == "---"
}

// ParsePost parses and validates one post. dir is the directory of the
// post file and anchors relative hero image references.
func ParsePost(src []byte, dir string) (*Post, error) {
	meta, body, err := splitFrontMatter(src)
	if err != nil {
		return nil, err
	}

	fm, err := decodeFrontMatter(meta)
	if err != nil {
		return nil, fmt.Errorf("invalid front matter: %w", err)
	}
	if err := fm.validate(dir); err != nil {
		return nil, fmt.Errorf("invalid front matter: %w", err)
	}

	pub, _ := ParsePubDate(*fm.PubDate)
	post := &Post{
		Title:               *fm.Title,
		Description:         *fm.Description,
		Author:              *fm.Author,
		PubDate:             pub,
		Tags:                fm.Tags,
		ShowRevisionHistory: true,
		Body:                string(body),
	}
	if fm.UpdatedDate != nil {
		updated, _ := parseDate(*fm.UpdatedDate)
		post.UpdatedDate = &updated
	}
	if fm.HeroImage != nil {
		post.HeroImage = resolveImage(dir, *fm.HeroImage)
	}
	if fm.ShowRevisionHistory != nil {
		post.ShowRevisionHistory = *fm.ShowRevisionHistory
	}
	return post, nil
}
