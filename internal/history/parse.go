package history

import (
	"path"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/user/sitekit/internal/models"
)

// LogFormat is the --pretty format requested from git log. Fields are
// separated by '|' and the body runs to the end of the header line.
const LogFormat = "%H|%h|%ad|%an|%ae|%s|%b"

const (
	fieldSep        = "|"
	minHeaderFields = 6
	isoDateLayout   = "2006-01-02 15:04:05 -0700"
)

// MatchMode selects how changed-file entries are compared to the queried path.
type MatchMode int

const (
	// MatchLoose accepts an entry containing the target path or ending with
	// its basename. Files sharing a basename in different directories match.
	MatchLoose MatchMode = iota
	// MatchExact accepts an entry equal to the repository-relative path, or
	// where one of the two is a '/'-bounded suffix of the other.
	MatchExact
)

// ParseLog splits git log output produced with LogFormat and --name-only
// into commit records, in output order. No filtering is applied.
//
// A body longer than one line continues below the header. Git prints the
// name-only list as the last block of lines before the next header, so that
// block becomes FilesChanged and the blocks above it extend the body.
func ParseLog(output string) []models.CommitRecord {
	var (
		commits []models.CommitRecord
		current *pendingCommit
		skip    bool // inside a header whose fields could not be used
	)
	flush := func() {
		if current != nil {
			commits = append(commits, current.record())
			current = nil
		}
	}

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			if current != nil {
				current.blank()
			}
			continue
		}

		parts := strings.Split(line, fieldSep)
		if len(parts) >= minHeaderFields {
			flush()
			rec, body, ok := parseHeader(parts)
			skip = !ok
			if ok {
				current = &pendingCommit{rec: rec, body: body}
			}
			continue
		}

		if current == nil || skip || strings.HasPrefix(strings.TrimSpace(line), "commit ") {
			continue
		}
		current.add(line)
	}
	flush()

	return commits
}

// pendingCommit collects the lines following a header, split into blocks at
// blank lines.
type pendingCommit struct {
	rec    models.CommitRecord
	body   string // body text on the header line
	blocks [][]string
	// joined is set when the first block started right below the header and
	// so continues the header's body paragraph.
	joined  bool
	newNext bool
}

func (p *pendingCommit) blank() {
	p.newNext = true
}

func (p *pendingCommit) add(line string) {
	if len(p.blocks) == 0 {
		p.joined = !p.newNext
		p.blocks = append(p.blocks, nil)
	} else if p.newNext {
		p.blocks = append(p.blocks, nil)
	}
	p.newNext = false
	last := len(p.blocks) - 1
	p.blocks[last] = append(p.blocks[last], line)
}

func (p *pendingCommit) record() models.CommitRecord {
	rec := p.rec
	var paragraphs []string
	if p.body != "" {
		paragraphs = append(paragraphs, p.body)
	}
	if n := len(p.blocks); n > 0 {
		for _, f := range p.blocks[n-1] {
			rec.FilesChanged = append(rec.FilesChanged, strings.TrimSpace(f))
		}
		for i, block := range p.blocks[:n-1] {
			text := strings.Join(block, "\n")
			if i == 0 && p.joined && len(paragraphs) > 0 {
				paragraphs[0] += "\n" + text
				continue
			}
			paragraphs = append(paragraphs, text)
		}
	}
	if body := strings.TrimSpace(strings.Join(paragraphs, "\n\n")); body != "" {
		rec.Message = rec.Summary + "\n\n" + body
	}
	return rec
}

func parseHeader(parts []string) (models.CommitRecord, string, bool) {
	fullHash, shortHash := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if fullHash == "" || shortHash == "" {
		return models.CommitRecord{}, "", false
	}
	when, err := parseDate(strings.TrimSpace(parts[2]))
	if err != nil {
		return models.CommitRecord{}, "", false
	}

	subject := parts[5]
	return models.CommitRecord{
		ShortHash:    shortHash,
		FullHash:     fullHash,
		Timestamp:    when,
		AuthorName:   parts[3],
		AuthorEmail:  parts[4],
		Summary:      subject,
		Message:      subject,
		FilesChanged: []string{},
	}, strings.TrimSpace(strings.Join(parts[6:], fieldSep)), true
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return t, nil
	}
	return dateparse.ParseAny(s)
}

// filePredicate builds the changed-file filter for target, which is the path
// the caller asked about (relative to the repository root, slash separated).
func filePredicate(target, stripPrefix string, mode MatchMode) func(string) bool {
	target = path.Clean(strings.TrimPrefix(target, "./"))

	if mode == MatchExact {
		return func(entry string) bool {
			entry = path.Clean(entry)
			return entry == target ||
				strings.HasSuffix(entry, "/"+target) ||
				strings.HasSuffix(target, "/"+entry)
		}
	}

	loose := target
	if stripPrefix != "" {
		loose = strings.TrimPrefix(loose, stripPrefix)
	}
	base := path.Base(loose)
	return func(entry string) bool {
		return strings.Contains(entry, loose) || strings.HasSuffix(entry, base)
	}
}

// FilterCommits keeps the commits whose changed files include target.
//
// The log is expected newest first, as git log --follow emits it. Before a
// rename git lists the file under its earlier name, so when a commit that
// directly follows a kept commit names a single other path, that path
// becomes the target for the older commits.
func FilterCommits(commits []models.CommitRecord, target, stripPrefix string, mode MatchMode) []models.CommitRecord {
	match := filePredicate(target, stripPrefix, mode)
	out := make([]models.CommitRecord, 0, len(commits))
	prevKept := false
	for _, c := range commits {
		keep := false
		for _, f := range c.FilesChanged {
			if match(f) {
				keep = true
				break
			}
		}
		if !keep && prevKept && len(c.FilesChanged) == 1 {
			match = filePredicate(c.FilesChanged[0], stripPrefix, mode)
			keep = true
		}
		if keep {
			out = append(out, c)
		}
		prevKept = keep
	}
	return out
}
