package history

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/user/sitekit/internal/models"
)

const sampleLog = `9f2c1e4b7a0d3c5e8f1a2b3c4d5e6f7a8b9c0d1e|9f2c1e4|2024-03-10 14:22:05 +0100|Jane Doe|jane@example.com|Fix typo in intro|Also reflow the second paragraph
src/content/posts/hello.md

4a5b6c7d8e9f0a1b2c3d4e5f6a7b8c9d0e1f2a3b|4a5b6c7|2024-02-01 09:00:00 +0000|John Roe|john@example.com|Add hello post|
src/content/posts/hello.md
src/assets/hero.jpg
`

func TestParseLog(t *testing.T) {
	commits := ParseLog(sampleLog)
	require.Len(t, commits, 2)

	first := commits[0]
	assert.Equal(t, "9f2c1e4b7a0d3c5e8f1a2b3c4d5e6f7a8b9c0d1e", first.FullHash)
	assert.Equal(t, "9f2c1e4", first.ShortHash)
	assert.Equal(t, "Jane Doe", first.AuthorName)
	assert.Equal(t, "jane@example.com", first.AuthorEmail)
	assert.Equal(t, "Fix typo in intro", first.Summary)
	assert.Equal(t, "Fix typo in intro\n\nAlso reflow the second paragraph", first.Message)
	assert.Equal(t, []string{"src/content/posts/hello.md"}, first.FilesChanged)
	assert.True(t, first.Timestamp.Equal(time.Date(2024, 3, 10, 13, 22, 5, 0, time.UTC)))

	second := commits[1]
	assert.Equal(t, "Add hello post", second.Message, "empty body keeps the bare subject")
	assert.Equal(t, []string{"src/content/posts/hello.md", "src/assets/hero.jpg"}, second.FilesChanged)
}

func TestParseLogBodyWithDelimiter(t *testing.T) {
	out := "aaaaaaaa|aaaa|2024-01-01 00:00:00 +0000|A|a@x|subj|body | with | pipes\nfile.md\n"
	commits := ParseLog(out)
	require.Len(t, commits, 1)
	assert.Equal(t, "subj\n\nbody | with | pipes", commits[0].Message)
}

func TestParseLogSkipsMalformed(t *testing.T) {
	out := strings.Join([]string{
		"stray line before any header",
		"too|few|fields",
		"bbbbbbbb|bbbb|not a date|B|b@x|bad date|",
		"belongs/to/bad/header.md",
		"",
		"",
		"cccccccc|cccc|2024-01-02 10:00:00 +0000|C|c@x|good|",
		"",
		"after/blank.md",
		"commit deadbeef",
		"another.md",
	}, "\n")

	commits := ParseLog(out)
	require.Len(t, commits, 1)
	assert.Equal(t, "cccccccc", commits[0].FullHash)
	assert.Equal(t, []string{"after/blank.md", "another.md"}, commits[0].FilesChanged,
		"blank lines do not end the file list")
}

func TestParseLogEmpty(t *testing.T) {
	assert.Empty(t, ParseLog(""))
	assert.Empty(t, ParseLog("\n\n  \n"))
}

func TestFilterCommits(t *testing.T) {
	commits := ParseLog(`dddddddddddddddddddddddddddddddddddddddd|ddddddd|2024-04-15 12:00:00 +0000|D|d@x|Touch other post|
src/content/posts/other.md

eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee|eeeeeee|2024-04-10 12:00:00 +0000|E|e@x|Same basename elsewhere|
docs/hello.md
docs/index.md

` + sampleLog)
	require.Len(t, commits, 4)

	tests := []struct {
		name   string
		target string
		mode   MatchMode
		want   []string
	}{
		{"loose matches by basename", "src/content/posts/hello.md", MatchLoose, []string{"eeeeeee", "9f2c1e4", "4a5b6c7"}},
		{"loose strips src prefix", "content/posts/other.md", MatchLoose, []string{"ddddddd"}},
		{"exact ignores same basename", "src/content/posts/hello.md", MatchExact, []string{"9f2c1e4", "4a5b6c7"}},
		{"exact accepts path suffix", "posts/hello.md", MatchExact, []string{"9f2c1e4", "4a5b6c7"}},
		{"no match", "src/content/posts/missing.md", MatchExact, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterCommits(commits, tt.target, DefaultStripPrefix, tt.mode)
			short := make([]string, 0, len(got))
			for _, c := range got {
				short = append(short, c.ShortHash)
			}
			assert.Equal(t, tt.want, short)
		})
	}
}

func TestParseLogMultiLineBody(t *testing.T) {
	out := strings.Join([]string{
		"aaaaaaaa|aaaa|2024-01-01 00:00:00 +0000|A|a@x|Subject|line one",
		"line two",
		"",
		"para two",
		"",
		"a.md",
		"bbbbbbbb|bbbb|2023-12-31 00:00:00 +0000|B|b@x|Older|",
		"b.md",
	}, "\n")

	commits := ParseLog(out)
	require.Len(t, commits, 2)
	assert.Equal(t, "Subject\n\nline one\nline two\n\npara two", commits[0].Message)
	assert.Equal(t, []string{"a.md"}, commits[0].FilesChanged)
	assert.Equal(t, "Older", commits[1].Message)
	assert.Equal(t, []string{"b.md"}, commits[1].FilesChanged)
}

func TestFilterCommitsFollowsRenames(t *testing.T) {
	commits := []models.CommitRecord{
		{ShortHash: "4", FilesChanged: []string{"src/content/posts/hello.md"}},
		{ShortHash: "3", FilesChanged: []string{"src/content/posts/hello.md"}},
		{ShortHash: "2", FilesChanged: []string{"src/content/posts/draft.md"}},
		{ShortHash: "1", FilesChanged: []string{"src/content/posts/draft.md"}},
	}

	for _, mode := range []MatchMode{MatchLoose, MatchExact} {
		got := FilterCommits(commits, "src/content/posts/hello.md", DefaultStripPrefix, mode)
		assert.Len(t, got, 4, "mode %d", mode)
	}

	// A foreign path is only adopted right after a kept commit.
	gap := []models.CommitRecord{
		{ShortHash: "3", FilesChanged: []string{"other.md"}},
		{ShortHash: "2", FilesChanged: []string{"hello.md"}},
		{ShortHash: "1", FilesChanged: []string{"a.md", "b.md"}},
	}
	got := FilterCommits(gap, "hello.md", "", MatchExact)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ShortHash)
}

func TestParseLogProperties(t *testing.T) {
	hex := rapid.StringMatching(`[0-9a-f]{40}`)
	word := rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ]{0,15}`)
	file := rapid.StringMatching(`[a-z]{1,8}(/[a-z]{1,8}){0,3}\.(md|go|png)`)

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(t, "commits")
		var b strings.Builder
		type want struct {
			full, short string
			files       []string
		}
		wants := make([]want, 0, n)
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < n; i++ {
			full := hex.Draw(t, "hash")
			short := full[:7]
			files := rapid.SliceOfN(file, 1, 4).Draw(t, "files")
			when := base.Add(-time.Duration(i) * time.Hour).Format(isoDateLayout)
			fmt.Fprintf(&b, "%s|%s|%s|%s|%s|%s|\n", full, short, when,
				word.Draw(t, "author"), "a@example.com", word.Draw(t, "subject"))
			for _, f := range files {
				b.WriteString(f + "\n")
			}
			if rapid.Bool().Draw(t, "blank") {
				b.WriteString("\n")
			}
			wants = append(wants, want{full, short, files})
		}

		got := ParseLog(b.String())
		if len(got) != n {
			t.Fatalf("parsed %d commits, want %d", len(got), n)
		}
		for i, c := range got {
			if c.FullHash != wants[i].full || !strings.HasPrefix(c.FullHash, c.ShortHash) {
				t.Fatalf("commit %d: hashes %q/%q", i, c.FullHash, c.ShortHash)
			}
			if strings.Join(c.FilesChanged, ",") != strings.Join(wants[i].files, ",") {
				t.Fatalf("commit %d: files %v, want %v", i, c.FilesChanged, wants[i].files)
			}
			if i > 0 && c.Timestamp.After(got[i-1].Timestamp) {
				t.Fatalf("commit %d: order not preserved", i)
			}
		}
	})
}
