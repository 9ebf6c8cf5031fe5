package gitlab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewdeck-backend/internal/types"
)

func restDiscussionWithNotes(id string, bodies ...string) glDiscussion {
	d := glDiscussion{ID: id}
	for i, b := range bodies {
		d.Notes = append(d.Notes, glNote{
			ID:        100 + i,
			Body:      b,
			CreatedAt: "2026-01-01T10:00:00Z",
			Author:    glUser{Username: "dev"},
		})
	}
	return d
}

func TestSplitDiscussionHeadAndReplies(t *testing.T) {
	in := restDiscussionWithNotes("disc-1", "first", "second", "third")
	in.Notes[0].Resolvable = true
	in.Notes[0].Resolved = true

	d := splitDiscussion(in)

	require.Len(t, d.Notes, 1)
	head := d.Notes[0]
	assert.Equal(t, "first", head.Body)
	require.Len(t, head.Replies, 2)
	assert.Equal(t, "second", head.Replies[0].Body)
	assert.Equal(t, "third", head.Replies[1].Body)
	assert.True(t, d.Resolvable)
	assert.True(t, d.Resolved)
	assert.Equal(t, "2026-01-01T10:00:00Z", d.CreatedAt)
}

func TestSplitDiscussionEmpty(t *testing.T) {
	d := splitDiscussion(glDiscussion{ID: "disc-2"})
	assert.Empty(t, d.Notes)
}

func TestConvertRestNoteCarriesPosition(t *testing.T) {
	n := glNote{
		ID:        7,
		Body:      "inline",
		Author:    glUser{Username: "dev"},
		CreatedAt: "2026-01-01T10:00:00Z",
		Position: &glPosition{
			NewPath:      "main.go",
			NewLine:      10,
			BaseSHA:      "aaa",
			HeadSHA:      "bbb",
			StartSHA:     "ccc",
			PositionType: "text",
		},
	}

	out := convertRestNote(n)
	assert.Equal(t, "7", out.ID)
	require.NotNil(t, out.Position)
	assert.Equal(t, "main.go", out.Position.FilePath)
	assert.Equal(t, 10, out.Position.NewLine)
	assert.Equal(t, "aaa", out.Position.BaseSHA)
}

func TestGroupAwards(t *testing.T) {
	awards := []gqlAward{
		{Name: "thumbsup", User: gqlUser{Username: "a"}},
		{Name: "rocket", User: gqlUser{Username: "b"}},
		{Name: "thumbsup", User: gqlUser{Username: "c"}},
	}
	groups := groupAwards(awards)
	require.Len(t, groups, 2)
	assert.Equal(t, "rocket", groups[0].Content)
	assert.Equal(t, "thumbsup", groups[1].Content)
	require.Len(t, groups[1].Data, 2)
	assert.Equal(t, "a", groups[1].Data[0].Username)
	assert.Equal(t, "c", groups[1].Data[1].Username)

	assert.Nil(t, groupAwards(nil))
}

func TestNormalizeDetailDerivedFields(t *testing.T) {
	mr := &gqlMergeRequest{
		IID:          "42",
		Title:        "Add retry",
		State:        "merged",
		MergedAt:     "2026-02-01T09:00:00Z",
		TargetBranch: "main",
		SourceBranch: "feature/retry",
		Reference:    "!42",
	}
	mr.SourceProject.Name = "app"
	mr.SourceProject.FullPath = "group/app"
	mr.SourceProject.WebURL = "https://gitlab.example.com/group/app"
	mr.DiffRefs = &struct {
		BaseSHA  string `json:"baseSha"`
		HeadSHA  string `json:"headSha"`
		StartSHA string `json:"startSha"`
	}{BaseSHA: "aaa", HeadSHA: "bbb", StartSHA: "ccc"}

	pr := normalizeDetail(mr, 4217)

	assert.Equal(t, 42, pr.Number)
	assert.True(t, pr.Merged)
	// The derived reference must match what the REST listing produces, so
	// both paths feed the identifier codec the same value.
	assert.Equal(t, "group/app!42", pr.References.Full)
	assert.Equal(t, EncodeID(4217, "group/app!42"), pr.ID)
	assert.Equal(t, "main", pr.BaseRefName)
	assert.Equal(t, "feature/retry", pr.HeadRefName)
	assert.Equal(t, "aaa", pr.BaseRefOid)
	assert.Equal(t, "bbb", pr.HeadRefOid)
	assert.Equal(t, "group/app", pr.Repository.NameWithOwner)
}

func TestNormalizeDetailOpenRequestNotMerged(t *testing.T) {
	mr := &gqlMergeRequest{IID: "7", State: "opened", Reference: "!7"}
	mr.SourceProject.FullPath = "group/app"

	pr := normalizeDetail(mr, 99)
	assert.False(t, pr.Merged)
	assert.Empty(t, pr.MergedAt)
}

func TestNormalizeListedUsesRestReference(t *testing.T) {
	mr := glMergeRequest{
		ID:    4217,
		IID:   42,
		Title: "Add retry",
		State: "opened",
	}
	mr.References.Full = "group/app!42"
	mr.References.Short = "!42"

	pr := normalizeListed(mr)
	assert.Equal(t, EncodeID(4217, "group/app!42"), pr.ID)
	assert.Equal(t, 42, pr.Number)
	assert.False(t, pr.Merged)
}

func TestPendingDiscussionHoldsAllDraftsFlat(t *testing.T) {
	drafts := []types.DraftComment{
		{Body: "first draft", Position: &types.Position{FilePath: "main.go", NewLine: 10}},
		{Body: "second draft", Position: &types.Position{FilePath: "util.go", NewLine: 3}},
	}

	d := pendingDiscussion(drafts)
	require.NotNil(t, d)
	// Staged notes are not a thread: they all sit directly in the notes
	// list, unlike provider discussions.
	require.Len(t, d.Notes, 2)
	for i, n := range d.Notes {
		assert.True(t, n.Pending)
		assert.Equal(t, "PENDING", n.State)
		assert.Empty(t, n.Replies)
		assert.Equal(t, drafts[i].Body, n.Body)
	}

	assert.Nil(t, pendingDiscussion(nil))
}
