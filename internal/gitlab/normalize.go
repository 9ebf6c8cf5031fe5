package gitlab

import (
	"sort"
	"strconv"

	"reviewdeck-backend/internal/types"
)

// Normalization of provider-native shapes into the canonical schema. Every
// field mapping is explicit; synthetic fields (merged, references.full,
// number) are computed here and nowhere else.

func convertGqlUser(u gqlUser) types.User {
	return types.User{
		Username:  u.Username,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		WebURL:    u.WebURL,
	}
}

func convertRestUser(u glUser) types.User {
	return types.User{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		WebURL:    u.WebURL,
	}
}

func convertRestNote(n glNote) types.Note {
	out := types.Note{
		ID:        strconv.Itoa(n.ID),
		Author:    convertRestUser(n.Author),
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		System:    n.System,
	}
	if n.Position != nil {
		out.Position = &types.Position{
			FilePath:     n.Position.NewPath,
			OldLine:      n.Position.OldLine,
			NewLine:      n.Position.NewLine,
			BaseSHA:      n.Position.BaseSHA,
			HeadSHA:      n.Position.HeadSHA,
			StartSHA:     n.Position.StartSHA,
			PositionType: n.Position.PositionType,
		}
	}
	return out
}

// splitDiscussion reshapes a provider discussion so it carries exactly one
// head note; every later note becomes a reply on that head. Thread-level
// resolution state comes from the head note.
func splitDiscussion(d glDiscussion) *types.Discussion {
	out := &types.Discussion{ID: d.ID}
	if len(d.Notes) == 0 {
		return out
	}
	head := convertRestNote(d.Notes[0])
	out.Resolvable = d.Notes[0].Resolvable
	out.Resolved = d.Notes[0].Resolved
	out.CreatedAt = head.CreatedAt
	for _, n := range d.Notes[1:] {
		head.Replies = append(head.Replies, convertRestNote(n))
	}
	out.Notes = []types.Note{head}
	return out
}

// groupAwards folds award entries into one group per reaction name.
func groupAwards(awards []gqlAward) []types.ReactionGroup {
	if len(awards) == 0 {
		return nil
	}
	byName := make(map[string][]types.User)
	order := make([]string, 0)
	for _, a := range awards {
		if _, seen := byName[a.Name]; !seen {
			order = append(order, a.Name)
		}
		byName[a.Name] = append(byName[a.Name], convertGqlUser(a.User))
	}
	sort.Strings(order)
	out := make([]types.ReactionGroup, 0, len(order))
	for _, name := range order {
		out = append(out, types.ReactionGroup{Content: name, Data: byName[name]})
	}
	return out
}

// normalizeDetail maps the GraphQL merge request payload onto the canonical
// pull request. The timeline and pending summary are attached by the caller.
func normalizeDetail(mr *gqlMergeRequest, numericID int) *types.PullRequest {
	number, _ := strconv.Atoi(mr.IID)
	// Must match the format the REST listing endpoints already produce,
	// because both code paths feed the same identifier codec.
	fullRef := mr.SourceProject.FullPath + mr.Reference

	out := &types.PullRequest{
		ID:          EncodeID(numericID, fullRef),
		Number:      number,
		Title:       mr.Title,
		Description: mr.Description,
		State:       mr.State,
		WebURL:      mr.WebURL,
		BaseRefName: mr.TargetBranch,
		HeadRefName: mr.SourceBranch,
		CreatedAt:   mr.CreatedAt,
		UpdatedAt:   mr.UpdatedAt,
		MergedAt:    mr.MergedAt,
		Merged:      mr.MergedAt != "",
		Draft:       mr.Draft,
		Author:      convertGqlUser(mr.Author),
		Repository: types.Repository{
			Name:          mr.SourceProject.Name,
			NameWithOwner: mr.SourceProject.FullPath,
			URL:           mr.SourceProject.WebURL,
		},
		References:     types.References{Full: fullRef},
		Reactions:      groupAwards(mr.AwardEmoji.Nodes),
		UserNotesCount: mr.UserNotesCount,
	}
	if mr.DiffRefs != nil {
		out.BaseRefOid = mr.DiffRefs.BaseSHA
		out.HeadRefOid = mr.DiffRefs.HeadSHA
	}
	for _, l := range mr.Labels.Nodes {
		out.Labels = append(out.Labels, types.Label{Name: l.Title, Color: l.Color})
	}
	if mr.Milestone != nil {
		out.Milestone = &types.Milestone{Title: mr.Milestone.Title}
	}
	return out
}

// normalizeListed maps a REST listing entry. The REST payload already
// carries references.full, so the codec sees the same format as the detail
// path.
func normalizeListed(mr glMergeRequest) types.PullRequest {
	out := types.PullRequest{
		ID:          EncodeID(mr.ID, mr.References.Full),
		Number:      mr.IID,
		Title:       mr.Title,
		Description: mr.Description,
		State:       mr.State,
		WebURL:      mr.WebURL,
		BaseRefName: mr.TargetBranch,
		HeadRefName: mr.SourceBranch,
		CreatedAt:   mr.CreatedAt,
		UpdatedAt:   mr.UpdatedAt,
		MergedAt:    mr.MergedAt,
		Merged:      mr.MergedAt != "",
		Draft:       mr.Draft,
		Author:         convertRestUser(mr.Author),
		References:     types.References{Full: mr.References.Full},
		UserNotesCount: mr.UserNotesCount,
	}
	if mr.DiffRefs != nil {
		out.BaseRefOid = mr.DiffRefs.BaseSHA
		out.HeadRefOid = mr.DiffRefs.HeadSHA
	}
	for _, name := range mr.Labels {
		out.Labels = append(out.Labels, types.Label{Name: name})
	}
	if mr.Milestone != nil {
		out.Milestone = &types.Milestone{ID: mr.Milestone.ID, Title: mr.Milestone.Title}
	}
	return out
}

// pendingAuthor is the placeholder shown on staged notes until the review
// is submitted.
var pendingAuthor = types.User{Username: "you", Name: "Pending review"}

// pendingDiscussion renders the staged entries of an open review as one
// synthetic discussion node. Unlike provider discussions the staged notes
// are not a thread, so they all sit in the notes list directly.
func pendingDiscussion(drafts []types.DraftComment) *types.Discussion {
	if len(drafts) == 0 {
		return nil
	}
	d := &types.Discussion{ID: "pending-review", Resolvable: false}
	for i, draft := range drafts {
		d.Notes = append(d.Notes, types.Note{
			ID:       "pending-" + strconv.Itoa(i),
			Author:   pendingAuthor,
			Body:     draft.Body,
			State:    "PENDING",
			Position: draft.Position,
			Pending:  true,
		})
	}
	return d
}
