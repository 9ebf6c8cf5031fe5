package gitlab

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"reviewdeck-backend/internal/types"
)

// ErrIssuesDisabled is returned by CreateCard when the target project does
// not have the issues feature enabled.
var ErrIssuesDisabled = errors.New("issues are disabled for this project")

// Boards lists the project's issue boards. Board support degrades rather
// than fails: a provider error is logged and an empty list is returned, so
// a server without boards never breaks the rest of the surface.
func (a *Adapter) Boards(ctx context.Context, projectPath string) []types.Board {
	path := "/projects/" + encodedProject(projectPath) + "/boards"
	boards, err := collectPages[glBoard](ctx, a.t, path)
	if err != nil {
		a.logger.Warn("board listing unavailable", "project", projectPath, "err", err)
		return []types.Board{}
	}
	out := make([]types.Board, 0, len(boards))
	for _, b := range boards {
		board := types.Board{ID: b.ID, Name: b.Name}
		for _, l := range b.Lists {
			list := types.BoardList{ID: l.ID, Position: l.Position}
			if l.Label != nil {
				list.Label = &types.Label{ID: l.Label.ID, Name: l.Label.Name, Color: l.Label.Color}
			}
			board.Lists = append(board.Lists, list)
		}
		out = append(out, board)
	}
	return out
}

// Cards lists the open issues belonging to one board list, identified by
// the list's label. An empty label yields the unassigned backlog. Errors
// degrade to an empty list like Boards.
func (a *Adapter) Cards(ctx context.Context, projectPath, listLabel string) []types.Card {
	path := "/projects/" + encodedProject(projectPath) + "/issues?state=opened"
	if listLabel != "" {
		path += "&labels=" + url.QueryEscape(listLabel)
	}
	issues, err := collectPages[glIssue](ctx, a.t, path)
	if err != nil {
		a.logger.Warn("card listing unavailable", "project", projectPath, "list", listLabel, "err", err)
		return []types.Card{}
	}
	out := make([]types.Card, 0, len(issues))
	for _, is := range issues {
		out = append(out, convertIssue(is))
	}
	return out
}

// CreateCard opens a new issue on the project. Unlike the read paths this
// surfaces failures: the caller asked for a mutation and needs to know it
// did not happen. Projects without the issues feature get a typed error.
func (a *Adapter) CreateCard(ctx context.Context, projectPath, title, description string, labels []string) (*types.Card, error) {
	project, err := a.getProject(ctx, projectPath)
	if err != nil {
		return nil, err
	}
	if !project.IssuesEnabled {
		return nil, ErrIssuesDisabled
	}

	payload := map[string]any{"title": title}
	if description != "" {
		payload["description"] = description
	}
	if len(labels) > 0 {
		payload["labels"] = strings.Join(labels, ",")
	}
	var created glIssue
	path := "/projects/" + encodedProject(projectPath) + "/issues"
	if err := a.t.PostJSON(ctx, path, payload, &created); err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && reqErr.Status == 404 {
			// Older servers report a disabled issue tracker as 404.
			return nil, ErrIssuesDisabled
		}
		return nil, a.classify(err, "createCard", "project", projectPath)
	}
	card := convertIssue(created)
	return &card, nil
}

func convertIssue(is glIssue) types.Card {
	card := types.Card{
		ID:        is.ID,
		IID:       is.IID,
		Title:     is.Title,
		State:     is.State,
		WebURL:    is.WebURL,
		Author:    convertRestUser(is.Author),
		Labels:    is.Labels,
		CreatedAt: is.CreatedAt,
	}
	for _, u := range is.Assignees {
		card.Assignees = append(card.Assignees, convertRestUser(u))
	}
	return card
}
