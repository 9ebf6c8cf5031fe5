package gitlab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"reviewdeck-backend/internal/notify"
	"reviewdeck-backend/internal/store"
	"reviewdeck-backend/internal/types"
)

// Adapter normalizes one GitLab account into the canonical pull-request
// model. It exclusively owns its caches; callers go through the public
// operations and never touch provider shapes. One Adapter per connected
// account; adapters never share maps.
type Adapter struct {
	accountID string
	t         *Transport
	logger    *slog.Logger
	notifier  *notify.Notifier
	conn      *store.ConnectionStore

	pending      *PendingReviewStore
	details      *detailCache
	fileComments *fileCommentCache

	mu       sync.Mutex
	projects map[string]*glProject
}

func NewAdapter(accountID string, t *Transport, conn *store.ConnectionStore, notifier *notify.Notifier, commentTTL time.Duration, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		accountID:    accountID,
		t:            t,
		logger:       logger,
		notifier:     notifier,
		conn:         conn,
		pending:      NewPendingReviewStore(),
		details:      newDetailCache(),
		fileComments: newFileCommentCache(commentTTL),
		projects:     make(map[string]*glProject),
	}
}

// classify runs the error classifier and applies its side effects:
// connection/credential classes persist a token-error record, drop the
// cached GraphQL headers and come back suppressed; everything else
// propagates unchanged.
func (a *Adapter) classify(err error, op string, args ...any) error {
	if err == nil {
		return nil
	}
	kind := Classify(err)
	attrs := append([]any{"op", op, "kind", kind.String(), "err", err}, args...)
	switch kind {
	case KindConnection:
		a.conn.RecordTokenError(a.accountID, store.TokenErrorConnection)
		a.t.InvalidateGraphQL()
		a.logger.Warn("provider connection failure", attrs...)
		return &SuppressedError{Kind: kind, Err: err}
	case KindCredential:
		a.conn.RecordTokenError(a.accountID, store.TokenErrorCredential)
		a.t.InvalidateGraphQL()
		a.logger.Warn("provider rejected credential", attrs...)
		return &SuppressedError{Kind: kind, Err: err}
	case KindNetworkTransient:
		a.logger.Debug("transient network failure", attrs...)
		return err
	default:
		a.logger.Error("provider operation failed", attrs...)
		return err
	}
}

func (a *Adapter) publish(c notify.Change) {
	if a.notifier != nil {
		a.notifier.Publish(c)
	}
}

func encodedProject(path string) string {
	return url.PathEscape(path)
}

func mrPath(ref MergeRequestRef, suffix string) string {
	p := fmt.Sprintf("/projects/%s/merge_requests/%d", encodedProject(ref.ProjectPath), ref.IID)
	if suffix != "" {
		p += "/" + strings.TrimPrefix(suffix, "/")
	}
	return p
}

// getProject looks a project up by path, caching it for the adapter's
// lifetime. The cache is cleared on reconnect.
func (a *Adapter) getProject(ctx context.Context, path string) (*glProject, error) {
	a.mu.Lock()
	if p, ok := a.projects[path]; ok {
		a.mu.Unlock()
		return p, nil
	}
	a.mu.Unlock()

	var p glProject
	if _, err := a.t.GetJSON(ctx, "/projects/"+encodedProject(path), &p); err != nil {
		return nil, a.classify(err, "getProject", "project", path)
	}
	a.mu.Lock()
	a.projects[path] = &p
	a.mu.Unlock()
	return &p, nil
}

// Reconnect resets process-lifetime caches after the credential or base URL
// changed. The pending review store survives; staged drafts belong to the
// user, not the connection.
func (a *Adapter) Reconnect() {
	a.mu.Lock()
	a.projects = make(map[string]*glProject)
	a.mu.Unlock()
	a.details.Clear()
	a.fileComments.Clear()
	a.t.InvalidateGraphQL()
	a.conn.ClearTokenError(a.accountID)
}

// SearchPullRequests lists merge requests matching a saved query of
// space-joined key:value terms, e.g. "repo:group/name state:opened
// scope:assigned-to-me". Bare terms become free-text search.
func (a *Adapter) SearchPullRequests(ctx context.Context, query string) ([]types.PullRequest, error) {
	values := url.Values{}
	project := ""
	for _, term := range strings.Fields(query) {
		key, value, ok := strings.Cut(term, ":")
		if !ok {
			values.Set("search", term)
			continue
		}
		switch key {
		case "repo", "project":
			project = value
		case "is", "state":
			values.Set("state", normalizeState(value))
		case "scope":
			values.Set("scope", strings.ReplaceAll(value, "-", "_"))
		case "author":
			values.Set("author_username", value)
		case "label", "labels":
			values.Set("labels", value)
		case "milestone":
			values.Set("milestone", value)
		case "draft", "wip":
			values.Set("wip", strings.ToLower(value))
		default:
			// Unknown keys are ignored rather than failing the search.
		}
	}
	if values.Get("scope") == "" {
		values.Set("scope", "all")
	}

	path := "/merge_requests"
	if project != "" {
		path = "/projects/" + encodedProject(project) + "/merge_requests"
	}
	path += "?" + values.Encode()

	listed, err := collectPages[glMergeRequest](ctx, a.t, path)
	if err != nil {
		return nil, a.classify(err, "searchPullRequests", "query", query)
	}
	out := make([]types.PullRequest, 0, len(listed))
	for _, mr := range listed {
		out = append(out, normalizeListed(mr))
	}
	return out, nil
}

func normalizeState(v string) string {
	switch strings.ToLower(v) {
	case "open", "opened":
		return "opened"
	case "closed":
		return "closed"
	case "merged":
		return "merged"
	default:
		return "all"
	}
}

// GetPullRequest fetches, normalizes and assembles full detail for the
// identified pull request. force bypasses and refreshes the detail cache.
//
// The project lookup and the detail query are required: if either fails the
// operation errors and nothing is cached. The three auxiliary event fetches
// enrich the timeline all-or-nothing; when they fail the error is logged
// and the already-populated detail object is returned without a timeline,
// left uncached so the next fetch retries enrichment.
func (a *Adapter) GetPullRequest(ctx context.Context, token string, force bool) (*types.PullRequest, error) {
	ref, err := DecodeID(token)
	if err != nil {
		return nil, err
	}

	if !force {
		if pr, ok := a.details.Get(ref.NumericID); ok {
			return pr, nil
		}
	}

	project, err := a.getProject(ctx, ref.ProjectPath)
	if err != nil {
		return nil, err
	}

	var detail gqlDetailResponse
	vars := map[string]any{"fullPath": ref.ProjectPath, "iid": strconv.Itoa(ref.IID)}
	if err := a.t.Query(ctx, "mergeRequestDetail", queryMergeRequestDetail, vars, &detail); err != nil {
		return nil, a.classify(err, "getPullRequest", "ref", ref.FullReference())
	}
	mr := detail.Project.MergeRequest
	if mr == nil {
		err := &GraphQLErrors{Operation: "mergeRequestDetail", Errors: []GraphQLError{{Message: "merge request not found"}}}
		return nil, a.classify(err, "getPullRequest", "ref", ref.FullReference())
	}

	pr := normalizeDetail(mr, ref.NumericID)
	drafts := a.pending.List(ref.NumericID)
	if len(drafts) > 0 {
		pr.PendingReview = &types.PendingReviewSummary{CommentCount: len(drafts)}
	}

	streams, err := a.fetchTimelineStreams(ctx, project, ref)
	if err != nil {
		// Enrichment is all-or-nothing; the detail object is still
		// useful, so it is returned partially populated and uncached.
		a.logger.Error("timeline enrichment failed",
			"op", "getPullRequest", "ref", ref.FullReference(), "err", err)
		if pending := pendingDiscussion(drafts); pending != nil {
			pr.Discussions = []types.TimelineItem{{Type: "discussion", Discussion: pending}}
		}
		return pr, nil
	}
	pr.Discussions = assembleTimeline(streams, pendingDiscussion(drafts))

	a.details.Set(ref.NumericID, pr)
	return pr, nil
}

// fetchTimelineStreams fans the discussion and three event fetches out
// concurrently and fails if any of them fails. Discussions come from the
// REST listing so the Link-header walker pages long threads; the GraphQL
// detail query stays thread-free.
func (a *Adapter) fetchTimelineStreams(ctx context.Context, project *glProject, ref MergeRequestRef) ([][]types.TimelineItem, error) {
	var (
		wg              sync.WaitGroup
		discussions     []glDiscussion
		activity        []glActivityEvent
		labelEvents     []glResourceEvent
		milestoneEvents []glResourceEvent
		discussionErr   error
		activityErr     error
		labelErr        error
		milestoneErr    error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		discussions, discussionErr = collectPages[glDiscussion](ctx, a.t, mrPath(ref, "discussions"))
	}()
	go func() {
		defer wg.Done()
		path := fmt.Sprintf("/projects/%d/events?target_type=merge_request", project.ID)
		activity, activityErr = collectPages[glActivityEvent](ctx, a.t, path)
	}()
	go func() {
		defer wg.Done()
		labelEvents, labelErr = collectPages[glResourceEvent](ctx, a.t, mrPath(ref, "resource_label_events"))
	}()
	go func() {
		defer wg.Done()
		milestoneEvents, milestoneErr = collectPages[glResourceEvent](ctx, a.t, mrPath(ref, "resource_milestone_events"))
	}()
	wg.Wait()

	if err := errors.Join(discussionErr, activityErr, labelErr, milestoneErr); err != nil {
		return nil, err
	}

	return [][]types.TimelineItem{
		discussionItems(discussions),
		activityItems(activity, ref.IID),
		labelItems(labelEvents),
		milestoneItems(milestoneEvents),
	}, nil
}

// ListReviewers returns the users who can or did approve the pull request.
func (a *Adapter) ListReviewers(ctx context.Context, token string) ([]types.Reviewer, error) {
	ref, err := DecodeID(token)
	if err != nil {
		return nil, err
	}
	var approvals glApprovals
	if _, err := a.t.GetJSON(ctx, mrPath(ref, "approvals"), &approvals); err != nil {
		return nil, a.classify(err, "listReviewers", "ref", ref.FullReference())
	}
	out := make([]types.Reviewer, 0, len(approvals.ApprovedBy))
	for _, ab := range approvals.ApprovedBy {
		out = append(out, types.Reviewer{
			User:     convertRestUser(ab.User),
			State:    "approved",
			Approved: true,
		})
	}
	return out, nil
}

// CreateComment posts a comment on the pull request. With a diff position
// it opens a new discussion thread; while a review is open locally, inline
// comments are staged instead of posted.
func (a *Adapter) CreateComment(ctx context.Context, token, body string, position *types.Position) (*types.Note, error) {
	ref, err := DecodeID(token)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, fmt.Errorf("comment body is required")
	}

	if position != nil && a.pending.Has(ref.NumericID) {
		a.pending.Stage(ref.NumericID, types.DraftComment{Body: body, Position: position})
		a.details.Invalidate(ref.NumericID)
		a.publish(notify.Change{
			Kind:          notify.KindComments,
			PullRequestID: token,
			NumericID:     ref.NumericID,
			Path:          position.FilePath,
		})
		return &types.Note{Body: body, Position: position, State: "PENDING", Pending: true, Author: pendingAuthor}, nil
	}

	note, err := a.postComment(ctx, ref, body, position)
	if err != nil {
		return nil, a.classify(err, "createComment", "ref", ref.FullReference())
	}

	a.details.Invalidate(ref.NumericID)
	if position != nil {
		a.InvalidateFileComments(ref.ProjectPath, position.FilePath)
	}
	a.publish(notify.Change{
		Kind:          notify.KindComments,
		PullRequestID: token,
		NumericID:     ref.NumericID,
		Path:          positionPath(position),
		CommentID:     note.ID,
	})
	return note, nil
}

func positionPath(p *types.Position) string {
	if p == nil {
		return ""
	}
	return p.FilePath
}

func (a *Adapter) postComment(ctx context.Context, ref MergeRequestRef, body string, position *types.Position) (*types.Note, error) {
	if position == nil {
		var created glNote
		payload := map[string]any{"body": body}
		if err := a.t.PostJSON(ctx, mrPath(ref, "notes"), payload, &created); err != nil {
			return nil, err
		}
		note := convertRestNote(created)
		return &note, nil
	}

	pos := map[string]any{
		"position_type": "text",
		"base_sha":      position.BaseSHA,
		"head_sha":      position.HeadSHA,
		"start_sha":     position.StartSHA,
		"new_path":      position.FilePath,
		"old_path":      position.FilePath,
	}
	if position.NewLine != 0 {
		pos["new_line"] = position.NewLine
	}
	if position.OldLine != 0 {
		pos["old_line"] = position.OldLine
	}
	payload := map[string]any{"body": body, "position": pos}
	var created glDiscussion
	if err := a.t.PostJSON(ctx, mrPath(ref, "discussions"), payload, &created); err != nil {
		return nil, err
	}
	if len(created.Notes) == 0 {
		return &types.Note{Body: body, Position: position}, nil
	}
	note := convertRestNote(created.Notes[0])
	return &note, nil
}

// ReplyToComment appends a note to an existing discussion thread.
func (a *Adapter) ReplyToComment(ctx context.Context, token, discussionID, body string) (*types.Note, error) {
	ref, err := DecodeID(token)
	if err != nil {
		return nil, err
	}
	if discussionID == "" || body == "" {
		return nil, fmt.Errorf("discussion id and body are required")
	}
	var created glNote
	path := mrPath(ref, "discussions/"+url.PathEscape(discussionID)+"/notes")
	if err := a.t.PostJSON(ctx, path, map[string]any{"body": body}, &created); err != nil {
		return nil, a.classify(err, "replyToComment", "ref", ref.FullReference(), "discussion", discussionID)
	}
	a.details.Invalidate(ref.NumericID)
	note := convertRestNote(created)
	a.publish(notify.Change{
		Kind:          notify.KindComments,
		PullRequestID: token,
		NumericID:     ref.NumericID,
		CommentID:     note.ID,
	})
	return &note, nil
}

// DeleteComment removes a note from the pull request.
func (a *Adapter) DeleteComment(ctx context.Context, token string, noteID int) error {
	ref, err := DecodeID(token)
	if err != nil {
		return err
	}
	if noteID <= 0 {
		return fmt.Errorf("note id is required")
	}
	if err := a.t.Delete(ctx, mrPath(ref, "notes/"+strconv.Itoa(noteID))); err != nil {
		return a.classify(err, "deleteComment", "ref", ref.FullReference(), "note", noteID)
	}
	a.details.Invalidate(ref.NumericID)
	a.publish(notify.Change{
		Kind:          notify.KindComments,
		PullRequestID: token,
		NumericID:     ref.NumericID,
		CommentID:     strconv.Itoa(noteID),
	})
	return nil
}

// StageComment queues a draft inline comment into the open review. The
// draft is invisible to the provider until submit; the detail cache is
// invalidated so the next fetch renders it as a pending note.
func (a *Adapter) StageComment(token string, draft types.DraftComment) error {
	ref, err := DecodeID(token)
	if err != nil {
		return err
	}
	a.pending.Stage(ref.NumericID, draft)
	a.details.Invalidate(ref.NumericID)
	a.publish(notify.Change{
		Kind:          notify.KindComments,
		PullRequestID: token,
		NumericID:     ref.NumericID,
		Path:          positionPath(draft.Position),
	})
	return nil
}

// DiscardReview drops every staged draft without submitting anything.
func (a *Adapter) DiscardReview(token string) error {
	ref, err := DecodeID(token)
	if err != nil {
		return err
	}
	a.pending.Discard(ref.NumericID)
	a.details.Invalidate(ref.NumericID)
	a.publish(notify.Change{
		Kind:          notify.KindComments,
		PullRequestID: token,
		NumericID:     ref.NumericID,
	})
	return nil
}

// HasPendingReview reports whether drafts are staged for the pull request.
func (a *Adapter) HasPendingReview(token string) (bool, error) {
	ref, err := DecodeID(token)
	if err != nil {
		return false, err
	}
	return a.pending.Has(ref.NumericID), nil
}

// SubmitReview flushes every staged draft as a real inline comment, then
// posts the summary body (when given) and applies the review event. The
// flush is best-effort: individual post failures are logged, reported in
// the batch result and never abort the rest. The staged list clears
// regardless of failures.
func (a *Adapter) SubmitReview(ctx context.Context, token, body string, event types.ReviewEvent) (types.BatchResult, error) {
	var result types.BatchResult
	if !event.Valid() {
		return result, fmt.Errorf("invalid review event %q", event)
	}
	ref, err := DecodeID(token)
	if err != nil {
		return result, err
	}

	drafts := a.pending.Take(ref.NumericID)
	for i, draft := range drafts {
		if _, err := a.postComment(ctx, ref, draft.Body, draft.Position); err != nil {
			a.logger.Error("failed to post staged comment",
				"op", "submitReview", "ref", ref.FullReference(), "index", i, "err", err)
			result.Failed = append(result.Failed, types.BatchFailure{Index: i, Message: err.Error()})
			continue
		}
		result.Succeeded++
		if draft.Position != nil {
			// The staged note is now provider-visible, so the file's
			// aggregated comments are stale.
			a.InvalidateFileComments(ref.ProjectPath, draft.Position.FilePath)
		}
	}

	if body != "" {
		if _, err := a.postComment(ctx, ref, body, nil); err != nil {
			a.logger.Error("failed to post review summary",
				"op", "submitReview", "ref", ref.FullReference(), "err", err)
			result.Failed = append(result.Failed, types.BatchFailure{Index: len(drafts), Message: err.Error()})
		}
	}

	if event == types.ReviewEventApprove {
		if err := a.t.PostJSON(ctx, mrPath(ref, "approve"), nil, nil); err != nil {
			a.logger.Error("failed to approve on review submit",
				"op", "submitReview", "ref", ref.FullReference(), "err", err)
		}
	}

	a.details.Invalidate(ref.NumericID)
	a.publish(notify.Change{
		Kind:          notify.KindPullRequest,
		PullRequestID: token,
		NumericID:     ref.NumericID,
	})
	return result, nil
}

// mutate runs a simple mutating call, invalidates the detail cache for the
// affected id and publishes a change notification.
func (a *Adapter) mutate(ctx context.Context, token, op string, call func(ref MergeRequestRef) error) error {
	ref, err := DecodeID(token)
	if err != nil {
		return err
	}
	if err := call(ref); err != nil {
		return a.classify(err, op, "ref", ref.FullReference())
	}
	a.details.Invalidate(ref.NumericID)
	a.publish(notify.Change{
		Kind:          notify.KindPullRequest,
		PullRequestID: token,
		NumericID:     ref.NumericID,
	})
	return nil
}

// SetLocked locks or unlocks the pull request's discussion.
func (a *Adapter) SetLocked(ctx context.Context, token string, locked bool) error {
	return a.mutate(ctx, token, "setLocked", func(ref MergeRequestRef) error {
		return a.t.PutJSON(ctx, mrPath(ref, ""), map[string]any{"discussion_locked": locked}, nil)
	})
}

// Approve approves the pull request; Unapprove revokes a prior approval.
func (a *Adapter) Approve(ctx context.Context, token string) error {
	return a.mutate(ctx, token, "approve", func(ref MergeRequestRef) error {
		return a.t.PostJSON(ctx, mrPath(ref, "approve"), nil, nil)
	})
}

func (a *Adapter) Unapprove(ctx context.Context, token string) error {
	return a.mutate(ctx, token, "unapprove", func(ref MergeRequestRef) error {
		return a.t.PostJSON(ctx, mrPath(ref, "unapprove"), nil, nil)
	})
}

// SetLabels replaces the pull request's labels.
func (a *Adapter) SetLabels(ctx context.Context, token string, labels []string) error {
	return a.mutate(ctx, token, "setLabels", func(ref MergeRequestRef) error {
		return a.t.PutJSON(ctx, mrPath(ref, ""), map[string]any{"labels": strings.Join(labels, ",")}, nil)
	})
}

// SetMilestone assigns a milestone; id 0 clears it.
func (a *Adapter) SetMilestone(ctx context.Context, token string, milestoneID int) error {
	return a.mutate(ctx, token, "setMilestone", func(ref MergeRequestRef) error {
		return a.t.PutJSON(ctx, mrPath(ref, ""), map[string]any{"milestone_id": milestoneID}, nil)
	})
}

// SetDraft toggles the work-in-progress flag through the GraphQL mutation.
func (a *Adapter) SetDraft(ctx context.Context, token string, draft bool) error {
	return a.mutate(ctx, token, "setDraft", func(ref MergeRequestRef) error {
		var resp gqlSetDraftResponse
		vars := map[string]any{
			"fullPath": ref.ProjectPath,
			"iid":      strconv.Itoa(ref.IID),
			"draft":    draft,
		}
		if err := a.t.Query(ctx, "mergeRequestSetDraft", mutationSetDraft, vars, &resp); err != nil {
			return err
		}
		if len(resp.MergeRequestSetDraft.Errors) > 0 {
			return fmt.Errorf("set draft rejected: %s", strings.Join(resp.MergeRequestSetDraft.Errors, "; "))
		}
		return nil
	})
}

// Merge merges the pull request.
func (a *Adapter) Merge(ctx context.Context, token string, squash, removeSourceBranch bool) error {
	return a.mutate(ctx, token, "merge", func(ref MergeRequestRef) error {
		payload := map[string]any{
			"squash":                      squash,
			"should_remove_source_branch": removeSourceBranch,
		}
		return a.t.PutJSON(ctx, mrPath(ref, "merge"), payload, nil)
	})
}

// ListCommits returns every commit of the pull request.
func (a *Adapter) ListCommits(ctx context.Context, token string) ([]types.Commit, error) {
	ref, err := DecodeID(token)
	if err != nil {
		return nil, err
	}
	commits, err := collectPages[glCommit](ctx, a.t, mrPath(ref, "commits"))
	if err != nil {
		return nil, a.classify(err, "listCommits", "ref", ref.FullReference())
	}
	out := make([]types.Commit, 0, len(commits))
	for _, c := range commits {
		out = append(out, types.Commit{
			SHA:       c.ID,
			Title:     c.Title,
			Message:   c.Message,
			Author:    c.AuthorName,
			CreatedAt: c.CreatedAt,
			WebURL:    c.WebURL,
		})
	}
	return out, nil
}

// ListChangedFiles returns the files touched by the pull request.
func (a *Adapter) ListChangedFiles(ctx context.Context, token string) ([]types.ChangedFile, error) {
	ref, err := DecodeID(token)
	if err != nil {
		return nil, err
	}
	var changes glChanges
	if _, err := a.t.GetJSON(ctx, mrPath(ref, "changes"), &changes); err != nil {
		return nil, a.classify(err, "listChangedFiles", "ref", ref.FullReference())
	}
	out := make([]types.ChangedFile, 0, len(changes.Changes))
	for _, ch := range changes.Changes {
		out = append(out, types.ChangedFile{
			OldPath:     ch.OldPath,
			NewPath:     ch.NewPath,
			NewFile:     ch.NewFile,
			RenamedFile: ch.RenamedFile,
			DeletedFile: ch.DeletedFile,
			Diff:        ch.Diff,
		})
	}
	return out, nil
}

// FileComments looks up the comments anchored to one file across the
// repository's open pull requests. A cache miss registers the aggregation
// and returns (nil, false); the computed comments arrive through a
// file-comments change notification once the chain completes. Concurrent
// lookups for the same key share one in-flight aggregation.
func (a *Adapter) FileComments(repoPath, relPath string) ([]types.FileComment, bool) {
	key := FileCommentKey(repoPath, relPath)
	return a.fileComments.Lookup(key,
		func() ([]types.FileComment, error) {
			// Detached from the caller: the aggregation outlives the
			// request that triggered it.
			return a.aggregateFileComments(context.Background(), repoPath, relPath)
		},
		func(comments []types.FileComment, err error) {
			if err != nil {
				a.logger.Error("file comment aggregation failed",
					"repo", repoPath, "path", relPath, "err", err)
				return
			}
			a.publish(notify.Change{Kind: notify.KindFileComments, Path: relPath})
		})
}

// aggregateFileComments walks the repository's open pull requests and
// collects every positioned note touching the file.
func (a *Adapter) aggregateFileComments(ctx context.Context, repoPath, relPath string) ([]types.FileComment, error) {
	path := "/projects/" + encodedProject(repoPath) + "/merge_requests?state=opened&scope=all"
	open, err := collectPages[glMergeRequest](ctx, a.t, path)
	if err != nil {
		return nil, a.classify(err, "aggregateFileComments", "repo", repoPath)
	}

	var out []types.FileComment
	for _, mr := range open {
		ref := MergeRequestRef{NumericID: mr.ID, ProjectPath: repoPath, IID: mr.IID}
		discussions, err := collectPages[glDiscussion](ctx, a.t, mrPath(ref, "discussions"))
		if err != nil {
			return nil, a.classify(err, "aggregateFileComments", "ref", ref.FullReference())
		}
		token := EncodeID(mr.ID, mr.References.Full)
		for _, d := range discussions {
			for _, n := range d.Notes {
				if n.Position == nil || n.Position.NewPath != relPath {
					continue
				}
				note := convertRestNote(n)
				out = append(out, types.FileComment{
					PullRequestID: token,
					Note:          note,
					Position:      *note.Position,
				})
			}
		}
	}
	return out, nil
}

// InvalidateFileComments drops the cached lookup for one file.
func (a *Adapter) InvalidateFileComments(repoPath, relPath string) {
	a.fileComments.Invalidate(FileCommentKey(repoPath, relPath))
}
