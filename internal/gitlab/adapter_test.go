package gitlab

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewdeck-backend/internal/notify"
	"reviewdeck-backend/internal/store"
	"reviewdeck-backend/internal/types"
)

const (
	testNumericID = 101
	testFullRef   = "group/app!5"
)

func testToken() string {
	return EncodeID(testNumericID, testFullRef)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type adapterFixture struct {
	adapter  *Adapter
	client   *mockHTTPClient
	conn     *store.ConnectionStore
	notifier *notify.Notifier
}

func newAdapterFixture(handler func(req *http.Request) (*http.Response, error)) *adapterFixture {
	client := &mockHTTPClient{handler: handler}
	tr := NewTransport(testBaseURL, testTokens(), client, discardLogger())
	conn := store.NewConnectionStore()
	notifier := notify.NewNotifier()
	adapter := NewAdapter("default", tr, conn, notifier, time.Minute, discardLogger())
	return &adapterFixture{adapter: adapter, client: client, conn: conn, notifier: notifier}
}

const detailGraphQLBody = `{"data":{"project":{"mergeRequest":{
	"iid":"5","title":"Add retry","state":"opened","webUrl":"https://gitlab.example.com/group/app/-/merge_requests/5",
	"reference":"!5",
	"sourceProject":{"name":"app","fullPath":"group/app","webUrl":"https://gitlab.example.com/group/app"},
	"author":{"username":"dev"}
}}}}`

// detailRoutes answers every request GetPullRequest issues. The discussion
// listing spans two Link-header pages. Overrides let individual tests fail
// one leg of the fan-out.
func detailRoutes(overrides map[string]func(req *http.Request) (*http.Response, error)) func(req *http.Request) (*http.Response, error) {
	var mu sync.Mutex
	return func(req *http.Request) (*http.Response, error) {
		mu.Lock()
		override, ok := overrides[routeKey(req)]
		mu.Unlock()
		if ok {
			return override(req)
		}
		switch {
		case req.URL.Path == "/api/graphql":
			return jsonResponse(200, detailGraphQLBody, nil), nil
		case req.URL.Path == "/api/v4/projects/group/app":
			return jsonResponse(200, `{"id":77,"path":"app","path_with_namespace":"group/app","issues_enabled":true}`, nil), nil
		case req.URL.Path == "/api/v4/projects/77/events":
			return jsonResponse(200, `[{"id":1,"action_name":"approved","target_iid":5,"created_at":"2026-01-01T12:00:00Z","author":{"username":"lead"}}]`, nil), nil
		case strings.HasSuffix(req.URL.Path, "/discussions") && req.Method == http.MethodGet:
			if req.URL.Query().Get("page") == "2" {
				return jsonResponse(200, `[{"id":"d2","notes":[
					{"id":30,"body":"from page two","created_at":"2026-01-01T13:00:00Z","author":{"username":"qa"}}
				]}]`, nil), nil
			}
			h := http.Header{}
			h.Set("Link", fmt.Sprintf(`<%s/projects/group%%2Fapp/merge_requests/5/discussions?page=2>; rel="next"`, testBaseURL))
			return jsonResponse(200, `[{"id":"d1","notes":[
				{"id":10,"body":"looks good","resolvable":true,"created_at":"2026-01-01T10:00:00Z","author":{"username":"dev"}},
				{"id":11,"body":"thanks","created_at":"2026-01-01T11:00:00Z","author":{"username":"author"}}
			]}]`, h), nil
		case strings.HasSuffix(req.URL.Path, "/resource_label_events"):
			return jsonResponse(200, `[{"id":2,"action":"add","created_at":"2026-01-01T09:00:00Z","label":{"id":3,"name":"bug","color":"#f00"},"user":{"username":"dev"}}]`, nil), nil
		case strings.HasSuffix(req.URL.Path, "/resource_milestone_events"):
			return jsonResponse(200, `[]`, nil), nil
		default:
			return jsonResponse(404, `{"message":"404 Not Found"}`, nil), nil
		}
	}
}

func routeKey(req *http.Request) string {
	return req.Method + " " + req.URL.Path
}

func TestGetPullRequestAssemblesAndCaches(t *testing.T) {
	f := newAdapterFixture(detailRoutes(nil))
	ctx := context.Background()

	pr, err := f.adapter.GetPullRequest(ctx, testToken(), false)
	require.NoError(t, err)
	assert.Equal(t, 5, pr.Number)
	assert.Equal(t, testToken(), pr.ID)
	assert.Equal(t, "group/app!5", pr.References.Full)

	// label event, first-page discussion, activity event, second-page
	// discussion, in timestamp order
	require.Len(t, pr.Discussions, 4)
	assert.Equal(t, "label", pr.Discussions[0].Type)
	assert.Equal(t, "discussion", pr.Discussions[1].Type)
	assert.Equal(t, "merge-request", pr.Discussions[2].Type)
	assert.Equal(t, "discussion", pr.Discussions[3].Type)

	disc := pr.Discussions[1].Discussion
	require.NotNil(t, disc)
	require.Len(t, disc.Notes, 1)
	assert.Equal(t, "looks good", disc.Notes[0].Body)
	require.Len(t, disc.Notes[0].Replies, 1)

	// The discussion listing spans two Link-header pages; a thread that
	// only appears on the second page must still make the timeline.
	paged := pr.Discussions[3].Discussion
	require.NotNil(t, paged)
	assert.Equal(t, "d2", paged.ID)
	require.Len(t, paged.Notes, 1)
	assert.Equal(t, "from page two", paged.Notes[0].Body)
	assert.Equal(t, 2, f.client.callCount("GET /api/v4/projects/group/app/merge_requests/5/discussions"))

	again, err := f.adapter.GetPullRequest(ctx, testToken(), false)
	require.NoError(t, err)
	assert.Same(t, pr, again)
	assert.Equal(t, 1, f.client.callCount("POST /api/graphql"))

	_, err = f.adapter.GetPullRequest(ctx, testToken(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, f.client.callCount("POST /api/graphql"))
}

func TestMutationInvalidatesCacheAndNotifies(t *testing.T) {
	routes := detailRoutes(map[string]func(req *http.Request) (*http.Response, error){
		"POST /api/v4/projects/group/app/merge_requests/5/approve": func(req *http.Request) (*http.Response, error) {
			return jsonResponse(201, `{}`, nil), nil
		},
	})
	f := newAdapterFixture(routes)
	ctx := context.Background()

	_, err := f.adapter.GetPullRequest(ctx, testToken(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.client.callCount("POST /api/graphql"))

	changes, cancel := f.notifier.Subscribe()
	defer cancel()

	require.NoError(t, f.adapter.Approve(ctx, testToken()))

	select {
	case change := <-changes:
		assert.Equal(t, notify.KindPullRequest, change.Kind)
		assert.Equal(t, testToken(), change.PullRequestID)
		assert.Equal(t, testNumericID, change.NumericID)
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}

	// The cached detail is gone, so the next fetch goes to the network.
	_, err = f.adapter.GetPullRequest(ctx, testToken(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.client.callCount("POST /api/graphql"))
}

func TestGetPullRequestEnrichmentFailureReturnsPartialUncached(t *testing.T) {
	routes := detailRoutes(map[string]func(req *http.Request) (*http.Response, error){
		"GET /api/v4/projects/group/app/merge_requests/5/resource_label_events": func(req *http.Request) (*http.Response, error) {
			return jsonResponse(500, `{"message":"boom"}`, nil), nil
		},
	})
	f := newAdapterFixture(routes)
	ctx := context.Background()

	pr, err := f.adapter.GetPullRequest(ctx, testToken(), false)
	require.NoError(t, err)
	assert.Equal(t, 5, pr.Number)
	assert.Empty(t, pr.Discussions)

	// Not cached: the next call retries the whole assembly.
	_, err = f.adapter.GetPullRequest(ctx, testToken(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.client.callCount("POST /api/graphql"))
}

func TestPendingReviewLifecycle(t *testing.T) {
	f := newAdapterFixture(detailRoutes(nil))
	ctx := context.Background()
	token := testToken()

	pending, err := f.adapter.HasPendingReview(token)
	require.NoError(t, err)
	assert.False(t, pending)

	pos := &types.Position{FilePath: "main.go", NewLine: 10}
	require.NoError(t, f.adapter.StageComment(token, types.DraftComment{Body: "first draft", Position: pos}))
	require.NoError(t, f.adapter.StageComment(token, types.DraftComment{Body: "second draft", Position: pos}))

	pending, err = f.adapter.HasPendingReview(token)
	require.NoError(t, err)
	assert.True(t, pending)
	// Staging never talks to the provider.
	assert.Empty(t, f.client.calls)

	pr, err := f.adapter.GetPullRequest(ctx, token, false)
	require.NoError(t, err)
	require.NotNil(t, pr.PendingReview)
	assert.Equal(t, 2, pr.PendingReview.CommentCount)

	last := pr.Discussions[len(pr.Discussions)-1]
	require.NotNil(t, last.Discussion)
	assert.Equal(t, "pending-review", last.Discussion.ID)
	require.Len(t, last.Discussion.Notes, 2)
	for _, n := range last.Discussion.Notes {
		assert.True(t, n.Pending)
		assert.Equal(t, "PENDING", n.State)
	}

	require.NoError(t, f.adapter.DiscardReview(token))
	pending, err = f.adapter.HasPendingReview(token)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestSubmitReviewRejectsInvalidEventBeforeNetwork(t *testing.T) {
	f := newAdapterFixture(detailRoutes(nil))
	f.adapter.pending.Stage(testNumericID, types.DraftComment{Body: "draft"})

	_, err := f.adapter.SubmitReview(context.Background(), testToken(), "", types.ReviewEvent("BOGUS"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid review event")
	assert.Empty(t, f.client.calls)
	// Drafts survive a rejected submit.
	assert.True(t, f.adapter.pending.Has(testNumericID))
}

func TestSubmitReviewBestEffortFlush(t *testing.T) {
	var discussionPosts int
	var mu sync.Mutex
	routes := detailRoutes(map[string]func(req *http.Request) (*http.Response, error){
		"POST /api/v4/projects/group/app/merge_requests/5/discussions": func(req *http.Request) (*http.Response, error) {
			mu.Lock()
			discussionPosts++
			n := discussionPosts
			mu.Unlock()
			if n == 1 {
				return jsonResponse(500, `{"message":"boom"}`, nil), nil
			}
			return jsonResponse(201, `{"id":"d9","notes":[{"id":900,"body":"second draft","author":{"username":"you"}}]}`, nil), nil
		},
		"POST /api/v4/projects/group/app/merge_requests/5/notes": func(req *http.Request) (*http.Response, error) {
			return jsonResponse(201, `{"id":901,"body":"summary","author":{"username":"you"}}`, nil), nil
		},
	})
	f := newAdapterFixture(routes)

	pos := &types.Position{FilePath: "main.go", NewLine: 10}
	f.adapter.pending.Stage(testNumericID, types.DraftComment{Body: "first draft", Position: pos})
	f.adapter.pending.Stage(testNumericID, types.DraftComment{Body: "second draft", Position: pos})

	result, err := f.adapter.SubmitReview(context.Background(), testToken(), "summary", types.ReviewEventComment)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 0, result.Failed[0].Index)

	// The staged list clears even though one draft failed.
	assert.False(t, f.adapter.pending.Has(testNumericID))
}

func TestCreateCommentStagesWhileReviewOpen(t *testing.T) {
	f := newAdapterFixture(detailRoutes(nil))
	token := testToken()
	pos := &types.Position{FilePath: "main.go", NewLine: 10}

	f.adapter.pending.Stage(testNumericID, types.DraftComment{Body: "opening draft", Position: pos})

	note, err := f.adapter.CreateComment(context.Background(), token, "second thought", pos)
	require.NoError(t, err)
	assert.True(t, note.Pending)
	assert.Equal(t, "PENDING", note.State)
	assert.Empty(t, f.client.calls)
	assert.Len(t, f.adapter.pending.List(testNumericID), 2)
}

func TestCredentialFailureSuppressedAndRecorded(t *testing.T) {
	f := newAdapterFixture(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(401, `{"message":"401 Unauthorized"}`, nil), nil
	})

	_, err := f.adapter.SearchPullRequests(context.Background(), "state:opened")
	require.Error(t, err)
	assert.True(t, IsSuppressed(err))

	record, ok := f.conn.TokenError("default")
	require.True(t, ok)
	assert.Equal(t, store.TokenErrorCredential, record.Kind)
}

func TestUnclassifiedFailurePropagatesUnchanged(t *testing.T) {
	f := newAdapterFixture(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(500, `{"message":"boom"}`, nil), nil
	})

	_, err := f.adapter.SearchPullRequests(context.Background(), "state:opened")
	require.Error(t, err)
	assert.False(t, IsSuppressed(err))
	var reqErr *RequestError
	assert.ErrorAs(t, err, &reqErr)

	_, ok := f.conn.TokenError("default")
	assert.False(t, ok)
}

func TestSearchPullRequestsBuildsScopedPath(t *testing.T) {
	var gotPath, gotQuery string
	f := newAdapterFixture(func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		gotQuery = req.URL.RawQuery
		return jsonResponse(200, `[{"id":101,"iid":5,"title":"Add retry","state":"opened","references":{"full":"group/app!5"}}]`, nil), nil
	})

	pulls, err := f.adapter.SearchPullRequests(context.Background(), "repo:group/app state:opened author:dev")
	require.NoError(t, err)
	require.Len(t, pulls, 1)
	assert.Equal(t, testToken(), pulls[0].ID)

	assert.Equal(t, "/api/v4/projects/group/app/merge_requests", gotPath)
	assert.Contains(t, gotQuery, "state=opened")
	assert.Contains(t, gotQuery, "author_username=dev")
}

func TestFileCommentsAsyncAggregation(t *testing.T) {
	routes := func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.HasSuffix(req.URL.Path, "/merge_requests") && req.Method == http.MethodGet:
			return jsonResponse(200, `[{"id":101,"iid":5,"title":"Add retry","state":"opened","references":{"full":"group/app!5"}}]`, nil), nil
		case strings.HasSuffix(req.URL.Path, "/discussions"):
			return jsonResponse(200, `[{"id":"d1","notes":[
				{"id":1,"body":"on main","author":{"username":"dev"},"position":{"new_path":"main.go","new_line":10}},
				{"id":2,"body":"elsewhere","author":{"username":"dev"},"position":{"new_path":"util.go","new_line":3}},
				{"id":3,"body":"no position","author":{"username":"dev"}}
			]}]`, nil), nil
		default:
			return jsonResponse(404, `{"message":"404 Not Found"}`, nil), nil
		}
	}
	f := newAdapterFixture(routes)

	changes, cancel := f.notifier.Subscribe()
	defer cancel()

	comments, ready := f.adapter.FileComments("group/app", "main.go")
	assert.False(t, ready)
	assert.Nil(t, comments)

	select {
	case change := <-changes:
		assert.Equal(t, notify.KindFileComments, change.Kind)
		assert.Equal(t, "main.go", change.Path)
	case <-time.After(time.Second):
		t.Fatal("expected a file-comments notification")
	}
	f.adapter.fileComments.Wait(FileCommentKey("group/app", "main.go"))

	comments, ready = f.adapter.FileComments("group/app", "main.go")
	require.True(t, ready)
	require.Len(t, comments, 1)
	assert.Equal(t, "on main", comments[0].Note.Body)
	assert.Equal(t, "main.go", comments[0].Position.FilePath)
	assert.Equal(t, testToken(), comments[0].PullRequestID)
}

func TestReconnectClearsCachesAndKeepsDrafts(t *testing.T) {
	f := newAdapterFixture(detailRoutes(nil))
	ctx := context.Background()
	token := testToken()

	_, err := f.adapter.GetPullRequest(ctx, token, false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.client.callCount("POST /api/graphql"))
	assert.Equal(t, 1, f.client.callCount("GET /api/v4/projects/group/app"))

	f.conn.RecordTokenError("default", store.TokenErrorCredential)
	require.NoError(t, f.adapter.StageComment(token, types.DraftComment{Body: "draft"}))

	f.adapter.Reconnect()

	// The recorded token error is gone and staged drafts survive.
	_, ok := f.conn.TokenError("default")
	assert.False(t, ok)
	pending, err := f.adapter.HasPendingReview(token)
	require.NoError(t, err)
	assert.True(t, pending)

	// Both the detail cache and the project cache were dropped, so the
	// next fetch goes back to the network for each.
	_, err = f.adapter.GetPullRequest(ctx, token, false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.client.callCount("POST /api/graphql"))
	assert.Equal(t, 2, f.client.callCount("GET /api/v4/projects/group/app"))
}

func TestCreateCommentInvalidatesFileCommentCache(t *testing.T) {
	routes := func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.HasSuffix(req.URL.Path, "/discussions") && req.Method == http.MethodPost:
			return jsonResponse(201, `{"id":"d5","notes":[
				{"id":500,"body":"new inline","author":{"username":"you"},"position":{"new_path":"main.go","new_line":10}}
			]}`, nil), nil
		case strings.HasSuffix(req.URL.Path, "/merge_requests") && req.Method == http.MethodGet:
			return jsonResponse(200, `[{"id":101,"iid":5,"title":"Add retry","state":"opened","references":{"full":"group/app!5"}}]`, nil), nil
		case strings.HasSuffix(req.URL.Path, "/discussions"):
			return jsonResponse(200, `[{"id":"d1","notes":[
				{"id":1,"body":"on main","author":{"username":"dev"},"position":{"new_path":"main.go","new_line":10}}
			]}]`, nil), nil
		default:
			return jsonResponse(404, `{"message":"404 Not Found"}`, nil), nil
		}
	}
	f := newAdapterFixture(routes)
	key := FileCommentKey("group/app", "main.go")

	_, ready := f.adapter.FileComments("group/app", "main.go")
	require.False(t, ready)
	f.adapter.fileComments.Wait(key)
	comments, ready := f.adapter.FileComments("group/app", "main.go")
	require.True(t, ready)
	require.Len(t, comments, 1)

	pos := &types.Position{FilePath: "main.go", NewLine: 10, BaseSHA: "aaa", HeadSHA: "bbb", StartSHA: "ccc"}
	_, err := f.adapter.CreateComment(context.Background(), testToken(), "new inline", pos)
	require.NoError(t, err)

	// The posted comment made the cached per-file lookup stale, so the
	// next call misses and re-aggregates.
	_, ready = f.adapter.FileComments("group/app", "main.go")
	assert.False(t, ready)
}

func TestBoardsDegradeToEmptyOnFailure(t *testing.T) {
	f := newAdapterFixture(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(403, `{"message":"403 Forbidden"}`, nil), nil
	})

	boards := f.adapter.Boards(context.Background(), "group/app")
	assert.Empty(t, boards)
	cards := f.adapter.Cards(context.Background(), "group/app", "bug")
	assert.Empty(t, cards)
}

func TestCreateCardRejectsDisabledIssues(t *testing.T) {
	f := newAdapterFixture(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/api/v4/projects/group/app" {
			return jsonResponse(200, `{"id":77,"path_with_namespace":"group/app","issues_enabled":false}`, nil), nil
		}
		return jsonResponse(404, `{"message":"404 Not Found"}`, nil), nil
	})

	_, err := f.adapter.CreateCard(context.Background(), "group/app", "title", "", nil)
	assert.ErrorIs(t, err, ErrIssuesDisabled)
}
