package types

// Canonical pull-request schema shared by the adapter and the HTTP surface.
// Provider-native shapes never leave internal/gitlab; everything the UI layer
// sees is expressed in these types.

type User struct {
	ID        int    `json:"id,omitempty"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	WebURL    string `json:"webUrl,omitempty"`
}

// Position anchors a note to a diff line.
type Position struct {
	FilePath     string `json:"filePath"`
	OldLine      int    `json:"oldLine,omitempty"`
	NewLine      int    `json:"newLine,omitempty"`
	BaseSHA      string `json:"baseSha,omitempty"`
	HeadSHA      string `json:"headSha,omitempty"`
	StartSHA     string `json:"startSha,omitempty"`
	PositionType string `json:"positionType,omitempty"`
}

type Note struct {
	ID        string          `json:"id"`
	Author    User            `json:"author"`
	Body      string          `json:"body"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
	System    bool            `json:"system,omitempty"`
	State     string          `json:"state,omitempty"`
	Position  *Position       `json:"position,omitempty"`
	Replies   []Note          `json:"replies,omitempty"`
	Reactions []ReactionGroup `json:"reactions,omitempty"`
	// Pending marks a note that exists only in the local pending-review
	// store and has not been submitted to the provider.
	Pending bool `json:"_pending,omitempty"`
}

type Discussion struct {
	ID         string `json:"id"`
	Resolvable bool   `json:"resolvable"`
	Resolved   bool   `json:"resolved"`
	CreatedAt  string `json:"createdAt"`
	// Notes holds exactly one element after assembly: the thread root.
	// Follow-ups live in the root's Replies.
	Notes []Note `json:"notes"`
}

// ReactionGroup collects award entries sharing the same emoji name.
type ReactionGroup struct {
	Content string `json:"content"`
	Data    []User `json:"data"`
}

// TimelineItem is one entry of the assembled discussion timeline. Type is
// "discussion", "merge-request", "label" or "milestone".
type TimelineItem struct {
	Type       string      `json:"type"`
	CreatedAt  string      `json:"createdAt"`
	Discussion *Discussion `json:"discussion,omitempty"`
	Event      *Event      `json:"event,omitempty"`
}

// Event is an activity, label-change or milestone-change record.
type Event struct {
	Action    string `json:"action"`
	CreatedAt string `json:"createdAt"`
	User      User   `json:"user"`
	Label     *Label `json:"label,omitempty"`
	Milestone string `json:"milestone,omitempty"`
}

type Label struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type Milestone struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type Repository struct {
	Name          string `json:"name"`
	NameWithOwner string `json:"nameWithOwner"`
	URL           string `json:"url"`
}

type References struct {
	Full string `json:"full"`
}

type PullRequest struct {
	// ID is the opaque token produced by the identifier codec; callers
	// pass it back unchanged on every follow-up operation.
	ID          string `json:"id"`
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	State       string `json:"state"`
	WebURL      string `json:"webUrl"`

	BaseRefName string `json:"baseRefName"`
	HeadRefName string `json:"headRefName"`
	BaseRefOid  string `json:"baseRefOid,omitempty"`
	HeadRefOid  string `json:"headRefOid,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	MergedAt  string `json:"mergedAt,omitempty"`
	Merged    bool   `json:"merged"`
	Draft     bool   `json:"draft"`

	Author     User            `json:"author"`
	Labels     []Label         `json:"labels,omitempty"`
	Milestone  *Milestone      `json:"milestone,omitempty"`
	Repository Repository      `json:"repository"`
	References References      `json:"references"`
	Reactions  []ReactionGroup `json:"reactions,omitempty"`

	UserNotesCount int `json:"userNotesCount,omitempty"`

	Discussions   []TimelineItem        `json:"discussions,omitempty"`
	PendingReview *PendingReviewSummary `json:"pendingReview,omitempty"`
}

// PendingReviewSummary is rendered into a fetched pull request while a
// review is open locally.
type PendingReviewSummary struct {
	CommentCount int `json:"commentCount"`
}

// DraftComment is one staged inline comment of a pending review.
type DraftComment struct {
	Body     string    `json:"body"`
	Position *Position `json:"position,omitempty"`
}

// BatchResult reports the per-item outcome of a best-effort batch, such as
// the pending-review flush.
type BatchResult struct {
	Succeeded int            `json:"succeeded"`
	Failed    []BatchFailure `json:"failed,omitempty"`
}

type BatchFailure struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

type Reviewer struct {
	User     User   `json:"user"`
	State    string `json:"state,omitempty"`
	Approved bool   `json:"approved"`
}

type Commit struct {
	SHA       string `json:"sha"`
	Title     string `json:"title"`
	Message   string `json:"message,omitempty"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
	WebURL    string `json:"webUrl,omitempty"`
}

type ChangedFile struct {
	OldPath     string `json:"oldPath"`
	NewPath     string `json:"newPath"`
	NewFile     bool   `json:"newFile"`
	RenamedFile bool   `json:"renamedFile"`
	DeletedFile bool   `json:"deletedFile"`
	Diff        string `json:"diff,omitempty"`
}

// Board and Card model the provider's issue boards.
type Board struct {
	ID    int         `json:"id"`
	Name  string      `json:"name"`
	Lists []BoardList `json:"lists,omitempty"`
}

type BoardList struct {
	ID       int    `json:"id"`
	Position int    `json:"position"`
	Label    *Label `json:"label,omitempty"`
}

type Card struct {
	ID        int      `json:"id"`
	IID       int      `json:"iid"`
	Title     string   `json:"title"`
	State     string   `json:"state"`
	WebURL    string   `json:"webUrl"`
	Author    User     `json:"author"`
	Assignees []User   `json:"assignees,omitempty"`
	Labels    []string `json:"labels,omitempty"`
	CreatedAt string   `json:"createdAt"`
}

// FileComment is a single comment anchored to a file, as served by the
// per-file comment lookup.
type FileComment struct {
	PullRequestID string   `json:"pullRequestId"`
	Note          Note     `json:"note"`
	Position      Position `json:"position"`
}
