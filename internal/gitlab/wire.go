package gitlab

// GitLab wire shapes. Every provider payload the adapter touches has an
// explicit struct here; nothing is passed around as map[string]any.

type glUser struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	WebURL    string `json:"web_url"`
}

type glProject struct {
	ID                int    `json:"id"`
	Path              string `json:"path"`
	PathWithNamespace string `json:"path_with_namespace"`
	WebURL            string `json:"web_url"`
	IssuesEnabled     bool   `json:"issues_enabled"`
}

type glDiffRefs struct {
	BaseSHA  string `json:"base_sha"`
	HeadSHA  string `json:"head_sha"`
	StartSHA string `json:"start_sha"`
}

type glMilestone struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// glMergeRequest is the REST listing/detail shape.
type glMergeRequest struct {
	ID           int          `json:"id"`
	IID          int          `json:"iid"`
	ProjectID    int          `json:"project_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	State        string       `json:"state"`
	TargetBranch string       `json:"target_branch"`
	SourceBranch string       `json:"source_branch"`
	WebURL       string       `json:"web_url"`
	CreatedAt    string       `json:"created_at"`
	UpdatedAt    string       `json:"updated_at"`
	MergedAt     string       `json:"merged_at"`
	Draft        bool         `json:"draft"`
	Author       glUser       `json:"author"`
	Labels       []string     `json:"labels"`
	Milestone    *glMilestone `json:"milestone"`
	DiffRefs     *glDiffRefs  `json:"diff_refs"`
	References   struct {
		Short string `json:"short"`
		Full  string `json:"full"`
	} `json:"references"`
	UserNotesCount int `json:"user_notes_count"`
}

type glPosition struct {
	BaseSHA      string `json:"base_sha"`
	HeadSHA      string `json:"head_sha"`
	StartSHA     string `json:"start_sha"`
	OldPath      string `json:"old_path"`
	NewPath      string `json:"new_path"`
	OldLine      int    `json:"old_line"`
	NewLine      int    `json:"new_line"`
	PositionType string `json:"position_type"`
}

type glNote struct {
	ID         int         `json:"id"`
	Body       string      `json:"body"`
	Author     glUser      `json:"author"`
	CreatedAt  string      `json:"created_at"`
	UpdatedAt  string      `json:"updated_at"`
	System     bool        `json:"system"`
	Resolvable bool        `json:"resolvable"`
	Resolved   bool        `json:"resolved"`
	Position   *glPosition `json:"position"`
}

type glDiscussion struct {
	ID             string   `json:"id"`
	IndividualNote bool     `json:"individual_note"`
	Notes          []glNote `json:"notes"`
}

type glLabel struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// glResourceEvent covers both resource_label_events and
// resource_milestone_events; the unused pointer stays nil.
type glResourceEvent struct {
	ID        int          `json:"id"`
	User      glUser       `json:"user"`
	CreatedAt string       `json:"created_at"`
	Action    string       `json:"action"`
	Label     *glLabel     `json:"label"`
	Milestone *glMilestone `json:"milestone"`
}

// glActivityEvent is the generic project events feed shape.
type glActivityEvent struct {
	ID         int    `json:"id"`
	ActionName string `json:"action_name"`
	TargetIID  int    `json:"target_iid"`
	TargetType string `json:"target_type"`
	Author     glUser `json:"author"`
	CreatedAt  string `json:"created_at"`
}

type glAward struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	User glUser `json:"user"`
}

type glCommit struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	AuthorName string `json:"author_name"`
	CreatedAt  string `json:"created_at"`
	WebURL     string `json:"web_url"`
}

// glChanges is the merge request changes endpoint payload.
type glChanges struct {
	Changes []glChange `json:"changes"`
}

type glChange struct {
	OldPath     string `json:"old_path"`
	NewPath     string `json:"new_path"`
	NewFile     bool   `json:"new_file"`
	RenamedFile bool   `json:"renamed_file"`
	DeletedFile bool   `json:"deleted_file"`
	Diff        string `json:"diff"`
}

type glApprovals struct {
	Approved   bool `json:"approved"`
	ApprovedBy []struct {
		User glUser `json:"user"`
	} `json:"approved_by"`
}

type glBoard struct {
	ID    int           `json:"id"`
	Name  string        `json:"name"`
	Lists []glBoardList `json:"lists"`
}

type glBoardList struct {
	ID       int      `json:"id"`
	Position int      `json:"position"`
	Label    *glLabel `json:"label"`
}

type glIssue struct {
	ID        int      `json:"id"`
	IID       int      `json:"iid"`
	Title     string   `json:"title"`
	State     string   `json:"state"`
	WebURL    string   `json:"web_url"`
	Author    glUser   `json:"author"`
	Assignees []glUser `json:"assignees"`
	Labels    []string `json:"labels"`
	CreatedAt string   `json:"created_at"`
}

// GraphQL detail shapes. Field names follow the GraphQL schema's camelCase.

type gqlUser struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	WebURL    string `json:"webUrl"`
}

type gqlAward struct {
	Name string  `json:"name"`
	User gqlUser `json:"user"`
}

type gqlMergeRequest struct {
	IID          string `json:"iid"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	State        string `json:"state"`
	WebURL       string `json:"webUrl"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
	MergedAt     string `json:"mergedAt"`
	Draft        bool   `json:"draft"`
	TargetBranch string `json:"targetBranch"`
	SourceBranch string `json:"sourceBranch"`
	// Reference is the short "!42" form; references.full is derived by
	// prefixing the source project's full path.
	Reference     string `json:"reference"`
	SourceProject struct {
		Name     string `json:"name"`
		FullPath string `json:"fullPath"`
		WebURL   string `json:"webUrl"`
	} `json:"sourceProject"`
	DiffRefs *struct {
		BaseSHA  string `json:"baseSha"`
		HeadSHA  string `json:"headSha"`
		StartSHA string `json:"startSha"`
	} `json:"diffRefs"`
	Author         gqlUser `json:"author"`
	UserNotesCount int     `json:"userNotesCount"`
	AwardEmoji     struct {
		Nodes []gqlAward `json:"nodes"`
	} `json:"awardEmoji"`
	Labels struct {
		Nodes []struct {
			Title string `json:"title"`
			Color string `json:"color"`
		} `json:"nodes"`
	} `json:"labels"`
	Milestone *struct {
		Title string `json:"title"`
	} `json:"milestone"`
}

type gqlDetailResponse struct {
	Project struct {
		MergeRequest *gqlMergeRequest `json:"mergeRequest"`
	} `json:"project"`
}

type gqlSetDraftResponse struct {
	MergeRequestSetDraft struct {
		MergeRequest struct {
			Draft bool `json:"draft"`
		} `json:"mergeRequest"`
		Errors []string `json:"errors"`
	} `json:"mergeRequestSetDraft"`
}
