package gitlab

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// The pull-request identifier travels through every external call as an
// opaque JSON token {"id": <numeric id>, "full": "<project>!<iid>"}. This
// package is the only place that parses it; everything else passes it
// through unchanged.

type idToken struct {
	ID   int    `json:"id"`
	Full string `json:"full"`
}

// MergeRequestRef is the decoded identity used to build request paths. The
// project path and internal id always travel together; request paths are
// built from this struct, never from a re-split token.
type MergeRequestRef struct {
	NumericID   int
	ProjectPath string
	IID         int
}

// FullReference reassembles the provider's compound reference.
func (r MergeRequestRef) FullReference() string {
	return fmt.Sprintf("%s!%d", r.ProjectPath, r.IID)
}

// EncodeID produces the opaque identifier token.
func EncodeID(numericID int, fullReference string) string {
	b, _ := json.Marshal(idToken{ID: numericID, Full: fullReference})
	return string(b)
}

// DecodeID parses an identifier token back into its structured form.
func DecodeID(token string) (MergeRequestRef, error) {
	var t idToken
	if err := json.Unmarshal([]byte(token), &t); err != nil {
		return MergeRequestRef{}, fmt.Errorf("malformed pull request id %q: %w", token, err)
	}
	project, iidStr, ok := strings.Cut(t.Full, "!")
	if !ok || project == "" || iidStr == "" {
		return MergeRequestRef{}, fmt.Errorf("malformed full reference %q", t.Full)
	}
	iid, err := strconv.Atoi(iidStr)
	if err != nil {
		return MergeRequestRef{}, fmt.Errorf("malformed internal id %q: %w", iidStr, err)
	}
	return MergeRequestRef{NumericID: t.ID, ProjectPath: project, IID: iid}, nil
}
