package bugzilla

import (
	"fmt"
	"strings"
)

// BugRecord is the flattened representation of one bug returned to tool
// callers. The JSON field names are part of the tool contract and must
// stay stable.
type BugRecord struct {
	ProductName string   `json:"product_name"`
	BugID       int      `json:"bug_id"`
	BugPriority string   `json:"bug_priority"`
	Created     string   `json:"created"`
	Status      string   `json:"status"`
	Summary     string   `json:"summary"`
	Severity    string   `json:"severity"`
	BugCC       []string `json:"bug_cc"`
	Creator     string   `json:"creator"`
	Platform    string   `json:"platform"`
	Keywords    string   `json:"keywords"`
	Component   string   `json:"component"`
	Groups      string   `json:"groups"`
	WebURL      string   `json:"weburl"`
	Confirmed   bool     `json:"confirmed"`
}

// Normalize flattens a wire Bug into a BugRecord. webURL is the browser
// link for the bug, derived by the caller from the instance base URL,
// since the REST payload does not carry one. A bug without creator
// details is an error; callers are expected to let it propagate.
func Normalize(bug *Bug, webURL string) (BugRecord, error) {
	if bug == nil {
		return BugRecord{}, fmt.Errorf("cannot normalize nil bug")
	}
	if bug.CreatorDetail == nil {
		return BugRecord{}, fmt.Errorf("bug %d has no creator_detail", bug.ID)
	}

	cc := bug.CC
	if cc == nil {
		cc = []string{}
	}

	return BugRecord{
		ProductName: bug.Product,
		BugID:       bug.ID,
		BugPriority: bug.Priority,
		Created:     bug.CreationTime,
		Status:      bug.Status,
		Summary:     bug.Summary,
		Severity:    bug.Severity,
		BugCC:       cc,
		Creator:     bug.CreatorDetail.Email,
		Platform:    bug.Platform,
		Keywords:    strings.Join(bug.Keywords, ";"),
		Component:   bug.Component,
		Groups:      strings.Join(bug.Groups, " "),
		WebURL:      webURL,
		Confirmed:   bug.IsConfirmed,
	}, nil
}
