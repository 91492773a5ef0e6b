package workflow

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Target addresses one pull request. Once constructed it completely
// identifies the resource for the rest of the workflow.
type Target struct {
	Owner  string
	Repo   string
	Number int
}

// String formats the target for logs
func (t Target) String() string {
	return fmt.Sprintf("%s/%s#%d", t.Owner, t.Repo, t.Number)
}

// ParsePullURL extracts a Target from an API pull request URL of the form
// https://api.github.com/repos/{owner}/{repo}/pulls/{number}. The path is
// matched segment by segment against that template; trailing slashes and
// query strings are tolerated, anything else is a parse error.
func ParsePullURL(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("invalid pull request url %q: %w", raw, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) != 5 || segments[0] != "repos" || segments[3] != "pulls" {
		return Target{}, fmt.Errorf("pull request url %q does not match /repos/{owner}/{repo}/pulls/{number}", raw)
	}

	owner, repo := segments[1], segments[2]
	if owner == "" || repo == "" {
		return Target{}, fmt.Errorf("pull request url %q has empty owner or repo", raw)
	}

	number, err := strconv.Atoi(segments[4])
	if err != nil || number <= 0 {
		return Target{}, fmt.Errorf("pull request url %q has invalid number %q", raw, segments[4])
	}

	return Target{Owner: owner, Repo: repo, Number: number}, nil
}
