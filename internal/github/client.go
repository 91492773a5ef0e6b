// Package github wraps the GitHub REST API calls used by the description
// workflow. A Client is scoped to one installation token and discarded with
// the workflow run that created it.
package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v45/github"
	"golang.org/x/oauth2"
)

// requestTimeout bounds every outbound GitHub API call
const requestTimeout = 30 * time.Second

// Client handles GitHub API interactions
type Client struct {
	client *github.Client
}

// NewClient creates a new GitHub client authenticated with an installation
// token.
func NewClient(token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = requestTimeout

	return &Client{
		client: github.NewClient(tc),
	}
}

// newClientWithHTTP builds a Client over a prepared transport, used by tests
// to point the API at a local server.
func newClientWithHTTP(httpClient *http.Client, baseURL string) (*Client, error) {
	gh := github.NewClient(httpClient)
	base, err := gh.BaseURL.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	gh.BaseURL = base
	return &Client{client: gh}, nil
}

// GetPullRequestTitle fetches the title of a pull request
func (c *Client) GetPullRequestTitle(ctx context.Context, owner, repo string, number int) (string, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return "", fmt.Errorf("failed to get pull request: %w", err)
	}

	return pr.GetTitle(), nil
}

// GetPullRequestDiff fetches the unified diff of a pull request via content
// negotiation.
func (c *Client) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, _, err := c.client.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		return "", fmt.Errorf("failed to get pull request diff: %w", err)
	}

	return diff, nil
}

// UpdatePullRequestBody replaces the description of a pull request
func (c *Client) UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.client.PullRequests.Edit(ctx, owner, repo, number, &github.PullRequest{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to update pull request body: %w", err)
	}

	return nil
}

// DeleteIssueComment removes a comment from the PR conversation
func (c *Client) DeleteIssueComment(ctx context.Context, owner, repo string, commentID int64) error {
	_, err := c.client.Issues.DeleteComment(ctx, owner, repo, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}
