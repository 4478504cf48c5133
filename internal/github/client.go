package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	gh "github.com/google/go-github/v68/github"
)

// Client wraps the GitHub REST API for one repository.
type Client struct {
	gh    *gh.Client
	Owner string
	Repo  string
}

// NewClient creates a client for owner/repo. apiURL overrides the API root
// (GitHub Enterprise or tests); empty means api.github.com.
func NewClient(token, apiURL, owner, repo string, httpClient *http.Client) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is not set")
	}
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("repository owner and name are required")
	}

	c := gh.NewClient(httpClient).WithAuthToken(token)
	if apiURL != "" {
		u, err := url.Parse(strings.TrimRight(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GITHUB_API_URL: %w", err)
		}
		c.BaseURL = u
	}
	return &Client{gh: c, Owner: owner, Repo: repo}, nil
}

// RepoFromEnv splits GITHUB_REPOSITORY ("owner/repo"). It reports false when
// the variable is unset or malformed.
func RepoFromEnv() (owner, repo string, ok bool) {
	owner, repo, ok = strings.Cut(os.Getenv("GITHUB_REPOSITORY"), "/")
	if !ok || owner == "" || repo == "" {
		return "", "", false
	}
	return owner, repo, true
}

// HeadSHA returns the head commit of the pull request.
func (c *Client) HeadSHA(ctx context.Context, number int) (string, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, c.Owner, c.Repo, number)
	if err != nil {
		return "", fmt.Errorf("fetching PR #%d: %w", number, err)
	}
	sha := pr.GetHead().GetSHA()
	if sha == "" {
		return "", fmt.Errorf("PR #%d has no head commit", number)
	}
	return sha, nil
}

// ChangedFile is a file in a pull request with its unified-diff patch.
type ChangedFile struct {
	Filename string
	Status   string
	Patch    string
}

// ListFiles returns every file changed in the pull request, following
// pagination.
func (c *Client) ListFiles(ctx context.Context, number int) ([]ChangedFile, error) {
	opts := &gh.ListOptions{PerPage: 100}
	var files []ChangedFile
	for {
		page, resp, err := c.gh.PullRequests.ListFiles(ctx, c.Owner, c.Repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing files of PR #%d: %w", number, err)
		}
		for _, f := range page {
			files = append(files, ChangedFile{
				Filename: f.GetFilename(),
				Status:   f.GetStatus(),
				Patch:    f.GetPatch(),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return files, nil
}

// InlineComment is a review comment anchored to a new-side line.
type InlineComment struct {
	Path string
	Line int
	Body string
}

// CreateReview submits one review holding every comment. It returns the
// review ID.
func (c *Client) CreateReview(ctx context.Context, number int, sha, event, body string, comments []InlineComment) (int64, error) {
	drafts := make([]*gh.DraftReviewComment, 0, len(comments))
	for _, cm := range comments {
		drafts = append(drafts, &gh.DraftReviewComment{
			Path: gh.Ptr(cm.Path),
			Line: gh.Ptr(cm.Line),
			Body: gh.Ptr(cm.Body),
		})
	}
	r, _, err := c.gh.PullRequests.CreateReview(ctx, c.Owner, c.Repo, number, &gh.PullRequestReviewRequest{
		CommitID: gh.Ptr(sha),
		Body:     gh.Ptr(body),
		Event:    gh.Ptr(event),
		Comments: drafts,
	})
	if err != nil {
		return 0, fmt.Errorf("creating review on PR #%d: %w", number, err)
	}
	return r.GetID(), nil
}

// CreateReviewComment posts a single inline comment on the right side of the
// diff.
func (c *Client) CreateReviewComment(ctx context.Context, number int, sha string, cm InlineComment) error {
	_, _, err := c.gh.PullRequests.CreateComment(ctx, c.Owner, c.Repo, number, &gh.PullRequestComment{
		Body:     gh.Ptr(cm.Body),
		CommitID: gh.Ptr(sha),
		Path:     gh.Ptr(cm.Path),
		Line:     gh.Ptr(cm.Line),
		Side:     gh.Ptr("RIGHT"),
	})
	if err != nil {
		return fmt.Errorf("creating comment %s:%d: %w", cm.Path, cm.Line, err)
	}
	return nil
}

// CreateIssueComment posts a top-level comment on the pull request.
func (c *Client) CreateIssueComment(ctx context.Context, number int, body string) error {
	_, _, err := c.gh.Issues.CreateComment(ctx, c.Owner, c.Repo, number, &gh.IssueComment{Body: gh.Ptr(body)})
	if err != nil {
		return fmt.Errorf("commenting on PR #%d: %w", number, err)
	}
	return nil
}

// PullRequest identifies a pull request by number and web URL.
type PullRequest struct {
	Number int
	URL    string
}

// FindPullRequest returns the open pull request from head into base, if any.
func (c *Client) FindPullRequest(ctx context.Context, head, base string) (PullRequest, bool, error) {
	prs, _, err := c.gh.PullRequests.List(ctx, c.Owner, c.Repo, &gh.PullRequestListOptions{
		State: "open",
		Head:  c.Owner + ":" + head,
		Base:  base,
	})
	if err != nil {
		return PullRequest{}, false, fmt.Errorf("listing pull requests for %s: %w", head, err)
	}
	if len(prs) == 0 {
		return PullRequest{}, false, nil
	}
	return PullRequest{Number: prs[0].GetNumber(), URL: prs[0].GetHTMLURL()}, true, nil
}

// CreatePullRequest opens a pull request from head into base.
func (c *Client) CreatePullRequest(ctx context.Context, head, base, title, body string) (PullRequest, error) {
	pr, _, err := c.gh.PullRequests.Create(ctx, c.Owner, c.Repo, &gh.NewPullRequest{
		Title: gh.Ptr(title),
		Head:  gh.Ptr(head),
		Base:  gh.Ptr(base),
		Body:  gh.Ptr(body),
	})
	if err != nil {
		return PullRequest{}, fmt.Errorf("creating pull request for %s: %w", head, err)
	}
	return PullRequest{Number: pr.GetNumber(), URL: pr.GetHTMLURL()}, nil
}

// EditPullRequest replaces the title and body of an existing pull request.
func (c *Client) EditPullRequest(ctx context.Context, number int, title, body string) (PullRequest, error) {
	pr, _, err := c.gh.PullRequests.Edit(ctx, c.Owner, c.Repo, number, &gh.PullRequest{
		Title: gh.Ptr(title),
		Body:  gh.Ptr(body),
	})
	if err != nil {
		return PullRequest{}, fmt.Errorf("editing PR #%d: %w", number, err)
	}
	return PullRequest{Number: pr.GetNumber(), URL: pr.GetHTMLURL()}, nil
}
