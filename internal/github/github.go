package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	gh "github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/emataei/pr-companion/internal/gitctx"
)

// CommentMarker is the hidden HTML marker that identifies the managed report
// comment on a pull request. Upserts find and update the comment by it.
const CommentMarker = "<!-- pr-companion-report -->"

const perPage = 100

// Client wraps the GitHub REST API for a single repository.
type Client struct {
	gh    *gh.Client
	owner string
	repo  string
	log   zerolog.Logger
}

// NewClient creates a Client authenticated with the given token. Requests
// wait out secondary rate limits up to an hour before failing.
func NewClient(token, owner, repo string, log zerolog.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is not set")
	}
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("repository owner and name are required")
	}

	waiter, err := github_ratelimit.NewRateLimitWaiter(nil,
		github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("creating rate limit waiter: %w", err)
	}
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   waiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		},
	}

	return &Client{
		gh:    gh.NewClient(httpClient),
		owner: owner,
		repo:  repo,
		log:   log,
	}, nil
}

// Owner returns the repository owner the client operates on.
func (c *Client) Owner() string { return c.owner }

// Repo returns the repository name the client operates on.
func (c *Client) Repo() string { return c.repo }

// PRContext is everything the analyzers need about a pull request.
type PRContext struct {
	Number      int                 `json:"number"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Author      string              `json:"author"`
	BaseBranch  string              `json:"baseBranch"`
	HeadBranch  string              `json:"headBranch"`
	Labels      []string            `json:"labels"`
	Changes     []gitctx.FileChange `json:"changes"`
	Diff        string              `json:"diff"`
}

// FetchPRContext gathers the metadata, changed files, and raw diff of a pull
// request. The three fetches run concurrently.
func (c *Client) FetchPRContext(ctx context.Context, number int) (PRContext, error) {
	prCtx := PRContext{Number: number}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pr, _, err := c.gh.PullRequests.Get(gctx, c.owner, c.repo, number)
		if err != nil {
			return fmt.Errorf("fetching PR #%d: %w", number, err)
		}
		prCtx.Title = pr.GetTitle()
		prCtx.Description = pr.GetBody()
		prCtx.Author = pr.GetUser().GetLogin()
		prCtx.BaseBranch = pr.GetBase().GetRef()
		prCtx.HeadBranch = pr.GetHead().GetRef()
		for _, l := range pr.Labels {
			prCtx.Labels = append(prCtx.Labels, l.GetName())
		}
		return nil
	})

	g.Go(func() error {
		changes, err := c.listFiles(gctx, number)
		if err != nil {
			return err
		}
		prCtx.Changes = changes
		return nil
	})

	g.Go(func() error {
		diff, _, err := c.gh.PullRequests.GetRaw(gctx, c.owner, c.repo, number,
			gh.RawOptions{Type: gh.Diff})
		if err != nil {
			return fmt.Errorf("fetching diff for PR #%d: %w", number, err)
		}
		prCtx.Diff = diff
		return nil
	})

	if err := g.Wait(); err != nil {
		return PRContext{}, err
	}
	c.log.Debug().
		Int("pr", number).
		Int("files", len(prCtx.Changes)).
		Int("diffBytes", len(prCtx.Diff)).
		Msg("fetched pull request context")
	return prCtx, nil
}

func (c *Client) listFiles(ctx context.Context, number int) ([]gitctx.FileChange, error) {
	var changes []gitctx.FileChange
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		files, resp, err := c.gh.PullRequests.ListFiles(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing files for PR #%d: %w", number, err)
		}
		for _, f := range files {
			changes = append(changes, gitctx.FileChange{
				Path:         f.GetFilename(),
				ChangeType:   changeType(f.GetStatus()),
				LinesAdded:   f.GetAdditions(),
				LinesRemoved: f.GetDeletions(),
				Patch:        f.GetPatch(),
				IsTest:       gitctx.IsTestPath(f.GetFilename()),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return changes, nil
}

func changeType(status string) string {
	switch status {
	case "added", "copied":
		return "added"
	case "removed":
		return "deleted"
	case "renamed":
		return "renamed"
	default:
		return "modified"
	}
}

// UpsertComment creates or updates the managed report comment on a pull
// request. The comment is found by CommentMarker, so repeated runs update in
// place instead of stacking new comments.
func (c *Client) UpsertComment(ctx context.Context, number int, body string) error {
	if !strings.Contains(body, CommentMarker) {
		body = CommentMarker + "\n" + body
	}

	existing, err := c.findMarkedComment(ctx, number)
	if err != nil {
		return err
	}
	comment := &gh.IssueComment{Body: gh.String(body)}

	if existing != 0 {
		_, _, err = c.gh.Issues.EditComment(ctx, c.owner, c.repo, existing, comment)
		if err != nil {
			return fmt.Errorf("updating comment on PR #%d: %w", number, err)
		}
		c.log.Debug().Int("pr", number).Int64("comment", existing).Msg("updated report comment")
		return nil
	}

	created, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, comment)
	if err != nil {
		return fmt.Errorf("creating comment on PR #%d: %w", number, err)
	}
	c.log.Debug().Int("pr", number).Int64("comment", created.GetID()).Msg("created report comment")
	return nil
}

func (c *Client) findMarkedComment(ctx context.Context, number int) (int64, error) {
	opts := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return 0, fmt.Errorf("listing comments on PR #%d: %w", number, err)
		}
		for _, comment := range comments {
			if strings.Contains(comment.GetBody(), CommentMarker) {
				return comment.GetID(), nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return 0, nil
}

// ApplyLabels reconciles the managed label families on a pull request.
// Labels carrying one of the managed prefixes are replaced by the desired
// set; everything else on the PR is left alone.
func (c *Client) ApplyLabels(ctx context.Context, number int, desired, managedPrefixes []string) error {
	current, err := c.listLabels(ctx, number)
	if err != nil {
		return err
	}

	final := make([]string, 0, len(current)+len(desired))
	for _, label := range current {
		if !hasManagedPrefix(label, managedPrefixes) {
			final = append(final, label)
		}
	}
	seen := make(map[string]bool, len(final))
	for _, label := range final {
		seen[label] = true
	}
	for _, label := range desired {
		if !seen[label] {
			seen[label] = true
			final = append(final, label)
		}
	}

	if equalLabelSets(current, final) {
		c.log.Debug().Int("pr", number).Msg("labels already up to date")
		return nil
	}

	if _, _, err := c.gh.Issues.ReplaceLabelsForIssue(ctx, c.owner, c.repo, number, final); err != nil {
		return fmt.Errorf("replacing labels on PR #%d: %w", number, err)
	}
	c.log.Debug().Int("pr", number).Strs("labels", final).Msg("applied labels")
	return nil
}

func (c *Client) listLabels(ctx context.Context, number int) ([]string, error) {
	var labels []string
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		page, resp, err := c.gh.Issues.ListLabelsByIssue(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing labels on PR #%d: %w", number, err)
		}
		for _, l := range page {
			labels = append(labels, l.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return labels, nil
}

func hasManagedPrefix(label string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(label, p) {
			return true
		}
	}
	return false
}

func equalLabelSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, l := range a {
		set[l] = true
	}
	for _, l := range b {
		if !set[l] {
			return false
		}
	}
	return true
}
