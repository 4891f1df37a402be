package provision

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/google/go-github/v66/github"

	"github.com/wrkdir/omni/internal/errs"
)

// Asset is one release asset, narrowed to what matching needs.
type Asset struct {
	Name string
	URL  string
}

// Release is a narrowed view of a GitHub release, decoupled from
// go-github's type so matching logic is independently testable.
type Release struct {
	Tag        string
	Draft      bool
	Prerelease bool
	Immutable  bool
	Assets     []Asset
}

// ReleaseLister lists a repo's releases; the production implementation
// wraps github.Client and pages through all results. It does not cache
// them.
type ReleaseLister interface {
	ListReleases(ctx context.Context, owner, repo string) ([]Release, error)
}

// GHReleaseBackend implements the `ghrelease` backend: it lists releases
// for owner/repo, filters by draft/prerelease/immutable flags, picks a
// version via ResolveVersion, and matches assets against the current
// platform. There is no build-flag filter.
type GHReleaseBackend struct {
	Lister ReleaseLister
}

// NewGitHubReleaseLister wraps a github.Client for production use.
func NewGitHubReleaseLister(client *github.Client) ReleaseLister {
	return &githubLister{client: client}
}

type githubLister struct {
	client *github.Client
}

func (l *githubLister) ListReleases(ctx context.Context, owner, repo string) ([]Release, error) {
	opts := &github.ListOptions{PerPage: 100}
	var out []Release
	for {
		releases, resp, err := l.client.Repositories.ListReleases(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing releases for %s/%s: %w", owner, repo, err)
		}
		for _, r := range releases {
			rel := Release{
				Tag:        r.GetTagName(),
				Draft:      r.GetDraft(),
				Prerelease: r.GetPrerelease(),
			}
			for _, a := range r.Assets {
				rel.Assets = append(rel.Assets, Asset{Name: a.GetName(), URL: a.GetBrowserDownloadURL()})
			}
			out = append(out, rel)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// GHReleaseRequest selects a release: owner/repo, the version spec,
// whether prereleases are accepted, and an optional immutable filter. It
// has no build flag.
type GHReleaseRequest struct {
	Owner      string
	Repo       string
	Spec       string
	Prerelease bool
	Immutable  *bool // nil = accept either
}

// Resolve filters releases by flags, resolves the version against the
// filtered tag set, then matches assets for the current platform. If
// multiple assets remain for the chosen release, all are returned for
// side-by-side install, per S5's "twoassets" case.
func (b *GHReleaseBackend) Resolve(ctx context.Context, req GHReleaseRequest) (Release, []Asset, error) {
	releases, err := b.Lister.ListReleases(ctx, req.Owner, req.Repo)
	if err != nil {
		return Release{}, nil, err
	}

	var candidates []Release
	var tags []string
	for _, r := range releases {
		if r.Draft {
			continue
		}
		if r.Prerelease && !req.Prerelease {
			continue
		}
		if req.Immutable != nil && r.Immutable != *req.Immutable {
			continue
		}
		candidates = append(candidates, r)
		tags = append(tags, r.Tag)
	}

	var tag string
	var ok bool
	if req.Spec == "latest" {
		tag, ok = LatestWithPrerelease(tags, req.Prerelease)
	} else {
		tag, ok = ResolveVersion(req.Spec, tags)
	}
	if !ok {
		return Release{}, nil, errs.New(errs.InstallFailed, fmt.Sprintf("no release matches spec %q for %s/%s", req.Spec, req.Owner, req.Repo))
	}

	var chosen Release
	for _, r := range candidates {
		if r.Tag == tag {
			chosen = r
			break
		}
	}

	assets := matchPlatformAssets(chosen.Assets)
	if len(assets) == 0 {
		return Release{}, nil, errs.New(errs.InstallFailed, fmt.Sprintf("no matching assets in %s/%s@%s for %s/%s", req.Owner, req.Repo, tag, runtime.GOOS, runtime.GOARCH))
	}
	return chosen, assets, nil
}

var platformAssetPatterns = map[string][]*regexp.Regexp{
	"linux/amd64":  {regexp.MustCompile(`(?i)linux.*(amd64|x86_64)`)},
	"linux/arm64":  {regexp.MustCompile(`(?i)linux.*(arm64|aarch64)`)},
	"darwin/amd64": {regexp.MustCompile(`(?i)(darwin|macos|osx).*(amd64|x86_64)`)},
	"darwin/arm64": {regexp.MustCompile(`(?i)(darwin|macos|osx).*(arm64|aarch64)`)},
}

// matchPlatformAssets filters assets by the current os×arch compatibility
// table. Named for test determinism rather than hard-wiring runtime.GOOS.
func matchPlatformAssets(assets []Asset) []Asset {
	return matchAssetsForPlatform(assets, runtime.GOOS, runtime.GOARCH)
}

func matchAssetsForPlatform(assets []Asset, goos, goarch string) []Asset {
	patterns := platformAssetPatterns[goos+"/"+goarch]
	if len(patterns) == 0 {
		return nil
	}
	var out []Asset
	for _, a := range assets {
		name := strings.ToLower(a.Name)
		for _, p := range patterns {
			if p.MatchString(name) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
