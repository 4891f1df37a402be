package provision

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/wrkdir/omni/internal/errs"
)

type fakeLister struct {
	releases []Release
}

func (f *fakeLister) ListReleases(ctx context.Context, owner, repo string) ([]Release, error) {
	return f.releases, nil
}

func platformAssetName(tag string) string {
	return fmt.Sprintf("tool-%s-%s-%s.tar.gz", tag, runtime.GOOS, runtime.GOARCH)
}

func s5Releases() []Release {
	return []Release{
		{Tag: "v2.0.0-alpha", Prerelease: true, Assets: []Asset{{Name: platformAssetName("v2.0.0-alpha")}}},
		{Tag: "v1.2.3", Assets: []Asset{{Name: platformAssetName("v1.2.3")}}},
		{Tag: "v1.2.2", Assets: []Asset{{Name: platformAssetName("v1.2.2")}}},
		{Tag: "prefix-1.2.0", Assets: []Asset{{Name: platformAssetName("prefix-1.2.0")}}},
		{Tag: "nonstandard", Assets: []Asset{{Name: platformAssetName("nonstandard")}}},
		{Tag: "noassets"},
		{Tag: "nomatchingassets", Assets: []Asset{{Name: "tool-windows-386.zip"}}},
		{Tag: "twoassets", Assets: []Asset{
			{Name: platformAssetName("twoassets") + ".1"},
			{Name: platformAssetName("twoassets") + ".2"},
		}},
		{Tag: "v1.1.9", Assets: []Asset{{Name: platformAssetName("v1.1.9")}}},
	}
}

func TestGHReleaseResolveTwoAssets(t *testing.T) {
	b := &GHReleaseBackend{Lister: &fakeLister{releases: s5Releases()}}
	_, assets, err := b.Resolve(context.Background(), GHReleaseRequest{Owner: "o", Repo: "r", Spec: "twoassets"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 side-by-side assets, got %d", len(assets))
	}
}

func TestGHReleaseResolveNoMatchingAssets(t *testing.T) {
	b := &GHReleaseBackend{Lister: &fakeLister{releases: s5Releases()}}
	_, _, err := b.Resolve(context.Background(), GHReleaseRequest{Owner: "o", Repo: "r", Spec: "nomatchingassets"})
	if err == nil {
		t.Fatalf("expected InstallFailed error")
	}
	var e *errs.Error
	if !asErr(err, &e) || e.Record.Kind != errs.InstallFailed {
		t.Fatalf("expected errs.InstallFailed, got %v", err)
	}
}

func TestGHReleaseResolveLatestExcludesPrerelease(t *testing.T) {
	b := &GHReleaseBackend{Lister: &fakeLister{releases: s5Releases()}}
	rel, _, err := b.Resolve(context.Background(), GHReleaseRequest{Owner: "o", Repo: "r", Spec: "latest"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel.Tag != "v1.2.3" {
		t.Fatalf("got %q want v1.2.3", rel.Tag)
	}
}

func TestGHReleaseResolveLatestWithPrerelease(t *testing.T) {
	b := &GHReleaseBackend{Lister: &fakeLister{releases: s5Releases()}}
	rel, _, err := b.Resolve(context.Background(), GHReleaseRequest{Owner: "o", Repo: "r", Spec: "latest", Prerelease: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel.Tag != "v2.0.0-alpha" {
		t.Fatalf("got %q want v2.0.0-alpha", rel.Tag)
	}
}

func asErr(err error, target **errs.Error) bool {
	e, ok := err.(*errs.Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
