package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/mod/semver"

	httppkg "github.com/trigg3rX/mining-cli/pkg/http"
	"github.com/trigg3rX/mining-cli/pkg/logging"
)

// Result describes the newest published release relative to the running build.
type Result struct {
	CurrentVersion  string
	LatestVersion   string
	ReleaseURL      string
	UpdateAvailable bool
}

type release struct {
	TagName    string `json:"tag_name"`
	HTMLURL    string `json:"html_url"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// Checker looks up the latest GitHub release of a repository. It never replaces
// the running binary.
type Checker struct {
	apiURL     string
	repo       string
	httpClient httppkg.HTTPClientInterface
	logger     logging.Logger
}

func NewChecker(apiURL, repo string, httpClient httppkg.HTTPClientInterface, logger logging.Logger) *Checker {
	return &Checker{
		apiURL:     strings.TrimRight(apiURL, "/"),
		repo:       repo,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Checker) Check(ctx context.Context, currentVersion string) (*Result, error) {
	current := canonical(currentVersion)
	if current == "" {
		return nil, fmt.Errorf("current version %q is not a semantic version", currentVersion)
	}

	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.apiURL, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.DoWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &httppkg.HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var latest release
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		return nil, fmt.Errorf("failed to decode release: %w", err)
	}
	latestVersion := canonical(latest.TagName)
	if latestVersion == "" {
		return nil, fmt.Errorf("release tag %q is not a semantic version", latest.TagName)
	}

	result := &Result{
		CurrentVersion:  current,
		LatestVersion:   latestVersion,
		ReleaseURL:      latest.HTMLURL,
		UpdateAvailable: !latest.Draft && !latest.Prerelease && semver.Compare(latestVersion, current) > 0,
	}
	c.logger.Debug("Checked latest release", "current", current, "latest", latestVersion, "update_available", result.UpdateAvailable)
	return result, nil
}

// canonical accepts versions with or without the leading "v".
func canonical(version string) string {
	version = strings.TrimSpace(version)
	if version != "" && !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return semver.Canonical(version)
}
