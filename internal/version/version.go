// Package version checks the running build against the latest tag of the
// public GitHub repository. The check is best-effort: failures are
// reported to the caller to log, never to abort on.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ridecast/ridecast/internal/resilience"
)

// DefaultTagsURL is the GitHub API endpoint listing the repository tags,
// newest first.
const DefaultTagsURL = "https://api.github.com/repos/ridecast/ridecast/tags"

// Result describes the version comparison.
type Result struct {
	// Current is the running version.
	Current string

	// Latest is the newest published tag, empty when unknown.
	Latest string

	// UpdateAvailable is true when Latest differs from Current.
	UpdateAvailable bool
}

// Checker queries the repository tags.
type Checker struct {
	tagsURL    string
	httpClient *resilience.Client
}

// NewChecker creates a version checker. tagsURL is optional.
func NewChecker(tagsURL string, httpClient *resilience.Client) *Checker {
	if tagsURL == "" {
		tagsURL = DefaultTagsURL
	}
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("version-check"))
	}
	return &Checker{tagsURL: tagsURL, httpClient: httpClient}
}

// Check compares the current version against the latest published tag.
func (c *Checker) Check(ctx context.Context, current string) (*Result, error) {
	result := &Result{Current: normalize(current)}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tagsURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching tags: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tags endpoint returned status %d", resp.StatusCode)
	}

	var tags []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if len(tags) == 0 {
		return result, nil
	}

	result.Latest = normalize(tags[0].Name)
	result.UpdateAvailable = result.Latest != "" && result.Latest != result.Current
	return result, nil
}

func normalize(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}
