// Package branch classifies the pipeline branch into one of three mutually
// exclusive categories and derives the analysis properties the downstream
// static-analysis call needs for each.
package branch

import "strings"

// Category is the three-way classification of the branch under build.
type Category string

const (
	// CategoryPullRequest covers builds triggered by a pull request.
	CategoryPullRequest Category = "pull-request"
	// CategoryFeature covers short-lived development branches.
	CategoryFeature Category = "feature"
	// CategoryOther covers long-lived branches (main, release, hotfix).
	CategoryOther Category = "other"
)

// pullRequestRefPrefix is the ref namespace CI systems use for PR merge refs.
const pullRequestRefPrefix = "refs/pull/"

// defaultFeaturePrefixes classify a branch as a feature branch when no
// explicit prefixes are configured.
var defaultFeaturePrefixes = []string{"feature/", "feat/"}

// Classifier maps branch refs to categories by string-prefix matching.
type Classifier struct {
	featurePrefixes []string
}

// NewClassifier builds a classifier with the given feature-branch prefixes.
// Passing none selects the defaults ("feature/", "feat/").
func NewClassifier(featurePrefixes ...string) *Classifier {
	if len(featurePrefixes) == 0 {
		featurePrefixes = defaultFeaturePrefixes
	}
	return &Classifier{featurePrefixes: featurePrefixes}
}

// Classify returns the category for a branch ref. Pull-request refs win
// over feature prefixes; everything else is CategoryOther. Both full refs
// ("refs/heads/feature/x") and short names ("feature/x") are accepted.
func (c *Classifier) Classify(ref string) Category {
	if strings.HasPrefix(ref, pullRequestRefPrefix) {
		return CategoryPullRequest
	}

	name := ShortName(ref)
	for _, prefix := range c.featurePrefixes {
		if strings.HasPrefix(name, prefix) {
			return CategoryFeature
		}
	}
	return CategoryOther
}

// ShortName strips the refs/heads/ namespace from a branch ref.
func ShortName(ref string) string {
	return strings.TrimPrefix(ref, "refs/heads/")
}

// Properties is the analysis configuration derived from the branch category.
type Properties struct {
	Category        Category
	BranchName      string // short branch name handed to the analyzer
	TargetBranch    string // reference branch for New Code analysis (PR only)
	NewCodeOnly     bool   // analyze only changed lines against the target
	EnforceGate     bool   // fail the build when the quality gate fails
	PullRequestID   string // numeric PR identifier, empty otherwise
}

// AnalysisProperties derives the per-category analyzer configuration:
// pull requests get New Code analysis against the target with the gate
// enforced, feature branches get report-only branch analysis, and
// long-lived branches get full analysis with the gate enforced.
func (c *Classifier) AnalysisProperties(ref, target string) Properties {
	category := c.Classify(ref)

	props := Properties{
		Category:   category,
		BranchName: ShortName(ref),
	}

	switch category {
	case CategoryPullRequest:
		props.PullRequestID = pullRequestID(ref)
		props.TargetBranch = target
		props.NewCodeOnly = true
		props.EnforceGate = true
	case CategoryFeature:
		props.EnforceGate = false
	case CategoryOther:
		props.EnforceGate = true
	}

	return props
}

// pullRequestID extracts the PR number from refs like "refs/pull/42/merge".
func pullRequestID(ref string) string {
	rest := strings.TrimPrefix(ref, pullRequestRefPrefix)
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
