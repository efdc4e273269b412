package store

// Canonical key scheme. One convention per logical record; rollback and the
// scheduler both address records through these helpers, so the strings must
// stay stable once chosen.

func ProjectKey(projectID string) string {
	return "project:" + projectID
}

func LatestKey(projectID string) string {
	return "project:" + projectID + ":latest"
}

func PublishedKey(projectID string) string {
	return "project:" + projectID + ":published"
}

func VersionIndexKey(projectID string) string {
	return "project:" + projectID + ":versions"
}

func RunIndexKey(projectID string) string {
	return "project:" + projectID + ":runs"
}

func DomainKey(projectID string) string {
	return "project:" + projectID + ":domain"
}

func MarketingKey(projectID string) string {
	return "project:" + projectID + ":marketing"
}

func MarketingLogKey(projectID string) string {
	return "project:" + projectID + ":marketing:log"
}

func RunKey(runID string) string {
	return "run:" + runID
}

func VersionKey(versionID string) string {
	return "version:" + versionID
}

func ContentKey(contentRef string) string {
	return "content:" + contentRef
}

// ProjectPrefix covers every project-scoped key, used by the fan-out delete.
func ProjectPrefix(projectID string) string {
	return "project:" + projectID
}
