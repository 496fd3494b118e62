package resources

import "strings"

// projectFromURI extracts the project name from a
// worksync://projects/{project}/work-index URI.
func projectFromURI(uri string) string {
	const prefix = "worksync://projects/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(uri, prefix)
	project, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return project
}
