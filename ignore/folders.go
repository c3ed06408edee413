package ignore

import "strings"

// FolderList is a set of raw substrings; a path containing any of them is
// excluded from the index. Entries are not globs.
type FolderList []string

// ParseFolderList splits a comma-delimited ignore string into a FolderList.
// Entries are trimmed and empty entries dropped, since an empty substring
// would match every path.
func ParseFolderList(raw string) FolderList {
	var list FolderList
	seen := make(map[string]bool)
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		list = append(list, item)
	}
	return list
}

// String joins the list back into its comma-delimited form.
func (f FolderList) String() string {
	return strings.Join(f, ",")
}

// Matches reports whether path contains any substring in the list.
func (f FolderList) Matches(path string) bool {
	for _, item := range f {
		if item != "" && strings.Contains(path, item) {
			return true
		}
	}
	return false
}

// Eligibility decides whether an asset path belongs in the index: it must
// begin with Root and must not contain any ignored folder substring.
type Eligibility struct {
	Root    string
	Folders FolderList
}

// IsEligible reports whether path passes both the root prefix check and the
// folder exclusion check.
func (e Eligibility) IsEligible(path string) bool {
	if !strings.HasPrefix(path, e.Root) {
		return false
	}
	return !e.Folders.Matches(path)
}

// WithFolders returns a copy of e using a different folder list.
func (e Eligibility) WithFolders(folders FolderList) Eligibility {
	e.Folders = folders
	return e
}
