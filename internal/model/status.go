package model

type Status string

const (
	StatusInitial      Status = "INITIAL"
	StatusIgnored      Status = "IGNORED"
	StatusError        Status = "ERROR"
	StatusDiffed       Status = "DIFFED"
	StatusConflicting  Status = "CONFLICTING"
	StatusHasConflicts Status = "HAS_CONFLICTS"
	StatusResolved     Status = "RESOLVED"
	StatusMerged       Status = "MERGED"
)

// Terminal statuses are never left once entered.
func (s Status) Terminal() bool {
	return s == StatusIgnored || s == StatusError
}

// Mergeable reports whether the merge stage may consume the node.
func (s Status) Mergeable() bool {
	return s == StatusDiffed || s == StatusResolved
}

type FileType string

const (
	FileUnknown FileType = "UNKNOWN"
	FileBinary  FileType = "BINARY"
	FileText    FileType = "TEXT"
)
