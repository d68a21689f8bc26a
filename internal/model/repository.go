package model

// RepositoryConfig identifies one remote repository used as a message mirror.
type RepositoryConfig struct {
	// Owner is the repository owner or organization
	Owner string `json:"owner"`

	// Name is the repository name
	Name string `json:"name"`

	// Branch is the branch messages are committed to
	Branch string `json:"branch"`

	// MessagePath is the directory inside the repository holding message blobs
	MessagePath string `json:"message_path"`
}

// FullName returns the "owner/name" form used to address the repository.
func (r RepositoryConfig) FullName() string {
	return r.Owner + "/" + r.Name
}
