// Package storage defines the site file-system abstraction.
package storage

// Provider is the interface for the files a regeneration run touches.
type Provider interface {
	// ReadTemplate returns the full contents of the template document.
	ReadTemplate() ([]byte, error)
	// ListArtifacts returns the name of every entry in the artifacts
	// directory, in listing order.
	ListArtifacts() ([]string, error)
	// ReadOutput returns the current contents of the output document.
	ReadOutput() ([]byte, error)
	// WriteOutput replaces the output document with content.
	WriteOutput(content []byte) error
}
