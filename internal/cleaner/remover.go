package cleaner

import (
	"os"

	"github.com/fenilsonani/stalesweep/internal/security"
)

// Remover deletes a single file
type Remover interface {
	Remove(path string) error
}

// RemoverFunc adapts a function to Remover
type RemoverFunc func(path string) error

// Remove implements Remover
func (f RemoverFunc) Remove(path string) error { return f(path) }

// OSRemover removes regular files from the local filesystem after safety checks
type OSRemover struct {
	validator *security.PathValidator
}

// NewOSRemover creates an OSRemover. A nil validator uses the default
// protected paths.
func NewOSRemover(validator *security.PathValidator) *OSRemover {
	if validator == nil {
		validator = security.NewPathValidator()
	}
	return &OSRemover{validator: validator}
}

// Remove deletes path if it is still a regular file outside protected paths
func (r *OSRemover) Remove(path string) error {
	if err := r.validator.ValidatePathForDeletion(path); err != nil {
		return err
	}

	// SECURITY: re-check after scan; the entry may have been swapped
	if err := IsSafeToDelete(path); err != nil {
		return err
	}

	return os.Remove(path)
}
