package repository

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrProductNotFound = errors.New("product not found")

// RepositoryError is returned by write operations when the record store
// rejects the request. Op is one of create, update, delete or normalize.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s product: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}
