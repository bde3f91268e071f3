package catalog

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/repository"
)

// ErrValidation matches every *ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError is a client-side check that failed before any gateway call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Notice is the non-fatal, user-visible notification raised when a catalog
// operation fails. The failing operation can simply be retried.
type Notice struct {
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

const (
	titleProductsFailed   = "Error loading products"
	titleCategoriesFailed = "Error loading categories"
	titleCategoryFailed   = "Error creating category"
	titleInvalidInput     = "Invalid input"
)

// NoticeFor turns an operation error into the notification shown to the user
func NoticeFor(title string, err error) *Notice {
	message := "Something went wrong. Try again later."

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		title = titleInvalidInput
		message = verr.Message
	case errors.Is(err, repository.ErrGatewayUnavailable):
		message = "The catalog service could not be reached. Try again later."
	}

	return &Notice{Title: title, Message: message, At: time.Now().UTC()}
}

// ProductsNotice is the notification for a failed product listing
func ProductsNotice(err error) *Notice {
	return NoticeFor(titleProductsFailed, err)
}

// CategoriesNotice is the notification for a failed category listing
func CategoriesNotice(err error) *Notice {
	return NoticeFor(titleCategoriesFailed, err)
}

// CategoryCreateNotice is the notification for a failed get-or-create
func CategoryCreateNotice(err error) *Notice {
	return NoticeFor(titleCategoryFailed, err)
}
