// Package error defines domain-specific errors for the Media Shelf application.
package error

import "errors"

// Category domain errors.
var (
	// ErrCategoryNotFound is returned when a category is not found in the system.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrParentCategoryNotFound is returned when the requested parent does not exist.
	ErrParentCategoryNotFound = errors.New("parent category not found")

	// ErrNotAuthorizedToAccessCategory is returned when the category belongs to another owner.
	ErrNotAuthorizedToAccessCategory = errors.New("not authorized to access category")

	// ErrCategoryNameRequired is returned when the category name is blank.
	ErrCategoryNameRequired = errors.New("category name is required")

	// ErrCategoryNameTooLong is returned when the category name exceeds the maximum length.
	ErrCategoryNameTooLong = errors.New("category name too long")

	// ErrCategoryCannotBeOwnParent is returned when a category is moved under itself.
	ErrCategoryCannotBeOwnParent = errors.New("category cannot be its own parent")

	// ErrCategoryMoveIntoDescendant is returned when a category is moved under one of its descendants.
	ErrCategoryMoveIntoDescendant = errors.New("category cannot be moved into its own subtree")

	// ErrCategoryHasChildren is returned when deleting a category that still has subcategories.
	ErrCategoryHasChildren = errors.New("category has subcategories")

	// ErrCategoryHasMedia is returned when deleting a category that items are still assigned to.
	ErrCategoryHasMedia = errors.New("category has items assigned")
)

// CategoryErrorCode defines error codes for category errors.
// Format: CAT-XXYYYY where XX is the kind and YYYY is the specific error.
type CategoryErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeCategoryNameRequired  CategoryErrorCode = "CAT-010001"
	ErrCodeCategoryNameTooLong   CategoryErrorCode = "CAT-010002"
	ErrCodeMissingCategoryFields CategoryErrorCode = "CAT-010003"
	ErrCodeInvalidCategoryID     CategoryErrorCode = "CAT-010004"

	// Lookup errors (02XXXX)
	ErrCodeCategoryNotFound       CategoryErrorCode = "CAT-020001"
	ErrCodeParentCategoryNotFound CategoryErrorCode = "CAT-020002"

	// Ownership errors (03XXXX)
	ErrCodeNotAuthorizedCategory CategoryErrorCode = "CAT-030001"

	// Structural errors (04XXXX)
	ErrCodeCategoryOwnParent      CategoryErrorCode = "CAT-040001"
	ErrCodeCategoryIntoDescendant CategoryErrorCode = "CAT-040002"
	ErrCodeCategoryHasChildren    CategoryErrorCode = "CAT-040003"
	ErrCodeCategoryHasMedia       CategoryErrorCode = "CAT-040004"
)

// CategoryErrorKind is the transport-independent class of a category error.
type CategoryErrorKind string

const (
	CategoryErrorKindUnknown          CategoryErrorKind = ""
	CategoryErrorKindValidation       CategoryErrorKind = "validation"
	CategoryErrorKindNotFound         CategoryErrorKind = "not_found"
	CategoryErrorKindForbidden        CategoryErrorKind = "forbidden"
	CategoryErrorKindInvalidOperation CategoryErrorKind = "invalid_operation"
)

var categoryErrorKinds = map[CategoryErrorCode]CategoryErrorKind{
	ErrCodeCategoryNameRequired:   CategoryErrorKindValidation,
	ErrCodeCategoryNameTooLong:    CategoryErrorKindValidation,
	ErrCodeMissingCategoryFields:  CategoryErrorKindValidation,
	ErrCodeInvalidCategoryID:      CategoryErrorKindValidation,
	ErrCodeCategoryNotFound:       CategoryErrorKindNotFound,
	ErrCodeParentCategoryNotFound: CategoryErrorKindNotFound,
	ErrCodeNotAuthorizedCategory:  CategoryErrorKindForbidden,
	ErrCodeCategoryOwnParent:      CategoryErrorKindInvalidOperation,
	ErrCodeCategoryIntoDescendant: CategoryErrorKindInvalidOperation,
	ErrCodeCategoryHasChildren:    CategoryErrorKindInvalidOperation,
	ErrCodeCategoryHasMedia:       CategoryErrorKindInvalidOperation,
}

// CategoryError represents a category error with code and message.
type CategoryError struct {
	Code    CategoryErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CategoryError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *CategoryError) Unwrap() error {
	return e.Err
}

// Kind returns the abstract error kind for the code.
func (e *CategoryError) Kind() CategoryErrorKind {
	return categoryErrorKinds[e.Code]
}

// NewCategoryError creates a new CategoryError with the given code and message.
func NewCategoryError(code CategoryErrorCode, message string, err error) *CategoryError {
	return &CategoryError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CategoryErrorKindOf returns the kind of the first CategoryError in err's chain,
// or CategoryErrorKindUnknown for store and other unexpected errors.
func CategoryErrorKindOf(err error) CategoryErrorKind {
	var catErr *CategoryError
	if errors.As(err, &catErr) {
		return catErr.Kind()
	}
	return CategoryErrorKindUnknown
}
