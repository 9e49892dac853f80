package validation

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/go-playground/validator/v10"
)

const (
	MaxNumberOfTags                = 8
	MaxNumberOfCharsForDescription = 1500
	MaxNumberOfLinesForDescription = 100
	BlockedTagPrefix               = "awesome"
)

// Options selects the rule set for a write path.
type Options struct {
	// Admin skips the blocked tag check.
	Admin bool
	// RequireUserID makes userId a required attribute.
	RequireUserID bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateBookmark runs the structural checks in order and stops at the first failure.
func ValidateBookmark(b *models.Bookmark, opts Options) error {
	if b == nil {
		return bookmarksErrors.ErrMissingRequiredFields
	}
	if err := checkRequired(b, opts.RequireUserID); err != nil {
		return err
	}
	if len(b.Tags) > MaxNumberOfTags {
		return bookmarksErrors.ErrTooManyTags
	}
	if !opts.Admin {
		if blocked := BlockedTags(b.Tags); len(blocked) > 0 {
			return fmt.Errorf("%w: %s", bookmarksErrors.ErrBlockedTags, strings.Join(blocked, " "))
		}
	}
	return ValidateDescription(b.Description)
}

func checkRequired(b *models.Bookmark, requireUserID bool) error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("%w (%s)", bookmarksErrors.ErrMissingRequiredFields, failedFields(err))
	}
	if requireUserID {
		if err := validate.Var(b.UserID, "required"); err != nil {
			return fmt.Errorf("%w (userId)", bookmarksErrors.ErrMissingRequiredFields)
		}
	}
	return nil
}

func failedFields(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fe.Field())
	}
	return strings.Join(fields, ", ")
}

// BlockedTags returns every tag carrying the reserved prefix, in input order.
func BlockedTags(tags []string) []string {
	var blocked []string
	for _, tag := range tags {
		if strings.HasPrefix(tag, BlockedTagPrefix) {
			blocked = append(blocked, tag)
		}
	}
	return blocked
}

// ValidateDescription enforces the character and line limits. An empty description passes.
func ValidateDescription(description string) error {
	if description == "" {
		return nil
	}
	if utf8.RuneCountInString(description) > MaxNumberOfCharsForDescription {
		return fmt.Errorf("%w: only %d allowed", bookmarksErrors.ErrDescriptionTooLong, MaxNumberOfCharsForDescription)
	}
	if strings.Count(description, "\n")+1 > MaxNumberOfLinesForDescription {
		return fmt.Errorf("%w: only %d allowed", bookmarksErrors.ErrDescriptionTooManyLines, MaxNumberOfLinesForDescription)
	}
	return nil
}
