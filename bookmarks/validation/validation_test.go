package validation

import (
	"strings"
	"testing"

	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
	"github.com/bookmarksdev/api/bookmarks/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBookmark() *models.Bookmark {
	return &models.Bookmark{
		UserID:   "user-1",
		Name:     "Go by Example",
		Location: "https://gobyexample.com",
		Tags:     []string{"go", "tutorial"},
	}
}

func TestValidateBookmark_RequiredFields(t *testing.T) {
	cases := map[string]func(b *models.Bookmark){
		"missing name":     func(b *models.Bookmark) { b.Name = "" },
		"missing location": func(b *models.Bookmark) { b.Location = "" },
		"nil tags":         func(b *models.Bookmark) { b.Tags = nil },
		"empty tags":       func(b *models.Bookmark) { b.Tags = []string{} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := validBookmark()
			mutate(b)
			err := ValidateBookmark(b, Options{})
			require.ErrorIs(t, err, bookmarksErrors.ErrMissingRequiredFields)
			assert.ErrorIs(t, err, bookmarksErrors.ErrValidation)
		})
	}

	t.Run("userId only when required", func(t *testing.T) {
		b := validBookmark()
		b.UserID = ""
		require.NoError(t, ValidateBookmark(b, Options{Admin: true}))
		assert.ErrorIs(t, ValidateBookmark(b, Options{Admin: true, RequireUserID: true}), bookmarksErrors.ErrMissingRequiredFields)
	})

	t.Run("nil bookmark", func(t *testing.T) {
		assert.ErrorIs(t, ValidateBookmark(nil, Options{}), bookmarksErrors.ErrMissingRequiredFields)
	})
}

func TestValidateBookmark_Tags(t *testing.T) {
	t.Run("eight tags pass", func(t *testing.T) {
		b := validBookmark()
		b.Tags = []string{"1", "2", "3", "4", "5", "6", "7", "8"}
		assert.NoError(t, ValidateBookmark(b, Options{}))
	})

	t.Run("nine tags fail for users and admins", func(t *testing.T) {
		b := validBookmark()
		b.Tags = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}
		assert.ErrorIs(t, ValidateBookmark(b, Options{}), bookmarksErrors.ErrTooManyTags)
		assert.ErrorIs(t, ValidateBookmark(b, Options{Admin: true}), bookmarksErrors.ErrTooManyTags)
	})

	t.Run("blocked tags are all listed", func(t *testing.T) {
		b := validBookmark()
		b.Tags = []string{"awesome-go", "java", "awesome-list"}
		err := ValidateBookmark(b, Options{})
		require.ErrorIs(t, err, bookmarksErrors.ErrBlockedTags)
		assert.Contains(t, err.Error(), "awesome-go awesome-list")
	})

	t.Run("admin bypasses blocked tags", func(t *testing.T) {
		b := validBookmark()
		b.Tags = []string{"java", "awesome-list"}
		assert.NoError(t, ValidateBookmark(b, Options{Admin: true}))
	})

	t.Run("too many tags wins over blocked tags", func(t *testing.T) {
		b := validBookmark()
		b.Tags = []string{"awesome", "2", "3", "4", "5", "6", "7", "8", "9"}
		assert.ErrorIs(t, ValidateBookmark(b, Options{}), bookmarksErrors.ErrTooManyTags)
	})
}

func TestValidateDescription(t *testing.T) {
	assert.NoError(t, ValidateDescription(""))
	assert.NoError(t, ValidateDescription(strings.Repeat("a", 1500)))
	assert.NoError(t, ValidateDescription(strings.Repeat("ü", 1500)))
	assert.ErrorIs(t, ValidateDescription(strings.Repeat("a", 1501)), bookmarksErrors.ErrDescriptionTooLong)

	hundredLines := strings.Repeat("line\n", 99) + "last"
	assert.NoError(t, ValidateDescription(hundredLines))
	assert.ErrorIs(t, ValidateDescription(hundredLines+"\nmore"), bookmarksErrors.ErrDescriptionTooManyLines)

	t.Run("length is checked before lines", func(t *testing.T) {
		b := validBookmark()
		b.Description = strings.Repeat("\n", 1501)
		assert.ErrorIs(t, ValidateBookmark(b, Options{}), bookmarksErrors.ErrDescriptionTooLong)
	})
}
