package query

import bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"

// Domain scopes a free text search.
type Domain string

const (
	DomainPublic   Domain = "public"
	DomainPersonal Domain = "personal"
)

const DefaultSearchLimit = 10

// SearchSpec is handed to the text search backend.
type SearchSpec struct {
	Text    string
	Limit   int
	Domain  Domain
	OwnerID string
}

// Filter returns the scope a search runs inside.
func (s SearchSpec) Filter() Spec {
	if s.Domain == DomainPersonal {
		return Spec{Conditions: []Condition{eq(FieldUserID, s.OwnerID)}, Limit: int64(s.Limit)}
	}
	return Spec{Conditions: []Condition{sharedOnly}, Limit: int64(s.Limit)}
}

// Search builds a SearchSpec. A non-positive limit falls back to DefaultSearchLimit.
func Search(text string, limit int, domain Domain, ownerID string) (SearchSpec, error) {
	switch domain {
	case DomainPublic:
		ownerID = ""
	case DomainPersonal:
		if ownerID == "" {
			return SearchSpec{}, bookmarksErrors.ErrUnauthorized
		}
	default:
		return SearchSpec{}, bookmarksErrors.ErrInvalidSearchDomain
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return SearchSpec{Text: text, Limit: limit, Domain: domain, OwnerID: ownerID}, nil
}
