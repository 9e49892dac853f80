// Package query turns read and write intents into a store independent filter and sort.
package query

import (
	"time"

	bookmarksErrors "github.com/bookmarksdev/api/bookmarks/errors"
)

// Canonical field names. Repositories map them to their own columns.
const (
	FieldID             = "_id"
	FieldUserID         = "userId"
	FieldLocation       = "location"
	FieldShared         = "shared"
	FieldTags           = "tags"
	FieldCreatedAt      = "createdAt"
	FieldLastAccessedAt = "lastAccessedAt"
	// FieldCount is the aggregate count produced by tag grouping.
	FieldCount = "count"
)

const (
	PersonalListLimit        = 100
	PublicListLimit          = 100
	DefaultLatestEntriesDays = 7
)

// Operator is a comparison applied to a field.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNe  Operator = "ne"
	OpGte Operator = "gte"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

// Condition compares one field to a value. OpEq on FieldTags matches any element.
type Condition struct {
	Field string
	Op    Operator
	Value interface{}
}

type SortField struct {
	Field string
	Desc  bool
}

// Spec is the canonical filter. All Conditions must hold, and when Or is not empty
// at least one of its groups must hold entirely.
type Spec struct {
	Conditions []Condition
	Or         [][]Condition
	Sort       []SortField
	// Limit of zero means unbounded.
	Limit int64
}

// IsEmpty reports whether the spec matches every record.
func (s Spec) IsEmpty() bool {
	return len(s.Conditions) == 0 && len(s.Or) == 0
}

func eq(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

var sharedOnly = eq(FieldShared, true)

// ByID matches one bookmark. A non-empty ownerID also scopes it to that owner.
func ByID(id, ownerID string) Spec {
	spec := Spec{Conditions: []Condition{eq(FieldID, id)}}
	if ownerID != "" {
		spec.Conditions = append(spec.Conditions, eq(FieldUserID, ownerID))
	}
	return spec
}

// ByLocation matches a location the owner saved or anyone shared.
func ByLocation(location, ownerID string) Spec {
	return Spec{
		Conditions: []Condition{eq(FieldLocation, location)},
		Or: [][]Condition{
			{eq(FieldUserID, ownerID)},
			{sharedOnly},
		},
	}
}

// PublicByID matches a shared bookmark by id.
func PublicByID(id string) Spec {
	return Spec{Conditions: []Condition{eq(FieldID, id), sharedOnly}}
}

// PublicByLocation matches the shared bookmark for a location.
func PublicByLocation(location string) Spec {
	return Spec{Conditions: []Condition{sharedOnly, eq(FieldLocation, location)}}
}

// PublicByTag lists shared bookmarks carrying tag, newest first.
func PublicByTag(tag string, limit int) Spec {
	if limit <= 0 {
		limit = PublicListLimit
	}
	return Spec{
		Conditions: []Condition{sharedOnly, eq(FieldTags, tag)},
		Sort:       []SortField{{Field: FieldCreatedAt, Desc: true}},
		Limit:      int64(limit),
	}
}

// PublicList lists shared bookmarks, newest first.
func PublicList(limit int) Spec {
	if limit <= 0 {
		limit = PublicListLimit
	}
	return Spec{
		Conditions: []Condition{sharedOnly},
		Sort:       []SortField{{Field: FieldCreatedAt, Desc: true}},
		Limit:      int64(limit),
	}
}

// SharedLocationConflict finds a shared bookmark on location that would collide with a write.
// excludeUserID drops bookmarks of that owner and excludeID drops one record.
func SharedLocationConflict(location, excludeUserID, excludeID string) Spec {
	spec := PublicByLocation(location)
	if excludeUserID != "" {
		spec.Conditions = append(spec.Conditions, Condition{Field: FieldUserID, Op: OpNe, Value: excludeUserID})
	}
	if excludeID != "" {
		spec.Conditions = append(spec.Conditions, Condition{Field: FieldID, Op: OpNe, Value: excludeID})
	}
	return spec
}

// TagAggregate groups the public set by tag, most used first.
func TagAggregate() Spec {
	return Spec{
		Conditions: []Condition{sharedOnly},
		Sort:       []SortField{{Field: FieldCount, Desc: true}},
	}
}

// Personal lists an owner's bookmarks by last access, capped at PersonalListLimit.
func Personal(ownerID string) Spec {
	return Spec{
		Conditions: []Condition{eq(FieldUserID, ownerID)},
		Sort:       []SortField{{Field: FieldLastAccessedAt, Desc: true}},
		Limit:      PersonalListLimit,
	}
}

// AccessibleTags scopes the distinct tag listing to the owner's bookmarks and shared ones.
func AccessibleTags(ownerID string) Spec {
	return Spec{
		Or: [][]Condition{
			{eq(FieldUserID, ownerID)},
			{sharedOnly},
		},
	}
}

// AdminFilter holds the optional filters of the admin listing.
type AdminFilter struct {
	PublicOnly bool
	Location   string
	UserID     string
}

// AdminList AND-combines the supplied filters, newest first.
func AdminList(f AdminFilter) Spec {
	spec := Spec{Sort: []SortField{{Field: FieldCreatedAt, Desc: true}}}
	if f.PublicOnly {
		spec.Conditions = append(spec.Conditions, sharedOnly)
	}
	if f.Location != "" {
		spec.Conditions = append(spec.Conditions, eq(FieldLocation, f.Location))
	}
	if f.UserID != "" {
		spec.Conditions = append(spec.Conditions, eq(FieldUserID, f.UserID))
	}
	return spec
}

// BulkDelete requires at least one of location or userID.
func BulkDelete(location, userID string) (Spec, error) {
	if location == "" && userID == "" {
		return Spec{}, bookmarksErrors.ErrMissingDeleteFilter
	}
	return AdminList(AdminFilter{Location: location, UserID: userID}), nil
}

// TimeWindow selects recent entries. Since wins over Days when set.
type TimeWindow struct {
	Since *time.Time
	To    *time.Time
	Days  int
}

// RecentPublic lists shared bookmarks created inside the window, newest first.
func RecentPublic(w TimeWindow, now time.Time) (Spec, error) {
	spec := Spec{
		Conditions: []Condition{sharedOnly},
		Sort:       []SortField{{Field: FieldCreatedAt, Desc: true}},
	}

	if w.Since != nil {
		to := now
		if w.To != nil {
			to = *w.To
		}
		if w.Since.After(to) {
			return Spec{}, bookmarksErrors.ErrInvalidTimeRange
		}
		spec.Conditions = append(spec.Conditions,
			Condition{Field: FieldCreatedAt, Op: OpGte, Value: *w.Since},
			Condition{Field: FieldCreatedAt, Op: OpLte, Value: to},
		)
		return spec, nil
	}

	days := w.Days
	if days <= 0 {
		days = DefaultLatestEntriesDays
	}
	spec.Conditions = append(spec.Conditions,
		Condition{Field: FieldCreatedAt, Op: OpGte, Value: now.Add(-time.Duration(days) * 24 * time.Hour)},
	)
	return spec, nil
}
