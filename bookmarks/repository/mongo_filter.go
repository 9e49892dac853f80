package repository

import (
	"fmt"

	"github.com/bookmarksdev/api/bookmarks/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var mongoOperators = map[query.Operator]string{
	query.OpEq:  "$eq",
	query.OpNe:  "$ne",
	query.OpGte: "$gte",
	query.OpLte: "$lte",
	query.OpIn:  "$in",
}

// MongoFilter translates spec into a bson filter.
// It returns errInvalidID when an equality on _id can never match.
func MongoFilter(spec query.Spec) (bson.M, error) {
	filter, err := mongoConditions(spec.Conditions)
	if err != nil {
		return nil, err
	}

	if len(spec.Or) > 0 {
		groups := make(bson.A, 0, len(spec.Or))
		for _, group := range spec.Or {
			g, err := mongoConditions(group)
			if err != nil {
				if err == errInvalidID {
					continue
				}
				return nil, err
			}
			groups = append(groups, g)
		}
		if len(groups) == 0 {
			return nil, errInvalidID
		}
		filter["$or"] = groups
	}

	return filter, nil
}

func mongoConditions(conditions []query.Condition) (bson.M, error) {
	filter := bson.M{}
	for _, c := range conditions {
		op, ok := mongoOperators[c.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported operator %q", c.Op)
		}

		value := c.Value
		if c.Field == query.FieldID {
			converted, err := mongoIDValue(value)
			if err != nil {
				// Excluding an id that cannot exist excludes nothing.
				if c.Op == query.OpNe {
					continue
				}
				return nil, err
			}
			value = converted
		}

		existing, present := filter[c.Field]
		if !present {
			if c.Op == query.OpEq {
				filter[c.Field] = value
			} else {
				filter[c.Field] = bson.M{op: value}
			}
			continue
		}

		ops, isOps := existing.(bson.M)
		if !isOps {
			ops = bson.M{"$eq": existing}
		}
		ops[op] = value
		filter[c.Field] = ops
	}
	return filter, nil
}

func mongoIDValue(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		oid, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return nil, errInvalidID
		}
		return oid, nil
	case []string:
		ids := make([]primitive.ObjectID, 0, len(v))
		for _, s := range v {
			if oid, err := primitive.ObjectIDFromHex(s); err == nil {
				ids = append(ids, oid)
			}
		}
		return ids, nil
	default:
		return value, nil
	}
}

// MongoSort translates the sort keys of spec.
func MongoSort(spec query.Spec) bson.D {
	if len(spec.Sort) == 0 {
		return nil
	}
	sort := make(bson.D, 0, len(spec.Sort))
	for _, s := range spec.Sort {
		direction := 1
		if s.Desc {
			direction = -1
		}
		sort = append(sort, bson.E{Key: s.Field, Value: direction})
	}
	return sort
}
