package utils

import (
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func StringsToObjectIDs(ids []string) ([]bson.ObjectID, error) {
	objectIDs := make([]bson.ObjectID, 0, len(ids))

	for _, id := range ids {
		objID, err := bson.ObjectIDFromHex(id)
		if err != nil {
			return nil, err
		}
		objectIDs = append(objectIDs, objID)
	}

	return objectIDs, nil
}

// RemovedImages returns the URLs of previous that next no longer references.
func RemovedImages(previous, next []string) []string {
	keep := make(map[string]struct{}, len(next))
	for _, u := range next {
		keep[u] = struct{}{}
	}
	removed := make([]string, 0)
	seen := make(map[string]struct{})
	for _, u := range previous {
		if _, ok := keep[u]; ok {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		removed = append(removed, u)
	}
	return removed
}

func ParseBoolQuery(value string) (*bool, error) {
	if value == "" {
		return nil, nil // not provided
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func ParseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
