package util

import (
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
)

// ErrProtectedField is returned when a changelog touches a field outside of the allowed set
var ErrProtectedField = errors.New("field is protected and cannot be changed")

// ProtectedChangelog diffs before and after, failing if any changed field is not allowed
func ProtectedChangelog(allowedFields map[string]bool, before, after interface{}) (diff.Changelog, error) {
	changelog, err := diff.Diff(before, after)
	if err != nil {
		return nil, errors.Wrap(err, "failed to diff changes")
	}

	for _, change := range changelog {
		if !allowedFields[change.Path[0]] {
			return nil, errors.Wrapf(ErrProtectedField, "`%s`", change.Path[0])
		}
	}

	return changelog, nil
}
