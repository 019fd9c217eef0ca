// Package testutil contains helper functions for unit tests.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// AssertJSONEqual asserts that two JSON documents are equal, ignoring
// formatting and key order. The diff is reported on failure.
func AssertJSONEqual(t testing.TB, expected, actual string, msgAndArgs ...any) bool {
	t.Helper()
	var e, a any
	if err := json.Unmarshal([]byte(expected), &e); err != nil {
		return assert.Fail(t, "invalid expected json", err.Error())
	}
	if err := json.Unmarshal([]byte(actual), &a); err != nil {
		return assert.Fail(t, "invalid actual json", err.Error())
	}
	return assert.True(t, cmp.Equal(e, a), append(msgAndArgs, cmp.Diff(e, a))...)
}
