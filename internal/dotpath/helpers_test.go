package dotpath

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jacoelho/dq/internal/document"
)

const usersJSON = `{"users":[{"name":"Alice","role":"admin"},{"name":"Bob","role":"user"}]}`

func decode(t *testing.T, raw string) any {
	t.Helper()
	doc, err := document.DecodeJSON([]byte(raw))
	require.NoError(t, err)
	return doc
}

func locationStrings(results Results) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Location.String()
	}
	return out
}

func intp(i int) *int { return &i }
