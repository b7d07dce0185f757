package bugzilla

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullBug() *Bug {
	return &Bug{
		ID:            1104,
		Product:       "SUSEConnect",
		Component:     "General",
		Status:        "NEW",
		Summary:       "activation code rejected",
		Priority:      "P2",
		Severity:      "major",
		Platform:      "x86_64",
		CreationTime:  "2024-05-01T09:00:00Z",
		CC:            []string{"a@suse.com", "b@suse.com"},
		Keywords:      []string{"regression", "needs-triage"},
		Groups:        []string{"suse-only", "partners"},
		IsConfirmed:   true,
		CreatorDetail: &UserDetail{Email: "reporter@suse.com"},
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("emits exactly the documented keys", func(t *testing.T) {
		t.Parallel()

		record, err := Normalize(fullBug(), "https://bugzilla.example.com/show_bug.cgi?id=1104")
		require.NoError(t, err)

		data, err := json.Marshal(record)
		require.NoError(t, err)

		var keys map[string]any
		require.NoError(t, json.Unmarshal(data, &keys))

		want := []string{
			"product_name", "bug_id", "bug_priority", "created", "status",
			"summary", "severity", "bug_cc", "creator", "platform",
			"keywords", "component", "groups", "weburl", "confirmed",
		}
		assert.Len(t, keys, len(want))
		for _, k := range want {
			assert.Contains(t, keys, k)
		}
	})

	t.Run("flattens all fields", func(t *testing.T) {
		t.Parallel()

		record, err := Normalize(fullBug(), "https://bugzilla.example.com/show_bug.cgi?id=1104")
		require.NoError(t, err)

		assert.Equal(t, "SUSEConnect", record.ProductName)
		assert.Equal(t, 1104, record.BugID)
		assert.Equal(t, "P2", record.BugPriority)
		assert.Equal(t, "2024-05-01T09:00:00Z", record.Created)
		assert.Equal(t, "NEW", record.Status)
		assert.Equal(t, "activation code rejected", record.Summary)
		assert.Equal(t, "major", record.Severity)
		assert.Equal(t, []string{"a@suse.com", "b@suse.com"}, record.BugCC)
		assert.Equal(t, "reporter@suse.com", record.Creator)
		assert.Equal(t, "x86_64", record.Platform)
		assert.Equal(t, "General", record.Component)
		assert.Equal(t, "https://bugzilla.example.com/show_bug.cgi?id=1104", record.WebURL)
		assert.True(t, record.Confirmed)
	})

	t.Run("joins keywords with semicolons and groups with spaces", func(t *testing.T) {
		t.Parallel()

		record, err := Normalize(fullBug(), "")
		require.NoError(t, err)

		assert.Equal(t, "regression;needs-triage", record.Keywords)
		assert.Equal(t, "suse-only partners", record.Groups)
	})

	t.Run("joins empty lists to empty strings", func(t *testing.T) {
		t.Parallel()

		bug := fullBug()
		bug.Keywords = nil
		bug.Groups = nil

		record, err := Normalize(bug, "")
		require.NoError(t, err)

		assert.Equal(t, "", record.Keywords)
		assert.Equal(t, "", record.Groups)
	})

	t.Run("serializes empty cc list as an array", func(t *testing.T) {
		t.Parallel()

		bug := fullBug()
		bug.CC = nil

		record, err := Normalize(bug, "")
		require.NoError(t, err)

		data, err := json.Marshal(record)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"bug_cc":[]`)
	})

	t.Run("fails on missing creator details", func(t *testing.T) {
		t.Parallel()

		bug := fullBug()
		bug.CreatorDetail = nil

		_, err := Normalize(bug, "")
		assert.ErrorContains(t, err, "creator_detail")
	})

	t.Run("fails on nil bug", func(t *testing.T) {
		t.Parallel()

		_, err := Normalize(nil, "")
		assert.Error(t, err)
	})
}
