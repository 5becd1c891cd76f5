package firestore

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/iterator"
)

func TestDocToProfile(t *testing.T) {
	created := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	profile := docToProfile("doc-id", map[string]interface{}{
		"name":      "  Ada ",
		"program":   "Software Engineering",
		"clubs":     "Robotics",
		"onboarded": true,
		"photoURL":  "https://example.com/a.png",
		"createdAt": created,
		"year":      3,
	})

	assert.Equal(t, "doc-id", profile.UID)
	assert.Equal(t, "Ada", profile.Name)
	assert.Equal(t, "Robotics", profile.Clubs)
	assert.Equal(t, "https://example.com/a.png", profile.PhotoURL)
	assert.True(t, profile.Onboarded)
	assert.Equal(t, created, profile.CreatedAt)
	assert.True(t, profile.UpdatedAt.IsZero())
}

func TestDocToProfileLooseTypes(t *testing.T) {
	profile := docToProfile("doc-id", map[string]interface{}{
		"uid":       "explicit",
		"interests": 42,
		"onboarded": "true",
	})

	assert.Equal(t, "explicit", profile.UID)
	assert.Equal(t, "42", profile.Interests)
	assert.False(t, profile.Onboarded, "only boolean true marks a profile onboarded")
}

func TestPatchToFields(t *testing.T) {
	name := "Ada"
	onboarded := true

	fields := patchToFields("u1", &domain.ProfilePatch{Name: &name, Onboarded: &onboarded}, true)
	assert.Equal(t, "u1", fields["uid"])
	assert.Equal(t, "Ada", fields["name"])
	assert.Equal(t, true, fields["onboarded"])
	assert.Equal(t, firestore.ServerTimestamp, fields["createdAt"])
	assert.Equal(t, firestore.ServerTimestamp, fields["updatedAt"])
	assert.NotContains(t, fields, "program")

	fields = patchToFields("u1", &domain.ProfilePatch{}, false)
	assert.NotContains(t, fields, "createdAt")
	assert.Len(t, fields, 2)
}

type fakeDoc struct {
	id   string
	data map[string]interface{}
}

// docsFrom replays docs, then fails with err or reports iterator.Done.
func docsFrom(docs []fakeDoc, err error) (nextDoc, *int) {
	reads := 0
	return func() (string, map[string]interface{}, error) {
		if reads >= len(docs) {
			if err != nil {
				return "", nil, err
			}
			return "", nil, iterator.Done
		}
		d := docs[reads]
		reads++
		return d.id, d.data, nil
	}, &reads
}

func TestCollectCandidates(t *testing.T) {
	docs := []fakeDoc{
		{"a", map[string]interface{}{"name": "A", "onboarded": true}},
		{"me", map[string]interface{}{"name": "Me", "onboarded": true}},
		{"draft", map[string]interface{}{"name": "Draft", "onboarded": false}},
		{"b", map[string]interface{}{"name": "B", "onboarded": true}},
		{"c", map[string]interface{}{"name": "C", "onboarded": true}},
	}

	next, reads := docsFrom(docs, nil)
	got, err := collectCandidates(next, "me", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].UID)
	assert.Equal(t, "b", got[1].UID)
	assert.Equal(t, 4, *reads, "stops reading once the limit is reached")
}

func TestCollectCandidatesExhausted(t *testing.T) {
	next, _ := docsFrom([]fakeDoc{
		{"me", map[string]interface{}{"onboarded": true}},
		{"a", map[string]interface{}{"onboarded": true}},
	}, nil)

	got, err := collectCandidates(next, "me", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].UID)
}

func TestCollectCandidatesSkipsSelfByUIDField(t *testing.T) {
	next, _ := docsFrom([]fakeDoc{
		{"legacy-doc", map[string]interface{}{"uid": "me", "onboarded": true}},
		{"a", map[string]interface{}{"onboarded": true}},
	}, nil)

	got, err := collectCandidates(next, "me", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].UID)
}

func TestCollectCandidatesIteratorError(t *testing.T) {
	boom := errors.New("unavailable")
	next, _ := docsFrom([]fakeDoc{{"a", map[string]interface{}{"onboarded": true}}}, boom)

	_, err := collectCandidates(next, "me", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestCollectCandidatesZeroLimit(t *testing.T) {
	next, reads := docsFrom([]fakeDoc{{"a", map[string]interface{}{"onboarded": true}}}, nil)

	got, err := collectCandidates(next, "me", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, *reads)
}
