package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamsqa-backend/application/ports"
)

func seedCourses(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	docs := []ports.Document{
		{ID: "c-1", Fields: map[string]interface{}{"title": "Go Basics", "price": 49.0, "seats": 30, "published": true, "tags": []string{"go", "beginner"}}},
		{ID: "c-2", Fields: map[string]interface{}{"title": "Advanced Go", "price": 99.0, "seats": 15, "published": true, "tags": []string{"go", "advanced"}}},
		{ID: "c-3", Fields: map[string]interface{}{"title": "Docker Intro", "price": 29.0, "seats": 50, "published": false, "tags": []string{"docker"}}},
	}
	for _, d := range docs {
		require.NoError(t, s.Put(ctx, "courses", d))
	}
}

func TestGetPutDelete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "courses", "c-1")
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)

	require.NoError(t, s.Put(ctx, "courses", ports.Document{ID: "c-1", Fields: map[string]interface{}{"title": "Go"}}))
	doc, err := s.Get(ctx, "courses", "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Go", doc.Fields["title"])

	// Put with the same ID replaces.
	require.NoError(t, s.Put(ctx, "courses", ports.Document{ID: "c-1", Fields: map[string]interface{}{"title": "Go, 2nd ed."}}))
	doc, err = s.Get(ctx, "courses", "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Go, 2nd ed.", doc.Fields["title"])
	assert.Equal(t, 1, s.Len("courses"))

	require.NoError(t, s.Delete(ctx, "courses", "c-1"))
	_, err = s.Get(ctx, "courses", "c-1")
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)

	assert.Error(t, s.Put(ctx, "courses", ports.Document{}), "missing id must be rejected")
}

func TestFindFilters(t *testing.T) {
	s := NewStore()
	seedCourses(t, s)
	ctx := context.Background()

	cases := []struct {
		name    string
		filters []ports.Filter
		wantIDs []string
	}{
		{"equal bool", []ports.Filter{{Field: "published", Op: ports.OpEqual, Value: true}}, []string{"c-1", "c-2"}},
		{"not equal", []ports.Filter{{Field: "title", Op: ports.OpNotEqual, Value: "Go Basics"}}, []string{"c-2", "c-3"}},
		{"greater than", []ports.Filter{{Field: "price", Op: ports.OpGreaterThan, Value: 49.0}}, []string{"c-2"}},
		{"greater or equal", []ports.Filter{{Field: "price", Op: ports.OpGreaterOrEqual, Value: 49.0}}, []string{"c-1", "c-2"}},
		{"less than int vs float", []ports.Filter{{Field: "seats", Op: ports.OpLessThan, Value: 40.0}}, []string{"c-1", "c-2"}},
		{"array contains", []ports.Filter{{Field: "tags", Op: ports.OpArrayContains, Value: "go"}}, []string{"c-1", "c-2"}},
		{"conjunction", []ports.Filter{
			{Field: "published", Op: ports.OpEqual, Value: true},
			{Field: "price", Op: ports.OpLessOrEqual, Value: 49.0},
		}, []string{"c-1"}},
		{"no match", []ports.Filter{{Field: "title", Op: ports.OpEqual, Value: "Rust"}}, []string{}},
		{"missing field never compares", []ports.Filter{{Field: "ghost", Op: ports.OpGreaterThan, Value: 1}}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			docs, err := s.Find(ctx, ports.FindSpec{Collection: "courses", Filters: tc.filters})
			require.NoError(t, err)
			ids := make([]string, 0, len(docs))
			for _, d := range docs {
				ids = append(ids, d.ID)
			}
			assert.ElementsMatch(t, tc.wantIDs, ids)
		})
	}
}

func TestFindOrderLimitOffset(t *testing.T) {
	s := NewStore()
	seedCourses(t, s)
	ctx := context.Background()

	docs, err := s.Find(ctx, ports.FindSpec{
		Collection: "courses",
		OrderBy:    &ports.Order{Field: "price", Descending: true},
	})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"c-2", "c-1", "c-3"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})

	docs, err = s.Find(ctx, ports.FindSpec{
		Collection: "courses",
		OrderBy:    &ports.Order{Field: "price"},
		Limit:      2,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "c-3", docs[0].ID)

	docs, err = s.Find(ctx, ports.FindSpec{
		Collection: "courses",
		OrderBy:    &ports.Order{Field: "price"},
		Offset:     2,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "c-2", docs[0].ID)

	docs, err = s.Find(ctx, ports.FindSpec{Collection: "courses", Offset: 99})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFindProjection(t *testing.T) {
	s := NewStore()
	seedCourses(t, s)

	docs, err := s.Find(context.Background(), ports.FindSpec{
		Collection: "courses",
		Fields:     []string{"title"},
	})
	require.NoError(t, err)
	for _, d := range docs {
		assert.NotEmpty(t, d.ID)
		assert.Contains(t, d.Fields, "title")
		assert.NotContains(t, d.Fields, "price")
	}
}

func TestCount(t *testing.T) {
	s := NewStore()
	seedCourses(t, s)
	ctx := context.Background()

	n, err := s.Count(ctx, "courses", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.Count(ctx, "courses", []ports.Filter{{Field: "published", Op: ports.OpEqual, Value: true}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Count(ctx, "empty", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoredDocumentsIsolated(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	doc := ports.Document{ID: "c-1", Fields: map[string]interface{}{"title": "Go"}}
	require.NoError(t, s.Put(ctx, "courses", doc))

	// Mutating the caller's copy must not leak into the store.
	doc.Fields["title"] = "changed"
	got, err := s.Get(ctx, "courses", "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Fields["title"])

	// Mutating a read result must not leak either.
	got.Fields["title"] = "changed again"
	fresh, err := s.Get(ctx, "courses", "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Go", fresh.Fields["title"])
}
