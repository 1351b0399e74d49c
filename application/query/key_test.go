package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"teamsqa-backend/application/ports"
)

func intPtr(n int) *int { return &n }

func TestKeyDeterminism(t *testing.T) {
	build := func() Query {
		return Query{
			Collection: "registrations",
			Filters: []ports.Filter{
				{Field: "course_id", Op: ports.OpEqual, Value: "c-1"},
				{Field: "status", Op: ports.OpEqual, Value: "pending"},
			},
			OrderBy:   &ports.Order{Field: "created_at", Descending: true},
			Limit:     intPtr(20),
			Offset:    40,
			Fields:    []string{"email", "status"},
			WithCount: true,
		}
	}

	assert.Equal(t, build().Key(), build().Key(), "identical queries must share a key")
}

func TestKeyDiffersPerField(t *testing.T) {
	base := Query{
		Collection: "registrations",
		Filters:    []ports.Filter{{Field: "status", Op: ports.OpEqual, Value: "pending"}},
		Limit:      intPtr(10),
	}

	variants := map[string]Query{}

	q := base
	q.Collection = "courses"
	variants["collection"] = q

	q = base
	q.Filters = []ports.Filter{{Field: "status", Op: ports.OpEqual, Value: "confirmed"}}
	variants["filter value"] = q

	q = base
	q.Filters = []ports.Filter{{Field: "status", Op: ports.OpNotEqual, Value: "pending"}}
	variants["filter op"] = q

	q = base
	q.OrderBy = &ports.Order{Field: "created_at"}
	variants["order"] = q

	q = base
	q.Limit = intPtr(11)
	variants["limit"] = q

	q = base
	q.Limit = nil
	variants["nil limit"] = q

	q = base
	q.Offset = 5
	variants["offset"] = q

	q = base
	q.Fields = []string{"email"}
	variants["projection"] = q

	q = base
	q.WithCount = true
	variants["with count"] = q

	baseKey := base.Key()
	for name, variant := range variants {
		assert.NotEqual(t, baseKey, variant.Key(), "changing %s must change the key", name)
	}
}

func TestKeyFilterOrderSignificant(t *testing.T) {
	a := Query{
		Collection: "registrations",
		Filters: []ports.Filter{
			{Field: "course_id", Op: ports.OpEqual, Value: "c-1"},
			{Field: "status", Op: ports.OpEqual, Value: "pending"},
		},
	}
	b := Query{
		Collection: "registrations",
		Filters: []ports.Filter{
			{Field: "status", Op: ports.OpEqual, Value: "pending"},
			{Field: "course_id", Op: ports.OpEqual, Value: "c-1"},
		},
	}

	assert.NotEqual(t, a.Key(), b.Key())
}

func TestKeyValueTypesDistinct(t *testing.T) {
	asInt := Query{
		Collection: "courses",
		Filters:    []ports.Filter{{Field: "seats", Op: ports.OpGreaterThan, Value: 10}},
	}
	asFloat := Query{
		Collection: "courses",
		Filters:    []ports.Filter{{Field: "seats", Op: ports.OpGreaterThan, Value: 10.5}},
	}
	asBool := Query{
		Collection: "courses",
		Filters:    []ports.Filter{{Field: "published", Op: ports.OpEqual, Value: true}},
	}

	assert.NotEqual(t, asInt.Key(), asFloat.Key())
	assert.Contains(t, asBool.Key(), "published:==:b:true")

	// The same literal under a different Go type must not share a key.
	pairs := map[string][2]interface{}{
		"int vs string":   {5, "5"},
		"bool vs string":  {true, "true"},
		"float vs string": {1.5, "1.5"},
		"int vs float":    {1, 1.0},
	}
	for name, pair := range pairs {
		a := Query{
			Collection: "courses",
			Filters:    []ports.Filter{{Field: "seats", Op: ports.OpEqual, Value: pair[0]}},
		}
		b := Query{
			Collection: "courses",
			Filters:    []ports.Filter{{Field: "seats", Op: ports.OpEqual, Value: pair[1]}},
		}
		assert.NotEqual(t, a.Key(), b.Key(), name)
	}
}

func TestKeyDelimitersInValuesDoNotCollide(t *testing.T) {
	// A value containing the key's own separators must not alias the key of
	// a query with a different filter list.
	smuggled := Query{
		Collection: "registrations",
		Filters: []ports.Filter{
			{Field: "email", Op: ports.OpEqual, Value: "a@x.io,course_id:==:c-2"},
		},
	}
	twoFilters := Query{
		Collection: "registrations",
		Filters: []ports.Filter{
			{Field: "email", Op: ports.OpEqual, Value: "a@x.io"},
			{Field: "course_id", Op: ports.OpEqual, Value: "c-2"},
		},
	}
	assert.NotEqual(t, smuggled.Key(), twoFilters.Key())

	// A pipe in a value must not leak into the section layout.
	piped := Query{
		Collection: "registrations",
		Filters: []ports.Filter{
			{Field: "email", Op: ports.OpEqual, Value: "a@x.io|o:created_at:desc"},
		},
	}
	ordered := Query{
		Collection: "registrations",
		Filters:    []ports.Filter{{Field: "email", Op: ports.OpEqual, Value: "a@x.io"}},
		OrderBy:    &ports.Order{Field: "created_at", Descending: true},
	}
	assert.NotEqual(t, piped.Key(), ordered.Key())

	// Same for projection lists.
	joined := Query{Collection: "registrations", Fields: []string{"email,status"}}
	split := Query{Collection: "registrations", Fields: []string{"email", "status"}}
	assert.NotEqual(t, joined.Key(), split.Key())
}

func TestDocumentKeyAndPrefixes(t *testing.T) {
	assert.Equal(t, "d:courses:c-1", DocumentKey("courses", "c-1"))

	listPrefix, docPrefix := collectionKeyPrefixes("registrations")
	assert.Equal(t, "q:registrations|", listPrefix)
	assert.Equal(t, "d:registrations:", docPrefix)

	// Collection names that prefix each other must not collide.
	q := Query{Collection: "registrations_archive"}
	assert.False(t, strings.HasPrefix(q.Key(), listPrefix))
	assert.False(t, strings.HasPrefix(DocumentKey("registrations_archive", "x"), docPrefix))
}
