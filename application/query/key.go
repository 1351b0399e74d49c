package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Cache key layout. List keys start with "q:<collection>|" and document keys
// with "d:<collection>:", so collection-scoped invalidation is a prefix check.
const (
	listKeyPrefix = "q:"
	docKeyPrefix  = "d:"
)

// Key returns the deterministic cache key for the query. Two logically
// identical queries produce byte-identical keys; queries differing in any
// field produce different keys. Filter order is treated as significant.
//
// Field names and values are percent-escaped so the key's delimiters cannot
// appear inside a token, and values carry a type tag so 5, 5.0, "5", and
// true never share an encoding. Filter values come straight from query-string
// parameters; without both guards a crafted value could alias the key of a
// different query in the same collection.
func (q Query) Key() string {
	var b strings.Builder
	b.WriteString(listKeyPrefix)
	b.WriteString(q.Collection)

	b.WriteString("|f:")
	for i, f := range q.Filters {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(url.QueryEscape(f.Field))
		b.WriteByte(':')
		b.WriteString(string(f.Op))
		b.WriteByte(':')
		b.WriteString(encodeValue(f.Value))
	}

	b.WriteString("|o:")
	if q.OrderBy != nil {
		b.WriteString(url.QueryEscape(q.OrderBy.Field))
		if q.OrderBy.Descending {
			b.WriteString(":desc")
		} else {
			b.WriteString(":asc")
		}
	}

	b.WriteString("|l:")
	if q.Limit != nil {
		b.WriteString(strconv.Itoa(*q.Limit))
	}

	b.WriteString("|s:")
	b.WriteString(strconv.Itoa(q.Offset))

	b.WriteString("|p:")
	for i, field := range q.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(url.QueryEscape(field))
	}

	b.WriteString("|c:")
	b.WriteString(strconv.FormatBool(q.WithCount))

	return b.String()
}

// DocumentKey returns the cache key for a single-document read.
func DocumentKey(collection, id string) string {
	return docKeyPrefix + collection + ":" + id
}

// collectionKeyPrefixes returns the prefixes matching every cache key built
// for the collection, list and single-document alike.
func collectionKeyPrefixes(collection string) (listPrefix, docPrefix string) {
	return listKeyPrefix + collection + "|", docKeyPrefix + collection + ":"
}

// encodeValue renders a filter value deterministically. Each encoding starts
// with a type tag, and strings are percent-escaped, so no two distinct
// (type, value) pairs share an encoding.
func encodeValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return "s:" + url.QueryEscape(val)
	case bool:
		return "b:" + strconv.FormatBool(val)
	case int:
		return "i:" + strconv.Itoa(val)
	case int64:
		return "i:" + strconv.FormatInt(val, 10)
	case float64:
		return "f:" + strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return "v:" + url.QueryEscape(fmt.Sprintf("%v", val))
	}
}
