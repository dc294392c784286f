// Copyright 2024 The Authors
// This file is part of objectdb.

package instance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/objectdb/object"
	"github.com/erigontech/objectdb/schema"
)

func TestEncodeDecodeResolvedRoundTrips(t *testing.T) {
	resolved := &schema.Resolved{Collections: []schema.ResolvedCollection{
		{
			CollectionSchema: schema.CollectionSchema{
				Name: "users",
				Properties: []schema.PropertySchema{
					{Name: "age", Type: object.Int},
					{Name: "email", Type: object.String},
				},
			},
			Prefix: 42,
			Layout: object.NewLayout([]object.PropertyDef{
				{Name: "age", Type: object.Int},
				{Name: "email", Type: object.String},
			}),
			Indexes: []schema.ResolvedIndex{
				{
					IndexSchema: schema.IndexSchema{Properties: []string{"email"}, Unique: true, HashValue: false},
					Prefix:      7,
				},
			},
		},
	}}

	blob := encodeResolved(resolved)
	decoded, err := decodeResolved(blob)
	require.NoError(t, err)

	require.Len(t, decoded.Collections, 1)
	c := decoded.Collections[0]
	require.Equal(t, "users", c.Name)
	require.Equal(t, uint16(42), c.Prefix)
	require.Len(t, c.Properties, 2)
	require.Equal(t, "age", c.Properties[0].Name)
	require.Equal(t, object.Int, c.Properties[0].Type)
	require.Equal(t, "email", c.Properties[1].Name)
	require.Equal(t, object.String, c.Properties[1].Type)

	require.Len(t, c.Indexes, 1)
	require.Equal(t, uint16(7), c.Indexes[0].Prefix)
	require.True(t, c.Indexes[0].Unique)
	require.Equal(t, []string{"email"}, c.Indexes[0].Properties)
	require.Len(t, c.Indexes[0].Props, 1)
	require.Equal(t, "email", c.Indexes[0].Props[0].Name)
}

func TestDecodeResolvedRejectsTruncatedBuffer(t *testing.T) {
	_, err := decodeResolved([]byte{0, 0, 0, 1})
	require.Error(t, err)
}
