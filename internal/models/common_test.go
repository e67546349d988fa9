package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHiveRefRoundTrip(t *testing.T) {
	oid := primitive.NewObjectID()

	ref := EncodeHiveRef(&oid)
	assert.Equal(t, "colmenas/"+oid.Hex(), ref)

	decoded, err := DecodeHiveRef(ref)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.Equal(t, oid, *decoded)
}

func TestDecodeHiveRefForms(t *testing.T) {
	oid := primitive.NewObjectID()

	bare, err := DecodeHiveRef(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, *bare)

	slashed, err := DecodeHiveRef("/colmenas/" + oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, *slashed)

	empty, err := DecodeHiveRef("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = DecodeHiveRef("colmenas/not-an-id")
	assert.Error(t, err)
}

func TestEncodeHiveRefNil(t *testing.T) {
	assert.Equal(t, "", EncodeHiveRef(nil))
	zero := primitive.NilObjectID
	assert.Equal(t, "", EncodeHiveRef(&zero))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2024-03-15", FormatDate(d))

	legacy, err := ParseDate("2024-03-15T10:20:00Z")
	require.NoError(t, err)
	assert.Equal(t, d, legacy)

	zero, err := ParseDate("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
	assert.Equal(t, "", FormatDate(zero))

	_, err = ParseDate("15/03/2024")
	assert.Error(t, err)
}
