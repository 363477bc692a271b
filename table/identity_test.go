package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratostore/go-tables/odata"
)

func TestRequestIdentityTableEntry(t *testing.T) {
	op, err := Delete(taggedEntity("p", "r", "*"))
	require.NoError(t, err)
	assert.Equal(t, "'orders'", op.requestIdentity(true, "orders", false))
}

func TestRequestIdentityInsertIsEmpty(t *testing.T) {
	op, err := Insert(NewDynamicEntity("p", "r"), false)
	require.NoError(t, err)
	assert.Empty(t, op.requestIdentity(false, "", false))
	assert.Empty(t, op.requestIdentity(false, "", true))
}

func TestRequestIdentityInsertIntoCatalogIsEmpty(t *testing.T) {
	// A plain insert posts to the bare table even for catalog rows; the
	// entry name appears only in the body.
	entry := NewDynamicEntity("", "")
	entry.Properties["TableName"] = odata.String("orders")

	op, err := Insert(entry, false)
	require.NoError(t, err)
	assert.Empty(t, op.requestIdentity(true, "orders", false))
}

func TestRequestIdentityKeyPair(t *testing.T) {
	op, err := Merge(taggedEntity("P1", "R1", "W/\"abc\""))
	require.NoError(t, err)
	assert.Equal(t, "PartitionKey='P1',RowKey='R1'", op.requestIdentity(false, "", false))
}

func TestRequestIdentityRetrieveUsesRetrieveKeys(t *testing.T) {
	op, err := Retrieve("P1", "R1", NewDynamicEntity("", ""))
	require.NoError(t, err)
	assert.Equal(t, "PartitionKey='P1',RowKey='R1'", op.requestIdentity(false, "", true))
}

func TestRequestIdentityEncodesKeys(t *testing.T) {
	op, err := Retrieve("a b/c", "x&y=z", NewDynamicEntity("", ""))
	require.NoError(t, err)

	assert.Equal(t,
		"PartitionKey='a%20b%2Fc',RowKey='x%26y%3Dz'",
		op.requestIdentity(false, "", true))

	// Encoding off leaves the keys verbatim.
	assert.Equal(t,
		"PartitionKey='a b/c',RowKey='x&y=z'",
		op.requestIdentity(false, "", false))
}

func TestRequestIdentityWithTable(t *testing.T) {
	op, err := Replace(taggedEntity("P1", "R1", "W/\"abc\""))
	require.NoError(t, err)
	assert.Equal(t, "orders(PartitionKey='P1',RowKey='R1')", op.requestIdentityWithTable("orders"))
}

func TestEscapeKeyUnreservedSetUntouched(t *testing.T) {
	const unreserved = "AZaz09-._~"
	assert.Equal(t, unreserved, escapeKey(unreserved))
}

func TestEscapeKeyNonASCII(t *testing.T) {
	// Multibyte runes are escaped byte-wise.
	assert.Equal(t, "%C3%A9", escapeKey("é"))
}
