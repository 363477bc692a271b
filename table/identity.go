package table

import (
	"fmt"
	"strings"
)

// TablesServiceTableName is the catalog pseudo-table whose rows represent
// the tables themselves. Operations against it address rows by literal
// table name instead of a key pair.
const TablesServiceTableName = "Tables"

// requestIdentity produces the fragment addressing one row inside the
// request URL.
//
// A plain insert addresses the table itself, catalog or not: the fragment
// is empty and the row identity travels only in the body. Other
// table-entry operations wrap the literal entry name in quotes. Everything
// else addresses the row by its key pair, percent-encoded when encodeKeys
// is set.
func (op *Operation) requestIdentity(isTableEntry bool, entryName string, encodeKeys bool) string {
	if op.kind == KindInsert {
		return ""
	}

	if isTableEntry {
		return fmt.Sprintf("'%s'", entryName)
	}

	var pk, rk string
	if op.kind == KindRetrieve {
		pk = op.partitionKey
		rk = op.rowKey
	} else {
		pk = op.entity.PartitionKey()
		rk = op.entity.RowKey()
	}

	if encodeKeys {
		pk = escapeKey(pk)
		rk = escapeKey(rk)
	}
	return fmt.Sprintf("PartitionKey='%s',RowKey='%s'", pk, rk)
}

// requestIdentityWithTable composes the table-qualified identity,
// "<tableName>(<identity>)", with key encoding disabled.
func (op *Operation) requestIdentityWithTable(tableName string) string {
	return fmt.Sprintf("%s(%s)", tableName, op.requestIdentity(false, "", false))
}

// escapeKey percent-encodes every byte outside the RFC 3986 unreserved
// set.
func escapeKey(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' ||
			c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}
