package table

import "net/http"

// MethodMerge is the non-standard HTTP verb used by merge writes.
const MethodMerge = "MERGE"

// OperationKind is the closed set of single-entity operations.
type OperationKind int

const (
	KindInsert OperationKind = iota
	KindInsertOrMerge
	KindInsertOrReplace
	KindMerge
	KindReplace
	KindDelete
	KindRetrieve
)

func (k OperationKind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindInsertOrMerge:
		return "insertOrMerge"
	case KindInsertOrReplace:
		return "insertOrReplace"
	case KindMerge:
		return "merge"
	case KindReplace:
		return "replace"
	case KindDelete:
		return "delete"
	case KindRetrieve:
		return "retrieve"
	default:
		return "unknown"
	}
}

// httpMethod returns the wire verb for this kind. Upserts differ from the
// plain insert: they address the row directly and use the update verb of
// their merge/replace semantics.
func (k OperationKind) httpMethod() string {
	switch k {
	case KindInsert:
		return http.MethodPost
	case KindInsertOrMerge, KindMerge:
		return MethodMerge
	case KindInsertOrReplace, KindReplace:
		return http.MethodPut
	case KindDelete:
		return http.MethodDelete
	case KindRetrieve:
		return http.MethodGet
	default:
		return ""
	}
}

// Operation is an immutable descriptor of one unit of work: an entity (or,
// for retrieves, a primary key plus decode target), the operation kind and
// the echo-content flag. Construct one via the factory functions and submit
// it to Client.Execute exactly once.
type Operation struct {
	entity      Entity
	kind        OperationKind
	echoContent bool

	// Retrieve-only fields. Exactly one of target/resolver is set, enforced
	// by the two retrieve factories.
	partitionKey string
	rowKey       string
	target       Entity
	resolver     Resolver
}

// Kind returns the operation kind.
func (op *Operation) Kind() OperationKind { return op.kind }

// Entity returns the entity the operation wraps, nil for retrieves.
func (op *Operation) Entity() Entity { return op.entity }

// EchoContent reports whether an insert asks the service to return the
// reconciled row body.
func (op *Operation) EchoContent() bool { return op.echoContent }

// Insert creates an operation inserting entity as a new row. echoContent
// selects whether the service returns the reconciled row body (201) or an
// empty acknowledgement (204).
func Insert(entity Entity, echoContent bool) (*Operation, error) {
	if entity == nil {
		return nil, newPrecondition(KindInsert, "entity is nil")
	}
	return &Operation{entity: entity, kind: KindInsert, echoContent: echoContent}, nil
}

// InsertOrMerge creates an upsert operation merging entity into the row,
// inserting it if absent. No entity tag is required: the operation succeeds
// whether or not the row exists.
func InsertOrMerge(entity Entity) (*Operation, error) {
	if entity == nil {
		return nil, newPrecondition(KindInsertOrMerge, "entity is nil")
	}
	return &Operation{entity: entity, kind: KindInsertOrMerge, echoContent: true}, nil
}

// InsertOrReplace creates an upsert operation replacing the row with
// entity, inserting it if absent.
func InsertOrReplace(entity Entity) (*Operation, error) {
	if entity == nil {
		return nil, newPrecondition(KindInsertOrReplace, "entity is nil")
	}
	return &Operation{entity: entity, kind: KindInsertOrReplace, echoContent: true}, nil
}

// Merge creates an operation merging entity's properties into the existing
// row under optimistic concurrency: the entity must carry the tag of the
// version being updated.
func Merge(entity Entity) (*Operation, error) {
	if entity == nil {
		return nil, newPrecondition(KindMerge, "entity is nil")
	}
	if entity.ETag() == "" {
		return nil, newPrecondition(KindMerge, "entity tag is required")
	}
	return &Operation{entity: entity, kind: KindMerge, echoContent: true}, nil
}

// Replace creates an operation replacing the existing row with entity under
// optimistic concurrency.
func Replace(entity Entity) (*Operation, error) {
	if entity == nil {
		return nil, newPrecondition(KindReplace, "entity is nil")
	}
	if entity.ETag() == "" {
		return nil, newPrecondition(KindReplace, "entity tag is required")
	}
	return &Operation{entity: entity, kind: KindReplace, echoContent: true}, nil
}

// Delete creates an operation deleting the row entity identifies. The
// entity must carry a tag; pass "*" to delete regardless of version.
func Delete(entity Entity) (*Operation, error) {
	if entity == nil {
		return nil, newPrecondition(KindDelete, "entity is nil")
	}
	if entity.ETag() == "" {
		return nil, newPrecondition(KindDelete, "entity tag is required")
	}
	return &Operation{entity: entity, kind: KindDelete, echoContent: true}, nil
}

// Retrieve creates a point-lookup operation decoding the row into target.
func Retrieve(partitionKey, rowKey string, target Entity) (*Operation, error) {
	if target == nil {
		return nil, newPrecondition(KindRetrieve, "target entity is nil")
	}
	return &Operation{
		kind:         KindRetrieve,
		partitionKey: partitionKey,
		rowKey:       rowKey,
		target:       target,
	}, nil
}

// RetrieveWith creates a point-lookup operation projecting the row through
// resolver instead of decoding into an entity.
func RetrieveWith(partitionKey, rowKey string, resolver Resolver) (*Operation, error) {
	if resolver == nil {
		return nil, newPrecondition(KindRetrieve, "resolver is nil")
	}
	return &Operation{
		kind:         KindRetrieve,
		partitionKey: partitionKey,
		rowKey:       rowKey,
		resolver:     resolver,
	}, nil
}
