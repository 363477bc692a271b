package table

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratostore/go-tables/odata"
)

func taggedEntity(pk, rk, etag string) *DynamicEntity {
	e := NewDynamicEntity(pk, rk)
	e.SetETag(etag)
	return e
}

func TestFactoriesRequireEntity(t *testing.T) {
	factories := map[string]func() (*Operation, error){
		"insert":          func() (*Operation, error) { return Insert(nil, false) },
		"insertOrMerge":   func() (*Operation, error) { return InsertOrMerge(nil) },
		"insertOrReplace": func() (*Operation, error) { return InsertOrReplace(nil) },
		"merge":           func() (*Operation, error) { return Merge(nil) },
		"replace":         func() (*Operation, error) { return Replace(nil) },
		"delete":          func() (*Operation, error) { return Delete(nil) },
	}
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			_, err := factory()
			var pe *PreconditionError
			require.ErrorAs(t, err, &pe)
		})
	}
}

func TestConditionalFactoriesRequireTag(t *testing.T) {
	untagged := NewDynamicEntity("p", "r")

	factories := map[string]func(Entity) (*Operation, error){
		"delete":  Delete,
		"merge":   Merge,
		"replace": Replace,
	}
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			_, err := factory(untagged)
			var pe *PreconditionError
			require.ErrorAs(t, err, &pe)
			assert.Contains(t, pe.Message, "entity tag")
		})
	}
}

func TestUpsertFactoriesAcceptUntaggedEntity(t *testing.T) {
	untagged := NewDynamicEntity("p", "r")

	op, err := InsertOrMerge(untagged)
	require.NoError(t, err)
	assert.Equal(t, KindInsertOrMerge, op.Kind())

	op, err = InsertOrReplace(untagged)
	require.NoError(t, err)
	assert.Equal(t, KindInsertOrReplace, op.Kind())
}

func TestInsertCarriesEchoFlag(t *testing.T) {
	e := NewDynamicEntity("p", "r")

	op, err := Insert(e, true)
	require.NoError(t, err)
	assert.True(t, op.EchoContent())
	assert.Same(t, e, op.Entity().(*DynamicEntity))

	op, err = Insert(e, false)
	require.NoError(t, err)
	assert.False(t, op.EchoContent())
}

func TestRetrieveFactoriesAreMutuallyExclusive(t *testing.T) {
	t.Run("target path", func(t *testing.T) {
		target := NewDynamicEntity("", "")
		op, err := Retrieve("p", "r", target)
		require.NoError(t, err)
		assert.NotNil(t, op.target)
		assert.Nil(t, op.resolver)
	})

	t.Run("resolver path", func(t *testing.T) {
		op, err := RetrieveWith("p", "r", func(odata.Row) (any, error) { return nil, nil })
		require.NoError(t, err)
		assert.Nil(t, op.target)
		assert.NotNil(t, op.resolver)
	})

	t.Run("nil target rejected", func(t *testing.T) {
		_, err := Retrieve("p", "r", nil)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
	})

	t.Run("nil resolver rejected", func(t *testing.T) {
		_, err := RetrieveWith("p", "r", nil)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
	})
}

func TestKindHTTPMethods(t *testing.T) {
	cases := map[OperationKind]string{
		KindInsert:          http.MethodPost,
		KindInsertOrMerge:   MethodMerge,
		KindInsertOrReplace: http.MethodPut,
		KindMerge:           MethodMerge,
		KindReplace:         http.MethodPut,
		KindDelete:          http.MethodDelete,
		KindRetrieve:        http.MethodGet,
	}
	for kind, method := range cases {
		assert.Equal(t, method, kind.httpMethod(), kind.String())
	}
}
