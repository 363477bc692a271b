// Delete command removes one entity.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratostore/go-tables/table"
)

var deleteETag string

var deleteCmd = &cobra.Command{
	Use:   "delete <table> <partition-key> <row-key>",
	Short: "Delete an entity",
	Long: `Delete removes the entity with the given primary key. By default the
delete is unconditional; pass --etag to delete only the given version.

Example:
  tablectl delete orders "2026-08" order-0042
  tablectl delete orders "2026-08" order-0042 --etag "$ETAG"`,
	Args: cobra.ExactArgs(3),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringVar(&deleteETag, "etag", "*", "entity tag of the version to delete")
}

func runDelete(cmd *cobra.Command, args []string) error {
	tableName, partitionKey, rowKey := args[0], args[1], args[2]

	entity := table.NewDynamicEntity(partitionKey, rowKey)
	entity.SetETag(deleteETag)

	op, err := table.Delete(entity)
	if err != nil {
		return err
	}

	ctx, cancel := opContext()
	defer cancel()

	result, err := client.Execute(ctx, tableName, op, nil)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	fmt.Printf("status: %d\n", result.StatusCode)
	return nil
}
