// Get command retrieves one entity by its primary key.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratostore/go-tables/table"
)

var getCmd = &cobra.Command{
	Use:   "get <table> <partition-key> <row-key>",
	Short: "Retrieve an entity by primary key",
	Long: `Get performs a point lookup and prints the entity.

Example:
  tablectl get orders "2026-08" order-0042
  tablectl get orders "2026-08" order-0042 --json`,
	Args: cobra.ExactArgs(3),
	RunE: runGet,
}

func init() {
	getCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the entity as JSON")
}

func runGet(cmd *cobra.Command, args []string) error {
	tableName, partitionKey, rowKey := args[0], args[1], args[2]

	target := table.NewDynamicEntity("", "")
	op, err := table.Retrieve(partitionKey, rowKey, target)
	if err != nil {
		return err
	}

	ctx, cancel := opContext()
	defer cancel()

	result, err := client.Execute(ctx, tableName, op, nil)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}
	if result.Entity == nil {
		return fmt.Errorf("entity %s/%s not found in %s", partitionKey, rowKey, tableName)
	}

	if jsonOutput {
		out, err := renderEntityJSON(target)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printEntity(target)
	return nil
}
