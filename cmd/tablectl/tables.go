// Table management commands, driven through the catalog pseudo-table.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratostore/go-tables/odata"
	"github.com/stratostore/go-tables/table"
)

var createTableCmd = &cobra.Command{
	Use:   "create-table <name>",
	Short: "Create a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateTable,
}

var deleteTableCmd = &cobra.Command{
	Use:   "delete-table <name>",
	Short: "Delete a table and all its entities",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteTable,
}

// tableEntry builds the catalog row naming a table.
func tableEntry(name string) *table.DynamicEntity {
	entry := table.NewDynamicEntity("", "")
	entry.Properties["TableName"] = odata.String(name)
	return entry
}

func runCreateTable(cmd *cobra.Command, args []string) error {
	op, err := table.Insert(tableEntry(args[0]), false)
	if err != nil {
		return err
	}

	ctx, cancel := opContext()
	defer cancel()

	result, err := client.Execute(ctx, table.TablesServiceTableName, op, nil)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	fmt.Printf("status: %d\n", result.StatusCode)
	return nil
}

func runDeleteTable(cmd *cobra.Command, args []string) error {
	entry := tableEntry(args[0])
	entry.SetETag("*")

	op, err := table.Delete(entry)
	if err != nil {
		return err
	}

	ctx, cancel := opContext()
	defer cancel()

	result, err := client.Execute(ctx, table.TablesServiceTableName, op, nil)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	fmt.Printf("status: %d\n", result.StatusCode)
	return nil
}
