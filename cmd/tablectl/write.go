// Write commands: insert, merge and replace.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stratostore/go-tables/table"
)

var (
	echoContent bool
	writeETag   string
)

var insertCmd = &cobra.Command{
	Use:   "insert <table> [entity-json]",
	Short: "Insert a new entity",
	Long: `Insert adds a new entity to the table. The entity is given as a JSON
document with PartitionKey, RowKey and the properties, either as an
argument or on stdin.

Example:
  tablectl insert orders '{"PartitionKey":"2026-08","RowKey":"order-0042","Total":19.5}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInsert,
}

var mergeCmd = &cobra.Command{
	Use:   "merge <table> [entity-json]",
	Short: "Merge properties into an existing entity",
	Long: `Merge updates the given properties of an existing entity, leaving the
rest untouched. Requires --etag with the version being updated, or "*"
to merge unconditionally.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runMerge,
}

var replaceCmd = &cobra.Command{
	Use:   "replace <table> [entity-json]",
	Short: "Replace an existing entity",
	Long: `Replace overwrites an existing entity with the given one. Requires
--etag with the version being updated, or "*" to replace
unconditionally.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runReplace,
}

func init() {
	insertCmd.Flags().BoolVar(&echoContent, "echo", false, "return the stored entity in the response")
	mergeCmd.Flags().StringVar(&writeETag, "etag", "", "entity tag of the version being updated")
	replaceCmd.Flags().StringVar(&writeETag, "etag", "", "entity tag of the version being updated")
}

// readEntityArg reads the entity JSON from the argument list or stdin.
func readEntityArg(args []string) (*table.DynamicEntity, error) {
	var data []byte
	if len(args) > 1 {
		data = []byte(args[1])
	} else {
		var err error
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read entity from stdin: %w", err)
		}
	}
	return parseEntityJSON(data)
}

func runInsert(cmd *cobra.Command, args []string) error {
	entity, err := readEntityArg(args)
	if err != nil {
		return err
	}

	op, err := table.Insert(entity, echoContent)
	if err != nil {
		return err
	}
	return runWrite(args[0], op)
}

func runMerge(cmd *cobra.Command, args []string) error {
	entity, err := readEntityArg(args)
	if err != nil {
		return err
	}
	if writeETag != "" {
		entity.SetETag(writeETag)
	}

	op, err := table.Merge(entity)
	if err != nil {
		return err
	}
	return runWrite(args[0], op)
}

func runReplace(cmd *cobra.Command, args []string) error {
	entity, err := readEntityArg(args)
	if err != nil {
		return err
	}
	if writeETag != "" {
		entity.SetETag(writeETag)
	}

	op, err := table.Replace(entity)
	if err != nil {
		return err
	}
	return runWrite(args[0], op)
}

func runWrite(tableName string, op *table.Operation) error {
	ctx, cancel := opContext()
	defer cancel()

	result, err := client.Execute(ctx, tableName, op, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op.Kind(), err)
	}
	printWriteResult(result)
	return nil
}
