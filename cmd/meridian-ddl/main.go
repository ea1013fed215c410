// Package main implements the meridian-ddl binary: an offline DDL checker
// that parses and validates a .sql file and prints the canonical form of
// every table, or the first error with its statement index.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/meridiandb/meridian/internal/ddl/parser"
	"github.com/meridiandb/meridian/internal/errors"
)

func main() {
	var (
		file   string
		engine string
	)

	flag.StringVar(&file, "f", "", "Path to a .sql file (default: stdin)")
	flag.StringVar(&engine, "engine", "olap", "Engine assumed for statements without an ENGINE clause")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "meridian-ddl - Offline DDL validator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: meridian-ddl [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  meridian-ddl -f schema.sql\n")
		fmt.Fprintf(os.Stderr, "  cat schema.sql | meridian-ddl\n")
	}
	flag.Parse()

	input, err := readInput(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(input, engine, os.Stdout, os.Stderr))
}

func readInput(file string) (string, error) {
	if file == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	return string(data), nil
}

// run validates the input and writes canonical DDL to out. It returns the
// process exit code: 0 on success, 1 on the first invalid statement.
func run(input, engine string, out, errOut io.Writer) int {
	stmts, err := parser.ParseAll(input)
	if err != nil {
		fmt.Fprintf(errOut, "parse error: %s\n", errors.UserMessage(err))
		return 1
	}

	for i, stmt := range stmts {
		create, ok := stmt.(*parser.CreateTableStatement)
		if !ok {
			fmt.Fprintf(errOut, "statement %d: only CREATE TABLE is supported offline\n", i)
			return 1
		}
		if create.Def.Engine == "" {
			create.Def.Engine = engine
		}

		table, err := create.Def.Analyze()
		if err != nil {
			fmt.Fprintf(errOut, "statement %d: %s\n", i, errors.UserMessage(err))
			return 1
		}

		fmt.Fprintln(out, table.ToSQL())
	}
	return 0
}
