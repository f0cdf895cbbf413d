package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wippyai/bitrec"
	"github.com/wippyai/bitrec/schema"
)

func main() {
	var (
		schemaFile  = flag.String("schema", "", "Path to YAML record declaration")
		hexValue    = flag.String("hex", "", "Initial register value as hex")
		fieldPath   = flag.String("field", "", "Field to read (dotted path, e.g. header.flags[2])")
		setValue    = flag.String("set", "", "Value to assign to -field before printing")
		asJSON      = flag.Bool("json", false, "Print the decoded value as JSON")
		list        = flag.Bool("list", false, "List the field tree and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *schemaFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: bitview -schema <decl.yaml> [-hex value] [-field path [-set value]]")
		fmt.Fprintln(os.Stderr, "       bitview -schema <decl.yaml> -list")
		fmt.Fprintln(os.Stderr, "       bitview -schema <decl.yaml> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*schemaFile, *hexValue); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*schemaFile, *hexValue, *fieldPath, *setValue, *asJSON, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(schemaFile, hexValue, fieldPath, setValue string, asJSON, listOnly bool) error {
	root, err := loadRecord(schemaFile, hexValue)
	if err != nil {
		return err
	}

	fmt.Printf("Record: %s (%d bits)\n", root.Type().Name(), root.BitSize())
	fmt.Printf("Register: 0x%s\n", root.Hex())

	if listOnly {
		fmt.Println()
		for _, row := range flatten(root, 0) {
			fmt.Printf("  %s%s  %s = %s\n",
				strings.Repeat("  ", row.depth), row.field.Name(),
				row.field.Type().Repr(), row.field.String())
		}
		return nil
	}

	f := root
	if fieldPath != "" {
		f, err = resolvePath(root, fieldPath)
		if err != nil {
			return err
		}
	}

	if setValue != "" {
		if err := assign(f, setValue); err != nil {
			return err
		}
		fmt.Printf("Register: 0x%s\n", root.Hex())
	}

	if asJSON {
		s, err := f.JSON()
		if err != nil {
			return err
		}
		fmt.Println(s)
		return nil
	}

	fmt.Printf("%s = %s\n", f.Name(), f.String())
	return nil
}

func loadRecord(schemaFile, hexValue string) (*bitrec.Field, error) {
	t, err := schema.Load(schemaFile)
	if err != nil {
		return nil, err
	}
	root, err := bitrec.New(t)
	if err != nil {
		return nil, err
	}
	if hexValue != "" {
		if err := root.SetHex(hexValue); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// assign tries the value first as a JSON document, then as plain text
// (enum label or integer literal).
func assign(f *bitrec.Field, value string) error {
	if err := f.SetJSON(value); err == nil {
		return nil
	}
	return f.Set(value)
}

// resolvePath walks a dotted field path with optional [i] element
// indexing, e.g. "header.flags[2]".
func resolvePath(root *bitrec.Field, path string) (*bitrec.Field, error) {
	f := root
	for _, part := range strings.Split(path, ".") {
		name := part
		var idx []int
		for strings.HasSuffix(name, "]") {
			open := strings.LastIndex(name, "[")
			if open < 0 {
				return nil, fmt.Errorf("malformed path element %q", part)
			}
			i, err := strconv.Atoi(name[open+1 : len(name)-1])
			if err != nil {
				return nil, fmt.Errorf("malformed index in %q", part)
			}
			idx = append([]int{i}, idx...)
			name = name[:open]
		}

		if name != "" {
			var err error
			f, err = f.Field(name)
			if err != nil {
				return nil, err
			}
		}
		for _, i := range idx {
			var err error
			f, err = f.Index(i)
			if err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}
