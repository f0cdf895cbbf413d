// Package schema loads YAML record declarations into bitrec type
// descriptors. It covers declaration loading only: leaf widths, enum
// tables, fixed-point parameters, strings, arrays, and nested structs.
package schema
