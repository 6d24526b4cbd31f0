// Package main provides the folio binary entry point.
// Folio keeps invoices, clients and issuer profiles in a data directory and
// renders invoices to PDF or XLSX.
package main

import (
	"fmt"
	"os"
	"runtime"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "folio"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
