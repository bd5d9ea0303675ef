package main

import (
	"fmt"
	"os"
)

// Admin CLI for the ballot ledger.
// Reads POSTGRES_DSN and LEDGER_LOCK_TIMEOUT from flags or the environment.
func main() {
	if err := newRootCmd(openPostgresLedger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ballotctl:", err)
		os.Exit(1)
	}
}
