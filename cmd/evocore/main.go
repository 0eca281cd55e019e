// cmd/evocore/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"evocore/internal/api"
	"evocore/internal/ctxstore"
	"evocore/internal/hostbridge"
)

const version = "0.1.0"

var buildDate = time.Now().Format("2006-01-02")

// commandAliases mirrors the teacher's single-letter shortcuts, scaled
// down to the handful of subcommands this binary actually has: there is
// no lexer in scope (spec.md §1), so there is no "run a script file"
// command here, only ways to drive the embedding API directly.
var commandAliases = map[string]string{
	"s": "serve",
	"e": "eval",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		showVersion()
	case "serve":
		runServe(args[1:])
	case "eval":
		runEval(args[1:])
	default:
		fmt.Printf("evocore: unknown command %q\n\n", args[0])
		showUsage()
		os.Exit(1)
	}
}

// runServe starts a hostbridge.Bridge: the embedding API exposed over
// WebSocket so a remote host process can push/resume/suspend Levels
// itself (spec.md §6.1) instead of linking the Go package directly.
func runServe(args []string) {
	addr := ":7890"
	if len(args) > 0 {
		addr = args[0]
	}

	storePath := ""
	for i, a := range args {
		if a == "--store" && i+1 < len(args) {
			storePath = args[i+1]
		}
	}
	if storePath != "" {
		store, err := ctxstore.Open("sqlite", storePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "evocore: opening context store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	bridge, err := hostbridge.Listen(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evocore: %v\n", err)
		os.Exit(1)
	}
	defer bridge.Close()

	fmt.Printf("evocore: serving Level control on %s\n", addr)
	select {}
}

// runEval is a tiny, fixed demonstration of the embedding API's direct
// rebValue-style call (there being no lexer to accept a script argument):
// it adds two integers the way a host program's own Go code would, not
// the way a user-supplied expression would.
func runEval(args []string) {
	result, err := api.RebValue(api.Integer(2), api.Integer(3))
	if err != nil {
		fmt.Fprintf(os.Stderr, "evocore: %v\n", err)
		os.Exit(1)
	}
	n, _ := result.Payload.First.(int64)
	fmt.Printf("evocore: rebValue(2, 3) literal splice -> %d (last value wins; there is no + action bound without a host-supplied one)\n", n)
}

func showUsage() {
	fmt.Println("evocore - embeddable evaluator core")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  evocore serve [addr] [--store path]   Serve Level control over WebSocket (alias: s)")
	fmt.Println("  evocore eval                          Run a fixed embedding-API demo       (alias: e)")
	fmt.Println("  evocore version                        Print version information")
	fmt.Println("  evocore help                            Show this help")
	fmt.Println()
	fmt.Println("There is no source-text entry point: evocore links against a host")
	fmt.Println("program that constructs cells and actions through internal/api.")
}

func showVersion() {
	fmt.Printf("evocore %s\n", version)
	fmt.Printf("Build Date: %s\n", buildDate)
}
