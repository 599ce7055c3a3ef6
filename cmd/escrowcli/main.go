package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// commands is a register of all available commands. The name is matched
// with the first argument given to the program.
//
// A command function reads only from the given input and writes only to
// the given output. Arguments exclude the program and the command name and
// are parsed using the flag package. Commands are small and can be combined
// using a unix pipe, for example:
//
//	$ escrowcli approve -escrow 9f86d0... \
//	    | escrowcli sign -key guarantor.key \
//	    | escrowcli submit
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"address":  cmdAddress,
	"approve":  cmdApprove,
	"collect":  cmdCollect,
	"deploy":   cmdDeploy,
	"deposit":  cmdDeposit,
	"keygen":   cmdKeygen,
	"query":    cmdQuery,
	"refund":   cmdRefund,
	"retry":    cmdRetry,
	"sign":     cmdSignTransaction,
	"submit":   cmdSubmitTransaction,
	"version":  cmdVersion,
	"view":     cmdTransactionView,
	"with-fee": cmdWithFee,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the escrowd application.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, gitHash)
	return nil
}

// gitHash is set during the compilation time.
var gitHash = "dev"
