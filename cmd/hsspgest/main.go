package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const usage = `usage: hsspgest <command> [flags] FILE...

commands:
  parse    parse HSSP files and write them as gob or JSON
  inspect  print header fields, one homolog and one residue
  verify   check cross-section consistency of HSSP files
`

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	os.Exit(run(os.Args[1:], os.Stdout, log))
}

func run(args []string, out io.Writer, log *slog.Logger) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	var err error
	switch args[0] {
	case "parse":
		err = runParse(args[1:], out, log)
	case "inspect":
		err = runInspect(args[1:], out)
	case "verify":
		err = runVerify(args[1:], out)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(out, usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err != nil {
		log.Error(args[0]+" failed", "error", err)
		return 1
	}
	return 0
}
