// Command grnsh is an interactive shell over a network collection: open a
// source or a set of partition files once, then query edges, distinct
// values, and counts against it.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	prompt      = "grn> "
	historyFile = ".grnsh_history"
)

var flagRoot = flag.String("root", "", "collection root directory (default: environment)")

func main() {
	flag.Parse()

	fmt.Println("grnsh: gene regulatory network shell")
	fmt.Println("Type 'help' for commands.")
	fmt.Println()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCommand)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	s := &session{root: *flagRoot}
	for {
		input, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			fmt.Println()
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "read input: %v\n", err)
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if s.execute(input) {
			break
		}
	}

	if f, err := os.Create(histPath); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, historyFile)
}

func completeCommand(line string) []string {
	if strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, name := range commandNames {
		if strings.HasPrefix(name, strings.ToLower(line)) {
			out = append(out, name)
		}
	}
	return out
}
