package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sarah-larkin/ai-learning-series/internal/session"
)

const (
	replQuit  = "quit"
	replClear = "clear"
)

// repl is a line-oriented conversation loop. Blank lines are skipped; quit,
// clear and the extra commands are matched case-insensitively.
type repl struct {
	in      io.Reader
	out     io.Writer
	speaker string

	welcome string
	goodbye string
	cleared string

	send  func(ctx context.Context, message string) (string, error)
	clear func()
	// commands are answered locally by name.
	commands map[string]func() string
}

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintf(r.out, "%s\n\n", r.welcome)

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(r.out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintf(r.out, "\n\n%s\n", r.goodbye)
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if command, ok := r.commands[strings.ToLower(input)]; ok {
			fmt.Fprintf(r.out, "\n%s\n", command())
			continue
		}
		switch strings.ToLower(input) {
		case "":
			continue
		case replQuit:
			fmt.Fprintln(r.out, r.goodbye)
			return nil
		case replClear:
			r.clear()
			fmt.Fprintf(r.out, "%s\n\n", r.cleared)
			continue
		}

		reply, err := r.send(ctx, input)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			reply = session.DisplayText(err)
		}
		fmt.Fprintf(r.out, "\n%s: %s\n\n", r.speaker, reply)
	}
}
