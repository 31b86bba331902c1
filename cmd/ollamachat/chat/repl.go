package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Line commands understood by both chat front ends
const (
	commandReset = "/reset"
	commandExit  = "/exit"
	commandQuit  = "/quit"
)

// runREPL reads one prompt per line from in and writes each reply to out.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, s *session) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		prompt := strings.TrimSpace(scanner.Text())
		switch prompt {
		case "":
			continue
		case commandReset:
			s.reset()
			fmt.Fprintln(out, statusStyle.Render("Conversation cleared."))
			continue
		case commandExit, commandQuit:
			return nil
		}

		result, err := s.generate(ctx, prompt)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("error: "+err.Error()))
			continue
		}
		s.record(prompt, result.Text)

		fmt.Fprintln(out, assistantLabel.Render("assistant:"), result.Text)
	}

	return scanner.Err()
}
