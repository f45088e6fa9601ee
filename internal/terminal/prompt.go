package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/term"
)

// Prompter reads answers to interactive questions.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	secret func() (string, error)
}

// NewPrompter returns a prompter on stdin and stdout.
func NewPrompter() *Prompter {
	in := bufio.NewReader(os.Stdin)
	return &Prompter{
		in:     in,
		out:    os.Stdout,
		secret: func() (string, error) { return readSecretStdin(in) },
	}
}

// Ask prints question and returns the trimmed answer, or def when the
// answer is empty.
func (p *Prompter) Ask(question, def string) (string, error) {
	label := question
	if def != "" {
		label = fmt.Sprintf("%s [%s]", question, def)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", goerr.Wrap(err, "failed to read answer")
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Secret prints question and reads an answer without echo.
func (p *Prompter) Secret(question string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	v, err := p.secret()
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return v, nil
}

// Confirm asks a yes/no question. Only "y" and "yes" count as yes.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Ask(question+" (y/N)", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// readSecretStdin falls back to a plain line read when stdin is piped.
func readSecretStdin(in *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", goerr.Wrap(err, "failed to read secret")
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	b, err := term.ReadPassword(fd)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read secret")
	}
	return string(b), nil
}
