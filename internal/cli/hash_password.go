package cli

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/bookshelf/internal/auth"
)

// HashPasswordCommand prints a bcrypt hash for AUTH_ADMIN_PASSWORD_HASH.
type HashPasswordCommand struct {
	Cost int

	in  io.Reader
	out io.Writer
}

func NewHashPasswordCommand(cost int) *HashPasswordCommand {
	return &HashPasswordCommand{Cost: cost, in: os.Stdin, out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *HashPasswordCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	fs.IntVar(&cmd.Cost, "cost", cmd.Cost, "bcrypt cost")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s hash-password [options] < password.txt\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Read a password from stdin and print its bcrypt hash.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run reads the first line of input and prints its hash.
func (cmd *HashPasswordCommand) Run() error {
	line, err := bufio.NewReader(cmd.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("no password given on stdin")
	}

	hash, err := auth.HashPassword(password, cmd.Cost)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.out, hash)
	return err
}
