package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pomerium/storefront/config"
	"github.com/pomerium/storefront/internal/version"
)

type cli struct {
	configFile string
	debug      bool

	stdin  io.Reader
	in     *bufio.Reader
	stdout io.Writer
	stderr io.Writer

	app *app
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{
		stdin:  stdin,
		in:     bufio.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *cli) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the storefront catalog from the terminal",
		Version:       version.FullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "Specify configuration file location")
	flags.BoolVar(&c.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		c.loginCommand(),
		c.registerCommand(),
		c.logoutCommand(),
		c.whoamiCommand(),
		c.statusCommand(),
		c.tokenCommand(),
		c.productsCommand(),
		c.categoriesCommand(),
		c.favoritesCommand(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	opts, err := config.NewOptionsFromConfig(c.configFile)
	if err != nil {
		return err
	}
	if err := config.ConfigureLogging(opts, c.debug); err != nil {
		return err
	}
	c.app, err = newApp(cmd.Context(), opts)
	return err
}

// Close releases the resources of the command that ran.
func (c *cli) Close() error {
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

// prompt asks for a line of input unless value is already set.
func (c *cli) prompt(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(c.stderr, "%s: ", label)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when stdin is a terminal.
func (c *cli) promptPassword(label string) (string, error) {
	f, ok := c.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(c.stderr, "%s: ", label)
		line, err := c.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprintf(c.stderr, "%s: ", label)
	raw, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(c.stderr)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return string(raw), nil
}
