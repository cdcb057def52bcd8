package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/session"
	"github.com/eduflexsms/eduflex/services/backend"
)

var (
	// mockable
	readPasswordFunc = term.ReadPassword
	nowFunc          = time.Now

	errEmptyPassword = errors.New("a password is required")
)

// console is the terminal front end. It logs in before running any subcommand.
type console struct {
	conf   *core.Config
	logger core.Logger
	in     *bufio.Reader
	out    io.Writer
	style  *lipgloss.Renderer

	apiURL   string
	username string

	client   *backend.Client
	identity session.Identity
}

func newConsole(conf *core.Config, logger core.Logger, in io.Reader, out io.Writer) *console {
	return &console{
		conf:     conf,
		logger:   logger,
		in:       bufio.NewReader(in),
		out:      out,
		style:    lipgloss.NewRenderer(out),
		apiURL:   conf.API.BaseURL,
		username: conf.API.Username,
	}
}

func (cli *console) execute(ctx context.Context, args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(cli.out, "error: %v\n", err)
	}
	return err
}

func (cli *console) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "eduflex",
		Short: "Terminal dashboard for EduFlex tuition classes",
		Long: `Browse students by grade and subject, and keep their attendance,
fees and tutes up to date.

Every command logs in first; the password is always prompted.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: cli.login,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.PersistentFlags().StringVar(&cli.apiURL, "api", cli.apiURL, "backend base URL")
	root.PersistentFlags().StringVarP(&cli.username, "username", "u", cli.username, "username or email (prompted when empty)")

	root.AddCommand(
		cli.gradesCmd(),
		cli.subjectsCmd(),
		cli.studentsCmd(),
		cli.teachersCmd(),
		cli.browseCmd(),
	)
	return root
}

// login prompts for the missing credentials and begins the session.
func (cli *console) login(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" {
		return nil
	}

	conf := *cli.conf
	conf.API.BaseURL = strings.TrimRight(cli.apiURL, "/")
	cli.client = backend.NewClient(&conf, session.New())

	uname := strings.TrimSpace(cli.username)
	if uname == "" {
		fmt.Fprint(cli.out, "Username: ")
		line, err := cli.readLine()
		if err != nil {
			return errors.Wrap(err, "reading username")
		}
		uname = line
	}

	pwd, err := cli.readPassword("Password: ")
	if err != nil {
		return err
	}

	id, err := cli.client.Login(cmd.Context(), uname, pwd)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	cli.identity = id
	cli.logger.Debug("logged in", map[string]interface{}{"username": id.Username})
	return nil
}

func (cli *console) readPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}

// readLine returns the next input line without its line ending.
// io.EOF is only returned when nothing was read.
func (cli *console) readLine() (string, error) {
	line, err := cli.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
