// Package app is the interactive line-oriented front-end of the storefront.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/svc/accountsvc"
	"github.com/mkrupp/storefront/internal/svc/avatarsvc"
	"github.com/mkrupp/storefront/internal/svc/catalogsvc"
	"github.com/mkrupp/storefront/internal/svc/profilesvc"
	"github.com/mkrupp/storefront/internal/svc/sessionsvc"
	"github.com/mkrupp/storefront/internal/svc/suggestionsvc"
)

// Services are the collaborators the front-end drives.
type Services struct {
	Accounts    *accountsvc.AccountService
	Session     *sessionsvc.SessionManager
	Profile     *profilesvc.ProfileService
	Suggestions *suggestionsvc.SuggestionService
	Avatars     *avatarsvc.AvatarService
	Catalog     *catalogsvc.CatalogService
}

// App reads commands from an input stream and prints results to an output stream.
type App struct {
	svc      Services
	reader   *bufio.Reader
	out      io.Writer
	log      logging.Logger
	handlers map[string]handler

	// readSecret reads a password. Defaults to a visible line read.
	readSecret func(prompt string) (string, error)
}

// NewApp creates an App reading from in and writing to out.
func NewApp(svc Services, in io.Reader, out io.Writer) *App {
	a := &App{
		svc:    svc,
		reader: bufio.NewReader(in),
		out:    out,
		log:    logging.GetLogger("app.repl"),
	}

	a.readSecret = func(prompt string) (string, error) {
		return getSimpleText(a.reader, a.out, prompt)
	}
	a.handlers = a.commands()

	return a
}

// WithTerminal makes password prompts hide their input when fd is a terminal.
func (a *App) WithTerminal(fd int) *App {
	if term.IsTerminal(fd) {
		a.readSecret = terminalSecret(fd, a.out)
	}

	return a
}

// Run executes commands until "exit" or end of input.
func (a *App) Run(ctx context.Context) error {
	a.println("Welcome to the storefront (type 'help' for commands)")

	for {
		a.printf("storefront%s> ", a.status())

		line, err := a.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read command: %w", err)
		}

		if fields := strings.Fields(line); len(fields) > 0 {
			if !a.dispatch(ctx, fields[0], fields[1:]) {
				return nil
			}
		}

		if err != nil {
			a.println()

			return nil
		}
	}
}

// commands returns the command table, each handler wrapped in the
// tracing, rescueing and logging middleware.
func (a *App) commands() map[string]handler {
	table := map[string]handler{
		"help":     a.help,
		"register": a.register,
		"login":    a.login,
		"logout":   a.logout,
		"whoami":   a.whoami,
		"profile":  a.profile,
		"info":     a.updateInfo,
		"passwd":   a.changePassword,
		"suggest":  a.suggest,
		"history":  a.history,
		"avatar":   a.avatar,
		"products": a.products,
		"buy":      a.buy,
	}

	for name, next := range table {
		table[name] = tracing(rescueing(logged(next, name, a.log), name, a.log), a.svc.Session)
	}

	return table
}

// dispatch runs one command. Returns false when the session should end.
func (a *App) dispatch(ctx context.Context, cmd string, args []string) bool {
	if cmd == "exit" || cmd == "quit" {
		a.println("Bye!")

		return false
	}

	run, ok := a.handlers[cmd]
	if !ok {
		a.println("Unknown command:", cmd)

		return true
	}

	if err := run(ctx, args); err != nil {
		a.println(errorMessage(err))
	}

	return true
}

func (a *App) status() string {
	if username, ok := a.svc.Session.Current(); ok {
		return " (" + username + ")"
	}

	return ""
}

func (a *App) help(context.Context, []string) error {
	if _, ok := a.svc.Session.Current(); ok {
		a.println("Available commands: whoami, profile, info, passwd, avatar [file], suggest, history, products, buy <id>, logout, exit")
	} else {
		a.println("Available commands: register, login, suggest, products, buy <id>, exit")
	}

	return nil
}

func (a *App) println(args ...any) {
	_, _ = fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
