package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mkrupp/storefront/internal/domain"
)

func (a *App) register(ctx context.Context, _ []string) error {
	username, err := getSimpleText(a.reader, a.out, "Username")
	if err != nil {
		return err
	}

	password, err := a.readSecret("Password")
	if err != nil {
		return err
	}

	acc, err := a.svc.Accounts.Register(ctx, username, password)
	if err != nil {
		return err
	}

	a.println("Account created for", acc.Username+". You can log in now.")

	return nil
}

func (a *App) login(ctx context.Context, _ []string) error {
	username, err := getSimpleText(a.reader, a.out, "Username")
	if err != nil {
		return err
	}

	password, err := a.readSecret("Password")
	if err != nil {
		return err
	}

	acc, err := a.svc.Session.Login(ctx, username, password)
	if err != nil {
		return err
	}

	a.println("Welcome,", acc.DisplayName+"!")

	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	a.svc.Session.Logout(ctx)
	a.println("Logged out.")

	return nil
}

func (a *App) whoami(context.Context, []string) error {
	if username, ok := a.svc.Session.Current(); ok {
		a.println(username)
	} else {
		a.println("Not logged in.")
	}

	return nil
}

func (a *App) profile(ctx context.Context, _ []string) error {
	acc, err := a.svc.Profile.Profile(ctx)
	if err != nil {
		return err
	}

	avatar, err := a.svc.Avatars.Ensure(ctx, acc.Username)
	if err != nil {
		avatar = "unavailable"
	}

	email := acc.Email
	if email == "" {
		email = "—"
	}

	a.println("Name:        ", acc.DisplayName)
	a.println("Username:    ", acc.Username)
	a.println("Email:       ", email)
	a.println("Member since:", acc.CreatedOn)
	a.println("Avatar:      ", avatar)

	return nil
}

func (a *App) updateInfo(ctx context.Context, _ []string) error {
	if _, err := a.svc.Session.Require(); err != nil {
		return err
	}

	displayName, err := getSimpleText(a.reader, a.out, "Display name")
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, a.out, "Email (optional)")
	if err != nil {
		return err
	}

	if _, err := a.svc.Profile.UpdateInfo(ctx, displayName, email); err != nil {
		return err
	}

	a.println("Profile updated.")

	return nil
}

func (a *App) changePassword(ctx context.Context, _ []string) error {
	if _, err := a.svc.Session.Require(); err != nil {
		return err
	}

	var secrets [3]string

	for i, prompt := range []string{"Current password", "New password", "Repeat new password"} {
		secret, err := a.readSecret(prompt)
		if err != nil {
			return err
		}

		secrets[i] = secret
	}

	if err := a.svc.Profile.ChangePassword(ctx, secrets[0], secrets[1], secrets[2]); err != nil {
		return err
	}

	a.println("Password changed.")

	return nil
}

func (a *App) suggest(ctx context.Context, _ []string) error {
	text, err := getMultiline(a.reader, a.out, "Your suggestion")
	if err != nil {
		return err
	}

	entry, err := a.svc.Suggestions.Submit(ctx, text)
	if err != nil {
		return err
	}

	if entry.IsAnonymous() {
		a.println("Thanks! Your suggestion was sent anonymously.")
	} else {
		a.println("Thanks! Your suggestion was sent.")
	}

	return nil
}

func (a *App) history(ctx context.Context, _ []string) error {
	username, err := a.svc.Session.Require()
	if err != nil {
		return err
	}

	count := 0

	for text := range a.svc.Suggestions.HistoryFor(ctx, username) {
		count++
		a.println("-", strings.ReplaceAll(text, "\n", "\n  "))
	}

	if count == 0 {
		a.println("You have not sent any suggestions yet.")
	}

	return nil
}

func (a *App) avatar(ctx context.Context, args []string) error {
	username, err := a.svc.Session.Require()
	if err != nil {
		return err
	}

	var source string
	if len(args) > 0 {
		source = strings.Join(args, " ")
	} else if source, err = getSimpleText(a.reader, a.out, "Picture file"); err != nil {
		return err
	}

	if source == "" {
		return fmt.Errorf("%w: no file given", domain.ErrInvalidInput)
	}

	path, err := a.svc.Avatars.Replace(ctx, username, source)
	if err != nil {
		return err
	}

	a.println("Avatar updated:", path)

	return nil
}

func (a *App) products(ctx context.Context, _ []string) error {
	if err := a.svc.Catalog.EnsureDemoImages(ctx); err != nil {
		a.log.WarnContext(ctx, "demo images unavailable", "error", err)
	}

	for _, product := range a.svc.Catalog.Products() {
		a.printf("%d. %-8s %s\n", product.ID, product.Title, product.Image)
	}

	return nil
}

func (a *App) buy(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: buy <id>")

		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: product id %q", domain.ErrInvalidInput, args[0])
	}

	confirmation, err := a.svc.Catalog.Buy(ctx, id)
	if err != nil {
		return err
	}

	a.println(confirmation)

	return nil
}
