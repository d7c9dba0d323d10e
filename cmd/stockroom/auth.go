package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelbrown/stockroom/internal/journal"
	"github.com/abelbrown/stockroom/internal/logging"
	"github.com/abelbrown/stockroom/internal/resource"
	"github.com/abelbrown/stockroom/internal/session"
)

type loginFlags struct {
	token      string
	id         int
	name       string
	email      string
	role       string
	department string
}

func loginCmd(c *cli) *cobra.Command {
	var f loginFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a token and profile for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := f.session()
			if err != nil {
				return err
			}
			if err := session.Save(c.store, sess); err != nil {
				return err
			}
			logging.Info("signed in", "user", sess.Profile().Email, "role", sess.Role().String())
			c.journal.Emit(journal.Event{Kind: journal.KindLogin, Msg: sess.Profile().Email + " as " + sess.Role().String()})
			p := sess.Profile()
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", p.Name, p.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.token, "token", "", "API bearer token")
	cmd.Flags().IntVar(&f.id, "id", 0, "user id")
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.role, "role", "", "admin, manager, staff or qa")
	cmd.Flags().StringVar(&f.department, "department", "", "assembly, quality, packaging or logistics")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func (f loginFlags) session() (session.Session, error) {
	token := strings.TrimSpace(f.token)
	if token == "" {
		return session.Session{}, errors.New("empty token")
	}
	role, err := session.ParseRole(f.role)
	if err != nil {
		return session.Session{}, err
	}
	dept, err := resource.ParseDepartment(f.department)
	if err != nil {
		return session.Session{}, err
	}
	p := session.Profile{
		ID:    f.id,
		Name:  f.name,
		Email: f.email,
		Role:  role,
	}
	if dept != resource.DepartmentNone {
		p.Department = dept.String()
	}
	return session.New(token, p), nil
}

func logoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := session.Clear(c.store); err != nil {
				return err
			}
			logging.Info("signed out")
			c.journal.Emit(journal.Event{Kind: journal.KindLogout})
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}
