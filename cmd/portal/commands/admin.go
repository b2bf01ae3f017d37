package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/royalton/portal/internal/auth"
	"github.com/royalton/portal/internal/shipping"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage back-office access",
	}
	cmd.AddCommand(
		roleCmd("promote", "Give an account the admin role", (*auth.Service).Promote),
		roleCmd("demote", "Return an admin to the user role", (*auth.Service).Demote),
	)
	return cmd
}

type roleChange func(s *auth.Service, ctx context.Context, actor, email string) (shipping.User, error)

func roleCmd(name, short string, change roleChange) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := connect(ctx, false)
			if err != nil {
				return err
			}
			defer b.close(ctx)

			svc := auth.NewService(b.store, auth.WithLogger(log))
			u, err := change(svc, ctx, auth.ActorCLI, strings.ToLower(strings.TrimSpace(args[0])))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, u.Role)
			return nil
		},
	}
}
