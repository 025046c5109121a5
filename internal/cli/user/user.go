// Package user implements the singleton user identity commands:
// get_user, save_user and check_user_exists.
package user

import (
	"encoding/json"
	"fmt"

	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/timeutil"
)

type GetCmd struct{}

func (c *GetCmd) Run(ctx *cli.Context) error {
	u, err := ctx.Store.GetUser(ctx.Background())
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	return printJSON(u)
}

type SaveCmd struct {
	Nickname string `arg:"" help:"User nickname."`
}

func (c *SaveCmd) Run(ctx *cli.Context) error {
	if c.Nickname == "" {
		return coreerrors.New(coreerrors.InvalidInput, "nickname must not be empty")
	}

	existed, err := ctx.Store.CheckUserExists(ctx.Background())
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	u := models.User{ID: 1, Nickname: c.Nickname, CreatedAt: timeutil.Format(timeutil.Now())}
	if existed {
		prev, err := ctx.Store.GetUser(ctx.Background())
		if err == nil {
			u.CreatedAt = prev.CreatedAt
		}
	}

	if err := ctx.Store.SaveUser(ctx.Background(), u); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return printJSON(u)
}

type CheckExistsCmd struct{}

func (c *CheckExistsCmd) Run(ctx *cli.Context) error {
	exists, err := ctx.Store.CheckUserExists(ctx.Background())
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	return printJSON(map[string]bool{"exists": exists})
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
