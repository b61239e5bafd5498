package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roster/internal/formatter"
	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/shared"
	"github.com/desertthunder/roster/internal/team"
)

// TeamRegister creates an account and its roster entry.
func (r *Runner) TeamRegister(ctx context.Context, cmd *cli.Command) error {
	svc, _, err := r.team(ctx)
	if err != nil {
		return err
	}

	role := models.Role(cmd.String("role"))
	if role != models.RoleLeader && role != models.RoleMusician {
		return fmt.Errorf("%w: role must be Leader or Musician", shared.ErrInvalidArgument)
	}

	account, member, err := svc.Register(ctx, team.RegisterInput{
		DisplayName: cmd.String("name"),
		Handle:      cmd.String("handle"),
		Password:    cmd.String("password"),
		Role:        role,
		Instrument:  cmd.String("instrument"),
	})
	if err != nil {
		return err
	}

	return r.writePlain("✓ Registered %s (%s) as %s [member %s]\n", account.DisplayName, account.Handle, account.Role, member.ID())
}

// TeamRemove removes a member and their account on behalf of a leader.
func (r *Runner) TeamRemove(ctx context.Context, cmd *cli.Command) error {
	target := cmd.StringArg("member")
	if target == "" {
		return fmt.Errorf("%w: member handle, name or id", shared.ErrMissingArgument)
	}

	svc, _, err := r.team(ctx)
	if err != nil {
		return err
	}

	actor, err := svc.Authenticate(ctx, cmd.String("as"), cmd.String("password"))
	if err != nil {
		return err
	}

	who, err := svc.Lookup(ctx, target)
	if err != nil {
		return err
	}
	if who.Member == nil {
		return fmt.Errorf("%w: %s has no roster entry", shared.ErrMemberNotFound, target)
	}

	if err := svc.RemoveMember(ctx, actor, who.Member.ID()); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s\n", who.Member.DisplayName)
}

// TeamConfirm records whether a musician will take part.
func (r *Runner) TeamConfirm(ctx context.Context, cmd *cli.Command) error {
	svc, _, err := r.team(ctx)
	if err != nil {
		return err
	}

	account, err := svc.Authenticate(ctx, cmd.String("handle"), cmd.String("password"))
	if err != nil {
		return err
	}

	confirmed := !cmd.Bool("withdraw")
	member, err := svc.ConfirmParticipation(ctx, account, confirmed)
	if err != nil {
		return err
	}

	if confirmed {
		return r.writePlain("✓ %s confirmed\n", member.DisplayName)
	}
	return r.writePlain("%s withdrew\n", member.DisplayName)
}

// TeamList renders the roster.
func (r *Runner) TeamList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	svc, _, err := r.team(ctx)
	if err != nil {
		return err
	}
	roster, err := svc.Roster(ctx)
	if err != nil {
		return err
	}

	members := make([]*models.RosterMember, 0, len(roster))
	for _, entry := range roster {
		members = append(members, entry.Member)
	}

	data, err := formatter.RenderRoster(format, &formatter.RosterExport{Team: "Roster", Members: members})
	if err != nil {
		return err
	}
	if err := r.emit(cmd.String("output"), data); err != nil {
		return err
	}

	if format == formatter.FormatText && cmd.String("output") == "" {
		o := team.Summarize(members)
		r.writePlainln("Confirmed: %d/%d musicians (%.0f%%)", o.Confirmed, o.Musicians, o.Ratio()*100)
	}
	return nil
}

// emit writes rendered data to path, or to the runner's output when path is empty.
func (r *Runner) emit(path string, data []byte) error {
	if path == "" {
		_, err := r.output.Write(data)
		return err
	}
	if err := formatter.WriteExport(path, data); err != nil {
		return err
	}
	r.logger.Info("export written", "path", path)
	return nil
}

// TeamProfile updates the caller's own profile and mirrors name and instrument onto their roster entry.
func (r *Runner) TeamProfile(ctx context.Context, cmd *cli.Command) error {
	svc, _, err := r.team(ctx)
	if err != nil {
		return err
	}

	account, err := svc.Authenticate(ctx, cmd.String("handle"), cmd.String("password"))
	if err != nil {
		return err
	}

	var update team.ProfileUpdate
	set := func(flag string) *string {
		if !cmd.IsSet(flag) {
			return nil
		}
		v := cmd.String(flag)
		return &v
	}
	update.DisplayName = set("name")
	update.Instrument = set("instrument")
	update.Password = set("new-password")
	update.PushToken = set("push-token")

	if update.DisplayName == nil && update.Instrument == nil && update.Password == nil && update.PushToken == nil {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}
	if update.DisplayName != nil && strings.TrimSpace(*update.DisplayName) == "" {
		return fmt.Errorf("%w: name cannot be empty", shared.ErrInvalidArgument)
	}

	if err := svc.UpdateProfile(ctx, account, update); err != nil {
		return err
	}
	return r.writePlain("✓ Updated profile for %s\n", account.Handle)
}

// TeamLeave deletes the caller's account and roster entry.
func (r *Runner) TeamLeave(ctx context.Context, cmd *cli.Command) error {
	svc, _, err := r.team(ctx)
	if err != nil {
		return err
	}

	account, err := svc.Authenticate(ctx, cmd.String("handle"), cmd.String("password"))
	if err != nil {
		return err
	}

	if err := svc.DeleteAccount(ctx, account); err != nil {
		return err
	}
	return r.writePlain("✓ %s left the team\n", account.Handle)
}
