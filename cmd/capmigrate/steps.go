package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conn-castle/capmigrate/internal/messages"
	"github.com/conn-castle/capmigrate/internal/steps"
)

func newStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.StepsUse,
		Short: messages.StepsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := steps.Default()
			if err != nil {
				return err
			}
			return writeSteps(cmd.OutOrStdout(), table)
		},
	}
}

func writeSteps(out io.Writer, table *steps.Table) error {
	if _, err := fmt.Fprintf(out, messages.StepsHeaderFmt, "ID", "NAME", "CORE", "GRADLE / iOS"); err != nil {
		return err
	}
	latest := table.Latest().ID
	for _, s := range table.Steps() {
		name := s.Name
		if s.ID == latest {
			name += messages.StepsLatestTag
		}
		native := s.Android.GradleVersion + " / " + s.IOS.DeploymentTarget
		if _, err := fmt.Fprintf(out, messages.StepsHeaderFmt, s.ID, name, s.CoreVersion, native); err != nil {
			return err
		}
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.VersionUse,
		Short: messages.VersionShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), versionString())
			return err
		},
	}
}
