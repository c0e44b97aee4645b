package main

import (
	"fmt"
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/spf13/cobra"
)

var personalCmd = &cobra.Command{
	Use:   "personal",
	Short: "Edit the personal information header",
}

var personalSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set one personal field",
	Long:  "Sets one of: " + joinFields(types.PersonalFields) + ".",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return edit(cmd, func(ws *workspace) error {
			return ws.editor.SetPersonalField(cmd.Context(), args[0], args[1])
		})
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Edit the profile summary",
}

var summarySetCmd = &cobra.Command{
	Use:   "set <text>",
	Short: "Replace the profile summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return edit(cmd, func(ws *workspace) error {
			return ws.editor.SetSummary(cmd.Context(), args[0])
		})
	},
}

var headingCmd = &cobra.Command{
	Use:   "heading",
	Short: "Override section headings",
}

var headingSetCmd = &cobra.Command{
	Use:   "set <section> <title>",
	Short: "Override the heading of a section; an empty title restores the template default",
	Long:  "Sections: " + joinFields(types.SectionKeys) + ".",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return edit(cmd, func(ws *workspace) error {
			return ws.editor.SetHeadingField(cmd.Context(), args[0], args[1])
		})
	},
}

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Add, update and remove entries of a repeatable section",
	Long: "Sections: education, workExperience, certifications, projects, organizations, " +
		"languages, references.",
}

var sectionAddCmd = &cobra.Command{
	Use:   "add <section>",
	Short: "Append a blank entry and print its id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()

		section, err := ws.editor.Entries(args[0])
		if err != nil {
			return err
		}
		id, err := section.Add(cmd.Context())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var sectionUpdateCmd = &cobra.Command{
	Use:   "update <section> <id> <field> <value>",
	Short: "Set one field of an entry",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return edit(cmd, func(ws *workspace) error {
			section, err := ws.editor.Entries(args[0])
			if err != nil {
				return err
			}
			return section.UpdateField(cmd.Context(), args[1], args[2], args[3])
		})
	},
}

var sectionRemoveCmd = &cobra.Command{
	Use:   "remove <section> <id>",
	Short: "Remove an entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return edit(cmd, func(ws *workspace) error {
			section, err := ws.editor.Entries(args[0])
			if err != nil {
				return err
			}
			return section.Remove(cmd.Context(), args[1])
		})
	},
}

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Edit the hardSkills and softSkills lists",
}

var skillsAddCmd = &cobra.Command{
	Use:   "add <group> <skill>",
	Short: "Add a skill; blanks and duplicates are ignored",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSkills(cmd, args[0], args[1], true)
	},
}

var skillsRemoveCmd = &cobra.Command{
	Use:   "remove <group> <skill>",
	Short: "Remove a skill",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSkills(cmd, args[0], args[1], false)
	},
}

func init() {
	personalCmd.AddCommand(personalSetCmd)
	summaryCmd.AddCommand(summarySetCmd)
	headingCmd.AddCommand(headingSetCmd)
	sectionCmd.AddCommand(sectionAddCmd, sectionUpdateCmd, sectionRemoveCmd)
	skillsCmd.AddCommand(skillsAddCmd, skillsRemoveCmd)

	rootCmd.AddCommand(personalCmd, summaryCmd, headingCmd, sectionCmd, skillsCmd)
}

// edit runs fn against the stored record.
func edit(cmd *cobra.Command, fn func(ws *workspace) error) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := fn(ws); err != nil {
		return err
	}
	if cfg.Verbose {
		return writeRecord(cmd.OutOrStdout(), ws.store.Get())
	}
	return nil
}

func editSkills(cmd *cobra.Command, group, skill string, add bool) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	list, err := ws.editor.Skills(group)
	if err != nil {
		return err
	}

	var changed bool
	if add {
		changed, err = list.Add(cmd.Context(), skill)
	} else {
		changed, err = list.Remove(cmd.Context(), skill)
	}
	if err != nil {
		return err
	}
	if !changed {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No change")
		return nil
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(list.List(), ", "))
	return nil
}

func joinFields[F ~string](fields []F) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return strings.Join(out, ", ")
}
