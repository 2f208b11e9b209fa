package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marender/immertrack/internal/model"
)

var (
	projectColor        string
	projectIcon         string
	projectJobCode      string
	projectInternalDesc string
	projectWorkpackage  string
	projectCustomer     string
	projectCode         string
	projectKM           float64
	projectIgnoreExport bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectAdd,
}

var projectEditCmd = &cobra.Command{
	Use:   "edit <project>",
	Short: "Edit a project's metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectEdit,
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive <project>",
	Short: "Archive a project",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setArchived(args[0], true) },
}

var projectUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <project>",
	Short: "Unarchive a project",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setArchived(args[0], false) },
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove <project>",
	Short: "Remove a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectRemove,
}

func addProjectFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&projectColor, "color", "", "Display color, e.g. #F87171")
	cmd.Flags().StringVar(&projectIcon, "icon", "", "Icon name")
	cmd.Flags().StringVar(&projectJobCode, "job-code", "", "CSV export job code")
	cmd.Flags().StringVar(&projectInternalDesc, "internal-description", "", "CSV export internal description")
	cmd.Flags().StringVar(&projectWorkpackage, "workpackage", "", "CSV export workpackage")
	cmd.Flags().StringVar(&projectCustomer, "customer", "", "CSV export customer")
	cmd.Flags().StringVar(&projectCode, "project-code", "", "CSV export external project code")
	cmd.Flags().Float64Var(&projectKM, "km", 0, "CSV export kilometers")
	cmd.Flags().BoolVar(&projectIgnoreExport, "ignore-export", false, "Exclude this project from CSV exports")
}

func init() {
	addProjectFlags(projectAddCmd)
	addProjectFlags(projectEditCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectEditCmd)
	projectCmd.AddCommand(projectArchiveCmd)
	projectCmd.AddCommand(projectUnarchiveCmd)
	projectCmd.AddCommand(projectRemoveCmd)
}

func runProjectList(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()

	for _, p := range a.reg.Projects() {
		marker := " "
		if activeID, running := a.eng.Active(); running && activeID == p.ID {
			marker = "*"
		}
		suffix := ""
		if p.Archived {
			suffix = " (archived)"
		}
		if p.IgnoreForCsvExport {
			suffix += " (not exported)"
		}
		fmt.Printf("%s %-20s %s%s\n", marker, p.Name, p.ID, suffix)
	}
	return nil
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()

	if _, exists := a.reg.Resolve(args[0]); exists {
		fmt.Fprintf(os.Stderr, "Project %q already exists.\n", args[0])
		os.Exit(1)
	}

	p := a.reg.Add(model.Project{
		Name:                args[0],
		Color:               projectColor,
		Icon:                projectIcon,
		JobCode:             projectJobCode,
		InternalDescription: projectInternalDesc,
		Workpackage:         projectWorkpackage,
		Customer:            projectCustomer,
		ProjectCode:         projectCode,
		KM:                  projectKM,
		IgnoreForCsvExport:  projectIgnoreExport,
	})
	if err := a.reg.Save(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Added project %q (%s)\n", p.Name, p.ID)
	return nil
}

func runProjectEdit(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()

	p, ok := a.reg.Resolve(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown project %q\n", args[0])
		os.Exit(1)
	}

	// Only touch fields whose flags were given, so an edit of one field
	// does not blank the others.
	flags := cmd.Flags()
	if flags.Changed("color") {
		p.Color = projectColor
	}
	if flags.Changed("icon") {
		p.Icon = projectIcon
	}
	if flags.Changed("job-code") {
		p.JobCode = projectJobCode
	}
	if flags.Changed("internal-description") {
		p.InternalDescription = projectInternalDesc
	}
	if flags.Changed("workpackage") {
		p.Workpackage = projectWorkpackage
	}
	if flags.Changed("customer") {
		p.Customer = projectCustomer
	}
	if flags.Changed("project-code") {
		p.ProjectCode = projectCode
	}
	if flags.Changed("km") {
		p.KM = projectKM
	}
	if flags.Changed("ignore-export") {
		p.IgnoreForCsvExport = projectIgnoreExport
	}

	a.reg.Update(p)
	if err := a.reg.Save(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Updated project %q\n", p.Name)
	return nil
}

func setArchived(ref string, archived bool) error {
	a := mustOpenApp()

	p, ok := a.reg.Resolve(ref)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown project %q\n", ref)
		os.Exit(1)
	}
	a.reg.SetArchived(p.ID, archived)
	if err := a.reg.Save(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	verb := "Archived"
	if !archived {
		verb = "Unarchived"
	}
	fmt.Printf("%s project %q\n", verb, p.Name)
	return nil
}

func runProjectRemove(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()

	p, ok := a.reg.Resolve(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown project %q\n", args[0])
		os.Exit(1)
	}
	a.reg.Remove(p.ID)
	if err := a.reg.Save(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Removed project %q\n", p.Name)
	return nil
}
