package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/azboards/internal/auth"
	"github.com/h0rv/azboards/internal/domain"
	"github.com/h0rv/azboards/internal/store"
	"github.com/h0rv/azboards/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Output formats for the non-interactive fetch.
const (
	outputTable = "table"
	outputJSON  = "json"
)

var (
	orgFlag        string
	projectFlag    string
	typeFlag       string
	assignedToFlag string
	patFlag        string
	outputFlag     string
	tuiFlag        bool
	groupFieldFlag string
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch work items once and print them",
		Long: `fetch runs one query against Azure Boards and prints the matching work items.

With --tui the items open in an interactive board grouped by State. Leaving
--type empty in TUI mode opens a work item type picker first.`,
		Args: cobra.NoArgs,
		RunE: runFetch,
	}

	cmd.Flags().StringVar(&orgFlag, "org", "", "Azure DevOps organization (required)")
	cmd.Flags().StringVar(&projectFlag, "project", "", "Project name (required)")
	cmd.Flags().StringVar(&typeFlag, "type", "", `Work item type, e.g. "Bug"; "all" disables the filter`)
	cmd.Flags().StringVar(&assignedToFlag, "assigned-to", "", "Only items whose assignee contains this text")
	cmd.Flags().StringVar(&patFlag, "pat", "", "Personal access token (default: $"+auth.EnvAzureDevOpsPAT+" or $"+auth.EnvAzboardsPAT+")")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", outputTable, "Output format: table or json")
	cmd.Flags().BoolVar(&tuiFlag, "tui", false, "Open the interactive board instead of printing")
	cmd.Flags().StringVar(&groupFieldFlag, "group-field", "", "Board grouping field: State, Type or AssignedTo (TUI only)")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	if groupFieldFlag != "" && !tuiFlag {
		return fmt.Errorf("--group-field requires --tui")
	}
	format := strings.ToLower(outputFlag)
	if format != outputTable && format != outputJSON {
		return fmt.Errorf("unknown --output %q: want %s or %s", outputFlag, outputTable, outputJSON)
	}

	token, err := auth.GetToken(patFlag)
	if err != nil {
		return err
	}

	_, logger, fetcher, client, err := loadRuntime(tuiFlag)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	req := domain.FetchRequest{
		Organization: orgFlag,
		Project:      projectFlag,
		Credential:   token,
		WorkItemType: typeFlag,
		AssignedTo:   assignedToFlag,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if tuiFlag {
		app := tui.NewAppModel(fetcher, client.WorkItemURL, store.New(), cmd.Context(), req, groupFieldFlag)
		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("program error: %w", err)
		}
		return nil
	}

	result, err := fetcher.Fetch(cmd.Context(), req)
	if err != nil {
		logger.Debug("fetch failed", zap.Error(err))
		return err
	}

	if format == outputJSON {
		return writeJSON(os.Stdout, result)
	}
	return writeTable(os.Stdout, result)
}
