package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "gpgen.dev/pkg/gpgen/internal/model"
)

// SimpleUI implements UI using cobra Command's Println.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayPass prints the outcome of one generation pass.
func (s *SimpleUI) DisplayPass(ctx context.Context, report m.PassReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	if report.Err != nil {
		s.cmd.Printf("✗ %s: %v\n", report.Scene, report.Err)
		return
	}

	line := fmt.Sprintf("✓ %s → %sPath (%d constants)", report.Scene, report.ClassName, report.Constants)

	if report.Resource != "" {
		line += fmt.Sprintf(", tracked resource %s", report.Resource)
	}

	if len(report.Collisions) > 0 {
		line += fmt.Sprintf(", %d colliding fields skipped", len(report.Collisions))
	}

	s.cmd.Println(line)
}

// DisplayEvent prints a removal or move notification.
func (s *SimpleUI) DisplayEvent(ctx context.Context, event m.Event) {
	if err := ctx.Err(); err != nil {
		return
	}

	switch event.Kind {
	case m.FileRemoved:
		s.cmd.Printf("- removed %s\n", event.Path)
	case m.FilesMoved:
		s.cmd.Printf("~ moved %s → %s\n", event.OldPath, event.Path)
	case m.FolderRemoved:
		s.cmd.Printf("- removed folder %s\n", event.Path)
	case m.FilesystemChanged:
	}
}

// DisplaySummary prints the tracked totals after a full pass.
func (s *SimpleUI) DisplaySummary(ctx context.Context, scripts, resources int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.cmd.Printf("\nTracked: %d scripts, %d resources\n", scripts, resources)
}

// DisplayTracked renders the persisted tracker state as a table.
func (s *SimpleUI) DisplayTracked(ctx context.Context, snapshot m.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(snapshot.Scripts) == 0 && len(snapshot.Resources) == 0 {
		s.cmd.Println("Nothing tracked yet. Run `gpgen gen` first.")
		return nil
	}

	s.cmd.Print(renderTrackedTable(snapshot))

	return nil
}

// renderTrackedTable builds the scripts/resources table.
func renderTrackedTable(snapshot m.Snapshot) string {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Kind", "Path", "Generated"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	scripts := make([]string, 0, len(snapshot.Scripts))
	for script := range snapshot.Scripts {
		scripts = append(scripts, script)
	}

	sort.Strings(scripts)

	for _, script := range scripts {
		table.Append([]string{"script", script, snapshot.Scripts[script] + "Path"})
	}

	for _, resource := range snapshot.Resources {
		table.Append([]string{"resource", resource, "Res"})
	}

	table.SetFooter([]string{
		"total",
		fmt.Sprintf("%d scripts", len(snapshot.Scripts)),
		fmt.Sprintf("%d resources", len(snapshot.Resources)),
	})

	table.Render()

	return buffer.String()
}
