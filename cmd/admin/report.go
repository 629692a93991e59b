package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/programme-lv/autograde/report"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var assignmentID int64
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print every enrolled student's latest submission for an assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			a, err := e.srvcs.Assignments.Get(cmd.Context(), assignmentID)
			if err != nil {
				return err
			}
			rows, err := e.srvcs.Reports.LatestSubmissions(cmd.Context(), assignmentID)
			if err != nil {
				return err
			}
			fmt.Println(valueStyle.Render(a.Title), "due", a.DueDate.Format(time.DateTime))
			fmt.Println(renderReport(rows, a.TotalPoints))
			sum := report.Summarize(a.ID, a.TotalPoints, rows)
			fmt.Printf("%d/%d submitted, %d late, mean %.2f\n", sum.Submitted, sum.Enrolled, sum.Late, sum.MeanScore)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&assignmentID, "assignment", "a", 0, "assignment id (required)")
	_ = cmd.MarkFlagRequired("assignment")
	return cmd
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3498db")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	lateStyle   = cellStyle.Foreground(lipgloss.Color("#e74c3c"))
)

func renderReport(rows []report.Row, totalPoints int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STUDENT", "SUBMITTED", "DUE", "TESTS", "SCORE")

	late := make(map[int]bool)
	for i, r := range rows {
		if r.Latest == nil {
			t.Row(r.Student.Email, "-", r.CorrectedDueDate.Format(time.DateTime), "-", "0")
			continue
		}
		late[i] = r.Late
		t.Row(
			r.Student.Email,
			r.Latest.PublishDate.Format(time.DateTime),
			r.CorrectedDueDate.Format(time.DateTime),
			fmt.Sprintf("%d/%d", r.Latest.Passed, r.Latest.Passed+r.Latest.Failed),
			strconv.FormatFloat(r.Score, 'f', 2, 64)+"/"+strconv.Itoa(totalPoints),
		)
	}
	return t.StyleFunc(reportStyle(late)).Render()
}

// reportStyle colours the submission time of late rows. Row 0 is the
// header, data rows start at 1.
func reportStyle(late map[int]bool) table.StyleFunc {
	return func(row, col int) lipgloss.Style {
		switch {
		case row == 0:
			return headerStyle
		case late[row-1] && col == 1:
			return lateStyle
		default:
			return cellStyle
		}
	}
}
