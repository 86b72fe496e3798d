package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"vodworks/internal/models"
)

var jobsLimit int

// jobsCmd represents the jobs command
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List recent processing jobs",
	Long:  `Displays recent jobs from the queue, newest first, with status and error details.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		if jobsLimit <= 0 {
			return fmt.Errorf("invalid limit: %d", jobsLimit)
		}

		jobs, err := appInstance.JobStore.ListJobs(cmd.Context(), jobsLimit)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs found.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Type", "Segment", "Status", "Updated", "Error"})
		table.SetAutoWrapText(false)
		for _, job := range jobs {
			errMsg := ""
			if job.ErrorMessage != nil {
				errMsg = *job.ErrorMessage
			}
			table.Append([]string{
				job.ID.String(),
				string(job.JobType),
				job.SegmentID,
				colorStatus(job.Status),
				job.UpdatedAt.Format("2006-01-02 15:04:05"),
				errMsg,
			})
		}
		table.Render()
		return nil
	},
}

func colorStatus(status string) string {
	switch status {
	case models.JobStatusCompleted:
		return color.GreenString(status)
	case models.JobStatusFailed:
		return color.RedString(status)
	case models.JobStatusProcessing:
		return color.YellowString(status)
	default:
		return status
	}
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 50, "Maximum number of jobs to show")
}
