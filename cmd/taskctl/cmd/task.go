package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskforge/backend/api/transport"
	"github.com/taskforge/backend/pkg/client"
)

var (
	listSearch    string
	listPriority  string
	listCompleted bool
	listPending   bool
	listLimit     int

	createDescription string
	createPriority    string
	createDueDate     string

	updateTitle       string
	updateDescription string
	updatePriority    string
	updateDueDate     string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		opts := client.ListOptions{
			Search:   listSearch,
			Priority: listPriority,
			Limit:    listLimit,
		}
		if listCompleted {
			completed := true
			opts.Completed = &completed
		} else if listPending {
			completed := false
			opts.Completed = &completed
		}

		tasks, err := c.Tasks(opts)
		if err != nil {
			return err
		}
		if err := saveSession(c); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDONE\tPRIORITY\tDUE\tTITLE")
		for _, t := range tasks {
			done := " "
			if t.Completed {
				done = "x"
			}
			due := "-"
			if t.DueDate != nil {
				due = t.DueDate.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\t%s\n", t.ID, done, t.Priority, due, t.Title)
		}
		return w.Flush()
	},
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		task, err := c.CreateTask(transport.TaskCreateRequest{
			Title:       args[0],
			Description: createDescription,
			Priority:    createPriority,
			DueDate:     createDueDate,
		})
		if err != nil {
			return err
		}
		if err := saveSession(c); err != nil {
			return err
		}

		fmt.Printf("created task %s\n", task.ID)
		return nil
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update the supplied fields of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		var req transport.TaskUpdateRequest
		if cmd.Flags().Changed("title") {
			req.Title = &updateTitle
		}
		if cmd.Flags().Changed("description") {
			req.Description = &updateDescription
		}
		if cmd.Flags().Changed("priority") {
			req.Priority = &updatePriority
		}
		if cmd.Flags().Changed("due") {
			req.DueDate = &updateDueDate
		}

		task, err := c.UpdateTask(args[0], req)
		if err != nil {
			return err
		}
		if err := saveSession(c); err != nil {
			return err
		}

		fmt.Printf("updated task %s\n", task.ID)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		if err := c.DeleteTask(args[0]); err != nil {
			return err
		}
		if err := saveSession(c); err != nil {
			return err
		}

		fmt.Println("task deleted")
		return nil
	},
}

var taskToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip a task's completion state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		task, err := c.ToggleTask(args[0])
		if err != nil {
			return err
		}
		if err := saveSession(c); err != nil {
			return err
		}

		state := "pending"
		if task.Completed {
			state = "completed"
		}
		fmt.Printf("task %s is now %s\n", task.ID, state)
		return nil
	},
}

var taskStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		stats, err := c.Stats()
		if err != nil {
			return err
		}
		if err := saveSession(c); err != nil {
			return err
		}

		fmt.Printf("total: %d\ncompleted: %d\npending: %d\ncompletion: %.0f%%\n",
			stats.Total, stats.Completed, stats.Pending, stats.CompletionRate*100)
		return nil
	},
}

var taskActivityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent task activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		entries, err := c.Activity(listLimit)
		if err != nil {
			return err
		}
		if err := saveSession(c); err != nil {
			return err
		}

		for _, e := range entries {
			fmt.Printf("%s  %-9s  %s\n", e.OccurredAt.Format(time.RFC3339), e.Action, e.Title)
		}
		return nil
	},
}

func init() {
	taskListCmd.Flags().StringVar(&listSearch, "search", "", "filter by title/description substring")
	taskListCmd.Flags().StringVar(&listPriority, "priority", "", "filter by priority (low|medium|high)")
	taskListCmd.Flags().BoolVar(&listCompleted, "completed", false, "only completed tasks")
	taskListCmd.Flags().BoolVar(&listPending, "pending", false, "only pending tasks")
	taskListCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum entries")

	taskCreateCmd.Flags().StringVar(&createDescription, "description", "", "task description")
	taskCreateCmd.Flags().StringVar(&createPriority, "priority", "medium", "priority (low|medium|high)")
	taskCreateCmd.Flags().StringVar(&createDueDate, "due", "", "due date (YYYY-MM-DD or RFC3339)")

	taskUpdateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	taskUpdateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
	taskUpdateCmd.Flags().StringVar(&updatePriority, "priority", "", "new priority (low|medium|high)")
	taskUpdateCmd.Flags().StringVar(&updateDueDate, "due", "", "new due date (YYYY-MM-DD or RFC3339)")

	taskCmd.AddCommand(taskListCmd, taskCreateCmd, taskUpdateCmd, taskDeleteCmd, taskToggleCmd, taskStatsCmd, taskActivityCmd)
	rootCmd.AddCommand(taskCmd)
}
