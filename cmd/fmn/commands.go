package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fmn/internal/comm"
	"fmn/internal/task"
)

var (
	addAfter  string
	addAt     string
	addPer    string
	addPerDay bool
	addImage  string
	addSound  string
)

var rootCmd = &cobra.Command{
	Use:           "fmn",
	Short:         "forget-me-not: schedule desktop reminders",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var addCmd = &cobra.Command{
	Use:   "add <description>",
	Short: "Schedule a reminder",
	Long: `Schedule a reminder. Exactly one firing rule is required:

  --after 5m          fire once, five minutes from now
  --at 18:30          fire once, at the next 18:30
  --at 18:30 --per-day   fire every day at 18:30
  --per 1h            fire every hour until cancelled`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var rmCmd = &cobra.Command{
	Use:   "rm <task-id>",
	Short: "Cancel a reminder",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled reminders",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	addCmd.Flags().StringVar(&addAfter, "after", "", "fire once after a delay (e.g. 1d2h3m4s)")
	addCmd.Flags().StringVar(&addAt, "at", "", "fire at HH:MM (today, or tomorrow if already past)")
	addCmd.Flags().StringVar(&addPer, "per", "", "fire repeatedly every interval (e.g. 30m)")
	addCmd.Flags().BoolVar(&addPerDay, "per-day", false, "with --at: fire every day at that time")
	addCmd.Flags().StringVarP(&addImage, "image-path", "i", "", "notification image (default $FMN_IMAGE_PATH)")
	addCmd.Flags().StringVarP(&addSound, "sound-path", "s", "", "notification sound (default $FMN_SOUND_PATH)")
	addCmd.MarkFlagsOneRequired("after", "at", "per")
	addCmd.MarkFlagsMutuallyExclusive("after", "at", "per")

	rootCmd.AddCommand(addCmd, rmCmd, listCmd)
}

func daemonAddr() string {
	if addr := os.Getenv("FMN_DAEMON_ADDR"); addr != "" {
		return addr
	}
	return comm.DefaultAddr
}

func runAdd(cmd *cobra.Command, args []string) error {
	clock, err := buildClock()
	if err != nil {
		return err
	}
	if err := comm.ValidateClock(clock); err != nil {
		return err
	}

	image := addImage
	if image == "" {
		image = os.Getenv("FMN_IMAGE_PATH")
	}
	sound := addSound
	if sound == "" {
		sound = os.Getenv("FMN_SOUND_PATH")
	}

	resp, err := comm.Send(daemonAddr(), comm.Request{
		Op:          comm.OpAdd,
		Description: args[0],
		Clock:       &clock,
		Image:       image,
		Sound:       sound,
	})
	if err != nil {
		return err
	}
	if !resp.OK {
		return errors.New(resp.Error)
	}
	if resp.Task != nil {
		fmt.Printf("scheduled %s (%s)\n", resp.Task.ID, resp.Task.Clock)
	}
	return nil
}

func buildClock() (task.Clock, error) {
	switch {
	case addAfter != "":
		d, err := comm.ParseDuration(addAfter)
		if err != nil {
			return task.Clock{}, err
		}
		if d == 0 {
			return task.Clock{}, errors.New("--after duration must not be 0")
		}
		return task.Once(time.Now().Add(d)), nil
	case addPer != "":
		d, err := comm.ParseDuration(addPer)
		if err != nil {
			return task.Clock{}, err
		}
		if d == 0 {
			return task.Clock{}, errors.New("--per duration must not be 0")
		}
		return task.Period(d), nil
	case addPerDay:
		hour, minute, err := comm.ParseHourMinute(addAt)
		if err != nil {
			return task.Clock{}, err
		}
		return task.OncePerDay(hour, minute), nil
	default:
		at, err := comm.ParseAt(addAt, time.Now())
		if err != nil {
			return task.Clock{}, err
		}
		return task.Once(at), nil
	}
}

func runRm(cmd *cobra.Command, args []string) error {
	resp, err := comm.Send(daemonAddr(), comm.Request{Op: comm.OpCancel, TaskID: args[0]})
	if err != nil {
		return err
	}
	if !resp.OK {
		return errors.New(resp.Error)
	}
	fmt.Println("cancelled", args[0])
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	resp, err := comm.Send(daemonAddr(), comm.Request{Op: comm.OpShow})
	if err != nil {
		return err
	}
	if !resp.OK {
		return errors.New(resp.Error)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCLOCK\tDESCRIPTION")
	for _, t := range resp.Tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Clock, t.Description)
	}
	return w.Flush()
}
