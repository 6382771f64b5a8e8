package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/guidepro/guidepro/internal/booking"
)

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "Manage saved hotel bookings",
}

var bookingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookings, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.bookings.List(ctx)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No bookings yet.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "REF\tNAME\tEMAIL\tDESTINATION\tCHECK-IN\tCHECK-OUT\tGUESTS")
		for _, r := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
				r.Reference(), r.Name, r.Email, r.Destination,
				r.CheckIn.Format(booking.DateLayout), r.CheckOut.Format(booking.DateLayout), r.Guests)
		}
		return tw.Flush()
	},
}

var bookingsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a booking by id (e.g. 12 or GP-12)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBookingID(args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.bookings.Delete(ctx, id); err != nil {
			if errors.Is(err, booking.ErrNotFound) {
				return fmt.Errorf("booking GP-%d does not exist", id)
			}
			return err
		}
		fmt.Printf("Deleted booking GP-%d.\n", id)
		return nil
	},
}

var bookingsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every booking to a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if out == "" {
			out = filepath.Join(a.cfg.DataDir, "exports", "bookings.csv")
		}
		recs, err := a.bookings.List(ctx)
		if err != nil {
			return err
		}
		path, err := booking.ExportCSVFile(out, recs)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d booking(s) to %s\n", len(recs), path)
		return nil
	},
}

func init() {
	bookingsExportCmd.Flags().String("out", "", "output path (default <data_dir>/exports/bookings.csv)")
	bookingsCmd.AddCommand(bookingsListCmd, bookingsDeleteCmd, bookingsExportCmd)
	rootCmd.AddCommand(bookingsCmd)
}

// parseBookingID accepts a numeric id with or without the GP- prefix.
func parseBookingID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if len(s) > 3 && strings.EqualFold(s[:3], "GP-") {
		s = s[3:]
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid booking id %q", s)
	}
	return id, nil
}
