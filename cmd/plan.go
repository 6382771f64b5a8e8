package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/guidepro/guidepro/internal/assistant"
	"github.com/guidepro/guidepro/internal/conversation"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a 3-day trip itinerary",
	Long:  `Asks the completion provider for a 3-day itinerary. Missing flags are prompted for interactively.`,
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().String("type", "", "trip type: Beach, City, Mountain or International")
	planCmd.Flags().Int("guests", 0, "number of guests (1-20)")
	planCmd.Flags().String("destination", "", "destination")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	req := assistant.TripRequest{}
	req.Type, _ = cmd.Flags().GetString("type")
	req.Guests, _ = cmd.Flags().GetInt("guests")
	req.Destination, _ = cmd.Flags().GetString("destination")

	if req.Type == "" {
		sel := promptui.Select{Label: "Trip type", Items: assistant.TripTypes}
		_, t, err := sel.Run()
		if err != nil {
			return err
		}
		req.Type = t
	}
	if req.Guests == 0 {
		prompt := promptui.Prompt{
			Label:   "Number of guests",
			Default: "2",
			Validate: func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil || n < assistant.MinTripGuests || n > assistant.MaxTripGuests {
					return fmt.Errorf("enter a number from %d to %d", assistant.MinTripGuests, assistant.MaxTripGuests)
				}
				return nil
			},
		}
		s, err := prompt.Run()
		if err != nil {
			return err
		}
		req.Guests, _ = strconv.Atoi(s)
	}
	if req.Destination == "" {
		prompt := promptui.Prompt{Label: "Destination"}
		d, err := prompt.Run()
		if err != nil {
			return err
		}
		req.Destination = d
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	asst, err := a.assistant(conversation.NewMemoryStore())
	if err != nil {
		return err
	}
	itinerary, err := asst.PlanTrip(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println(itinerary)
	return nil
}
