package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	deeprag "deeprag/engine/core"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ReservationsCmd = &cobra.Command{
	Use:     "reservations",
	Aliases: []string{"rs"},
	Short:   "List reservations on the deployment server",
	Run: func(cmd *cobra.Command, args []string) {
		client := deeprag.NewHTTPClient(viper.GetString("server"))

		resp, err := client.GET(context.Background(), "/api/v1/reservations")
		if err != nil {
			fmt.Printf("Failed to reach server: %v\n", err)
			os.Exit(1)
		}

		var reservations []deeprag.Reservation
		if err := client.DecodeJSON(resp, &reservations); err != nil {
			fmt.Printf("Failed to decode response: %v\n", err)
			os.Exit(1)
		}

		if len(reservations) == 0 {
			fmt.Println("No reservations")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tADDRESS\tSTATE\tREMAINING")
		for i := range reservations {
			r := &reservations[i]
			fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\n", r.ID, r.Address, r.State, r.RemainingSeconds())
		}
		w.Flush()
	},
}
