package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/inventory-service/internal/api/dto"
	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/client"
)

func newMovementCommand(e *env, kind client.MutationKind) *cobra.Command {
	var req dto.MovementRequest

	short := "Record stock entering the warehouse"
	if kind == client.KindCheckOut {
		short = "Record stock leaving the warehouse"
	}

	cmd := &cobra.Command{
		Use:   string(kind),
		Args:  cobra.NoArgs,
		Short: short,
		Long:  short + ". When the API is unreachable the movement is queued and replayed by sync or watch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.require(auth.CapMovementsRecord); err != nil {
				return err
			}
			submit := e.api.CheckIn
			if kind == client.KindCheckOut {
				submit = e.api.CheckOut
			}
			result, err := submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.Queued != nil {
				fmt.Fprintf(out, "api unreachable; %s queued as %s\n", kind, result.Queued.ID)
				return nil
			}
			m := result.Movement
			fmt.Fprintf(out, "%s %s: %d unit(s) of %s, stock now %d\n", m.Direction, m.ID, m.Quantity, m.ItemID, m.QuantityAfter)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ItemID, "item", "", "item id")
	cmd.Flags().IntVarP(&req.Quantity, "quantity", "q", 1, "quantity")
	cmd.Flags().StringVar(&req.RecipientID, "recipient", "", "employee receiving or returning the equipment")
	cmd.Flags().StringVar(&req.DigitalSignature, "signature", "", "recipient signature")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newMineCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Args:  cobra.NoArgs,
		Short: "List equipment movements recorded for you",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.require(auth.CapEquipmentMine); err != nil {
				return err
			}
			movements, err := e.api.Mine(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tDIRECTION\tITEM\tQUANTITY")
			for _, m := range movements {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", m.CreatedAt.Format("2006-01-02 15:04"), m.Direction, m.ItemID, m.Quantity)
			}
			return w.Flush()
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
