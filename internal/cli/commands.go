package cli

import (
	"github.com/spf13/cobra"

	"tickethub/internal/remote"
	"tickethub/internal/ticketing/admin"
	"tickethub/internal/ticketing/models"
	"tickethub/internal/ticketing/verification"
	id "tickethub/pkg/domain"
)

func (a *app) verifyCommand() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "verify <card-number>",
		Short: "Verify a Ghana Card number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := models.ParseRole(role)
			if err != nil {
				return err
			}
			form := verification.NewForm(args[0])
			if err := form.Validate(); err != nil {
				return err
			}

			res := a.client.VerifyCard(cmd.Context(), form.CardNumber, r)
			if !res.OK() {
				return a.printer.Result(res.Result)
			}
			if a.opts.JSON {
				return a.printer.JSON(res.Record)
			}
			a.printer.Success("%s", res.Message)
			rec := res.Record
			return a.printer.Table(
				[]string{"ID", "Card", "Name", "Email", "Phone"},
				[][]string{{rec.ID.String(), rec.CardNumber, rec.FullName(), rec.Email, rec.PhoneNumber}},
			)
		},
	}
	cmd.Flags().StringVar(&role, "role", models.RoleCitizen.String(), "verifying role: user or police")
	return cmd
}

func (a *app) typesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List ticket types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			options, res := a.client.ListTicketTypes(cmd.Context())
			if !res.OK() {
				return a.printer.Result(res)
			}
			if a.opts.JSON {
				return a.printer.JSON(options)
			}
			rows := make([][]string, 0, len(options))
			for _, opt := range options {
				rows = append(rows, []string{opt.ID.String(), opt.Title, models.FormatPrice(opt.Price)})
			}
			return a.printer.Table([]string{"ID", "Title", "Price"}, rows)
		},
	}
}

func (a *app) ticketsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tickets <citizen-id>",
		Short: "List a citizen's tickets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			citizenID, err := id.ParseCitizenID(args[0])
			if err != nil {
				return err
			}
			tickets, res := a.client.ListTickets(cmd.Context(), citizenID)
			if !res.OK() {
				return a.printer.Result(res)
			}
			if a.opts.JSON {
				return a.printer.JSON(tickets)
			}
			rows := make([][]string, 0, len(tickets))
			for _, t := range tickets {
				rows = append(rows, []string{t.ID.String(), t.Title, models.FormatPrice(t.Price), t.Status.String()})
			}
			return a.printer.Table([]string{"ID", "Title", "Price", "Status"}, rows)
		},
	}
}

func (a *app) adminCommand() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "List every issued ticket with its owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tickets, res := a.client.ListAllTickets(cmd.Context())
			if !res.OK() {
				return a.printer.Result(res)
			}
			tickets = admin.Filter(tickets, models.ParseStatusFilter(status))
			if a.opts.JSON {
				return a.printer.JSON(tickets)
			}
			rows := make([][]string, 0, len(tickets))
			for _, t := range tickets {
				rows = append(rows, []string{t.ID.String(), t.OwnerName(), t.Email, t.Title, models.FormatPrice(t.Price), t.Status.String()})
			}
			return a.printer.Table([]string{"ID", "Owner", "Email", "Title", "Price", "Status"}, rows)
		},
	}
	cmd.Flags().StringVar(&status, "status", string(models.FilterAll), "filter: all, paid or pending")
	return cmd
}

func (a *app) issueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "issue <citizen-id> <ticket-type-id>",
		Short: "Issue a ticket to a citizen",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			citizenID, err := id.ParseCitizenID(args[0])
			if err != nil {
				return err
			}
			typeID, err := id.ParseTicketTypeID(args[1])
			if err != nil {
				return err
			}
			return a.printer.Result(a.client.IssueTicket(cmd.Context(), remote.IssueRequest{
				CitizenID:    citizenID,
				TicketTypeID: typeID,
			}))
		},
	}
}

func (a *app) payCommand() *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "pay <ticket-id>",
		Short: "Pay a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := id.ParseTicketID(args[0])
			if err != nil {
				return err
			}
			m, err := models.ParsePaymentMethod(method)
			if err != nil {
				return err
			}
			return a.printer.Result(a.client.SubmitPayment(cmd.Context(), ticketID, m))
		},
	}
	cmd.Flags().StringVar(&method, "method", "", "payment method: momo or visa")
	_ = cmd.MarkFlagRequired("method")
	return cmd
}
