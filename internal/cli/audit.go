package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tickethub/internal/platform/config"
	"tickethub/internal/platform/kafka/consumer"
	"tickethub/internal/platform/logger"
	"tickethub/pkg/platform/audit/store/kafkasink"
)

func (a *app) auditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit event stream",
	}
	cmd.AddCommand(a.auditTailCommand())
	return cmd
}

func (a *app) auditTailCommand() *cobra.Command {
	var kafkaCfg config.Kafka
	_ = config.ParseEnv(&kafkaCfg)
	var (
		fromStart bool
		group     string
	)
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print audit events as the server publishes them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if a.opts.Verbose {
				level = "debug"
			}
			c, err := consumer.New(consumer.Config{
				Brokers:   kafkaCfg.Brokers,
				Topic:     kafkaCfg.AuditTopic,
				GroupID:   group,
				FromStart: fromStart,
			}, &auditPrinter{printer: a.printer, json: a.opts.JSON}, logger.NewWithWriter(cmd.ErrOrStderr(), level))
			if err != nil {
				return err
			}
			a.printer.Info("tailing %s (Ctrl+C to stop)", kafkaCfg.AuditTopic)
			return c.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&kafkaCfg.Brokers, "brokers", kafkaCfg.Brokers, "comma-separated Kafka brokers (KAFKA_BROKERS)")
	cmd.Flags().StringVar(&kafkaCfg.AuditTopic, "topic", kafkaCfg.AuditTopic, "audit topic (KAFKA_AUDIT_TOPIC)")
	cmd.Flags().BoolVar(&fromStart, "from-beginning", false, "start from the oldest retained event")
	cmd.Flags().StringVar(&group, "group", "", "consumer group; commits offsets so a restart resumes")
	return cmd
}

// auditPrinter prints one line per event.
type auditPrinter struct {
	printer *Printer
	json    bool
}

func (p *auditPrinter) Handle(_ context.Context, msg *consumer.Message) error {
	event, err := kafkasink.Decode(msg.Value)
	if err != nil {
		p.printer.Warning("skipping offset %d: %v", msg.Offset, err)
		return nil
	}
	if p.json {
		return p.printer.JSON(event)
	}
	ticket := "-"
	if event.TicketID > 0 {
		ticket = strconv.FormatInt(event.TicketID, 10)
	}
	p.printer.Info("%s  %-22s subject=%s role=%s ticket=%s %s",
		event.Timestamp.Local().Format(time.DateTime), event.Action, event.Subject, event.Role, ticket, event.Reason)
	return nil
}
