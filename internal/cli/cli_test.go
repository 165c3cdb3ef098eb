package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tickethub/internal/platform/kafka/consumer"
	"tickethub/internal/remote"
	"tickethub/internal/remote/mocks"
	"tickethub/internal/ticketing/models"
	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
)

func execute(t *testing.T, setup func(c *mocks.MockClient), args ...string) (string, string, error) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	if setup != nil {
		setup(client)
	}
	factory := func(Options, *slog.Logger) remote.Client { return client }

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(factory, &stdout, &stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVerifyPrintsRecord(t *testing.T) {
	stdout, _, err := execute(t, func(c *mocks.MockClient) {
		c.EXPECT().VerifyCard(gomock.Any(), "GHA-123456789-0", models.RoleOfficer).Return(remote.VerifyResult{
			Result: remote.Result{Status: remote.StatusOK, Message: remote.MsgVerified},
			Record: &models.IdentityRecord{ID: 7, CardNumber: "GHA-123456789-0", FirstName: "Ama", LastName: "Mensah"},
		})
	}, "verify", "  GHA-123456789-0 ", "--role", "police")

	require.NoError(t, err)
	assert.Contains(t, stdout, remote.MsgVerified)
	assert.Contains(t, stdout, "Ama Mensah")
}

func TestVerifyRejectsShortCardWithoutCalling(t *testing.T) {
	_, _, err := execute(t, nil, "verify", "GHA")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestVerifyRejectedReturnsMessage(t *testing.T) {
	_, stderr, err := execute(t, func(c *mocks.MockClient) {
		c.EXPECT().VerifyCard(gomock.Any(), "GHA-000000000-0", models.RoleCitizen).Return(remote.VerifyResult{
			Result: remote.Result{Status: remote.StatusRejected, Message: "Card not found"},
		})
	}, "verify", "GHA-000000000-0")

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRejected))
	assert.Contains(t, stderr, "Card not found")
}

func TestTypesTable(t *testing.T) {
	stdout, _, err := execute(t, func(c *mocks.MockClient) {
		c.EXPECT().ListTicketTypes(gomock.Any()).
			Return(models.DefaultCatalog(), remote.Result{Status: remote.StatusOK})
	}, "types")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Reckless Driving")
	assert.Contains(t, stdout, models.FormatPrice(200))
}

func TestTicketsJSON(t *testing.T) {
	stdout, _, err := execute(t, func(c *mocks.MockClient) {
		c.EXPECT().ListTickets(gomock.Any(), id.CitizenID(7)).Return([]models.TicketRecord{
			{ID: 101, Title: "Standard", Price: 50, Status: models.TicketStatusPending},
		}, remote.Result{Status: remote.StatusOK})
	}, "--json", "tickets", "7")

	require.NoError(t, err)
	var got []models.TicketRecord
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 1)
	assert.Equal(t, id.TicketID(101), got[0].ID)
}

func TestTicketsInvalidCitizenID(t *testing.T) {
	_, _, err := execute(t, nil, "tickets", "abc")
	require.Error(t, err)
}

func TestAdminFiltersByStatus(t *testing.T) {
	stdout, _, err := execute(t, func(c *mocks.MockClient) {
		c.EXPECT().ListAllTickets(gomock.Any()).Return([]models.AdminTicket{
			{TicketRecord: models.TicketRecord{ID: 1, Title: "Standard", Status: models.TicketStatusPaid}, FirstName: "Ama"},
			{TicketRecord: models.TicketRecord{ID: 2, Title: "Over Speeding", Status: models.TicketStatusPending}, FirstName: "Kojo"},
		}, remote.Result{Status: remote.StatusOK})
	}, "admin", "--status", "pending")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Kojo")
	assert.NotContains(t, stdout, "Ama")
}

func TestIssue(t *testing.T) {
	stdout, _, err := execute(t, func(c *mocks.MockClient) {
		c.EXPECT().IssueTicket(gomock.Any(), remote.IssueRequest{CitizenID: 7, TicketTypeID: 2}).
			Return(remote.Result{Status: remote.StatusOK, Message: remote.MsgTicketIssued})
	}, "issue", "7", "2")

	require.NoError(t, err)
	assert.Contains(t, stdout, remote.MsgTicketIssued)
}

func TestPay(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		stdout, _, err := execute(t, func(c *mocks.MockClient) {
			c.EXPECT().SubmitPayment(gomock.Any(), id.TicketID(101), models.PaymentMethodMomo).
				Return(remote.Result{Status: remote.StatusOK, Message: remote.MsgPaymentSucceeded})
		}, "pay", "101", "--method", "MoMo")

		require.NoError(t, err)
		assert.Contains(t, stdout, remote.MsgPaymentSucceeded)
	})

	t.Run("transport failure", func(t *testing.T) {
		_, stderr, err := execute(t, func(c *mocks.MockClient) {
			c.EXPECT().SubmitPayment(gomock.Any(), id.TicketID(101), models.PaymentMethodVisa).
				Return(remote.Result{Status: remote.StatusTransport, Message: remote.MsgTransport})
		}, "pay", "101", "--method", "visa")

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTransport))
		assert.Contains(t, stderr, remote.MsgTransport)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, _, err := execute(t, nil, "pay", "101", "--method", "cash")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestAuditPrinter(t *testing.T) {
	var out, errOut bytes.Buffer
	p := &auditPrinter{printer: NewPrinter(&out, &errOut, false)}

	value := []byte(`{"at":"2026-03-01T09:00:00Z","action":"payment_completed","subject":"7","role":"user","ticket_id":101}`)
	require.NoError(t, p.Handle(context.Background(), &consumer.Message{Offset: 4, Value: value}))
	assert.Contains(t, out.String(), "payment_completed")
	assert.Contains(t, out.String(), "ticket=101")

	require.NoError(t, p.Handle(context.Background(), &consumer.Message{Offset: 5, Value: []byte("not json")}))
	assert.Contains(t, errOut.String(), "skipping offset 5")
}
