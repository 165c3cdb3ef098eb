package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tickethub/internal/ticketing/models"
	id "tickethub/pkg/domain"
)

type DataSuite struct {
	suite.Suite
	data *Data
}

func TestDataSuite(t *testing.T) {
	suite.Run(t, new(DataSuite))
}

func (s *DataSuite) SetupTest() {
	s.data = NewData(id.NewSessionID(), "Chrome on macOS", time.Now())
}

func citizen() *models.IdentityRecord {
	return &models.IdentityRecord{ID: 7, CardNumber: "GHA-123456789-0", FirstName: "Ama", LastName: "Mensah"}
}

func officer() *models.IdentityRecord {
	return &models.IdentityRecord{ID: 3, CardNumber: "GHA-000000003-1", FirstName: "Kofi", LastName: "Boateng"}
}

func (s *DataSuite) TestSlots() {
	s.Run("each role writes only its own slot", func() {
		s.data.SetSlot(models.RoleCitizen, citizen())
		s.Equal(citizen(), s.data.Citizen)
		s.Nil(s.data.Officer)

		s.data.SetSlot(models.RoleOfficer, officer())
		s.Equal(officer(), s.data.Officer)
		s.Equal(citizen(), s.data.Citizen)
	})

	s.Run("malformed records never occupy a slot", func() {
		s.SetupTest()
		s.data.SetSlot(models.RoleCitizen, &models.IdentityRecord{ID: 0, CardNumber: "GHA-1"})
		s.data.SetSlot(models.RoleOfficer, &models.IdentityRecord{ID: 4, CardNumber: "  "})
		s.data.SetSlot(models.RoleCitizen, nil)
		s.True(s.data.Empty())
	})

	s.Run("stored record is a snapshot", func() {
		s.SetupTest()
		rec := citizen()
		s.data.SetSlot(models.RoleCitizen, rec)
		rec.FirstName = "changed"
		s.Equal("Ama", s.data.Citizen.FirstName)
	})
}

func (s *DataSuite) TestClearSlot() {
	s.Run("clears exactly the signed-out role", func() {
		s.data.SetSlot(models.RoleCitizen, citizen())
		s.data.SetSlot(models.RoleOfficer, officer())

		s.data.ClearSlot(models.RoleOfficer)
		s.Nil(s.data.Officer)
		s.Equal(citizen(), s.data.Citizen)

		s.data.ClearSlot(models.RoleCitizen)
		s.True(s.data.Empty())
	})

	s.Run("drops the view state owned by the role", func() {
		s.SetupTest()
		s.data.SetSlot(models.RoleCitizen, citizen())
		s.data.SetSlot(models.RoleOfficer, officer())
		s.data.Ledger.Replace([]models.TicketRecord{{ID: 1, Status: models.TicketStatusPending}})
		s.data.Issuance.Selected = 2

		s.data.ClearSlot(models.RoleCitizen)
		s.False(s.data.Ledger.Loaded)
		s.Equal(id.TicketTypeID(2), s.data.Issuance.Selected)

		s.data.ClearSlot(models.RoleOfficer)
		s.Zero(s.data.Issuance.Selected)
	})

	s.Run("drops a handoff that was never taken", func() {
		s.SetupTest()
		s.data.SetSlot(models.RoleCitizen, citizen())
		s.data.SetSlot(models.RoleOfficer, officer())
		s.data.Handoff = citizen()

		s.data.ClearSlot(models.RoleOfficer)
		s.Nil(s.data.Handoff)
		s.Equal(citizen(), s.data.Citizen)
	})
}

func (s *DataSuite) TestNotices() {
	s.Run("drain returns queued notices once", func() {
		s.data.PushNotice(NoticeSuccess("Ghana card verified successfully"))
		s.data.PushNotice(NoticeError("Card declined"))

		got := s.data.DrainNotices()
		s.Require().Len(got, 2)
		s.Equal(KindSuccess, got[0].Kind)
		s.Equal("Card declined", got[1].Message)
		s.Empty(s.data.DrainNotices())
	})

	s.Run("blank messages are dropped and unknown kinds become info", func() {
		s.SetupTest()
		s.data.PushNotice(Notice{Kind: KindError, Message: "   "})
		s.data.PushNotice(Notice{Kind: "loud", Message: "hello"})

		got := s.data.DrainNotices()
		s.Require().Len(got, 1)
		s.Equal(KindInfo, got[0].Kind)
	})

	s.Run("queue keeps the newest notices", func() {
		s.SetupTest()
		for i := 0; i < maxNotices+3; i++ {
			s.data.PushNotice(NoticeInfo(id.TicketID(i + 1).String()))
		}
		got := s.data.DrainNotices()
		s.Len(got, maxNotices)
		s.Equal("4", got[0].Message)
	})
}

func (s *DataSuite) TestClone() {
	s.data.SetSlot(models.RoleCitizen, citizen())
	s.data.Ledger.Replace([]models.TicketRecord{{ID: 1, Status: models.TicketStatusPending}})
	s.data.Ledger.SetMethod(1, models.PaymentMethodMomo)
	s.data.Issuance.Catalog = models.DefaultCatalog()

	c := s.data.Clone()
	c.Citizen.FirstName = "other"
	c.Ledger.Tickets[0].Status = models.TicketStatusPaid
	c.Ledger.Methods[1] = models.PaymentMethodVisa
	c.Issuance.Catalog[0].Title = "other"

	s.Equal("Ama", s.data.Citizen.FirstName)
	s.Equal(models.TicketStatusPending, s.data.Ledger.Tickets[0].Status)
	s.Equal(models.PaymentMethodMomo, s.data.Ledger.Methods[1])
	s.Equal("Standard", s.data.Issuance.Catalog[0].Title)
}

func (s *DataSuite) TestLedger() {
	l := &s.data.Ledger
	l.Replace([]models.TicketRecord{
		{ID: 11, Title: "Standard", Price: 50, Status: models.TicketStatusPending},
		{ID: 12, Title: "Over Speeding", Price: 1, Status: models.TicketStatusPending},
		{ID: 13, Title: "Reckless Driving", Price: 200, Status: models.TicketStatusPaid},
	})

	s.Run("method selection is scoped to one ticket", func() {
		l.SetMethod(11, models.PaymentMethodVisa)
		m, ok := l.Method(11)
		s.True(ok)
		s.Equal(models.PaymentMethodVisa, m)
		_, ok = l.Method(12)
		s.False(ok)
	})

	s.Run("mark paid mutates exactly one ticket", func() {
		s.True(l.MarkPaid(12))
		s.Equal(models.TicketStatusPending, l.Tickets[0].Status)
		s.Equal(models.TicketStatusPaid, l.Tickets[1].Status)
		s.False(l.MarkPaid(12), "already paid")
		s.False(l.MarkPaid(99), "unknown ticket")
	})

	s.Run("replace keeps methods of listed tickets only", func() {
		l.SetMethod(13, models.PaymentMethodMomo)
		l.Replace([]models.TicketRecord{{ID: 11, Status: models.TicketStatusPending}})
		_, ok := l.Method(11)
		s.True(ok)
		_, ok = l.Method(13)
		s.False(ok)
	})
}

func (s *DataSuite) TestIssuanceSelection() {
	st := IssuanceState{Catalog: models.DefaultCatalog()}
	_, ok := st.Selection()
	s.False(ok)

	st.Selected = 3
	opt, ok := st.Selection()
	s.True(ok)
	s.Equal("Reckless Driving", opt.Title)

	st.Selected = 9
	_, ok = st.Selection()
	s.False(ok)
}
