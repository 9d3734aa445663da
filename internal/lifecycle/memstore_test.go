package lifecycle_test

// In-memory store fakes used by the engine tests.  They implement the
// same compare-and-set contract as the SQL repositories (a mutation is
// applied only while the row matches the expected status/owner, under a
// store-wide mutex), so the concurrency properties exercised here hold
// for any conforming store.

import (
	"context"
	"sync"
	"time"

	"github.com/homesolutions/marketplace/internal/lifecycle"
	"github.com/homesolutions/marketplace/internal/model"
)

type memBookings struct {
	mu   sync.Mutex
	seq  uint64
	rows map[uint64]*model.Booking
}

func newMemBookings() *memBookings {
	return &memBookings{rows: make(map[uint64]*model.Booking)}
}

func (s *memBookings) Create(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	b.ID = s.seq
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	cp := *b
	s.rows[b.ID] = &cp
	return nil
}

func (s *memBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *memBookings) TransitionStatus(_ context.Context, id uint64, from, to model.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return lifecycle.ErrNotFound
	}
	if row.Status != from {
		return lifecycle.ErrStale
	}
	row.Status = to
	row.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memBookings) AssignExpert(_ context.Context, id, expertID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return lifecycle.ErrNotFound
	}
	if row.Status != model.BookingConfirmed || row.ExpertID != nil {
		return lifecycle.ErrStale
	}
	eid := expertID
	row.ExpertID = &eid
	row.Status = model.BookingAssigned
	row.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memBookings) ReleaseExpert(_ context.Context, id, expertID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return lifecycle.ErrNotFound
	}
	if row.Status != model.BookingAssigned || row.ExpertID == nil || *row.ExpertID != expertID {
		return lifecycle.ErrStale
	}
	row.ExpertID = nil
	row.Status = model.BookingConfirmed
	row.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memBookings) AdvanceByExpert(_ context.Context, id, expertID uint64, from, to model.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return lifecycle.ErrNotFound
	}
	if row.Status != from || row.ExpertID == nil || *row.ExpertID != expertID {
		return lifecycle.ErrStale
	}
	row.Status = to
	row.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memBookings) ListStalePending(_ context.Context, cutoff time.Time) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint64
	for id, row := range s.rows {
		if row.Status == model.BookingPendingPayment && row.CreatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// backdate shifts a booking's creation time for sweeper-cutoff tests.
func (s *memBookings) backdate(id uint64, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.CreatedAt = row.CreatedAt.Add(-d)
	}
}

type memPayments struct {
	mu       sync.Mutex
	seq      uint64
	rows     map[uint64]*model.Payment
	byBook   map[uint64]uint64
	bookings *memBookings
}

func newMemPayments(bookings *memBookings) *memPayments {
	return &memPayments{
		rows:     make(map[uint64]*model.Payment),
		byBook:   make(map[uint64]uint64),
		bookings: bookings,
	}
}

func (s *memPayments) Create(_ context.Context, p *model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byBook[p.BookingID]; exists {
		return lifecycle.ErrPaymentExists
	}
	s.seq++
	p.ID = s.seq
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	s.rows[p.ID] = &cp
	s.byBook[p.BookingID] = p.ID
	return nil
}

func (s *memPayments) GetByID(_ context.Context, id uint64) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

// ConfirmWithBooking mirrors the SQL implementation: the booking CAS is
// the commit point, and the payment write happens only when it lands.
func (s *memPayments) ConfirmWithBooking(ctx context.Context, paymentID, bookingID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[paymentID]
	if !ok {
		return lifecycle.ErrNotFound
	}
	if row.Status == model.PaymentSucceeded {
		return lifecycle.ErrStale
	}
	if err := s.bookings.TransitionStatus(ctx, bookingID, model.BookingPendingPayment, model.BookingConfirmed); err != nil {
		return err
	}
	row.Status = model.PaymentSucceeded
	row.UpdatedAt = time.Now().UTC()
	return nil
}

type memCatalog struct {
	services map[uint64]*model.Service
}

func (s *memCatalog) GetService(_ context.Context, id uint64) (*model.Service, error) {
	svc, ok := s.services[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	cp := *svc
	return &cp, nil
}

type memAddresses struct {
	addrs map[uint64]*model.Address
}

func (s *memAddresses) GetAddress(_ context.Context, id uint64) (*model.Address, error) {
	a, ok := s.addrs[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	cp := *a
	return &cp, nil
}
