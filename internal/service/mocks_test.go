package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/staffing-service/internal/domain"
	"github.com/spec-kit/staffing-service/internal/events"
	"github.com/spec-kit/staffing-service/internal/repository"
)

// In-memory fakes backing the service tests. They mirror the repository
// contracts, including pgx.ErrNoRows on misses and the duplicate and
// already-paid sentinels.

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) add(user *domain.User) *domain.User {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListByAgency(_ context.Context, agencyID string) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		if user.AgencyID != nil && *user.AgencyID == agencyID {
			result = append(result, *user)
		}
	}
	return result, nil
}

type fakeAgencyRepo struct {
	agencies map[string]*domain.Agency
}

func newFakeAgencyRepo() *fakeAgencyRepo {
	return &fakeAgencyRepo{agencies: map[string]*domain.Agency{}}
}

func (r *fakeAgencyRepo) add(agency *domain.Agency) *domain.Agency {
	if agency.ID == "" {
		agency.ID = uuid.NewString()
	}
	r.agencies[agency.ID] = agency
	return agency
}

func (r *fakeAgencyRepo) Create(_ context.Context, agency *domain.Agency) error {
	agency.ID = uuid.NewString()
	agency.CreatedAt = time.Now()
	agency.UpdatedAt = agency.CreatedAt
	r.agencies[agency.ID] = agency
	return nil
}

func (r *fakeAgencyRepo) Update(_ context.Context, agency *domain.Agency) error {
	if _, ok := r.agencies[agency.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.agencies[agency.ID] = agency
	return nil
}

func (r *fakeAgencyRepo) GetByID(_ context.Context, id string) (*domain.Agency, error) {
	agency, ok := r.agencies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return agency, nil
}

func (r *fakeAgencyRepo) GetByOwner(_ context.Context, ownerUserID string) (*domain.Agency, error) {
	for _, agency := range r.agencies {
		if agency.OwnerUserID == ownerUserID {
			return agency, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeEventRepo struct {
	events map[string]*domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[string]*domain.Event{}}
}

func (r *fakeEventRepo) add(event *domain.Event) *domain.Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	r.events[event.ID] = event
	return event
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.events[event.ID] = event
	return nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *domain.Event) error {
	if _, ok := r.events[event.ID]; !ok {
		return pgx.ErrNoRows
	}
	event.UpdatedAt = time.Now()
	r.events[event.ID] = event
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.events[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return event, nil
}

func (r *fakeEventRepo) ListWithFilter(_ context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	var result []domain.Event
	for _, event := range r.events {
		if filter.AgencyID != nil && event.AgencyID != *filter.AgencyID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if event.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.SearchTerm != nil {
			term := strings.ToLower(*filter.SearchTerm)
			if !strings.Contains(strings.ToLower(event.Name), term) &&
				!strings.Contains(strings.ToLower(event.Location), term) {
				continue
			}
		}
		result = append(result, *event)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

type fakeAssignmentRepo struct {
	assignments map[string]*domain.EventAssignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: map[string]*domain.EventAssignment{}}
}

func (r *fakeAssignmentRepo) add(assignment *domain.EventAssignment) *domain.EventAssignment {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	r.assignments[assignment.ID] = assignment
	return assignment
}

func (r *fakeAssignmentRepo) Create(_ context.Context, assignment *domain.EventAssignment) error {
	for _, existing := range r.assignments {
		if existing.EventID == assignment.EventID && existing.UserID == assignment.UserID {
			return repository.ErrDuplicateAssignment
		}
	}
	assignment.ID = uuid.NewString()
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = assignment.CreatedAt
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *fakeAssignmentRepo) Update(_ context.Context, assignment *domain.EventAssignment) error {
	if _, ok := r.assignments[assignment.ID]; !ok {
		return pgx.ErrNoRows
	}
	assignment.UpdatedAt = time.Now()
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *fakeAssignmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.assignments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.assignments, id)
	return nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id string) (*domain.EventAssignment, error) {
	assignment, ok := r.assignments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return assignment, nil
}

func (r *fakeAssignmentRepo) GetByEventAndUser(_ context.Context, eventID, userID string) (*domain.EventAssignment, error) {
	for _, assignment := range r.assignments {
		if assignment.EventID == eventID && assignment.UserID == userID {
			return assignment, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAssignmentRepo) ListByEvent(_ context.Context, eventID string) ([]domain.EventAssignment, error) {
	var result []domain.EventAssignment
	for _, assignment := range r.assignments {
		if assignment.EventID == eventID {
			result = append(result, *assignment)
		}
	}
	return result, nil
}

func (r *fakeAssignmentRepo) ListByUser(_ context.Context, userID string) ([]domain.EventAssignment, error) {
	var result []domain.EventAssignment
	for _, assignment := range r.assignments {
		if assignment.UserID == userID {
			result = append(result, *assignment)
		}
	}
	return result, nil
}

func (r *fakeAssignmentRepo) CountByStatus(_ context.Context, eventID string) (repository.StatusCounts, error) {
	counts := repository.StatusCounts{}
	for _, assignment := range r.assignments {
		if assignment.EventID != eventID {
			continue
		}
		switch assignment.Status {
		case domain.AssignmentStatusPending:
			counts.Pending++
		case domain.AssignmentStatusAccepted:
			counts.Accepted++
		case domain.AssignmentStatusRejected:
			counts.Rejected++
		}
	}
	return counts, nil
}

type fakePaymentRepo struct {
	payments []*domain.EventPayment
	nameOf   map[string]string
	agencyOf map[string]string
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{nameOf: map[string]string{}, agencyOf: map[string]string{}}
}

func (r *fakePaymentRepo) CreateBatch(_ context.Context, eventID string, payments []*domain.EventPayment) error {
	for _, existing := range r.payments {
		if existing.EventID == eventID {
			return repository.ErrEventAlreadyPaid
		}
	}
	for _, payment := range payments {
		payment.ID = uuid.NewString()
		payment.CreatedAt = time.Now()
		r.payments = append(r.payments, payment)
	}
	return nil
}

func (r *fakePaymentRepo) ExistsForEvent(_ context.Context, eventID string) (bool, error) {
	for _, payment := range r.payments {
		if payment.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) ListByEvent(_ context.Context, eventID string) ([]domain.EventPayment, error) {
	var result []domain.EventPayment
	for _, payment := range r.payments {
		if payment.EventID == eventID {
			result = append(result, *payment)
		}
	}
	return result, nil
}

func (r *fakePaymentRepo) ListByUser(_ context.Context, userID string) ([]domain.EventPayment, error) {
	var result []domain.EventPayment
	for _, payment := range r.payments {
		if payment.UserID == userID {
			result = append(result, *payment)
		}
	}
	return result, nil
}

func (r *fakePaymentRepo) LastPaymentForUser(_ context.Context, userID, excludeEventID string) (*domain.EventPayment, error) {
	var last *domain.EventPayment
	for _, payment := range r.payments {
		if payment.UserID != userID || payment.EventID == excludeEventID {
			continue
		}
		if last == nil || payment.PaidAt.After(last.PaidAt) {
			last = payment
		}
	}
	return last, nil
}

func (r *fakePaymentRepo) TotalForUser(_ context.Context, userID string) (float64, error) {
	total := 0.0
	for _, payment := range r.payments {
		if payment.UserID == userID {
			total += payment.Amount
		}
	}
	return total, nil
}

func (r *fakePaymentRepo) TotalForEvent(_ context.Context, eventID string) (float64, error) {
	total := 0.0
	for _, payment := range r.payments {
		if payment.EventID == eventID {
			total += payment.Amount
		}
	}
	return total, nil
}

func (r *fakePaymentRepo) StaffTotalsByAgency(_ context.Context, agencyID string) ([]domain.StaffPayoutTotal, error) {
	byUser := map[string]*domain.StaffPayoutTotal{}
	for _, payment := range r.payments {
		if r.agencyOf[payment.EventID] != agencyID {
			continue
		}
		total, ok := byUser[payment.UserID]
		if !ok {
			total = &domain.StaffPayoutTotal{UserID: payment.UserID, UserName: r.nameOf[payment.UserID]}
			byUser[payment.UserID] = total
		}
		total.PaymentCount++
		total.TotalHours += payment.HoursWorked
		total.TotalAmount += payment.Amount
	}
	var result []domain.StaffPayoutTotal
	for _, total := range byUser {
		result = append(result, *total)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

type fakeCompensationRepo struct {
	comps map[string]*domain.EventCompensation
	reqs  map[string]*domain.EventRequirement
}

func newFakeCompensationRepo() *fakeCompensationRepo {
	return &fakeCompensationRepo{
		comps: map[string]*domain.EventCompensation{},
		reqs:  map[string]*domain.EventRequirement{},
	}
}

func (r *fakeCompensationRepo) UpsertCompensation(_ context.Context, comp *domain.EventCompensation) error {
	r.comps[comp.EventID] = comp
	return nil
}

func (r *fakeCompensationRepo) GetCompensation(_ context.Context, eventID string) (*domain.EventCompensation, error) {
	comp, ok := r.comps[eventID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return comp, nil
}

func (r *fakeCompensationRepo) UpsertRequirement(_ context.Context, req *domain.EventRequirement) error {
	r.reqs[req.EventID] = req
	return nil
}

func (r *fakeCompensationRepo) GetRequirement(_ context.Context, eventID string) (*domain.EventRequirement, error) {
	req, ok := r.reqs[eventID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return req, nil
}

type fakeMessageRepo struct {
	messages []*domain.EventMessage
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.EventMessage) error {
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeMessageRepo) ListByEvent(_ context.Context, eventID string, limit, offset int) ([]domain.EventMessage, error) {
	var result []domain.EventMessage
	for _, msg := range r.messages {
		if msg.EventID == eventID {
			result = append(result, *msg)
		}
	}
	if offset > len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

type fakeRoleRepo struct {
	roles map[string]*domain.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: map[string]*domain.Role{}}
}

func (r *fakeRoleRepo) add(role *domain.Role) *domain.Role {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	r.roles[role.ID] = role
	return role
}

func (r *fakeRoleRepo) Create(_ context.Context, role *domain.Role) error {
	role.ID = uuid.NewString()
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt
	r.roles[role.ID] = role
	return nil
}

func (r *fakeRoleRepo) Update(_ context.Context, role *domain.Role) error {
	if _, ok := r.roles[role.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.roles[role.ID] = role
	return nil
}

func (r *fakeRoleRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.roles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.roles, id)
	return nil
}

func (r *fakeRoleRepo) GetByID(_ context.Context, id string) (*domain.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return role, nil
}

func (r *fakeRoleRepo) GetByName(_ context.Context, name string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	var result []domain.Role
	for _, role := range r.roles {
		result = append(result, *role)
	}
	return result, nil
}

type fakeResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	r.tokens[token.ID] = token
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	for _, token := range r.tokens {
		if token.Token == tokenStr {
			return token, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	token, ok := r.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	return nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.events...)
}

func (d *recordingDispatcher) lastOfType(eventType events.EventType) (events.Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.events) - 1; i >= 0; i-- {
		if d.events[i].Type == eventType {
			return d.events[i], true
		}
	}
	return events.Event{}, false
}
