package inquiries

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"agritrade-backend/internal/auth"
	"agritrade-backend/internal/metrics"
	"agritrade-backend/internal/notifications"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound         = errors.New("inquiry not found")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrEmptyReply       = errors.New("subject and body are required")
	ErrInvalidDealValue = errors.New("deal value must be a non-negative number")
	ErrNoRecipient      = errors.New("inquiry has no email address")
)

const timeStringLayout = "02 Jan 2006, 15:04"

// DispatchError is a failed reply send. Nothing was persisted.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string {
	return "reply dispatch failed: " + e.Err.Error()
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// ProviderMessage is the email provider's own error text when it sent one.
func (e *DispatchError) ProviderMessage() string {
	var perr *notifications.ProviderError
	if errors.As(e.Err, &perr) && perr.Text != "" {
		return perr.Text
	}
	if errors.Is(e.Err, notifications.ErrMailerDisabled) {
		return e.Err.Error()
	}
	return ""
}

type Mailer interface {
	Send(ctx context.Context, msg notifications.Message) (string, error)
}

type Alerter interface {
	NotifyNewInquiry(ctx context.Context, s notifications.InquirySummary) error
}

// ReplyConfig is the fixed routing identity used for outbound replies.
type ReplyConfig struct {
	FromName   string
	ReplyTo    string
	TemplateID int
}

type Service struct {
	repo     Repository
	location *time.Location
	mailer   Mailer
	alerter  Alerter
	reply    ReplyConfig
	now      func() time.Time
}

func NewService(repo Repository, location *time.Location, mailer Mailer, alerter Alerter, reply ReplyConfig) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:     repo,
		location: location,
		mailer:   mailer,
		alerter:  alerter,
		reply:    reply,
		now:      time.Now,
	}
}

// Submit stores a public contact form submission. Status is always pending.
func (s *Service) Submit(ctx context.Context, req ContactRequest) (Inquiry, error) {
	now := s.now().In(s.location)
	inq := Inquiry{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           strings.TrimSpace(req.Phone),
		ProductInterest: strings.TrimSpace(req.ProductInterest),
		Quantity:        strings.TrimSpace(req.Quantity),
		Message:         strings.TrimSpace(req.Message),
		Status:          StatusPending,
		Labels:          []string{},
		ReplyHistory:    []ReplyEntry{},
		CreatedAt:       now,
		TimeString:      now.Format(timeStringLayout),
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ctx, inq)
	if err != nil {
		return Inquiry{}, err
	}
	metrics.RecordInquiryCreated("contact_form")
	return created, nil
}

func (s *Service) NotifyNewInquiry(ctx context.Context, inq Inquiry) error {
	if s.alerter == nil {
		return nil
	}
	return s.alerter.NotifyNewInquiry(ctx, notifications.InquirySummary{
		ID:              inq.ID,
		Name:            inq.Name,
		Email:           inq.Email,
		Phone:           inq.Phone,
		ProductInterest: inq.ProductInterest,
		Quantity:        inq.Quantity,
		Message:         inq.Message,
		TimeString:      inq.TimeString,
	})
}

// CreateLead adds an inquiry by hand directly into a pipeline column.
func (s *Service) CreateLead(ctx context.Context, req LeadRequest) (Inquiry, error) {
	if !IsColumn(req.Status) {
		return Inquiry{}, ErrInvalidStatus
	}
	if req.DealValue != nil && *req.DealValue < 0 {
		return Inquiry{}, ErrInvalidDealValue
	}

	labels := []string{}
	for _, l := range req.Labels {
		labels, _ = AddLabel(labels, l)
	}

	now := s.now().In(s.location)
	inq := Inquiry{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           strings.TrimSpace(req.Phone),
		ProductInterest: strings.TrimSpace(req.ProductInterest),
		Quantity:        strings.TrimSpace(req.Quantity),
		Message:         strings.TrimSpace(req.Message),
		Status:          req.Status,
		DealValue:       req.DealValue,
		Notes:           req.Notes,
		Labels:          labels,
		ReplyHistory:    []ReplyEntry{},
		CreatedAt:       now,
		TimeString:      now.Format(timeStringLayout),
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ctx, inq)
	if err != nil {
		return Inquiry{}, err
	}
	metrics.RecordInquiryCreated("manual")
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (Inquiry, error) {
	inq, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Inquiry{}, mapNotFound(err)
	}
	return inq, nil
}

func (s *Service) ListAdmin(ctx context.Context, filter ListFilter, limit, offset int64) ([]Inquiry, int64, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// All returns every matching inquiry, newest first.
func (s *Service) All(ctx context.Context, filter ListFilter) ([]Inquiry, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter, 0, 0)
}

// SetStatus moves an inquiry to any known status. Any transition is allowed,
// including to the current status, which is still written.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (StatusChange, error) {
	if !IsValidStatus(status) {
		return StatusChange{}, ErrInvalidStatus
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return StatusChange{}, err
	}

	updated, err := s.repo.Update(ctx, current.ID, Patch{Status: &status}, s.now().In(s.location))
	if err != nil {
		return StatusChange{}, mapNotFound(err)
	}
	metrics.RecordStatusChange(string(status))
	return StatusChange{ID: updated.ID, Previous: current.Status, Current: updated.Status}, nil
}

// MoveCard applies a drag-and-drop transition. The board is recomputed from
// the store, moved, and the destination persisted. On failure the returned
// board is the one before the move.
func (s *Service) MoveCard(ctx context.Context, id string, dest Status) (Board, StatusChange, error) {
	items, err := s.All(ctx, ListFilter{})
	if err != nil {
		return Board{}, StatusChange{}, err
	}
	board := GroupByStatus(items)

	next, move, err := board.Move(strings.TrimSpace(id), dest)
	if err != nil {
		return board, StatusChange{}, err
	}

	change, err := s.SetStatus(ctx, move.ID, move.To)
	if err != nil {
		return board, StatusChange{}, err
	}
	return next, change, nil
}

func (s *Service) Pipeline(ctx context.Context, filter ListFilter) (Board, error) {
	items, err := s.All(ctx, filter)
	if err != nil {
		return Board{}, err
	}
	return GroupByStatus(items), nil
}

// AddLabel trims text and appends it. Blank or duplicate labels leave the
// inquiry untouched and nothing is written.
func (s *Service) AddLabel(ctx context.Context, id, text string) (Inquiry, error) {
	inq, err := s.Get(ctx, id)
	if err != nil {
		return Inquiry{}, err
	}
	labels, changed := AddLabel(inq.Labels, text)
	if !changed {
		return inq, nil
	}
	return s.update(ctx, inq.ID, Patch{Labels: &labels})
}

func (s *Service) RemoveLabel(ctx context.Context, id, text string) (Inquiry, error) {
	inq, err := s.Get(ctx, id)
	if err != nil {
		return Inquiry{}, err
	}
	labels, changed := RemoveLabel(inq.Labels, text)
	if !changed {
		return inq, nil
	}
	return s.update(ctx, inq.ID, Patch{Labels: &labels})
}

func (s *Service) UpdateNotes(ctx context.Context, id, notes string) (Inquiry, error) {
	return s.update(ctx, strings.TrimSpace(id), Patch{Notes: &notes})
}

// UpdateDealValue sets the deal value. nil clears it back to "not estimated".
func (s *Service) UpdateDealValue(ctx context.Context, id string, value *float64) (Inquiry, error) {
	if value == nil {
		return s.update(ctx, strings.TrimSpace(id), Patch{ClearDealValue: true})
	}
	if *value < 0 {
		return Inquiry{}, ErrInvalidDealValue
	}
	v := *value
	return s.update(ctx, strings.TrimSpace(id), Patch{DealValue: &v})
}

func (s *Service) Draft(ctx context.Context, id, templateKey string) (Draft, error) {
	inq, err := s.Get(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	return ApplyTemplate(templateKey, inq)
}

// SendReply emails the customer and, only once the provider accepted the
// message, appends the reply to the history and reopens the inquiry as
// in_progress whatever its previous status.
func (s *Service) SendReply(ctx context.Context, id, subject, body string) (Inquiry, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" || strings.TrimSpace(body) == "" {
		return Inquiry{}, ErrEmptyReply
	}

	inq, err := s.Get(ctx, id)
	if err != nil {
		return Inquiry{}, err
	}
	if strings.TrimSpace(inq.Email) == "" {
		return Inquiry{}, ErrNoRecipient
	}

	if s.mailer == nil {
		metrics.RecordReply(false)
		return Inquiry{}, &DispatchError{Err: notifications.ErrMailerDisabled}
	}
	if _, err := s.mailer.Send(ctx, notifications.Message{
		ToEmail:    inq.Email,
		ToName:     inq.Name,
		FromName:   s.reply.FromName,
		ReplyTo:    s.reply.ReplyTo,
		Subject:    subject,
		Message:    body,
		TemplateID: s.reply.TemplateID,
	}); err != nil {
		metrics.RecordReply(false)
		return Inquiry{}, &DispatchError{Err: err}
	}
	metrics.RecordReply(true)

	now := s.now().In(s.location)
	entry := ReplyEntry{
		ID:      strconv.FormatInt(now.UnixMilli(), 10),
		Date:    now,
		Subject: subject,
		Body:    body,
		Sender:  s.senderFor(ctx),
	}
	updated, err := s.repo.AppendReply(ctx, inq.ID, entry, StatusInProgress, now)
	if err != nil {
		return Inquiry{}, fmt.Errorf("record reply: %w", mapNotFound(err))
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	items, err := s.All(ctx, ListFilter{})
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(items, s.location), nil
}

// Export renders the filtered inquiries as CSV along with the download name.
func (s *Service) Export(ctx context.Context, filter ListFilter) ([]byte, string, error) {
	items, err := s.All(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	return ExportCSV(items, s.location), ExportFilename(s.now().In(s.location)), nil
}

func (s *Service) update(ctx context.Context, id string, patch Patch) (Inquiry, error) {
	updated, err := s.repo.Update(ctx, id, patch, s.now().In(s.location))
	if err != nil {
		return Inquiry{}, mapNotFound(err)
	}
	return updated, nil
}

func (s *Service) senderFor(ctx context.Context) string {
	if id, ok := auth.IdentityFromContext(ctx); ok && id.Email != "" {
		return id.Email
	}
	return s.reply.FromName
}

func normalizeFilter(filter ListFilter) (ListFilter, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Status = Status(strings.ToLower(strings.TrimSpace(string(filter.Status))))
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return ListFilter{}, ErrInvalidStatus
	}
	return filter, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
