package inquiries

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"agritrade-backend/internal/notifications"

	"go.mongodb.org/mongo-driver/mongo"
)

type memRepo struct {
	mu      sync.Mutex
	items   map[string]Inquiry
	seq     int
	writes  int
	failAll error
}

func newMemRepo(items ...Inquiry) *memRepo {
	r := &memRepo{items: map[string]Inquiry{}}
	for _, inq := range items {
		r.items[inq.ID] = inq
	}
	return r
}

func (r *memRepo) Create(_ context.Context, inq Inquiry) (Inquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return Inquiry{}, r.failAll
	}
	r.seq++
	inq.ID = "inq-" + strconv.Itoa(r.seq)
	r.items[inq.ID] = inq
	r.writes++
	return inq, nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (Inquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return Inquiry{}, r.failAll
	}
	inq, ok := r.items[id]
	if !ok {
		return Inquiry{}, mongo.ErrNoDocuments
	}
	return inq, nil
}

func (r *memRepo) List(_ context.Context, filter ListFilter, limit, offset int64) ([]Inquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	out := make([]Inquiry, 0)
	for _, inq := range r.items {
		if filter.Status != "" && inq.Status != filter.Status {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(inq.Name+" "+inq.ProductInterest), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, inq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > 0 {
		if offset >= int64(len(out)) {
			return []Inquiry{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < int64(len(out)) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) Count(ctx context.Context, filter ListFilter) (int64, error) {
	items, err := r.List(ctx, filter, 0, 0)
	return int64(len(items)), err
}

func (r *memRepo) Update(_ context.Context, id string, patch Patch, now time.Time) (Inquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return Inquiry{}, r.failAll
	}
	inq, ok := r.items[id]
	if !ok {
		return Inquiry{}, mongo.ErrNoDocuments
	}
	if patch.Status != nil {
		inq.Status = *patch.Status
	}
	if patch.Labels != nil {
		inq.Labels = append([]string(nil), (*patch.Labels)...)
	}
	if patch.Notes != nil {
		inq.Notes = *patch.Notes
	}
	if patch.ClearDealValue {
		inq.DealValue = nil
	} else if patch.DealValue != nil {
		v := *patch.DealValue
		inq.DealValue = &v
	}
	inq.UpdatedAt = now
	r.items[id] = inq
	r.writes++
	return inq, nil
}

func (r *memRepo) AppendReply(_ context.Context, id string, entry ReplyEntry, status Status, now time.Time) (Inquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inq, ok := r.items[id]
	if !ok {
		return Inquiry{}, mongo.ErrNoDocuments
	}
	inq.ReplyHistory = append(append([]ReplyEntry(nil), inq.ReplyHistory...), entry)
	inq.Status = status
	inq.UpdatedAt = now
	r.items[id] = inq
	r.writes++
	return inq, nil
}

func (r *memRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	r.writes++
	return true, nil
}

type fakeMailer struct {
	sent []notifications.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg notifications.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "msg-" + strconv.Itoa(len(m.sent)), nil
}

var errStoreDown = errors.New("store unavailable")

func ptr(v float64) *float64 { return &v }
