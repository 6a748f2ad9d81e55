// Package memstore реализует хранилище в памяти с тем же поведением, что и Postgres-репозитории.
// Используется в тестах сервисов и HTTP-сценариях.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"mahattati/internal/models"
	"mahattati/internal/policy"
	"mahattati/internal/repository"
	"mahattati/internal/utils"
)

type Store struct {
	mu sync.Mutex

	users         map[int]*models.User
	ads           map[int]*models.Ad
	payments      map[int]*models.Payment
	subscriptions map[int]*models.Subscription
	notifications map[int]*models.Notification
	comments      []*models.Comment
	messages      []*models.Message
	logs          []*models.AuditLog

	seq int
	now func() time.Time
}

func New() *Store {
	return &Store{
		users:         map[int]*models.User{},
		ads:           map[int]*models.Ad{},
		payments:      map[int]*models.Payment{},
		subscriptions: map[int]*models.Subscription{},
		notifications: map[int]*models.Notification{},
		now:           time.Now,
	}
}

// SetClock подменяет часы, например для проверки истечения токенов.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) nextID() int {
	s.seq++
	return s.seq
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
}

// Users возвращает представление хранилища для пользователей.
func (s *Store) Users() *Users { return &Users{s} }

// Ads возвращает представление хранилища для объявлений.
func (s *Store) Ads() *Ads { return &Ads{s} }

func (s *Store) Payments() *Payments { return &Payments{s} }

func (s *Store) Subscriptions() *Subscriptions { return &Subscriptions{s} }

func (s *Store) Notifications() *Notifications { return &Notifications{s} }

func (s *Store) Comments() *Comments { return &Comments{s} }

func (s *Store) Messages() *Messages { return &Messages{s} }

// Create реализует events.Sink.
func (s *Store) Create(_ context.Context, l *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *l
	c.ID = s.nextID()
	s.logs = append(s.logs, &c)
	return nil
}

func (s *Store) AuditLogs() []*models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.AuditLog(nil), s.logs...)
}

type Users struct{ s *Store }

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *Users) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ex := range r.s.users {
		if strings.EqualFold(ex.Email, u.Email) {
			return fmt.Errorf("create user: %w", repository.ErrDuplicate)
		}
	}
	u.ID = r.s.nextID()
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	if u.LanguagePreference == "" {
		u.LanguagePreference = "ar"
	}
	r.s.users[u.ID] = copyUser(u)
	return nil
}

func (r *Users) EmailExists(_ context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.byEmail(email) != nil, nil
}

func (r *Users) byEmail(email string) *models.User {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (r *Users) GetByID(_ context.Context, id int) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("get user")
	}
	return copyUser(u), nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := r.byEmail(email)
	if u == nil {
		return nil, notFound("get user by email")
	}
	return copyUser(u), nil
}

func (r *Users) MarkEmailVerified(_ context.Context, email, token string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := r.byEmail(email)
	if u == nil || u.VerificationToken == nil || *u.VerificationToken != token {
		return false, nil
	}
	u.EmailVerified = true
	u.VerificationToken = nil
	return true, nil
}

func (r *Users) SetResetToken(_ context.Context, userID int, token string, expires time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return notFound("set reset token")
	}
	u.ResetPasswordToken = &token
	u.ResetPasswordExpires = &expires
	return nil
}

func (r *Users) ConsumeResetToken(_ context.Context, userID int, token, passwordHash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok || u.ResetPasswordToken == nil || *u.ResetPasswordToken != token {
		return false, nil
	}
	if u.ResetPasswordExpires == nil || !u.ResetPasswordExpires.After(r.s.now()) {
		return false, nil
	}
	u.PasswordHash = passwordHash
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
	return true, nil
}

func (r *Users) UpdatePassword(_ context.Context, userID int, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return notFound("update password")
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *Users) UpdateProfile(_ context.Context, userID int, in *models.UpdateProfileRequest) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, notFound("update profile")
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Phone != nil {
		u.Phone = in.Phone
	}
	if in.CompanyName != nil {
		u.CompanyName = in.CompanyName
	}
	if in.LanguagePreference != nil {
		u.LanguagePreference = *in.LanguagePreference
	}
	if in.ProfileImage != nil {
		u.ProfileImage = in.ProfileImage
	}
	u.UpdatedAt = r.s.now()
	return copyUser(u), nil
}

func (r *Users) AdminUpdate(_ context.Context, userID int, in *models.AdminUpdateUserRequest) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, notFound("admin update user")
	}
	if in.Email != nil {
		if ex := r.byEmail(*in.Email); ex != nil && ex.ID != userID {
			return nil, fmt.Errorf("admin update user: %w", repository.ErrDuplicate)
		}
		u.Email = *in.Email
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Role != nil {
		u.Role = policy.Role(*in.Role)
	}
	if in.Phone != nil {
		u.Phone = in.Phone
	}
	if in.CompanyName != nil {
		u.CompanyName = in.CompanyName
	}
	if in.EmailVerified != nil {
		u.EmailVerified = *in.EmailVerified
	}
	u.UpdatedAt = r.s.now()
	return copyUser(u), nil
}

func (r *Users) List(_ context.Context, f models.UserFilter) ([]*models.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*models.User
	for _, u := range r.s.users {
		if f.Role == "" || string(u.Role) == f.Role {
			all = append(all, copyUser(u))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := len(all)
	if f.Offset >= total {
		return []*models.User{}, total, nil
	}
	end := f.Offset + f.Limit
	if f.Limit <= 0 || end > total {
		end = total
	}
	return all[f.Offset:end], total, nil
}

type Ads struct{ s *Store }

func copyAd(a *models.Ad) *models.Ad {
	c := *a
	c.Facilities = append([]string{}, a.Facilities...)
	c.FuelTypes = append([]string{}, a.FuelTypes...)
	c.Images = append([]string{}, a.Images...)
	return &c
}

func (r *Ads) Create(_ context.Context, ad *models.Ad) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ad.ID = r.s.nextID()
	ad.CreatedAt = r.s.now()
	ad.UpdatedAt = ad.CreatedAt
	ad.ViewsCount = 0
	if ad.Status == "" {
		ad.Status = models.AdDraft
	}
	r.s.ads[ad.ID] = copyAd(ad)
	return nil
}

func (r *Ads) GetByID(_ context.Context, id int) (*models.Ad, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.ads[id]
	if !ok {
		return nil, notFound("get ad")
	}
	return copyAd(a), nil
}

func (r *Ads) List(_ context.Context, f models.AdFilter) ([]*models.Ad, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Ad{}
	for _, a := range r.s.ads {
		if a.Status != f.Status {
			continue
		}
		if f.OwnerID != nil && a.UserID != *f.OwnerID {
			continue
		}
		if f.Region != "" && (a.Region == nil || *a.Region != f.Region) {
			continue
		}
		if f.City != "" && (a.City == nil || *a.City != f.City) {
			continue
		}
		c := copyAd(a)
		if p := f.Proximity; p != nil {
			d := utils.DistanceKm(p.Latitude, p.Longitude, a.LocationLatitude, a.LocationLongitude)
			if d > float64(p.RadiusKm) {
				continue
			}
			c.DistanceKm = &d
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *Ads) IncrementViews(_ context.Context, id int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.ads[id]
	if !ok || a.Status != models.AdPublished {
		return 0, notFound("increment views")
	}
	a.ViewsCount++
	return a.ViewsCount, nil
}

func (r *Ads) Update(_ context.Context, id int, in *models.UpdateAdInput) (*models.Ad, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.ads[id]
	if !ok {
		return nil, notFound("update ad")
	}
	if in.Title != nil {
		a.Title = *in.Title
	}
	if in.Description != nil {
		a.Description = in.Description
	}
	if in.LocationLatitude != nil {
		a.LocationLatitude = *in.LocationLatitude
	}
	if in.LocationLongitude != nil {
		a.LocationLongitude = *in.LocationLongitude
	}
	if in.Address != nil {
		a.Address = in.Address
	}
	if in.City != nil {
		a.City = in.City
	}
	if in.Region != nil {
		a.Region = in.Region
	}
	if in.Facilities != nil {
		a.Facilities = append([]string{}, (*in.Facilities)...)
	}
	if in.FuelTypes != nil {
		a.FuelTypes = append([]string{}, (*in.FuelTypes)...)
	}
	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.Images != nil {
		a.Images = append([]string{}, (*in.Images)...)
	}
	a.UpdatedAt = r.s.now()
	return copyAd(a), nil
}

func (r *Ads) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ads[id]; !ok {
		return notFound("delete ad")
	}
	delete(r.s.ads, id)
	return nil
}

func (r *Ads) Promote(_ context.Context, adID, userID int, p models.Promotion) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.ads[adID]
	if !ok || a.UserID != userID {
		return false, nil
	}
	typ, exp := p.Type, p.ExpiresAt
	a.IsPromoted = true
	a.PromotionType = &typ
	a.PromotionExpiresAt = &exp
	return true, nil
}

func (r *Ads) ClearExpiredPromotions(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	now := r.s.now()
	for _, a := range r.s.ads {
		if a.IsPromoted && a.PromotionExpiresAt != nil && a.PromotionExpiresAt.Before(now) {
			a.IsPromoted = false
			a.PromotionType = nil
			a.PromotionExpiresAt = nil
			n++
		}
	}
	return n, nil
}

type Payments struct{ s *Store }

func (r *Payments) Create(_ context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID()
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	c := *p
	r.s.payments[p.ID] = &c
	return nil
}

func (r *Payments) GetByID(_ context.Context, id int) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, notFound("get payment")
	}
	c := *p
	return &c, nil
}

func (r *Payments) SetTransaction(_ context.Context, id int, transactionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return notFound("set transaction")
	}
	p.TransactionID = &transactionID
	return nil
}

func (r *Payments) SetStatus(_ context.Context, id int, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return notFound("set payment status")
	}
	p.Status = status
	return nil
}

func (r *Payments) ListByUser(_ context.Context, userID, limit int) ([]*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Payment{}
	for _, p := range r.s.payments {
		if p.UserID == userID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type Subscriptions struct{ s *Store }

func (r *Subscriptions) Create(_ context.Context, sub *models.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub.ID = r.s.nextID()
	sub.CreatedAt = r.s.now()
	c := *sub
	r.s.subscriptions[sub.ID] = &c
	return nil
}

func (r *Subscriptions) Active(_ context.Context, userID int) (*models.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *models.Subscription
	today := r.s.now().UTC().Truncate(24 * time.Hour)
	for _, sub := range r.s.subscriptions {
		if sub.UserID != userID || sub.PaymentStatus != models.SubscriptionPaid || sub.EndDate.Before(today) {
			continue
		}
		if best == nil || sub.EndDate.After(best.EndDate) {
			best = sub
		}
	}
	if best == nil {
		return nil, notFound("active subscription")
	}
	c := *best
	return &c, nil
}

func (r *Subscriptions) ExistsForPayment(_ context.Context, paymentID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.subscriptions {
		if sub.PaymentID != nil && *sub.PaymentID == paymentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Subscriptions) History(_ context.Context, userID int) ([]*models.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Subscription{}
	for _, sub := range r.s.subscriptions {
		if sub.UserID == userID {
			c := *sub
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *Subscriptions) ExpireLapsed(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	today := r.s.now().UTC().Truncate(24 * time.Hour)
	for _, sub := range r.s.subscriptions {
		if sub.PaymentStatus == models.SubscriptionPaid && sub.EndDate.Before(today) {
			sub.PaymentStatus = models.SubscriptionExpired
			n++
		}
	}
	return n, nil
}

type Notifications struct{ s *Store }

func (r *Notifications) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = r.s.nextID()
	n.CreatedAt = r.s.now()
	c := *n
	r.s.notifications[n.ID] = &c
	return nil
}

func (r *Notifications) List(_ context.Context, userID int, unreadOnly bool, limit int) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Notifications) MarkRead(_ context.Context, id, userID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.IsRead = true
	return true, nil
}

func (r *Notifications) MarkAllRead(_ context.Context, userID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var cnt int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			cnt++
		}
	}
	return cnt, nil
}

type Comments struct{ s *Store }

func (r *Comments) Create(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ads[c.AdID]; !ok {
		return notFound("create comment")
	}
	c.ID = r.s.nextID()
	c.CreatedAt = r.s.now()
	cp := *c
	r.s.comments = append(r.s.comments, &cp)
	return nil
}

func (r *Comments) ListByAd(_ context.Context, adID int) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Comment{}
	for _, c := range r.s.comments {
		if c.AdID == adID {
			cp := *c
			if u, ok := r.s.users[c.UserID]; ok {
				cp.UserName, cp.ProfileImage = u.Name, u.ProfileImage
			}
			out = append(out, &cp)
		}
	}
	return out, nil
}

type Messages struct{ s *Store }

func (r *Messages) Create(_ context.Context, m *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.nextID()
	m.CreatedAt = r.s.now()
	m.IsRead = false
	cp := *m
	r.s.messages = append(r.s.messages, &cp)
	return nil
}

func (r *Messages) Conversations(_ context.Context, userID int) ([]*models.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byOther := map[int]*models.Conversation{}
	for _, m := range r.s.messages {
		var other int
		switch userID {
		case m.SenderID:
			other = m.ReceiverID
		case m.ReceiverID:
			other = m.SenderID
		default:
			continue
		}
		c, ok := byOther[other]
		if !ok {
			c = &models.Conversation{OtherUserID: other}
			if u, ok := r.s.users[other]; ok {
				c.OtherUserName, c.OtherUserImage = u.Name, u.ProfileImage
			}
			byOther[other] = c
		}
		// сообщения лежат в порядке создания
		c.LastMessage, c.LastMessageTime = m.Content, m.CreatedAt
		if m.ReceiverID == userID && !m.IsRead {
			c.UnreadCount++
		}
	}
	out := make([]*models.Conversation, 0, len(byOther))
	for _, c := range byOther {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageTime.After(out[j].LastMessageTime) })
	return out, nil
}

func (r *Messages) Thread(_ context.Context, userID, otherID int) ([]*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Message{}
	for _, m := range r.s.messages {
		if (m.SenderID == userID && m.ReceiverID == otherID) || (m.SenderID == otherID && m.ReceiverID == userID) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *Messages) MarkThreadRead(_ context.Context, userID, otherID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages {
		if m.SenderID == otherID && m.ReceiverID == userID {
			m.IsRead = true
		}
	}
	return nil
}
