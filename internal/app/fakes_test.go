package app

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"teacher_referral_bot/internal/domain/account"
	"teacher_referral_bot/internal/domain/channel"
	"teacher_referral_bot/internal/domain/geo"
	"teacher_referral_bot/internal/domain/referral"
	"teacher_referral_bot/internal/domain/teacher"
	idb "teacher_referral_bot/internal/infra/database"
	infraSession "teacher_referral_bot/internal/infra/session"
)

const testAdminChannelID int64 = -100200300

// testEnv wires every service against in-memory fakes.
type testEnv struct {
	accounts  *fakeAccountRepo
	teachers  *fakeTeacherRepo
	geo       *fakeGeoRepo
	referrals *fakeReferralRepo
	channels  *fakeChannelRepo
	sessions  *infraSession.MemoryStore
	client    *fakeClient

	notifier     *Notifier
	referralSvc  *ReferralService
	registration *RegistrationService
	profile      *ProfileService
	stats        *StatsService
	admin        *AdminService
}

func newTestEnv() *testEnv {
	l := logrus.New()
	l.SetOutput(io.Discard)
	entry := logrus.NewEntry(l)

	env := &testEnv{
		accounts:  newFakeAccountRepo(),
		teachers:  newFakeTeacherRepo(),
		geo:       newFakeGeoRepo(),
		referrals: newFakeReferralRepo(),
		channels: &fakeChannelRepo{channels: []*channel.Channel{
			{ID: 1, Name: "Matematika kanali", ChatID: "-100111"},
			{ID: 2, Name: "Fizika kanali", ChatID: "-100222"},
		}},
		sessions: infraSession.NewMemoryStore(),
		client:   newFakeClient(),
	}

	env.notifier = NewNotifier(env.client, env.channels, env.geo, testAdminChannelID, entry)
	env.referralSvc = NewReferralService(env.accounts, env.teachers, env.referrals, env.notifier, entry)
	env.registration = NewRegistrationService(env.accounts, env.teachers, env.geo, env.sessions,
		env.referralSvc, env.notifier, env.client, entry, "+998")
	env.profile = NewProfileService(env.accounts, env.teachers, env.geo, env.client, entry)
	env.stats = NewStatsService(env.accounts, env.referrals, env.client, entry)
	env.admin = NewAdminService(env.accounts, env.teachers, env.referralSvc, env.client, entry)
	return env
}

// confirmedTeacher seeds an account with a confirmed profile and returns it.
func (env *testEnv) confirmedTeacher(ctx context.Context, telegramID int64, name string) *account.Account {
	acc, _ := env.accounts.GetOrCreate(ctx, telegramID, "")
	_ = env.teachers.Upsert(ctx, &teacher.Teacher{
		AccountID:   acc.ID,
		FullName:    name,
		PhoneNumber: "+998901234567",
		RegionID:    1,
		DistrictID:  11,
		SchoolName:  "25-maktab",
		Tier:        teacher.TierNone,
		IsConfirmed: true,
	})
	return acc
}

// --- account repository ---

type fakeAccountRepo struct {
	mu           sync.Mutex
	nextID       int64
	byTelegramID map[int64]*account.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byTelegramID: make(map[int64]*account.Account)}
}

func (r *fakeAccountRepo) GetOrCreate(_ context.Context, telegramID int64, username string) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if acc, ok := r.byTelegramID[telegramID]; ok {
		return acc, nil
	}
	r.nextID++
	acc := &account.Account{
		ID:         r.nextID,
		TelegramID: telegramID,
		Username:   sql.NullString{String: username, Valid: username != ""},
	}
	r.byTelegramID[telegramID] = acc
	return acc, nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id int64) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.byTelegramID {
		if acc.ID == id {
			return acc, nil
		}
	}
	return nil, idb.ErrAccountNotFound
}

func (r *fakeAccountRepo) GetByTelegramID(_ context.Context, telegramID int64) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if acc, ok := r.byTelegramID[telegramID]; ok {
		return acc, nil
	}
	return nil, idb.ErrAccountNotFound
}

// --- teacher repository ---

type fakeTeacherRepo struct {
	mu          sync.Mutex
	nextID      int64
	byAccountID map[int64]*teacher.Teacher
}

func newFakeTeacherRepo() *fakeTeacherRepo {
	return &fakeTeacherRepo{byAccountID: make(map[int64]*teacher.Teacher)}
}

func (r *fakeTeacherRepo) Upsert(_ context.Context, t *teacher.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byAccountID[t.AccountID]; ok {
		t.ID = existing.ID
	} else {
		r.nextID++
		t.ID = r.nextID
	}
	copied := *t
	r.byAccountID[t.AccountID] = &copied
	return nil
}

func (r *fakeTeacherRepo) GetByID(_ context.Context, id int64) (*teacher.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byAccountID {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, idb.ErrTeacherNotFound
}

func (r *fakeTeacherRepo) GetByAccountID(_ context.Context, accountID int64) (*teacher.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byAccountID[accountID]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, idb.ErrTeacherNotFound
}

func (r *fakeTeacherRepo) update(accountID int64, apply func(t *teacher.Teacher)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byAccountID[accountID]
	if !ok {
		return idb.ErrTeacherNotFound
	}
	apply(t)
	return nil
}

func (r *fakeTeacherRepo) UpdateFullName(_ context.Context, accountID int64, fullName string) error {
	return r.update(accountID, func(t *teacher.Teacher) { t.FullName = fullName })
}

func (r *fakeTeacherRepo) UpdatePhoneNumber(_ context.Context, accountID int64, phoneNumber string) error {
	return r.update(accountID, func(t *teacher.Teacher) { t.PhoneNumber = phoneNumber })
}

func (r *fakeTeacherRepo) UpdateSchoolName(_ context.Context, accountID int64, schoolName string) error {
	return r.update(accountID, func(t *teacher.Teacher) { t.SchoolName = schoolName })
}

func (r *fakeTeacherRepo) UpdateTier(_ context.Context, accountID int64, tier teacher.Tier) error {
	return r.update(accountID, func(t *teacher.Teacher) { t.Tier = tier })
}

func (r *fakeTeacherRepo) UpdateLocation(_ context.Context, accountID int64, regionID, districtID int64) error {
	return r.update(accountID, func(t *teacher.Teacher) {
		t.RegionID = regionID
		t.DistrictID = districtID
	})
}

func (r *fakeTeacherRepo) SetConfirmed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byAccountID {
		if t.ID == id {
			t.IsConfirmed = true
			return nil
		}
	}
	return idb.ErrTeacherNotFound
}

func (r *fakeTeacherRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for accID, t := range r.byAccountID {
		if t.ID == id {
			delete(r.byAccountID, accID)
			return nil
		}
	}
	return idb.ErrTeacherNotFound
}

func (r *fakeTeacherRepo) ListPending(_ context.Context) ([]*teacher.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*teacher.Teacher
	for _, t := range r.byAccountID {
		if !t.IsConfirmed {
			copied := *t
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

// --- geo repository ---

type fakeGeoRepo struct {
	regions   map[int64]*geo.Region
	districts map[int64]*geo.District
}

func newFakeGeoRepo() *fakeGeoRepo {
	return &fakeGeoRepo{
		regions: map[int64]*geo.Region{
			1: {ID: 1, Name: "Toshkent shahri"},
			2: {ID: 2, Name: "Samarqand viloyati"},
		},
		districts: map[int64]*geo.District{
			11: {ID: 11, Name: "Chilonzor tumani", RegionID: 1},
			12: {ID: 12, Name: "Yunusobod tumani", RegionID: 1},
			21: {ID: 21, Name: "Urgut tumani", RegionID: 2},
		},
	}
}

func (r *fakeGeoRepo) GetRegion(_ context.Context, id int64) (*geo.Region, error) {
	if reg, ok := r.regions[id]; ok {
		return reg, nil
	}
	return nil, idb.ErrRegionNotFound
}

func (r *fakeGeoRepo) GetDistrict(_ context.Context, id int64) (*geo.District, error) {
	if d, ok := r.districts[id]; ok {
		return d, nil
	}
	return nil, idb.ErrDistrictNotFound
}

func (r *fakeGeoRepo) ListRegions(_ context.Context) ([]*geo.Region, error) {
	var out []*geo.Region
	for _, reg := range r.regions {
		out = append(out, reg)
	}
	return out, nil
}

func (r *fakeGeoRepo) ListDistrictsByRegion(_ context.Context, regionID int64) ([]*geo.District, error) {
	var out []*geo.District
	for _, d := range r.districts {
		if d.RegionID == regionID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeGeoRepo) UpsertRegion(_ context.Context, reg *geo.Region) error {
	r.regions[reg.ID] = reg
	return nil
}

func (r *fakeGeoRepo) UpsertDistrict(_ context.Context, d *geo.District) error {
	r.districts[d.ID] = d
	return nil
}

// --- referral repository ---

type fakeReferralRepo struct {
	mu         sync.Mutex
	nextEdgeID int64
	edges      []*referral.Edge
	points     map[int64]int
	linkClaims map[int64]bool

	// Preset rollup results for the statistics queries.
	confirmedCount int
	perRegion      []referral.GroupCount
	perDistrict    []referral.GroupCount
	totalStats     *referral.Stats
}

func newFakeReferralRepo() *fakeReferralRepo {
	return &fakeReferralRepo{
		points:     make(map[int64]int),
		linkClaims: make(map[int64]bool),
		totalStats: &referral.Stats{},
	}
}

func (r *fakeReferralRepo) CreateEdge(_ context.Context, referrerID, refereeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.RefereeID == refereeID {
			return false, nil
		}
	}
	r.nextEdgeID++
	r.edges = append(r.edges, &referral.Edge{
		ID:         r.nextEdgeID,
		ReferrerID: referrerID,
		RefereeID:  refereeID,
	})
	return true, nil
}

func (r *fakeReferralRepo) ListEdgesByReferee(_ context.Context, refereeID int64) ([]*referral.Edge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*referral.Edge
	for _, e := range r.edges {
		if e.RefereeID == refereeID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeReferralRepo) AwardPoint(_ context.Context, edgeID, referrerID int64) (bool, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.ID == edgeID {
			if e.PointsAwarded {
				return false, 0, nil
			}
			e.PointsAwarded = true
			r.points[referrerID]++
			return true, r.points[referrerID], nil
		}
	}
	return false, 0, nil
}

func (r *fakeReferralRepo) Points(_ context.Context, accountID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.points[accountID], nil
}

func (r *fakeReferralRepo) ClaimLinkIssuance(_ context.Context, accountID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.linkClaims[accountID] {
		return false, nil
	}
	r.linkClaims[accountID] = true
	return true, nil
}

func (r *fakeReferralRepo) LinksIssued(_ context.Context, accountID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.linkClaims[accountID], nil
}

func (r *fakeReferralRepo) CountConfirmedByReferrer(_ context.Context, _ int64) (int, error) {
	return r.confirmedCount, nil
}

func (r *fakeReferralRepo) ConfirmedByReferrerPerRegion(_ context.Context, _ int64) ([]referral.GroupCount, error) {
	return r.perRegion, nil
}

func (r *fakeReferralRepo) ConfirmedByReferrerPerDistrict(_ context.Context, _ int64) ([]referral.GroupCount, error) {
	return r.perDistrict, nil
}

func (r *fakeReferralRepo) TotalStats(_ context.Context) (*referral.Stats, error) {
	return r.totalStats, nil
}

// --- channel repository ---

type fakeChannelRepo struct {
	channels []*channel.Channel
}

func (r *fakeChannelRepo) List(_ context.Context) ([]*channel.Channel, error) {
	return r.channels, nil
}

// --- telegram client ---

type sentMessage struct {
	ChatID  int64
	Text    string
	Options *telebot.SendOptions
}

type editedMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Options   *telebot.SendOptions
}

type fakeClient struct {
	mu       sync.Mutex
	sent     []sentMessage
	edited   []editedMessage
	invites  []string // channel chat IDs links were minted for
	username string

	inviteErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{username: "referral_test_bot"}
}

func (c *fakeClient) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentMessage{ChatID: chatID, Text: text, Options: options})
	return nil
}

func (c *fakeClient) SendDocument(chatID int64, fileID, caption string, options *telebot.SendOptions) error {
	return c.SendMessage(chatID, "document:"+fileID+"\n"+caption, options)
}

func (c *fakeClient) SendPhoto(chatID int64, fileID, caption string, options *telebot.SendOptions) error {
	return c.SendMessage(chatID, "photo:"+fileID+"\n"+caption, options)
}

func (c *fakeClient) EditMessageText(chatID int64, messageID int, text string, options *telebot.SendOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edited = append(c.edited, editedMessage{ChatID: chatID, MessageID: messageID, Text: text, Options: options})
	return nil
}

func (c *fakeClient) EditMessageCaption(chatID int64, messageID int, caption string, options *telebot.SendOptions) error {
	return c.EditMessageText(chatID, messageID, caption, options)
}

func (c *fakeClient) CreateInviteLink(channelChatID string, _ int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inviteErr != nil {
		return "", c.inviteErr
	}
	c.invites = append(c.invites, channelChatID)
	return "https://t.me/+invite" + channelChatID, nil
}

func (c *fakeClient) Username() string {
	return c.username
}

// lastSentTo returns the most recent message sent to the chat, or an empty
// string when there is none.
func (c *fakeClient) lastSentTo(chatID int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.sent) - 1; i >= 0; i-- {
		if c.sent[i].ChatID == chatID {
			return c.sent[i].Text
		}
	}
	return ""
}

func (c *fakeClient) sentTo(chatID int64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, m := range c.sent {
		if m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

func (c *fakeClient) anySentContains(chatID int64, substr string) bool {
	for _, text := range c.sentTo(chatID) {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

func (c *fakeClient) lastEdited() *editedMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.edited) == 0 {
		return nil
	}
	return &c.edited[len(c.edited)-1]
}
