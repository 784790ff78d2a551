package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teacher_referral_bot/internal/domain/teacher"
	idb "teacher_referral_bot/internal/infra/database"
)

func pendingApplication(t *testing.T, env *testEnv, telegramID int64, name string) *teacher.Teacher {
	t.Helper()
	ctx := context.Background()
	acc, err := env.accounts.GetOrCreate(ctx, telegramID, "")
	require.NoError(t, err)
	prof := &teacher.Teacher{
		AccountID:   acc.ID,
		FullName:    name,
		PhoneNumber: "+998909876543",
		RegionID:    1,
		DistrictID:  11,
		SchoolName:  "12-maktab",
		Tier:        teacher.TierTop,
	}
	require.NoError(t, env.teachers.Upsert(ctx, prof))
	return prof
}

func TestAdmin_AcceptConfirmsAndNotifies(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	prof := pendingApplication(t, env, 800, "Aliyev Vali")

	accepted, err := env.admin.Accept(ctx, prof.ID)
	require.NoError(t, err)
	assert.True(t, accepted.IsConfirmed)

	stored, err := env.teachers.GetByID(ctx, prof.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsConfirmed)

	assert.True(t, env.client.anySentContains(800, "🎉 Tabriklaymiz! Sizning arizangiz tasdiqlandi!"))
}

func TestAdmin_AcceptRunsReferralHook(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	referrer := env.confirmedTeacher(ctx, 801, "Karimova Nodira")

	prof := pendingApplication(t, env, 802, "Aliyev Vali")
	referee, err := env.accounts.GetByTelegramID(ctx, 802)
	require.NoError(t, err)
	env.referralSvc.RegisterReferral(ctx, "801", referee)

	_, err = env.admin.Accept(ctx, prof.ID)
	require.NoError(t, err)

	points, err := env.referrals.Points(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, points)
	assert.Len(t, env.client.invites, 2, "links issued to the accepted referee")
}

func TestAdmin_RejectDeletesAndNotifies(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	prof := pendingApplication(t, env, 803, "Aliyev Vali")

	_, err := env.admin.Reject(ctx, prof.ID)
	require.NoError(t, err)

	_, err = env.teachers.GetByID(ctx, prof.ID)
	assert.ErrorIs(t, err, idb.ErrTeacherNotFound)

	assert.True(t, env.client.anySentContains(803, "❌ Kechirasiz, sizning arizangiz rad etildi."))
}

func TestAdmin_DecisionOnMissingApplication(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.admin.Accept(ctx, 12345)
	assert.ErrorIs(t, err, idb.ErrTeacherNotFound)

	_, err = env.admin.Reject(ctx, 12345)
	assert.ErrorIs(t, err, idb.ErrTeacherNotFound)
}
