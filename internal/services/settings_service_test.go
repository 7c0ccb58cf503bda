package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwoncho1001/Jomath/internal/utils"
)

func validSettingsRequest(name string) *SaveSettingsRequest {
	return &SaveSettingsRequest{
		Name:          name,
		MinTestCount:  1,
		RecentCount:   5,
		WeightHigh:    1.2,
		WeightMid:     1.0,
		WeightLow:     0.8,
		RatioHigh:     1,
		RatioMid:      1,
		RatioLow:      1,
		SelectedUnits: []string{"수학|함수", "수학|방정식|일차방정식"},
	}
}

func newTestSettingsService() (SettingsService, *mockRepository) {
	repo := newMockRepository()
	return NewSettingsService(repo, serviceLogger(), utils.NewValidator()), repo
}

func TestSettingsServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a snapshot", func(t *testing.T) {
		svc, _ := newTestSettingsService()

		settings, err := svc.Create(ctx, validSettingsRequest("기본"))
		require.NoError(t, err)
		assert.NotZero(t, settings.ID)
		assert.Equal(t, "기본", settings.Name)
		assert.JSONEq(t, `["수학|함수","수학|방정식|일차방정식"]`, string(settings.SelectedUnits))
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		svc, _ := newTestSettingsService()
		_, err := svc.Create(ctx, validSettingsRequest("기본"))
		require.NoError(t, err)

		_, err = svc.Create(ctx, validSettingsRequest("기본"))
		assert.True(t, errors.Is(err, ErrSettingsNameTaken))
	})

	t.Run("malformed topic prefix rejected", func(t *testing.T) {
		svc, _ := newTestSettingsService()
		req := validSettingsRequest("깨진설정")
		req.SelectedUnits = []string{"수학||함수"}

		_, err := svc.Create(ctx, req)
		assert.True(t, errors.Is(err, ErrValidationFailed))
	})

	t.Run("zero recent count rejected", func(t *testing.T) {
		svc, _ := newTestSettingsService()
		req := validSettingsRequest("잘못된설정")
		req.RecentCount = 0

		_, err := svc.Create(ctx, req)
		assert.True(t, errors.Is(err, ErrValidationFailed))
	})
}

func TestSettingsServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestSettingsService()

	created, err := svc.Create(ctx, validSettingsRequest("학기초"))
	require.NoError(t, err)

	t.Run("get by id and name", func(t *testing.T) {
		byID, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "학기초", byID.Name)

		byName, err := svc.GetByName(ctx, "학기초")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byName.ID)
	})

	t.Run("missing snapshots report not found", func(t *testing.T) {
		_, err := svc.Get(ctx, 999)
		assert.True(t, errors.Is(err, ErrSettingsNotFound))

		_, err = svc.GetByName(ctx, "없는설정")
		assert.True(t, errors.Is(err, ErrSettingsNotFound))
	})

	t.Run("update overwrites tunables", func(t *testing.T) {
		req := validSettingsRequest("학기초")
		req.RecentCount = 3
		req.SelectedUnits = []string{"수학"}

		updated, err := svc.Update(ctx, created.ID, req)
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, 3, updated.RecentCount)
	})

	t.Run("delete removes the snapshot", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, created.ID))
		_, err := svc.Get(ctx, created.ID)
		assert.True(t, errors.Is(err, ErrSettingsNotFound))
	})

	t.Run("deleting a missing snapshot fails", func(t *testing.T) {
		err := svc.Delete(ctx, 12345)
		assert.True(t, errors.Is(err, ErrSettingsNotFound))
	})
}

func TestResolveConfig(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestSettingsService()

	t.Run("empty name yields defaults", func(t *testing.T) {
		cfg, err := svc.ResolveConfig(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.MinTestCount)
		assert.Equal(t, 5, cfg.RecentCount)
		assert.InDelta(t, 1.2, cfg.Weights.High, 0.001)
		assert.Empty(t, cfg.SelectedUnits)
	})

	t.Run("named snapshot round trips", func(t *testing.T) {
		req := validSettingsRequest("집중반")
		req.MinTestCount = 2
		req.RecentCount = 4
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)

		cfg, err := svc.ResolveConfig(ctx, "집중반")
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.MinTestCount)
		assert.Equal(t, 4, cfg.RecentCount)
		assert.Equal(t, []string{"수학|함수", "수학|방정식|일차방정식"}, cfg.SelectedUnits)
	})

	t.Run("unknown snapshot name fails", func(t *testing.T) {
		_, err := svc.ResolveConfig(ctx, "없는설정")
		assert.True(t, errors.Is(err, ErrSettingsNotFound))
	})
}
