package accreditation

import (
	"context"
	"testing"

	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/internal/apperr"
	"github.com/anoixa/photo-gallery/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllows(t *testing.T) {
	tests := []struct {
		level models.AccreditationLevel
		cap   Capability
		want  bool
	}{
		{models.LevelNone, CapView, false},
		{models.LevelOwnerImplicit, CapView, false},
		{models.LevelInvited, CapView, false},
		{models.LevelPending, CapView, true},
		{models.LevelPending, CapContribute, true},
		{models.LevelViewer, CapEdit, false},
		{models.LevelEditor, CapEdit, true},
		{models.LevelEditor, CapShare, false},
		{models.LevelOwner, CapShare, true},
	}

	for _, tt := range tests {
		t.Run(tt.cap.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Allows(tt.level, tt.cap), "level %d", tt.level)
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	db := testutils.SetupDB(t)
	owner := testutils.CreateUser(t, db, "owner@example.com")
	viewer := testutils.CreateUser(t, db, "viewer@example.com")
	stranger := testutils.CreateUser(t, db, "stranger@example.com")
	gallery := testutils.CreateGallery(t, db, owner, "Trip")
	testutils.Accredit(t, db, gallery, viewer, models.LevelViewer)

	r := NewResolver(db)
	ctx := context.Background()

	level, err := r.Resolve(ctx, owner.ID, gallery)
	require.NoError(t, err)
	assert.Equal(t, models.LevelOwner, level)

	level, err = r.Resolve(ctx, viewer.ID, gallery)
	require.NoError(t, err)
	assert.Equal(t, models.LevelViewer, level)

	// 无记录与等级 0 区分
	level, err = r.Resolve(ctx, stranger.ID, gallery)
	require.NoError(t, err)
	assert.Equal(t, models.LevelNone, level)
}

func TestResolver_Require(t *testing.T) {
	db := testutils.SetupDB(t)
	owner := testutils.CreateUser(t, db, "owner@example.com")
	viewer := testutils.CreateUser(t, db, "viewer@example.com")
	gallery := testutils.CreateGallery(t, db, owner, "Trip")
	testutils.Accredit(t, db, gallery, viewer, models.LevelViewer)

	r := NewResolver(db)
	ctx := context.Background()

	_, _, err := r.Require(ctx, viewer.ID, gallery.PublicID, CapView)
	assert.NoError(t, err)

	_, _, err = r.Require(ctx, viewer.ID, gallery.PublicID, CapShare)
	assert.True(t, apperr.Is(err, apperr.CodeUnauthorized))

	_, _, err = r.Require(ctx, owner.ID, "missing", CapView)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestResolver_MemoScopedToContext(t *testing.T) {
	db := testutils.SetupDB(t)
	owner := testutils.CreateUser(t, db, "owner@example.com")
	member := testutils.CreateUser(t, db, "member@example.com")
	gallery := testutils.CreateGallery(t, db, owner, "Trip")
	acc := testutils.Accredit(t, db, gallery, member, models.LevelViewer)

	r := NewResolver(db)
	ctx := WithMemo(context.Background())

	level, err := r.Resolve(ctx, member.ID, gallery)
	require.NoError(t, err)
	assert.Equal(t, models.LevelViewer, level)

	require.NoError(t, db.Model(acc).Update("level", models.LevelEditor).Error)

	// 同一请求内命中缓存
	level, err = r.Resolve(ctx, member.ID, gallery)
	require.NoError(t, err)
	assert.Equal(t, models.LevelViewer, level)

	// 新请求不受影响
	level, err = r.Resolve(WithMemo(context.Background()), member.ID, gallery)
	require.NoError(t, err)
	assert.Equal(t, models.LevelEditor, level)

	Forget(ctx, member.ID, gallery.ID)
	level, err = r.Resolve(ctx, member.ID, gallery)
	require.NoError(t, err)
	assert.Equal(t, models.LevelEditor, level)
}
