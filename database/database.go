package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"

	"github.com/dealerlot/lotposter/database/db"
	"github.com/dealerlot/lotposter/model"
)

type Database struct {
	connString string
	pool       *pgxpool.Pool
}

func NewDatabase(connString string) *Database {
	return &Database{
		connString: connString,
	}
}

func (d *Database) Connect(ctx context.Context) error {
	var err error
	d.pool, err = pgxpool.New(ctx, d.connString)
	if err != nil {
		return err
	}
	return nil
}

func (d *Database) Disconnect() {
	d.pool.Close()
}

// AddMediaAsset records a freshly captured asset and returns the row ID.
func (d *Database) AddMediaAsset(ctx context.Context, ownerScope string, mimeType string, extension string) (string, error) {
	id := cuid.New()
	_, err := d.pool.Exec(ctx, `
	INSERT INTO media_asset (id, owner_scope, mime_type, extension, created) VALUES ($1, $2, $3, $4, $5)`,
		id,
		ownerScope,
		mimeType,
		extension,
		time.Now().UTC(), // the DB stores timezones and assumes UTC
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (d *Database) SetDurableURL(ctx context.Context, assetID string, durableURL string) error {
	// don't really care about the result, as long as this succeeds
	_, err := d.pool.Exec(ctx, `
	UPDATE media_asset SET durable_url = $1, uploaded_at = $2 WHERE id = $3`,
		durableURL,
		time.Now().UTC(),
		assetID,
	)
	if err != nil {
		return err
	}
	return nil
}

func (d *Database) GetMediaAsset(ctx context.Context, assetID string) (*db.MediaAsset, error) {
	rows, err := d.pool.Query(ctx, `
	SELECT
		id,
		owner_scope,
		mime_type,
		extension,
		durable_url,
		uploaded_at,
		created
	FROM media_asset
	WHERE id = $1`,
		assetID,
	)
	if err != nil {
		return nil, err
	}

	asset, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[db.MediaAsset])
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (d *Database) AddPublishLog(ctx context.Context, platform model.Platform, pageID string, attachedPhotos int, result model.PublishResult) error {
	var postID, failureStage, failureDetail *string
	if result.PlatformPostID != "" {
		postID = &result.PlatformPostID
	}
	if result.Failure != nil {
		stage := string(result.Failure.Stage)
		failureStage = &stage
		failureDetail = &result.Failure.Detail
	}
	_, err := d.pool.Exec(
		ctx,
		`INSERT INTO publish_log (id, platform, page_id, platform_post_id, attached_photos, failure_stage, failure_detail, published) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		cuid.New(),
		platform,
		pageID,
		postID,
		attachedPhotos,
		failureStage,
		failureDetail,
		time.Now().UTC(), // the DB stores timezones and assumes UTC
	)
	if err != nil {
		return err
	}
	return nil
}

// RecentPublishes feeds the dashboard activity feed, newest first.
func (d *Database) RecentPublishes(ctx context.Context, limit int) ([]model.PublishRecord, error) {
	var records []model.PublishRecord
	var raws []db.PublishLog
	rows, err := d.pool.Query(ctx, `
	SELECT
		id,
		platform,
		page_id,
		platform_post_id,
		attached_photos,
		failure_stage,
		failure_detail,
		published
	FROM publish_log
	ORDER BY published DESC
	LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}

	raws, err = pgx.CollectRows(rows, pgx.RowToStructByName[db.PublishLog])
	if err != nil {
		return nil, err
	}

	for _, raw := range raws {
		record, err := model.PublishRecordFromLog(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, nil
}
