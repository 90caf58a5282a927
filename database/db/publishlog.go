package db

import "time"

type PublishLog struct {
	ID             string    `db:"id"`
	Platform       string    `db:"platform"`
	PageID         string    `db:"page_id"`
	PlatformPostID *string   `db:"platform_post_id"`
	AttachedPhotos int       `db:"attached_photos"`
	FailureStage   *string   `db:"failure_stage"`
	FailureDetail  *string   `db:"failure_detail"`
	Published      time.Time `db:"published"`
}
