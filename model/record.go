package model

import (
	"time"

	"github.com/dealerlot/lotposter/database/db"
)

// PublishRecord is one publish ledger row, shaped for the activity feed.
type PublishRecord struct {
	ID             string
	Platform       Platform
	PageID         string
	PlatformPostID string
	AttachedPhotos int
	FailureStage   string
	FailureDetail  string
	Published      time.Time
}

func (r PublishRecord) Succeeded() bool {
	return r.FailureStage == ""
}

func PublishRecordFromLog(row db.PublishLog) (*PublishRecord, error) {
	platform, err := ParsePlatform(row.Platform)
	if err != nil {
		return nil, err
	}
	record := &PublishRecord{
		ID:             row.ID,
		Platform:       platform,
		PageID:         row.PageID,
		AttachedPhotos: row.AttachedPhotos,
		Published:      row.Published,
	}
	if row.PlatformPostID != nil {
		record.PlatformPostID = *row.PlatformPostID
	}
	if row.FailureStage != nil {
		record.FailureStage = *row.FailureStage
	}
	if row.FailureDetail != nil {
		record.FailureDetail = *row.FailureDetail
	}
	return record, nil
}
