package db

import "time"

type MediaAsset struct {
	ID         string     `db:"id"`
	OwnerScope string     `db:"owner_scope"`
	MimeType   string     `db:"mime_type"`
	Extension  string     `db:"extension"`
	DurableURL *string    `db:"durable_url"`
	UploadedAt *time.Time `db:"uploaded_at"`
	Created    time.Time  `db:"created"`
}
