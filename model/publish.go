package model

// PublishStage names the protocol step a publish failure happened in.
type PublishStage string

const (
	PublishStageTextPost    PublishStage = "TEXT_POST"
	PublishStagePhotoPost   PublishStage = "PHOTO_POST"
	PublishStageAttachments PublishStage = "ATTACHMENTS_POST"
)

// PublishRequest is one post: text plus an ordered set of image assets bound
// for a single page on a single platform.
type PublishRequest struct {
	Text                    string
	Assets                  []*MediaAsset
	TargetPlatform          Platform
	TargetAccountID         string
	TargetAccountCredential string
}

// PublishResult is the immutable outcome of one publish attempt.
type PublishResult struct {
	PlatformPostID string
	Failure        *PublishFailure
}

type PublishFailure struct {
	Stage  PublishStage
	Detail string
}

func (r PublishResult) Succeeded() bool {
	return r.Failure == nil
}
